package ports

import "errors"

var (
	// ErrInvalidRegion is returned when a region identifier contains
	// characters outside the allow-list and cannot be used to build a path.
	ErrInvalidRegion = errors.New("invalid region")

	// ErrUnknownVariant is returned for a merge variant other than table or records.
	ErrUnknownVariant = errors.New("unknown geocode variant")
)
