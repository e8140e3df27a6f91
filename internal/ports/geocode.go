package ports

import "fmt"

// Variant selects how per-region geocode files are shaped and merged.
//
//	table   : each file is a JSON object keyed by code; later regions overwrite
//	records : each file is a JSON array of records; dedup by a unique key
type Variant string

const (
	VariantTable   Variant = "table"
	VariantRecords Variant = "records"
)

// ParseVariant maps a config string onto a Variant. Empty means table.
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case "", VariantTable:
		return VariantTable, nil
	case VariantRecords:
		return VariantRecords, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
}

// Reason explains why a region's geocode load degraded to an empty value.
type Reason string

const (
	ReasonInvalidRegion Reason = "invalid_region"
	ReasonMissing       Reason = "missing"
	ReasonUnreadable    Reason = "unreadable"
	ReasonMalformed     Reason = "malformed"
)
