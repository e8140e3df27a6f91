// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces, never on concrete implementations.
package ports

// AuditLog persists degraded geocode loads so that a region silently dropped
// from a merged response can be traced after the fact.
//
// Geocode data itself is never stored: only the fact that a load degraded,
// and why. Concurrent Record calls are safe; writes are serialized by the
// adapter.
type AuditLog interface {
	// Record appends one degradation entry. Implementations may prune the
	// oldest entries to keep the log bounded.
	Record(d Degradation) error

	// RecordBatch appends every entry in one write. An empty batch is a no-op.
	RecordBatch(ds []Degradation) error

	// Recent returns up to n entries, newest first. n <= 0 returns all.
	Recent(n int) ([]Degradation, error)
}

// Degradation describes one region whose geocode file could not be used.
type Degradation struct {
	Region string `json:"region"`
	Reason Reason `json:"reason"`
	Path   string `json:"path,omitempty"`
	Detail string `json:"detail,omitempty"`
	At     int64  `json:"at"` // unix seconds
}
