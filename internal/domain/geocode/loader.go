package geocode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/geonovis/geonovis/internal/ports"
)

// Status is the outcome kind of a single region load.
type Status int

const (
	StatusOK Status = iota
	StatusEmpty
)

func (s Status) String() string {
	if s == StatusOK {
		return "ok"
	}
	return "empty"
}

// LoadResult is Ok(data) or Empty(reason). Value always yields data the
// merger can consume, so callers never need to branch on Status.
type LoadResult struct {
	Region string
	Path   string
	Status Status
	Reason ports.Reason // set when Status == StatusEmpty
	Err    error        // underlying cause, if any
	data   any
}

// Value returns the parsed file contents, or the empty value for variant
// when the load degraded.
func (r LoadResult) Value(variant ports.Variant) any {
	if r.Status == StatusOK {
		return r.data
	}
	if variant == ports.VariantRecords {
		return []any{}
	}
	return map[string]any{}
}

// Degradation converts an empty result into an audit entry.
func (r LoadResult) Degradation(at int64) ports.Degradation {
	d := ports.Degradation{
		Region: r.Region,
		Reason: r.Reason,
		Path:   r.Path,
		At:     at,
	}
	if r.Err != nil {
		d.Detail = r.Err.Error()
	}
	return d
}

// Loader reads one region's geocode file from BasePath.
type Loader struct {
	BasePath string
	Variant  ports.Variant
	Logger   *slog.Logger
}

// NewLoader creates a Loader. A nil logger discards output.
func NewLoader(basePath string, variant ports.Variant, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{BasePath: basePath, Variant: variant, Logger: logger}
}

// Load reads and parses region's file. It never returns an error: every
// failure mode is folded into an Empty result with a reason and one log line.
func (l *Loader) Load(region string) LoadResult {
	res := LoadResult{Region: region}

	if err := CheckRegion(region); err != nil {
		return l.empty(res, ports.ReasonInvalidRegion, err)
	}
	res.Path = CodesPath(l.BasePath, region)

	raw, err := os.ReadFile(res.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return l.empty(res, ports.ReasonMissing, err)
		}
		return l.empty(res, ports.ReasonUnreadable, err)
	}

	data, err := decode(raw, l.Variant)
	if err != nil {
		return l.empty(res, ports.ReasonMalformed, err)
	}
	res.Status = StatusOK
	res.data = data
	return res
}

func (l *Loader) empty(res LoadResult, reason ports.Reason, err error) LoadResult {
	res.Status = StatusEmpty
	res.Reason = reason
	res.Err = err

	level := slog.LevelWarn
	msg := "geocode file unavailable"
	if reason == ports.ReasonMalformed {
		level = slog.LevelError
		msg = "geocode file unparseable"
	}
	l.Logger.Log(context.Background(), level, msg,
		"region", res.Region,
		"reason", string(reason),
		"path", res.Path,
		"err", err,
	)
	return res
}

// decode parses raw JSON, keeping numbers verbatim. The records variant
// requires a top-level array; the table variant accepts any JSON value and
// leaves non-objects for the merger to skip.
func decode(raw []byte, variant ports.Variant) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON value")
	}

	if variant == ports.VariantRecords {
		arr, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("expected JSON array, got %s", jsonKind(v))
		}
		return arr, nil
	}
	return v, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	default:
		return "number"
	}
}
