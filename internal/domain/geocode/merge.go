package geocode

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// DefaultUniqueKey is the record field used for dedup when none is configured.
const DefaultUniqueKey = "iso"

// MergeRecords flattens per-region record arrays (region order, then
// within-region order) and removes duplicates.
//
// A record's identity is record[uniqueKey] when the field is present and not
// null; otherwise it is the canonical JSON of the whole record, so two
// structurally equal records collapse regardless of key order. A later
// duplicate replaces the value but keeps the first-seen position.
func MergeRecords(tables [][]any, uniqueKey string) []any {
	if uniqueKey == "" {
		uniqueKey = DefaultUniqueKey
	}

	total := 0
	for _, t := range tables {
		total += len(t)
	}

	pos := make(map[string]int, total)
	out := make([]any, 0, total)
	for _, t := range tables {
		for _, rec := range t {
			k := recordKey(rec, uniqueKey)
			if i, ok := pos[k]; ok {
				out[i] = rec
				continue
			}
			pos[k] = len(out)
			out = append(out, rec)
		}
	}
	return out
}

// MergeTables shallow-merges JSON objects; later tables win on key
// collision. Inputs that are not objects (arrays, null, primitives) are
// skipped. Nested values are replaced wholesale.
func MergeTables(tables []any) map[string]any {
	merged := make(map[string]any)
	for _, t := range tables {
		obj, ok := t.(map[string]any)
		if !ok {
			continue
		}
		for k, v := range obj {
			merged[k] = v
		}
	}
	return merged
}

// recordKey prefixes keyed and whole-record identities differently so a key
// value can never collide with a serialized record.
func recordKey(rec any, uniqueKey string) string {
	if obj, ok := rec.(map[string]any); ok {
		if v, ok := obj[uniqueKey]; ok && v != nil {
			return "k:" + canonicalJSON(v)
		}
	}
	return "r:" + canonicalJSON(rec)
}

// canonicalJSON relies on encoding/json sorting map keys. Numbers are
// compared by value, so 1 and 1.0 serialize alike.
func canonicalJSON(v any) string {
	b, err := json.Marshal(canonicalNumbers(v))
	if err != nil {
		return fmt.Sprintf("%#v", v)
	}
	return string(b)
}

// canonicalNumbers returns v with every json.Number replaced by its float64
// value. Numbers outside float64 range keep their literal text.
func canonicalNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if f, err := strconv.ParseFloat(string(t), 64); err == nil {
			return f
		}
		return t
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = canonicalNumbers(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = canonicalNumbers(e)
		}
		return out
	}
	return v
}
