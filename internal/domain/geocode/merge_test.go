package geocode

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rec builds a record from a JSON literal.
func rec(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func isoOf(v any) any {
	return v.(map[string]any)["iso"]
}

// =============================================================================
// Records variant
// =============================================================================

func TestMergeRecords_DistinctRegionsKeepOrder(t *testing.T) {
	us := []any{rec(t, `{"iso":"US","name":"United States"}`)}
	ca := []any{rec(t, `{"iso":"CA","name":"Canada"}`)}

	got := MergeRecords([][]any{us, ca}, "iso")
	require.Len(t, got, 2)
	assert.Equal(t, "US", isoOf(got[0]))
	assert.Equal(t, "CA", isoOf(got[1]))
}

func TestMergeRecords_DuplicateRegionCollapses(t *testing.T) {
	us := []any{rec(t, `{"iso":"US","name":"United States"}`)}

	got := MergeRecords([][]any{us, us}, "iso")
	require.Len(t, got, 1)
	assert.Equal(t, "US", isoOf(got[0]))
}

func TestMergeRecords_LaterValueFirstPosition(t *testing.T) {
	first := []any{
		rec(t, `{"iso":"US","name":"old"}`),
		rec(t, `{"iso":"FR","name":"France"}`),
	}
	second := []any{rec(t, `{"iso":"US","name":"new"}`)}

	got := MergeRecords([][]any{first, second}, "iso")
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].(map[string]any)["name"], "value replaced")
	assert.Equal(t, "US", isoOf(got[0]), "position kept")
	assert.Equal(t, "FR", isoOf(got[1]))
}

func TestMergeRecords_FallbackKeyIgnoresFieldOrder(t *testing.T) {
	// No "iso": identity is the canonical serialization, so key order is irrelevant.
	a := []any{rec(t, `{"name":"Atlantis","code":"AT"}`)}
	b := []any{rec(t, `{"code":"AT","name":"Atlantis"}`)}

	got := MergeRecords([][]any{a, b}, "iso")
	assert.Len(t, got, 1)
}

func TestMergeRecords_FallbackDistinguishesDifferentRecords(t *testing.T) {
	a := []any{rec(t, `{"name":"Atlantis"}`), rec(t, `{"name":"Lemuria"}`)}

	got := MergeRecords([][]any{a}, "iso")
	assert.Len(t, got, 2)
}

func TestMergeRecords_NullKeyFallsBack(t *testing.T) {
	a := []any{rec(t, `{"iso":null,"name":"A"}`), rec(t, `{"iso":null,"name":"B"}`)}

	got := MergeRecords([][]any{a}, "iso")
	assert.Len(t, got, 2, "null keys must not collapse unrelated records")
}

func TestMergeRecords_KeyTypesDoNotCollide(t *testing.T) {
	a := []any{rec(t, `{"iso":"1"}`), rec(t, `{"iso":1}`)}

	got := MergeRecords([][]any{a}, "iso")
	assert.Len(t, got, 2)
}

func TestMergeRecords_NumericKeysCompareByValue(t *testing.T) {
	a := []any{map[string]any{"iso": json.Number("1")}}
	b := []any{map[string]any{"iso": json.Number("1.0"), "n": json.Number("2")}}

	got := MergeRecords([][]any{a, b}, "iso")
	require.Len(t, got, 1)
	assert.Equal(t, json.Number("2"), got[0].(map[string]any)["n"])
}

func TestMergeRecords_FallbackNumbersCompareByValue(t *testing.T) {
	a := []any{map[string]any{"code": json.Number("10"), "tags": []any{json.Number("1e0")}}}
	b := []any{map[string]any{"code": json.Number("10.00"), "tags": []any{json.Number("1")}}}

	got := MergeRecords([][]any{a, b}, "iso")
	assert.Len(t, got, 1)
}

func TestMergeRecords_NonObjectElements(t *testing.T) {
	a := []any{"US", "US", float64(3)}

	got := MergeRecords([][]any{a}, "iso")
	assert.Equal(t, []any{"US", float64(3)}, got)
}

func TestMergeRecords_CustomKey(t *testing.T) {
	a := []any{rec(t, `{"code":"x","v":1}`), rec(t, `{"code":"x","v":2}`)}

	got := MergeRecords([][]any{a}, "code")
	require.Len(t, got, 1)
	assert.Equal(t, float64(2), got[0].(map[string]any)["v"])
}

func TestMergeRecords_Empty(t *testing.T) {
	assert.Equal(t, []any{}, MergeRecords(nil, ""))
	assert.Equal(t, []any{}, MergeRecords([][]any{{}, {}}, "iso"))
}

func TestMergeRecords_NoDuplicateKeys(t *testing.T) {
	tables := [][]any{
		{rec(t, `{"iso":"US"}`), rec(t, `{"iso":"CA"}`), rec(t, `{"iso":"US"}`)},
		{rec(t, `{"iso":"MX"}`), rec(t, `{"iso":"CA"}`)},
		{rec(t, `{"iso":"BR"}`), rec(t, `{"iso":"US"}`)},
	}

	got := MergeRecords(tables, "iso")
	seen := make(map[any]bool)
	var order []any
	for _, r := range got {
		k := isoOf(r)
		assert.False(t, seen[k], "duplicate key %v", k)
		seen[k] = true
		order = append(order, k)
	}
	assert.Equal(t, []any{"US", "CA", "MX", "BR"}, order, "first-occurrence order")
}

// =============================================================================
// Table variant
// =============================================================================

func TestMergeTables_LaterRegionWins(t *testing.T) {
	us := rec(t, `{"US":{"name":"United States"}}`)
	eu := rec(t, `{"US":{"name":"USA-dup"},"FR":{"name":"France"}}`)

	got := MergeTables([]any{us, eu})
	assert.Equal(t, map[string]any{
		"US": map[string]any{"name": "USA-dup"},
		"FR": map[string]any{"name": "France"},
	}, got)
}

func TestMergeTables_SkipsNonObjects(t *testing.T) {
	us := rec(t, `{"US":1}`)
	got := MergeTables([]any{nil, []any{"x"}, "str", float64(4), true, us})
	assert.Equal(t, map[string]any{"US": float64(1)}, got)
}

func TestMergeTables_NoDeepMerge(t *testing.T) {
	a := rec(t, `{"US":{"name":"United States","capital":"Washington"}}`)
	b := rec(t, `{"US":{"name":"USA"}}`)

	got := MergeTables([]any{a, b})
	assert.Equal(t, map[string]any{"name": "USA"}, got["US"], "nested object replaced wholesale")
}

func TestMergeTables_DoesNotMutateInputs(t *testing.T) {
	a := rec(t, `{"US":1}`)
	b := rec(t, `{"US":2}`)

	_ = MergeTables([]any{a, b})
	assert.Equal(t, float64(1), a.(map[string]any)["US"])
}

func TestMergeTables_Empty(t *testing.T) {
	assert.Equal(t, map[string]any{}, MergeTables(nil))
}
