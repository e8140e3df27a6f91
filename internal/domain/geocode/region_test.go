package geocode

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/geonovis/geonovis/internal/ports"
	"github.com/stretchr/testify/assert"
)

func TestValidRegion(t *testing.T) {
	valid := []string{"us", "US", "europe", "north-america", "region_1", "a"}
	for _, r := range valid {
		assert.True(t, ValidRegion(r), "expected %q to be valid", r)
	}

	invalid := []string{"", "../etc", "us/ca", `us\ca`, "us.json", "us ca", "..", "é", string(make([]byte, 65))}
	for _, r := range invalid {
		assert.False(t, ValidRegion(r), "expected %q to be invalid", r)
	}
}

func TestCheckRegion_WrapsSentinel(t *testing.T) {
	err := CheckRegion("../secrets")
	assert.True(t, errors.Is(err, ports.ErrInvalidRegion))
	assert.Contains(t, err.Error(), "../secrets")
	assert.NoError(t, CheckRegion("europe"))
}

func TestParseRegions_TrimsOnly(t *testing.T) {
	// Whitespace is the only normalization; case is preserved.
	got := ParseRegions(" us, CA ,eu")
	assert.Equal(t, []string{"us", "CA", "eu"}, got)
}

func TestParseRegions_KeepsEmptyEntries(t *testing.T) {
	got := ParseRegions("us,,ca,")
	assert.Equal(t, []string{"us", "", "ca", ""}, got)
}

func TestCodesPath(t *testing.T) {
	assert.Equal(t, filepath.Join("assets", "geocodes", "us-codes.json"), CodesPath(filepath.Join("assets", "geocodes"), "us"))
	assert.Equal(t, filepath.Join("geocodes", "us", "us.json"), RegionDirPath("geocodes", "us"))
}
