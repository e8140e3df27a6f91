// Package geocode loads per-region geocode files and merges them into a
// single deduplicated collection.
//
// A region's file lives at {base}/{region}-codes.json. Loading never fails:
// a missing, unreadable or malformed file degrades to the empty value for the
// configured variant, and the degradation is reported alongside the data.
package geocode

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/geonovis/geonovis/internal/ports"
)

// CodesSuffix is appended to a region name to form its geocode file name.
const CodesSuffix = "-codes.json"

var regionPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidRegion reports whether s is safe to interpolate into a file path.
// Region names are case-sensitive; no normalization happens here.
func ValidRegion(s string) bool {
	return regionPattern.MatchString(s)
}

// CheckRegion returns ports.ErrInvalidRegion wrapped with the offending value.
func CheckRegion(s string) error {
	if !ValidRegion(s) {
		return fmt.Errorf("%w: %q", ports.ErrInvalidRegion, s)
	}
	return nil
}

// ParseRegions splits a comma-separated query value and trims surrounding
// whitespace from each entry. Empty entries are kept so that they degrade
// like any other unusable region.
func ParseRegions(raw string) []string {
	parts := strings.Split(raw, ",")
	regions := make([]string, len(parts))
	for i, p := range parts {
		regions[i] = strings.TrimSpace(p)
	}
	return regions
}

// CodesPath returns the geocode file path for region under basePath.
// Callers must validate region first.
func CodesPath(basePath, region string) string {
	return filepath.Join(basePath, region+CodesSuffix)
}

// RegionDirPath returns the per-region directory layout,
// {basePath}/{region}/{region}.json, served by the single-region endpoint
// ahead of CodesPath.
func RegionDirPath(basePath, region string) string {
	return filepath.Join(basePath, region, region+".json")
}
