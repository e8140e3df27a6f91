// Package boundary validates per-region GeoJSON boundary files.
//
// The HTTP API streams boundary files verbatim; this package is used offline
// (geonovis check) to make sure what gets streamed is a well-formed
// FeatureCollection.
package boundary

import (
	"fmt"
	"os"

	geojson "github.com/paulmach/go.geojson"
)

// Summary counts the geometry kinds in one boundary file.
type Summary struct {
	Features      int `json:"features"`
	Polygons      int `json:"polygons"`
	MultiPolygons int `json:"multi_polygons"`
	Other         int `json:"other"`
	NullGeometry  int `json:"null_geometry"`
}

// Report is the outcome of checking one region.
type Report struct {
	Region  string
	Path    string
	Summary Summary
	Err     error
}

// OK reports whether the file parsed and contained at least one feature.
func (r Report) OK() bool {
	return r.Err == nil
}

// Parse decodes data as a FeatureCollection and summarizes it.
func Parse(data []byte) (Summary, error) {
	var s Summary
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return s, fmt.Errorf("decode geojson: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return s, fmt.Errorf("expected FeatureCollection, got %q", fc.Type)
	}
	for _, f := range fc.Features {
		s.Features++
		switch {
		case f == nil || f.Geometry == nil:
			s.NullGeometry++
		case f.Geometry.IsPolygon():
			s.Polygons++
		case f.Geometry.IsMultiPolygon():
			s.MultiPolygons++
		default:
			s.Other++
		}
	}
	if s.Features == 0 {
		return s, fmt.Errorf("feature collection is empty")
	}
	return s, nil
}

// Check reads and validates the boundary file at path.
func Check(region, path string) Report {
	r := Report{Region: region, Path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		r.Err = err
		return r
	}
	r.Summary, r.Err = Parse(data)
	return r
}
