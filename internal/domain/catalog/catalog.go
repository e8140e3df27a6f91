// Package catalog indexes which regions have assets on disk.
//
// A region appears when {geocodes}/{region}-codes.json or
// {geojson}/{region}/{region}.geo.json exists. The catalog is rebuilt on
// demand by Refresh, which the server calls from the asset watcher. Reads
// are served from the last snapshot.
package catalog

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/biter777/countries"
	"github.com/geonovis/geonovis/internal/domain/geocode"
)

// GeoJSONSuffix is appended to a region name to form its boundary file name.
const GeoJSONSuffix = ".geo.json"

// Entry describes the assets available for one region.
type Entry struct {
	Region   string `json:"region"`
	Name     string `json:"name,omitempty"` // country name when the region is an ISO code
	Geocodes bool   `json:"geocodes"`
	Boundary bool   `json:"boundary"`
}

// Catalog is a concurrency-safe snapshot of available regions.
type Catalog struct {
	geocodesDir string
	geojsonDir  string

	mu        sync.RWMutex
	entries   []Entry
	refreshed time.Time
}

// New creates an empty catalog. Call Refresh to populate it.
func New(geocodesDir, geojsonDir string) *Catalog {
	return &Catalog{geocodesDir: geocodesDir, geojsonDir: geojsonDir}
}

// BoundaryPath returns the boundary file path for region under geojsonDir.
// Callers must validate region first.
func BoundaryPath(geojsonDir, region string) string {
	return filepath.Join(geojsonDir, region, region+GeoJSONSuffix)
}

// Refresh rescans both asset directories. A missing directory contributes
// no entries and is not an error.
func (c *Catalog) Refresh() error {
	found := make(map[string]*Entry)
	get := func(region string) *Entry {
		e, ok := found[region]
		if !ok {
			e = &Entry{Region: region, Name: CountryName(region)}
			found[region] = e
		}
		return e
	}

	codes, err := readDir(c.geocodesDir)
	if err != nil {
		return err
	}
	for _, de := range codes {
		name := de.Name()
		if de.IsDir() || !strings.HasSuffix(name, geocode.CodesSuffix) {
			continue
		}
		region := strings.TrimSuffix(name, geocode.CodesSuffix)
		if geocode.ValidRegion(region) {
			get(region).Geocodes = true
		}
	}

	geo, err := readDir(c.geojsonDir)
	if err != nil {
		return err
	}
	for _, de := range geo {
		region := de.Name()
		if !de.IsDir() || !geocode.ValidRegion(region) {
			continue
		}
		if info, err := os.Stat(BoundaryPath(c.geojsonDir, region)); err == nil && info.Mode().IsRegular() {
			get(region).Boundary = true
		}
	}

	entries := make([]Entry, 0, len(found))
	for _, e := range found {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Region < entries[j].Region
	})

	c.mu.Lock()
	c.entries = entries
	c.refreshed = time.Now()
	c.mu.Unlock()
	return nil
}

// List returns a copy of the current entries, sorted by region.
func (c *Catalog) List() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Entry(nil), c.entries...)
}

// Len returns the number of known regions.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Refreshed returns when the catalog was last rebuilt (zero if never).
func (c *Catalog) Refreshed() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refreshed
}

// CountryName resolves two- and three-letter ISO codes to a country name.
// Anything else (continents, custom regions) returns "".
func CountryName(region string) string {
	if len(region) != 2 && len(region) != 3 {
		return ""
	}
	cc := countries.ByName(strings.ToUpper(region))
	if cc == countries.Unknown {
		return ""
	}
	name := cc.String()
	if i := strings.Index(name, " ("); i != -1 {
		name = name[:i]
	}
	return name
}

func readDir(dir string) ([]os.DirEntry, error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return entries, err
}
