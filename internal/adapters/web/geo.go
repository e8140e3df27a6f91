package web

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/geonovis/geonovis/internal/domain/catalog"
	"github.com/geonovis/geonovis/internal/domain/geocode"
	"github.com/geonovis/geonovis/internal/ports"
)

// DegradedHeader lists regions omitted from a merged response, as
// comma-separated region:reason pairs.
const DegradedHeader = "X-Geonovis-Degraded"

func (s *Server) handleGeoJSON(w http.ResponseWriter, r *http.Request) {
	region := r.PathValue("region")
	if !geocode.ValidRegion(region) {
		writeError(w, http.StatusBadRequest, "Invalid region", fmt.Sprintf("region %q contains unsupported characters", region))
		return
	}
	s.serveAsset(w, r, region, catalog.BoundaryPath(s.geojsonDir, region))
}

func (s *Server) handleRegionGeocodes(w http.ResponseWriter, r *http.Request) {
	region := r.PathValue("region")
	if !geocode.ValidRegion(region) {
		writeError(w, http.StatusBadRequest, "Invalid region", fmt.Sprintf("region %q contains unsupported characters", region))
		return
	}
	base := s.geocodes.BasePath()
	path := geocode.RegionDirPath(base, region)
	if _, err := os.Stat(path); err != nil {
		path = geocode.CodesPath(base, region)
	}
	s.serveAsset(w, r, region, path)
}

// serveAsset streams a JSON file. Missing files are 404; anything else that
// stops the file from being opened is 500.
func (s *Server) serveAsset(w http.ResponseWriter, r *http.Request, region, path string) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("asset not found", "region", region, "path", path)
			writeError(w, http.StatusNotFound, "Region file not found",
				fmt.Sprintf("Could not find %s in %s", filepath.Base(path), filepath.Dir(path)))
			return
		}
		s.logger.Error("asset open failed", "region", region, "path", path, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to send file", err.Error())
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		s.logger.Error("asset not a regular file", "region", region, "path", path, "err", err)
		writeError(w, http.StatusNotFound, "Region file not found",
			fmt.Sprintf("%s is not a regular file", filepath.Base(path)))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	http.ServeContent(w, r, filepath.Base(path), info.ModTime(), f)
	s.logger.Info("sent asset", "region", region, "file", filepath.Base(path))
}

func (s *Server) handleGeocodes(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("regions")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "Missing regions parameter",
			"Please provide a regions parameter with a comma-separated list of region names")
		return
	}

	regions := geocode.ParseRegions(raw)
	res, err := s.geocodes.Merge(r.Context(), regions)
	if err != nil {
		s.logger.Error("geocode merge failed", "regions", regions, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to process geocodes", err.Error())
		return
	}

	if len(res.Degraded) > 0 {
		w.Header().Set(DegradedHeader, degradedHeaderValue(res.Degraded))
	}
	s.logger.Info("provided geocodes",
		"regions", strings.Join(regions, ", "),
		"degraded", len(res.Degraded),
	)
	writeJSON(w, http.StatusOK, res.Value())
}

func degradedHeaderValue(ds []ports.Degradation) string {
	parts := make([]string, len(ds))
	for i, d := range ds {
		// Invalid regions may hold characters unsafe for a header value.
		region := d.Region
		if !geocode.ValidRegion(region) {
			region = "?"
		}
		parts[i] = region + ":" + string(d.Reason)
	}
	return strings.Join(parts, ",")
}
