// Package web serves the Geonovis JSON API over HTTP.
//
// Routes:
//
//	GET  /                        welcome text
//	GET  /api/health              liveness and catalog size
//	GET  /api/regions             region catalog
//	GET  /api/geojson/{region}    boundary file, streamed
//	GET  /api/geocodes/{region}   single geocode file, streamed
//	GET  /api/geocodes?regions=   merged geocodes
//	POST /api/session/encode      session token from JSON
//	POST /api/session/decode      JSON from session token
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/geonovis/geonovis/internal/domain/catalog"
	"github.com/geonovis/geonovis/internal/domain/geocode"
)

// Welcome is the body of GET /.
const Welcome = "Welcome to the Geonovis API!"

// Deps are the collaborators a Server needs. Catalog may be nil.
type Deps struct {
	Geocodes   *geocode.Service
	Catalog    *catalog.Catalog
	GeoJSONDir string
	Logger     *slog.Logger
}

// Server serves the JSON API over HTTP.
type Server struct {
	geocodes   *geocode.Service
	catalog    *catalog.Catalog
	geojsonDir string
	logger     *slog.Logger

	listener net.Listener
	httpSrv  *http.Server
	started  time.Time
	stopOnce sync.Once
}

// NewServer creates an HTTP server for the API.
func NewServer(d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		geocodes:   d.Geocodes,
		catalog:    d.Catalog,
		geojsonDir: d.GeoJSONDir,
		logger:     logger,
		started:    time.Now(),
	}
}

// Handler returns the routed API with CORS and request logging applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/regions", s.handleRegions)
	mux.HandleFunc("GET /api/geojson/{region}", s.handleGeoJSON)
	mux.HandleFunc("GET /api/geocodes/{region}", s.handleRegionGeocodes)
	mux.HandleFunc("GET /api/geocodes", s.handleGeocodes)
	mux.HandleFunc("POST /api/session/encode", s.handleSessionEncode)
	mux.HandleFunc("POST /api/session/decode", s.handleSessionDecode)
	return s.logRequests(cors(mux))
}

// Start begins listening on addr and serves in the background.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.listener = ln
	s.started = time.Now()
	s.httpSrv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http serve failed", "err", err)
		}
	}()
	return nil
}

// Stop gracefully shuts down the HTTP server. Idempotent.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		if s.httpSrv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.httpSrv.Shutdown(ctx)
		}
	})
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// URL returns the base URL of the running server.
func (s *Server) URL() string {
	return "http://" + s.Addr()
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
	Stage   string `json:"stage,omitempty"`
}

// HealthResult is the response of GET /api/health.
type HealthResult struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Regions int    `json:"regions"`
	Variant string `json:"variant"`
}

// RegionsResult is the response of GET /api/regions.
type RegionsResult struct {
	Regions []catalog.Entry `json:"regions"`
	Count   int             `json:"count"`
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, Welcome)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	result := HealthResult{
		Status:  "ok",
		Uptime:  time.Since(s.started).Round(time.Second).String(),
		Variant: string(s.geocodes.Variant()),
	}
	if s.catalog != nil {
		result.Regions = s.catalog.Len()
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		writeError(w, http.StatusServiceUnavailable, "Catalog not available", "region catalog is disabled")
		return
	}
	entries := s.catalog.List()
	writeJSON(w, http.StatusOK, RegionsResult{Regions: entries, Count: len(entries)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, errorBody{Error: msg, Details: details})
}

// cors allows any origin, as the public map client is served from elsewhere.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		h.Set("Access-Control-Expose-Headers", DegradedHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"elapsed", time.Since(start),
		)
	})
}
