// Package app wires together all adapters and domain logic.
// It provides lifecycle management for the geonovis server: create, start, stop.
package app

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/geonovis/geonovis/internal/adapters/bbolt"
	fsw "github.com/geonovis/geonovis/internal/adapters/fsnotify"
	"github.com/geonovis/geonovis/internal/adapters/web"
	"github.com/geonovis/geonovis/internal/config"
	"github.com/geonovis/geonovis/internal/domain/catalog"
	"github.com/geonovis/geonovis/internal/domain/geocode"
	"github.com/geonovis/geonovis/internal/ports"
)

// App is the top-level container wiring all components together.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	Geocodes *geocode.Service
	Catalog  *catalog.Catalog
	Audit    *bbolt.Store // nil when audit is disabled
	Watcher  *fsw.Watcher // nil when watching is disabled
	Server   *web.Server

	refreshMu    sync.Mutex
	refreshTimer *time.Timer
}

// refreshDelay coalesces bursts of asset events into one catalog rebuild.
const refreshDelay = 100 * time.Millisecond

// New builds every component from cfg. Nothing listens until Start.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	a := &App{Config: cfg, Logger: logger}

	var audit ports.AuditLog
	if cfg.AuditEnabled() {
		store, err := bbolt.NewStore(cfg.Audit.Path, cfg.AuditKeep())
		if err != nil {
			return nil, fmt.Errorf("open audit store: %w", err)
		}
		a.Audit = store
		audit = store
	}

	svc, err := geocode.NewService(geocode.Options{
		BasePath:    cfg.GeocodesDir,
		Variant:     cfg.Variant(),
		UniqueKey:   cfg.Geocodes.UniqueKey,
		MaxParallel: cfg.Geocodes.MaxParallel,
		Audit:       audit,
		Logger:      logger.With("component", "geocode"),
	})
	if err != nil {
		a.closeAudit()
		return nil, fmt.Errorf("geocode service: %w", err)
	}
	a.Geocodes = svc

	a.Catalog = catalog.New(cfg.GeocodesDir, cfg.GeoJSONDir)

	if cfg.WatchEnabled() {
		w, err := fsw.NewWatcher()
		if err != nil {
			a.closeAudit()
			return nil, fmt.Errorf("create watcher: %w", err)
		}
		a.Watcher = w
	}

	a.Server = web.NewServer(web.Deps{
		Geocodes:   svc,
		Catalog:    a.Catalog,
		GeoJSONDir: cfg.GeoJSONDir,
		Logger:     logger.With("component", "web"),
	})
	return a, nil
}

// Start builds the catalog, starts the asset watcher and begins serving.
// Catalog and watcher failures are logged, not fatal.
func (a *App) Start() error {
	if err := a.Catalog.Refresh(); err != nil {
		a.Logger.Warn("region catalog unavailable", "err", err)
	}

	if a.Watcher != nil {
		if err := a.Watcher.Watch(a.Config.AssetsDir, a.onAssetChanged); err != nil {
			a.Logger.Warn("asset watcher unavailable", "dir", a.Config.AssetsDir, "err", err)
		}
	}

	if err := a.Server.Start(a.Config.Addr); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	a.Logger.Info("server listening",
		"addr", a.Server.Addr(),
		"variant", string(a.Geocodes.Variant()),
		"regions", a.Catalog.Len(),
	)
	return nil
}

// Stop shuts down the server, the watcher and the audit store.
func (a *App) Stop() error {
	a.Server.Stop()
	if a.Watcher != nil {
		a.Watcher.Stop()
	}
	a.refreshMu.Lock()
	if a.refreshTimer != nil {
		a.refreshTimer.Stop()
	}
	a.refreshMu.Unlock()
	return a.closeAudit()
}

// onAssetChanged schedules a catalog rebuild; events within refreshDelay
// share one rebuild.
func (a *App) onAssetChanged(path string) {
	a.Logger.Debug("asset changed", "path", path)

	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()
	if a.refreshTimer != nil {
		a.refreshTimer.Reset(refreshDelay)
		return
	}
	a.refreshTimer = time.AfterFunc(refreshDelay, a.refreshCatalog)
}

func (a *App) refreshCatalog() {
	if err := a.Catalog.Refresh(); err != nil {
		a.Logger.Warn("catalog refresh failed", "err", err)
		return
	}
	a.Logger.Info("catalog refreshed", "regions", a.Catalog.Len())
}

func (a *App) closeAudit() error {
	if a.Audit == nil {
		return nil
	}
	return a.Audit.Close()
}
