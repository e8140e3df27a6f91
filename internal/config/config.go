// Package config loads geonovis.yaml and fills in defaults.
//
// Every field is optional. Relative directories are resolved against the
// working directory, so the default layout is ./assets/geo and ./assets/geocodes.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/geonovis/geonovis/internal/ports"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no --config flag is given. Its absence is not an error.
const DefaultFile = "geonovis.yaml"

// AuditOff as audit.path disables the degradation audit log.
const AuditOff = "off"

// Config is the full runtime configuration.
type Config struct {
	Addr        string `yaml:"addr"`
	AssetsDir   string `yaml:"assets_dir"`
	GeoJSONDir  string `yaml:"geojson_dir"`
	GeocodesDir string `yaml:"geocodes_dir"`
	Watch       *bool  `yaml:"watch"`

	Geocodes struct {
		Variant     string `yaml:"variant"`
		UniqueKey   string `yaml:"unique_key"`
		MaxParallel int    `yaml:"max_parallel"`
	} `yaml:"geocodes"`

	Audit struct {
		Path string `yaml:"path"`
		Keep *int   `yaml:"keep"` // 0 keeps every entry
	} `yaml:"audit"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Default returns a Config with every default applied.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads path and applies defaults. When path is the default file and it
// does not exist, the defaults alone are returned.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	c := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = ":3111"
	}
	if c.AssetsDir == "" {
		c.AssetsDir = "assets"
	}
	if c.GeoJSONDir == "" {
		c.GeoJSONDir = filepath.Join(c.AssetsDir, "geo")
	}
	if c.GeocodesDir == "" {
		c.GeocodesDir = filepath.Join(c.AssetsDir, "geocodes")
	}
	if c.Watch == nil {
		on := true
		c.Watch = &on
	}
	if c.Geocodes.Variant == "" {
		c.Geocodes.Variant = string(ports.VariantTable)
	}
	if c.Geocodes.UniqueKey == "" {
		c.Geocodes.UniqueKey = "iso"
	}
	if c.Audit.Path == "" {
		c.Audit.Path = filepath.Join(".geonovis", "audit.db")
	}
	if c.Audit.Keep == nil {
		keep := 1000
		c.Audit.Keep = &keep
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks values that defaults cannot fix.
func (c *Config) Validate() error {
	if _, err := ports.ParseVariant(c.Geocodes.Variant); err != nil {
		return err
	}
	if c.Geocodes.MaxParallel < 0 {
		return fmt.Errorf("geocodes.max_parallel must be >= 0, got %d", c.Geocodes.MaxParallel)
	}
	if c.AuditKeep() < 0 {
		return fmt.Errorf("audit.keep must be >= 0, got %d", c.AuditKeep())
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// Variant returns the parsed geocode variant. Validate has already vetted it.
func (c *Config) Variant() ports.Variant {
	v, _ := ports.ParseVariant(c.Geocodes.Variant)
	return v
}

// WatchEnabled reports whether the asset watcher should run.
func (c *Config) WatchEnabled() bool {
	return c.Watch == nil || *c.Watch
}

// AuditEnabled reports whether degraded loads are persisted.
func (c *Config) AuditEnabled() bool {
	return c.Audit.Path != AuditOff
}

// AuditKeep returns how many audit entries are retained. 0 means all.
func (c *Config) AuditKeep() int {
	if c.Audit.Keep == nil {
		return 0
	}
	return *c.Audit.Keep
}

// SetAssetsDir points every asset directory at dir, overriding any
// geojson_dir or geocodes_dir set in the file.
func (c *Config) SetAssetsDir(dir string) {
	c.AssetsDir = dir
	c.GeoJSONDir = filepath.Join(dir, "geo")
	c.GeocodesDir = filepath.Join(dir, "geocodes")
}

// NewLogger builds the process logger writing to w.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Dump renders the resolved configuration as YAML.
func (c *Config) Dump() (string, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return l, fmt.Errorf("log.level: %w", err)
	}
	return l, nil
}
