package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/geonovis/geonovis/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "geonovis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, ":3111", c.Addr)
	assert.Equal(t, filepath.Join("assets", "geo"), c.GeoJSONDir)
	assert.Equal(t, filepath.Join("assets", "geocodes"), c.GeocodesDir)
	assert.Equal(t, ports.VariantTable, c.Variant())
	assert.Equal(t, "iso", c.Geocodes.UniqueKey)
	assert.Equal(t, 0, c.Geocodes.MaxParallel)
	assert.True(t, c.WatchEnabled())
	assert.True(t, c.AuditEnabled())
	assert.Equal(t, 1000, c.AuditKeep())
	assert.NoError(t, c.Validate())
}

func TestLoad_AuditKeepZeroKeepsEverything(t *testing.T) {
	c, err := Load(writeConfig(t, "audit:\n  keep: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, c.AuditKeep())

	c, err = Load(writeConfig(t, "audit:\n  keep: 25\n"))
	require.NoError(t, err)
	assert.Equal(t, 25, c.AuditKeep())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
addr: 127.0.0.1:9000
assets_dir: /srv/assets
watch: false
geocodes:
  variant: records
  unique_key: code
  max_parallel: 4
audit:
  path: "off"
log:
  level: debug
  format: json
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", c.Addr)
	assert.Equal(t, filepath.Join("/srv/assets", "geo"), c.GeoJSONDir)
	assert.Equal(t, filepath.Join("/srv/assets", "geocodes"), c.GeocodesDir)
	assert.Equal(t, ports.VariantRecords, c.Variant())
	assert.Equal(t, "code", c.Geocodes.UniqueKey)
	assert.Equal(t, 4, c.Geocodes.MaxParallel)
	assert.False(t, c.WatchEnabled())
	assert.False(t, c.AuditEnabled())
}

func TestLoad_ExplicitDirsWin(t *testing.T) {
	path := writeConfig(t, "assets_dir: a\ngeojson_dir: /x/geo\n")
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/x/geo", c.GeoJSONDir)
	assert.Equal(t, filepath.Join("a", "geocodes"), c.GeocodesDir)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_MissingDefaultFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":3111", c.Addr)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"variant":  "geocodes:\n  variant: nested\n",
		"parallel": "geocodes:\n  max_parallel: -2\n",
		"level":    "log:\n  level: loud\n",
		"format":   "log:\n  format: xml\n",
		"keep":     "audit:\n  keep: -1\n",
		"yaml":     "addr: [unterminated\n",
	}
	for name, body := range cases {
		_, err := Load(writeConfig(t, body))
		assert.Error(t, err, name)
	}

	_, err := Load(writeConfig(t, "geocodes:\n  variant: nested\n"))
	assert.True(t, errors.Is(err, ports.ErrUnknownVariant))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	c := Default()
	c.Log.Format = "json"
	c.Log.Level = "warn"

	log := c.NewLogger(&buf)
	log.Info("hidden")
	log.Warn("shown", "region", "us")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"region":"us"`)
}

func TestDump(t *testing.T) {
	out, err := Default().Dump()
	require.NoError(t, err)
	assert.Contains(t, out, "3111")
	assert.Contains(t, out, "variant: table")
}

func TestSetAssetsDir(t *testing.T) {
	c, err := Load(writeConfig(t, "geojson_dir: /srv/geo\n"))
	require.NoError(t, err)

	c.SetAssetsDir("data")
	assert.Equal(t, filepath.Join("data", "geo"), c.GeoJSONDir)
	assert.Equal(t, filepath.Join("data", "geocodes"), c.GeocodesDir)
}
