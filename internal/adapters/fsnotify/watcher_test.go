package fsnotify

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitForCallback waits up to timeout for the callback channel to receive a value.
func waitForCallback(ch <-chan string, timeout time.Duration) (string, bool) {
	select {
	case v := <-ch:
		return v, true
	case <-time.After(timeout):
		return "", false
	}
}

// startWatcher watches dir and forwards callbacks to a buffered channel.
func startWatcher(t *testing.T, dir string) (*Watcher, chan string) {
	t.Helper()
	w, err := NewWatcher()
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })

	changed := make(chan string, 10)
	require.NoError(t, w.Watch(dir, func(path string) {
		changed <- path
	}))

	// Give watcher time to start
	time.Sleep(50 * time.Millisecond)
	return w, changed
}

func TestWatcher_DetectsGeocodeChange(t *testing.T) {
	dir := t.TempDir()
	codes := filepath.Join(dir, "us-codes.json")
	require.NoError(t, os.WriteFile(codes, []byte(`{}`), 0644))

	_, changed := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(codes, []byte(`{"US":{}}`), 0644))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for geocode change")
	assert.Equal(t, codes, path)
}

func TestWatcher_DetectsNewBoundaryInNewRegionDir(t *testing.T) {
	dir := t.TempDir()
	_, changed := startWatcher(t, dir)

	regionDir := filepath.Join(dir, "fr")
	require.NoError(t, os.Mkdir(regionDir, 0755))

	path, ok := waitForCallback(changed, 2*time.Second)
	require.True(t, ok, "expected callback for new region dir")
	assert.Equal(t, regionDir, path)

	// The new directory is now watched too.
	time.Sleep(50 * time.Millisecond)
	geo := filepath.Join(regionDir, "fr.geo.json")
	require.NoError(t, os.WriteFile(geo, []byte(`{}`), 0644))

	path, ok = waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for boundary file")
	assert.Equal(t, geo, path)
}

func TestWatcher_DetectsDeletedFile(t *testing.T) {
	dir := t.TempDir()
	codes := filepath.Join(dir, "eu-codes.json")
	require.NoError(t, os.WriteFile(codes, []byte(`{}`), 0644))

	_, changed := startWatcher(t, dir)

	require.NoError(t, os.Remove(codes))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for deleted file")
	assert.Equal(t, codes, path)
}

func TestWatcher_IgnoresNonAssetFiles(t *testing.T) {
	dir := t.TempDir()
	gitDir := filepath.Join(dir, ".git")
	require.NoError(t, os.MkdirAll(gitDir, 0755))

	_, changed := startWatcher(t, dir)

	os.WriteFile(filepath.Join(gitDir, "HEAD.json"), []byte("ref"), 0644)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, ".DS_Store"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "us-codes.json.swp"), []byte("x"), 0644)

	_, ok := waitForCallback(changed, 500*time.Millisecond)
	assert.False(t, ok, "should not have received callback for ignored files")

	codes := filepath.Join(dir, "ca-codes.json")
	require.NoError(t, os.WriteFile(codes, []byte(`{}`), 0644))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for asset file")
	assert.Equal(t, codes, path)
}

func TestWatcher_IgnoredNameAboveRootStillWatched(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scripts", "geonovis", "assets")
	require.NoError(t, os.MkdirAll(dir, 0755))

	_, changed := startWatcher(t, dir)

	codes := filepath.Join(dir, "us-codes.json")
	require.NoError(t, os.WriteFile(codes, []byte(`{}`), 0644))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback below a directory named scripts")
	assert.Equal(t, codes, path)
}

func TestShouldIgnorePath_RelativeToRoot(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "home", "u", "scripts", "assets")

	assert.False(t, shouldIgnorePath(root, filepath.Join(root, "us-codes.json")))
	assert.False(t, shouldIgnorePath(root, filepath.Join(root, "geo", "us", "us.geo.json")))
	assert.True(t, shouldIgnorePath(root, filepath.Join(root, ".git", "x.json")))
	assert.True(t, shouldIgnorePath(root, filepath.Join(root, "geo", "scripts", "x.json")))
	assert.True(t, shouldIgnorePath(root, filepath.Join(root, "us-codes.json.swp")))
}

func TestWatcher_MissingDir(t *testing.T) {
	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Stop()

	err = w.Watch(filepath.Join(t.TempDir(), "absent"), func(string) {})
	assert.Error(t, err)
}

func TestWatcher_StopCleanup(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWatcher()
	require.NoError(t, err)

	callCount := 0
	var mu sync.Mutex
	err = w.Watch(dir, func(path string) {
		mu.Lock()
		callCount++
		mu.Unlock()
	})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	require.NoError(t, w.Stop())

	mu.Lock()
	countAfterStop := callCount
	mu.Unlock()

	os.WriteFile(filepath.Join(dir, "after-codes.json"), []byte(`{}`), 0644)
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	countAfterWrite := callCount
	mu.Unlock()

	assert.Equal(t, countAfterStop, countAfterWrite, "callbacks fired after Stop()")

	// Double-stop should be safe
	assert.NoError(t, w.Stop())
}
