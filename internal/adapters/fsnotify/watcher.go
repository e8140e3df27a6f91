// Package fsnotify implements the ports.Watcher interface using github.com/fsnotify/fsnotify.
// It recursively watches the assets directory, reports only asset files
// (.json) and region directories, and debounces rapid events (editors and
// rsync often trigger multiple writes per file).
package fsnotify

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Directories to ignore when watching.
var ignoreDirs = map[string]bool{
	".git":      true,
	".geonovis": true,
	"scripts":   true,
}

// File suffixes to ignore.
var ignoreFiles = map[string]bool{
	".DS_Store": true,
	".swp":      true,
	".tmp":      true,
	"~":         true,
}

// assetSuffix is the only file suffix that triggers onChange.
const assetSuffix = ".json"

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	fw      *fsnotify.Watcher
	done    chan struct{}
	stopped bool
	mu      sync.Mutex
}

// NewWatcher creates a new file system watcher.
func NewWatcher() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fw:   fw,
		done: make(chan struct{}),
	}, nil
}

// Watch starts monitoring dir recursively.
// onChange is called with the absolute path of each changed asset.
func (w *Watcher) Watch(dir string, onChange func(filePath string)) error {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if _, err := os.Stat(absPath); err != nil {
		return err
	}

	err = filepath.Walk(absPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip inaccessible paths
		}
		if info.IsDir() {
			if shouldIgnoreDir(info.Name()) && path != absPath {
				return filepath.SkipDir
			}
			return w.fw.Add(path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	debounce := make(map[string]time.Time)
	const debounceInterval = 50 * time.Millisecond

	go func() {
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				path := event.Name

				// New region directories need their own watch.
				isDir := false
				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(path); err == nil && info.IsDir() {
						isDir = true
						if !shouldIgnoreDir(info.Name()) {
							w.fw.Add(path)
						}
					}
				}

				if shouldIgnorePath(absPath, path) {
					continue
				}
				if !isAsset(path) && !isDir && !isRemoval(event) {
					continue
				}

				last, exists := debounce[path]
				now := time.Now()
				if exists && now.Sub(last) < debounceInterval {
					continue
				}
				debounce[path] = now

				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
					event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					onChange(path)
				}

			case _, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				// Errors are swallowed; fsnotify recovers automatically

			case <-w.done:
				return
			}
		}
	}()

	return nil
}

// Stop ends monitoring and releases all resources.
// Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.done)
	return w.fw.Close()
}

// shouldIgnoreDir returns true if the directory name should be skipped.
func shouldIgnoreDir(name string) bool {
	return ignoreDirs[name]
}

// shouldIgnorePath returns true if the path should not trigger onChange.
// Only components below root are matched against ignoreDirs.
func shouldIgnorePath(root, path string) bool {
	base := filepath.Base(path)

	if ignoreFiles[base] || strings.HasPrefix(base, ".#") {
		return true
	}
	for suffix := range ignoreFiles {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if ignoreDirs[part] {
			return true
		}
	}

	return false
}

func isAsset(path string) bool {
	return strings.HasSuffix(path, assetSuffix)
}

// isRemoval covers deleted region directories, which can no longer be stat'ed.
func isRemoval(event fsnotify.Event) bool {
	return (event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)) &&
		filepath.Ext(event.Name) == ""
}
