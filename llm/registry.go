package llm

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Registry tracks loaded backend profiles and supports hot reloading when
// profile files change on disk.
type Registry struct {
	dir     string
	mu      sync.RWMutex
	configs map[string]BackendConfig
	watchCh []chan struct{}
	watcher *fsnotify.Watcher
	loaded  time.Time
}

// NewRegistry builds an empty registry rooted at the profile directory.
func NewRegistry(dir string) *Registry {
	return &Registry{
		dir:     dir,
		configs: make(map[string]BackendConfig),
	}
}

// Load scans the profile directory for *.config files. A missing directory is
// not an error; the registry simply stays empty and lookups fall back to
// default profiles.
func (r *Registry) Load() error {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			entries = nil
		} else {
			return err
		}
	}
	configs := make(map[string]BackendConfig)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".config") {
			continue
		}
		path := filepath.Join(r.dir, entry.Name())
		if cfg, err := LoadProfile(path); err == nil {
			configs[cfg.Model] = cfg
		}
	}
	r.mu.Lock()
	r.configs = configs
	r.loaded = time.Now()
	r.mu.Unlock()
	r.broadcast()
	return nil
}

// Lookup returns the profile for a model. Unknown models get the default
// profile so a missing file never blocks a generation turn.
func (r *Registry) Lookup(model string) (BackendConfig, bool) {
	r.mu.RLock()
	cfg, ok := r.configs[model]
	r.mu.RUnlock()
	if !ok {
		return DefaultProfile(model), false
	}
	return cfg, true
}

// Models lists configured model names in sorted order.
func (r *Registry) Models() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.configs))
	for name := range r.configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Watch registers a listener notified after every reload.
func (r *Registry) Watch() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch := make(chan struct{}, 1)
	r.watchCh = append(r.watchCh, ch)
	return ch
}

func (r *Registry) broadcast() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, ch := range r.watchCh {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// StartWatcher reloads profiles whenever the directory changes. It is a no-op
// when the directory does not exist yet.
func (r *Registry) StartWatcher(ctx context.Context) error {
	if _, err := os.Stat(r.dir); err != nil {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(r.dir); err != nil {
		watcher.Close()
		return err
	}
	r.mu.Lock()
	r.watcher = watcher
	r.mu.Unlock()
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				if !strings.HasSuffix(event.Name, ".config") {
					continue
				}
				_ = r.Load()
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return nil
}

// Close stops the filesystem watcher when one is running.
func (r *Registry) Close() error {
	r.mu.Lock()
	watcher := r.watcher
	r.watcher = nil
	r.mu.Unlock()
	if watcher != nil {
		return watcher.Close()
	}
	return nil
}
