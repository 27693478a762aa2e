// File: internal/session/file_cache.go
package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// fileCache persists session state to a single JSON file, the durable local
// storage of the embedded backend. A corrupt or unreadable file reads as
// empty and is overwritten by the next successful write.
type fileCache struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewFileCache creates a file-backed session cache at path.
func NewFileCache(path string, logger *zap.Logger) Cache {
	return &fileCache{path: path, logger: logger.Named("SessionFileCache")}
}

// load reads the whole cache file. Any read or parse failure yields an empty
// map: fail open to logged-out.
func (c *fileCache) load() map[string]State {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("Session cache file unreadable, treating as empty", zap.Error(err))
		}
		return map[string]State{}
	}
	var entries map[string]State
	if err := json.Unmarshal(raw, &entries); err != nil {
		c.logger.Warn("Session cache file corrupt, treating as empty", zap.Error(err))
		return map[string]State{}
	}
	return entries
}

// store writes the cache file atomically via a temp file and rename, so a
// reader never observes a partially written state.
func (c *fileCache) store(entries map[string]State) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(c.path), ".session-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, c.path)
}

func (c *fileCache) Get(_ context.Context, handle string) (*State, error) {
	if handle == "" {
		return nil, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entries := c.load()
	st, ok := entries[handle]
	if !ok {
		return nil, nil
	}
	if !st.ExpiresAt.IsZero() && time.Now().After(st.ExpiresAt) {
		return nil, nil
	}
	return &st, nil
}

func (c *fileCache) Set(_ context.Context, state *State) error {
	if state == nil || state.Handle == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entries := c.load()
	entries[state.Handle] = *state
	return c.store(entries)
}

func (c *fileCache) Clear(_ context.Context, handle string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries := c.load()
	if _, ok := entries[handle]; !ok {
		return nil
	}
	delete(entries, handle)
	return c.store(entries)
}

func (c *fileCache) PurgeExpired(_ context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries := c.load()
	now := time.Now()
	purged := 0
	for handle, st := range entries {
		if !st.ExpiresAt.IsZero() && now.After(st.ExpiresAt) {
			delete(entries, handle)
			purged++
		}
	}
	if purged == 0 {
		return 0, nil
	}
	return purged, c.store(entries)
}
