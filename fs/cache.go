// Package fs provides the file-based initiative cache.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fwojciec/initbot"
)

// Ensure Cache implements initbot.InitiativeService at compile time.
var _ initbot.InitiativeService = (*Cache)(nil)

// cacheFile is the on-disk layout of the cache.
type cacheFile struct {
	Timestamp   time.Time                      `json:"timestamp"`
	Initiatives map[string]*initbot.Initiative `json:"initiatives"`
}

// Cache implements initbot.InitiativeService on a single JSON file.
// Every write replaces the file atomically: the new content is written to
// a temporary file next to it and renamed over the old one.
// A Cache with an empty path keeps its records in memory only.
type Cache struct {
	mu          sync.RWMutex
	path        string
	timestamp   time.Time
	initiatives map[string]*initbot.Initiative

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewCache creates a cache backed by the file at path.
// Call Open to load existing records.
func NewCache(path string) *Cache {
	return &Cache{
		path:        path,
		initiatives: make(map[string]*initbot.Initiative),
		Now:         time.Now,
	}
}

// Path returns the cache file path.
func (c *Cache) Path() string { return c.path }

// Open loads the cache file. A missing file yields an empty cache.
// A file that cannot be decoded is an error.
func (c *Cache) Open() error {
	if c.path == "" {
		return nil
	}

	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	} else if err != nil {
		return fmt.Errorf("read cache: %w", err)
	}

	var f cacheFile
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("decode cache %s: %w", c.path, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.timestamp = f.Timestamp
	c.initiatives = make(map[string]*initbot.Initiative, len(f.Initiatives))
	for id, i := range f.Initiatives {
		if i == nil {
			continue
		}
		i.ID = id
		c.initiatives[id] = i
	}
	return nil
}

// Close releases the cache. Every write is already on disk.
func (c *Cache) Close() error {
	return nil
}

// Timestamp returns the time of the last write to the cache file.
func (c *Cache) Timestamp() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.timestamp
}

func (c *Cache) UpsertInitiative(ctx context.Context, initiative *initbot.Initiative) error {
	return c.UpsertInitiatives(ctx, []*initbot.Initiative{initiative})
}

func (c *Cache) UpsertInitiatives(ctx context.Context, initiatives []*initbot.Initiative) error {
	for _, i := range initiatives {
		if err := i.Validate(); err != nil {
			return err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.snapshot()
	for _, i := range initiatives {
		next[i.ID] = i.Clone()
	}
	return c.commit(ctx, next)
}

func (c *Cache) FindInitiativeByID(ctx context.Context, id string) (*initbot.Initiative, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.initiatives[id]
	if !ok {
		return nil, initbot.Errorf(initbot.ENOTFOUND, "initiative not found")
	}
	return i.Clone(), nil
}

func (c *Cache) FindInitiatives(ctx context.Context, filter initbot.InitiativeFilter) ([]*initbot.Initiative, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]*initbot.Initiative, 0, len(c.initiatives))
	for _, i := range c.initiatives {
		if filter.Match(i) {
			result = append(result, i.Clone())
		}
	}
	sort.Slice(result, func(a, b int) bool {
		if result[a].Position != result[b].Position {
			return result[a].Position < result[b].Position
		}
		return result[a].ID < result[b].ID
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []*initbot.Initiative{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (c *Cache) UpdateInitiative(ctx context.Context, id string, upd initbot.InitiativeUpdate) (*initbot.Initiative, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, ok := c.initiatives[id]
	if !ok {
		return nil, initbot.Errorf(initbot.ENOTFOUND, "initiative not found")
	}

	updated := existing.Clone()
	upd.Apply(updated)

	next := c.snapshot()
	next[id] = updated
	if err := c.commit(ctx, next); err != nil {
		return nil, err
	}
	return updated.Clone(), nil
}

func (c *Cache) DeleteInitiative(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.initiatives[id]; !ok {
		return initbot.Errorf(initbot.ENOTFOUND, "initiative not found")
	}

	next := c.snapshot()
	delete(next, id)
	return c.commit(ctx, next)
}

func (c *Cache) LastFetched(ctx context.Context) (time.Time, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var latest time.Time
	for _, i := range c.initiatives {
		if i.FetchedAt.After(latest) {
			latest = i.FetchedAt
		}
	}
	return latest, nil
}

// snapshot returns a shallow copy of the record map. Caller must hold mu.
func (c *Cache) snapshot() map[string]*initbot.Initiative {
	next := make(map[string]*initbot.Initiative, len(c.initiatives)+1)
	for id, i := range c.initiatives {
		next[id] = i
	}
	return next
}

// commit writes next to disk and makes it the current state.
// The in-memory state is left untouched if the write fails. Caller must hold mu.
func (c *Cache) commit(ctx context.Context, next map[string]*initbot.Initiative) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := c.Now().UTC()
	if err := c.write(&cacheFile{Timestamp: now, Initiatives: next}); err != nil {
		return err
	}
	c.timestamp = now
	c.initiatives = next
	return nil
}

func (c *Cache) write(f *cacheFile) error {
	if c.path == "" {
		return nil
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	// Each write gets its own temp file, then replaces the cache in one rename.
	tmp, err := os.CreateTemp(filepath.Dir(c.path), "."+filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cache: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write cache: %w", err)
	}
	if err := tmp.Chmod(0644); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace cache: %w", err)
	}
	return nil
}
