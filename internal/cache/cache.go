package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/dpup/prefab/errors"
	"github.com/dpup/prefab/logging"
)

// Cache provides thread-safe in-memory caching of JSON-serializable values with a TTL
type Cache struct {
	entries map[string]*Entry
	mutex   sync.RWMutex
	now     func() time.Time
}

// Entry represents a cached item with metadata
type Entry struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"data"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Source    string    `json:"source"`
}

// Stats provides cache usage statistics
type Stats struct {
	TotalEntries int
	FreshEntries int
	StaleEntries int
}

// NewCache creates a new in-memory cache
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]*Entry),
		now:     time.Now,
	}
}

// Set stores data under key until ttl elapses
func (c *Cache) Set(key string, data interface{}, ttl time.Duration, source string) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data for cache: %w", err)
	}

	now := c.now()
	entry := &Entry{
		Key:       key,
		Data:      jsonData,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		Source:    source,
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries[key] = entry
	return nil
}

// Get decodes a fresh entry into result and reports whether one was found
func (c *Cache) Get(key string, result interface{}) (bool, error) {
	c.mutex.RLock()
	entry, exists := c.entries[key]
	c.mutex.RUnlock()

	if !exists || c.now().After(entry.ExpiresAt) {
		return false, nil
	}

	if err := json.Unmarshal(entry.Data, result); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached data: %w", err)
	}
	return true, nil
}

// Delete removes an entry from cache
func (c *Cache) Delete(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.entries, key)
}

// Stats returns cache statistics
func (c *Cache) Stats() Stats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	now := c.now()
	stats := Stats{TotalEntries: len(c.entries)}
	for _, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			stats.StaleEntries++
		} else {
			stats.FreshEntries++
		}
	}
	return stats
}

// CleanupStale removes all stale entries from cache
func (c *Cache) CleanupStale() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	var removed int
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// StartPeriodicCleanup removes stale entries every interval until ctx is done
func (c *Cache) StartPeriodicCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		defer func() {
			// Recover from any panics in the cache cleanup goroutine
			if r := recover(); r != nil {
				err, _ := errors.ParseStack(debug.Stack())
				skipFrames := 3
				numFrames := 5
				logging.Errorw(ctx, "Cache cleanup: recovered from panic",
					"error", r, "error.stack_trace", err.MinimalStack(skipFrames, numFrames))
			}
		}()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := c.CleanupStale(); removed > 0 {
					logging.Debugw(ctx, "Cache cleanup: removed stale entries", "removed", removed)
				}
			}
		}
	}()
}
