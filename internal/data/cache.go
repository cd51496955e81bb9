package data

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"pv-battery-sim/internal/metrics"
)

// CacheEntry is a cached merged dataset.
type CacheEntry struct {
	Dataset   *Dataset
	ExpiresAt time.Time
}

// DatasetCache keeps merged datasets in memory so repeated runs against the
// same source files skip parsing. It is owned by the caller; nothing in the
// dispatch engine reads it.
type DatasetCache struct {
	mu    sync.RWMutex
	store map[string]*CacheEntry
	ttl   time.Duration
	now   func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

// NewDatasetCache creates a cache. A ttl of 0 keeps entries forever.
func NewDatasetCache(ttl time.Duration) *DatasetCache {
	return &DatasetCache{
		store: make(map[string]*CacheEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get retrieves a cached dataset if available and not expired.
func (c *DatasetCache) Get(key string) (*Dataset, bool) {
	if c == nil {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.store[key]
	if !exists || c.expired(entry) {
		c.misses.Add(1)
		metrics.ObserveCacheLookup(false)
		return nil, false
	}
	c.hits.Add(1)
	metrics.ObserveCacheLookup(true)
	return entry.Dataset, true
}

// Set stores a dataset in the cache.
func (c *DatasetCache) Set(key string, ds *Dataset) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &CacheEntry{Dataset: ds}
	if c.ttl > 0 {
		entry.ExpiresAt = c.now().Add(c.ttl)
	}
	c.store[key] = entry
}

// Clear removes all entries from the cache.
func (c *DatasetCache) Clear() {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store = make(map[string]*CacheEntry)
}

// Len returns the number of entries, expired ones included.
func (c *DatasetCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Stats returns the number of lookups that hit and missed.
func (c *DatasetCache) Stats() (hits, misses int64) {
	if c == nil {
		return 0, 0
	}
	return c.hits.Load(), c.misses.Load()
}

// Prune removes expired entries.
func (c *DatasetCache) Prune() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.store {
		if c.expired(entry) {
			delete(c.store, key)
		}
	}
}

// RunCleanup prunes expired entries every interval until ctx is done.
func (c *DatasetCache) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Prune()
		}
	}
}

func (c *DatasetCache) expired(e *CacheEntry) bool {
	return !e.ExpiresAt.IsZero() && c.now().After(e.ExpiresAt)
}

// GenerateCacheKey creates a cache key from the sources. File sizes and
// modification times are part of the key, so edited files miss the cache.
func GenerateCacheKey(src Sources) string {
	orients := append([]OrientationSource(nil), src.Orientations...)
	sort.Slice(orients, func(i, j int) bool { return orients[i].Name < orients[j].Name })

	var b strings.Builder
	for _, o := range orients {
		fmt.Fprintf(&b, "pv:%s:%s:%s|", o.Name, o.PVGISFile, fileStamp(o.PVGISFile))
	}
	fmt.Fprintf(&b, "household:%s:%s:%s|", src.HouseholdCSV, src.HouseholdColumn, fileStamp(src.HouseholdCSV))
	fmt.Fprintf(&b, "profile:%d|years:%d-%d|", src.ProfileYear, src.FirstYear, src.LastYear)
	if src.Location != nil {
		fmt.Fprintf(&b, "tz:%s", src.Location.String())
	}

	hash := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(hash[:])
}

func fileStamp(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "missing"
	}
	return fmt.Sprintf("%d-%d", info.Size(), info.ModTime().UnixNano())
}
