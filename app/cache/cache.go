// Package cache holds loaded survey datasets and query results under one
// size budget with LRU eviction. Dataset entries are validated against
// their source files' modification times on every hit, so editing the data
// or codebook on disk transparently forces a reload.
package cache

import (
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Cache is safe for concurrent use.
type Cache struct {
	queries  map[string]*QueryEntry
	datasets map[string]*DatasetEntry

	maxSize     int64
	currentSize int64
	lru         *lruList
	mutex       sync.RWMutex

	queryHits   int64
	datasetHits int64
	misses      int64
}

// New creates a cache with the given byte budget; non-positive means the
// default.
func New(maxSize int64) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Cache{
		queries:  make(map[string]*QueryEntry),
		datasets: make(map[string]*DatasetEntry),
		maxSize:  maxSize,
		lru:      newLRUList(),
	}
}

// GetQuery retrieves a cached query payload and marks it recently used.
func (c *Cache) GetQuery(key string) ([]byte, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.queries[key]
	if !exists {
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}

	atomic.AddInt64(&c.queryHits, 1)
	entry.AccessTime = time.Now().Unix()
	c.lru.Touch(key)
	return entry.Payload, true
}

// StoreQuery caches a query payload, evicting older entries as needed.
// Oversized payloads are rejected rather than blowing the budget.
func (c *Cache) StoreQuery(key string, payload []byte) {
	size := int64(len(payload)) + int64(len(key)) + 64

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if size > c.maxSize {
		log.Printf("[CACHE_REJECT] Query entry too large: %d bytes > %d cache limit", size, c.maxSize)
		return
	}

	if existing, exists := c.queries[key]; exists {
		c.currentSize -= existing.Size
		c.lru.Remove(key)
	}

	if !c.evictToMakeSpace(size) {
		log.Printf("[CACHE_REJECT] Could not make space for query entry: %d bytes needed, %d available",
			size, c.maxSize-c.currentSize)
		return
	}

	c.queries[key] = &QueryEntry{
		Payload:    payload,
		Size:       size,
		AccessTime: time.Now().Unix(),
		CreateTime: time.Now(),
	}
	c.currentSize += size
	c.lru.Touch(key)

	log.Printf("[CACHE_STORE_QUERY] Key: %s, Size: %d bytes, Total Cache: %d/%d bytes",
		key, size, c.currentSize, c.maxSize)
}

// GetDataset retrieves a cached dataset and validates that none of its
// source files changed on disk. A stale or orphaned entry is dropped and
// reported as a miss.
func (c *Cache) GetDataset(key string) (*DatasetEntry, bool) {
	c.mutex.RLock()
	entry, exists := c.datasets[key]
	c.mutex.RUnlock()

	if !exists {
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}

	for path, modTime := range entry.ModTimes {
		info, err := os.Stat(path)
		if err != nil || !info.ModTime().Equal(modTime) {
			log.Printf("[CACHE_INVALIDATE_DATASET] Source changed: %s (dataset %s)", path, entry.ID)
			c.RemoveDataset(key)
			atomic.AddInt64(&c.misses, 1)
			return nil, false
		}
	}

	c.mutex.Lock()
	entry.AccessTime = time.Now().Unix()
	c.lru.Touch(key)
	c.mutex.Unlock()

	atomic.AddInt64(&c.datasetHits, 1)
	log.Printf("[CACHE_HIT_DATASET] Key: %s, Dataset: %s, Rows: %d", key, entry.ID, entry.Table.RowCount())
	return entry, true
}

// StoreDataset caches a loaded dataset under a fresh dataset ID and
// returns the entry. sourcePaths are stat'd for invalidation; paths that
// do not exist (an optional codebook) are skipped.
func (c *Cache) StoreDataset(key string, entry DatasetEntry, sourcePaths ...string) *DatasetEntry {
	entry.ID = uuid.NewString()
	entry.ModTimes = make(map[string]time.Time, len(sourcePaths))
	for _, path := range sourcePaths {
		if path == "" {
			continue
		}
		if info, err := os.Stat(path); err == nil {
			entry.ModTimes[path] = info.ModTime()
		}
	}
	if entry.Size <= 0 {
		entry.Size = entry.Table.MemoryFootprint()
	}
	entry.AccessTime = time.Now().Unix()
	entry.CreateTime = time.Now()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if entry.Size > c.maxSize {
		log.Printf("[CACHE_REJECT_DATASET] Entry too large: %d bytes > %d cache limit", entry.Size, c.maxSize)
		return &entry
	}

	if existing, exists := c.datasets[key]; exists {
		c.currentSize -= existing.Size
		c.lru.Remove(key)
	}

	if !c.evictToMakeSpace(entry.Size) {
		log.Printf("[CACHE_REJECT_DATASET] Could not make space: %d bytes needed, %d available",
			entry.Size, c.maxSize-c.currentSize)
		return &entry
	}

	c.datasets[key] = &entry
	c.currentSize += entry.Size
	c.lru.Touch(key)

	log.Printf("[CACHE_STORE_DATASET] Key: %s, Dataset: %s, Rows: %d, Size: %d bytes, Total Cache: %d/%d bytes",
		key, entry.ID, entry.Table.RowCount(), entry.Size, c.currentSize, c.maxSize)
	return &entry
}

// RemoveDataset drops a dataset entry and every query result derived
// from it.
func (c *Cache) RemoveDataset(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.datasets[key]
	if !exists {
		return
	}
	delete(c.datasets, key)
	c.currentSize -= entry.Size
	c.lru.Remove(key)

	for queryKey, queryEntry := range c.queries {
		if DatasetIDFromKey(queryKey) == entry.ID {
			delete(c.queries, queryKey)
			c.currentSize -= queryEntry.Size
			c.lru.Remove(queryKey)
		}
	}
}

// Clear drops everything.
func (c *Cache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.queries = make(map[string]*QueryEntry)
	c.datasets = make(map[string]*DatasetEntry)
	c.currentSize = 0
	c.lru = newLRUList()
}

// Size returns the current occupancy in bytes.
func (c *Cache) Size() int64 {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.currentSize
}

// MaxSize returns the byte budget.
func (c *Cache) MaxSize() int64 {
	return c.maxSize
}

// UpdateMaxSize changes the budget, evicting down to it if shrunk.
func (c *Cache) UpdateMaxSize(newMaxSize int64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if newMaxSize <= 0 {
		newMaxSize = DefaultMaxSize
	}
	log.Printf("[CACHE_RESIZE] Cache budget updated from %d to %d bytes", c.maxSize, newMaxSize)
	c.maxSize = newMaxSize

	evicted := 0
	for c.currentSize > c.maxSize && c.lru.Len() > 0 {
		if c.removeOldestLocked() {
			evicted++
		}
	}
	if evicted > 0 {
		log.Printf("[CACHE_RESIZE_EVICT] Evicted %d entries, Final Cache: %d/%d bytes",
			evicted, c.currentSize, c.maxSize)
	}
}

// GetStats returns a statistics snapshot.
func (c *Cache) GetStats() Stats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	stats := Stats{
		QueryEntries:   len(c.queries),
		DatasetEntries: len(c.datasets),
		TotalSize:      c.currentSize,
		MaxSize:        c.maxSize,
		UsagePercent:   float64(c.currentSize) / float64(c.maxSize) * 100,
		QueryHits:      atomic.LoadInt64(&c.queryHits),
		DatasetHits:    atomic.LoadInt64(&c.datasetHits),
		Misses:         atomic.LoadInt64(&c.misses),
		OpStats:        make(map[string]OpStats),
	}

	total := stats.QueryHits + stats.DatasetHits + stats.Misses
	if total > 0 {
		stats.HitRate = float64(stats.QueryHits+stats.DatasetHits) / float64(total)
	}

	for key, entry := range c.queries {
		if op := ExtractOp(key); op != "" {
			opStats := stats.OpStats[op]
			opStats.EntryCount++
			opStats.TotalSize += entry.Size
			stats.OpStats[op] = opStats
		}
	}
	return stats
}

// evictToMakeSpace removes LRU entries until neededSize fits. Caller holds
// the write lock.
func (c *Cache) evictToMakeSpace(neededSize int64) bool {
	if neededSize > c.maxSize {
		return false
	}
	for c.currentSize+neededSize > c.maxSize {
		if c.lru.Len() == 0 {
			return c.currentSize+neededSize <= c.maxSize
		}
		c.removeOldestLocked()
	}
	return true
}

// removeOldestLocked evicts the LRU entry from whichever map holds it.
func (c *Cache) removeOldestLocked() bool {
	oldestKey := c.lru.RemoveOldest()
	if oldestKey == "" {
		return false
	}
	if entry, exists := c.queries[oldestKey]; exists {
		delete(c.queries, oldestKey)
		c.currentSize -= entry.Size
		log.Printf("[CACHE_EVICT] Evicted query entry: %s (%d bytes)", oldestKey, entry.Size)
		return true
	}
	if entry, exists := c.datasets[oldestKey]; exists {
		delete(c.datasets, oldestKey)
		c.currentSize -= entry.Size
		log.Printf("[CACHE_EVICT] Evicted dataset: %s (%d bytes)", oldestKey, entry.Size)
		return true
	}
	return false
}
