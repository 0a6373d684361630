package llm

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Cache stores completion results keyed by a content hash of the request.
// Greedy decoding is deterministic, so a cached result is exact, not
// approximate.
type Cache interface {
	Get(key string) (*Result, bool)
	Set(key string, result *Result)
	Stats() CacheStats
}

// CacheStats holds cache hit/miss counters.
type CacheStats struct {
	Hits   int64
	Misses int64
}

// CacheKey derives a stable cache key from the model, prompt and options.
func CacheKey(model, prompt string, options *Options) string {
	payload := struct {
		Model   string   `json:"model"`
		Prompt  string   `json:"prompt"`
		Options *Options `json:"options"`
	}{
		Model:   model,
		Prompt:  prompt,
		Options: options,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("%s:%s", model, prompt)
	}
	return fmt.Sprintf("%x", sha256.Sum256(data))
}

// DiskCache persists completion results as JSON files in a directory, one
// file per key. Safe for concurrent use, though the batch driver is
// strictly sequential.
type DiskCache struct {
	dir    string
	mu     sync.Mutex
	hits   int64
	misses int64
}

// NewDiskCache creates (or reuses) the cache directory.
func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// Get retrieves a cached result by key.
func (c *DiskCache) Get(key string) (*Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path(key))
	if err != nil {
		c.misses++
		return nil, false
	}
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		// Unreadable entry: treat as a miss so it gets rewritten.
		c.misses++
		return nil, false
	}
	c.hits++
	return &result, true
}

// Set stores a result in the cache. Write failures are swallowed: the
// cache is an optimization, never a correctness dependency.
func (c *DiskCache) Set(key string, result *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	tmp := c.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return
	}
	_ = os.Rename(tmp, c.path(key))
}

// Stats returns hit/miss counters for the run summary.
func (c *DiskCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Hits: c.hits, Misses: c.misses}
}
