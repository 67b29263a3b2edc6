package match

import (
	"strings"
	"sync"
)

const (
	// defaultCacheLimit bounds the number of cached match results.
	defaultCacheLimit = 200

	// cacheKeyChars is how much of the query forms the cache key.
	cacheKeyChars = 100
)

// cachedResult is the stored outcome of one match call.
type cachedResult struct {
	Matched bool
	Answer  string
}

// resultCache is a bounded cache of match results keyed by normalized
// query prefix. Eviction drops the oldest 20% of entries by insertion
// order in one pass once the limit is exceeded; re-accessed entries are
// not promoted. Not true LRU, intentionally: the eviction order is part
// of the observable behavior.
type resultCache struct {
	mu      sync.Mutex
	entries map[string]cachedResult
	order   []string // insertion order, oldest first
	limit   int
}

func newResultCache(limit int) *resultCache {
	if limit <= 0 {
		limit = defaultCacheLimit
	}
	return &resultCache{
		entries: make(map[string]cachedResult),
		limit:   limit,
	}
}

// cacheKey normalizes a query to its first cacheKeyChars characters,
// trimmed and case-folded.
func cacheKey(query string) string {
	return strings.ToLower(strings.TrimSpace(truncateRunes(query, cacheKeyChars)))
}

func (c *resultCache) get(key string) (cachedResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.entries[key]
	return r, ok
}

func (c *resultCache) put(key string, r cachedResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) > c.limit {
		remove := c.limit / 5
		if remove == 0 {
			remove = 1
		}
		for _, old := range c.order[:remove] {
			delete(c.entries, old)
		}
		c.order = append([]string(nil), c.order[remove:]...)
	}

	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = r
}

func (c *resultCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
