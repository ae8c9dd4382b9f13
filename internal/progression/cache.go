package progression

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/stretchkit/progression/internal/domain"
)

// CacheSchemaVersion is the current version of the cache schema
// Increment this when the cached data structure changes to auto-invalidate old entries
const CacheSchemaVersion = "1.0"

// cachedProgressEntry wraps a document with version metadata for cache invalidation
type cachedProgressEntry struct {
	Version  string
	Doc      *domain.UserProgress
	CachedAt time.Time
}

// progressCache is a TTL'd LRU over loaded aggregates. It serves read-only
// status functions only; mutating operations always load fresh from the store
// and invalidate the entry on every successful write.
type progressCache struct {
	lru *expirable.LRU[string, *cachedProgressEntry]
}

func newProgressCache(size int, ttl time.Duration) *progressCache {
	return &progressCache{
		lru: expirable.NewLRU[string, *cachedProgressEntry](size, nil, ttl),
	}
}

// Get retrieves a cached document. Returns (nil, false) if absent, expired,
// or written under an older cache schema.
func (c *progressCache) Get(userID string) (*domain.UserProgress, bool) {
	entry, found := c.lru.Get(userID)
	if !found {
		return nil, false
	}
	if entry.Version != CacheSchemaVersion {
		c.lru.Remove(userID)
		return nil, false
	}
	return entry.Doc, true
}

// Set stores a document under the current schema version.
func (c *progressCache) Set(userID string, doc *domain.UserProgress) {
	c.lru.Add(userID, &cachedProgressEntry{
		Version:  CacheSchemaVersion,
		Doc:      doc,
		CachedAt: time.Now(),
	})
}

// Invalidate removes a user's entry.
func (c *progressCache) Invalidate(userID string) {
	c.lru.Remove(userID)
}
