package inkpost

import (
	"context"
	"sync"
	"time"
)

// PostCache is an in-memory cache of the post listing with TTL. Admin writes
// call Invalidate so readers never see a deleted or stale post for long.
type PostCache struct {
	mu      sync.RWMutex
	posts   []BlogPost
	loaded  bool
	fetched time.Time
	ttl     time.Duration
	store   *Store
}

// NewPostCache creates a PostCache backed by the given Store.
func NewPostCache(s *Store, ttl time.Duration) *PostCache {
	return &PostCache{store: s, ttl: ttl}
}

func (c *PostCache) valid() bool {
	return c.loaded && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.loaded = false
	c.mu.Unlock()
}

// ListPosts returns all posts, loading them from the store when the cache is
// empty or expired. It tries a read lock first and only takes the write lock
// when a reload is needed.
func (c *PostCache) ListPosts(ctx context.Context) ([]BlogPost, error) {
	c.mu.RLock()
	if c.valid() {
		posts := c.posts
		c.mu.RUnlock()
		return posts, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return c.posts, nil
	}
	posts, err := c.store.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	c.posts = posts
	c.loaded = true
	c.fetched = time.Now()
	return c.posts, nil
}
