package studio

import (
	"context"
	"sync"
	"time"

	"github.com/otpstudio/studio-server-go/internal/model"
)

// PostsCache holds the panel's snapshot of the post list. The snapshot is
// fresh for the TTL after the last refresh; a forced call always goes to
// the source. The fetch timestamp strictly increases across refreshes, so
// a caller can assert that a mutation was followed by a newer snapshot.
type PostsCache struct {
	mu        sync.Mutex
	posts     []model.Post
	fetchedAt time.Time
	ttl       time.Duration
	now       func() time.Time
}

func NewPostsCache(ttl time.Duration) *PostsCache {
	return &PostsCache{
		ttl: ttl,
		now: time.Now,
	}
}

// GetOrRefresh returns the cached snapshot when it is fresh and force is
// false; otherwise it calls refresh and replaces the snapshot. A failed
// refresh leaves the old snapshot and timestamp untouched and returns the
// error. Overlapping refreshes keep last-writer-wins semantics: the
// later-completing refresh's snapshot sticks.
func (c *PostsCache) GetOrRefresh(ctx context.Context, force bool, refresh func(ctx context.Context) ([]model.Post, error)) ([]model.Post, error) {
	c.mu.Lock()
	if !force && !c.fetchedAt.IsZero() && c.now().Sub(c.fetchedAt) < c.ttl {
		snapshot := c.posts
		c.mu.Unlock()
		return snapshot, nil
	}
	c.mu.Unlock()

	posts, err := refresh(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.posts = posts
	c.fetchedAt = c.now()
	c.mu.Unlock()

	return posts, nil
}

// Invalidate forgets the snapshot so the next call refreshes.
func (c *PostsCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.posts = nil
	c.fetchedAt = time.Time{}
}

func (c *PostsCache) LastFetchAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetchedAt
}
