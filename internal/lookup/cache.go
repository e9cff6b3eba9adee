package lookup

import (
	"context"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedResolver memoizes successful lookups by normalized display name.
// It is safe for concurrent use.
type CachedResolver struct {
	next  Resolver
	cache *lru.Cache[string, string]
}

// NewCachedResolver wraps next with an LRU cache holding size entries.
func NewCachedResolver(next Resolver, size int) (*CachedResolver, error) {
	if size <= 0 {
		size = 128
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("creating lookup cache: %w", err)
	}
	return &CachedResolver{next: next, cache: cache}, nil
}

func (c *CachedResolver) Resolve(ctx context.Context, displayName string) (string, error) {
	key := strings.ToLower(strings.Join(strings.Fields(displayName), " "))
	if v, ok := c.cache.Get(key); ok {
		return v, nil
	}
	v, err := c.next.Resolve(ctx, displayName)
	if err != nil {
		return "", err
	}
	c.cache.Add(key, v)
	return v, nil
}

// Len reports the number of cached names.
func (c *CachedResolver) Len() int {
	return c.cache.Len()
}
