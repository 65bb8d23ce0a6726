package console

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/jonathan-r-thorpe/nmos-js/internal/metrics"
	"github.com/jonathan-r-thorpe/nmos-js/internal/models"
)

// recordCache keeps fetched records for a short while so that switching tabs
// does not refetch, and coalesces concurrent fetches of the same key.
type recordCache struct {
	cache *cache.Cache
	group singleflight.Group
}

func newRecordCache(ttl time.Duration) *recordCache {
	return &recordCache{cache: cache.New(ttl, 2*ttl)}
}

func cacheKey(kind, queryAPI, resourceType, id string) string {
	return kind + "|" + queryAPI + "|" + resourceType + "|" + id
}

// get returns the cached record for key or calls fetch. Waiting callers give
// up when ctx ends; the fetch itself carries on for the others.
func (c *recordCache) get(ctx context.Context, key string, fetch func() (models.Resource, error)) (models.Resource, error) {
	if r, found := c.cache.Get(key); found {
		metrics.CacheHits.Inc()
		return r.(models.Resource), nil
	}
	metrics.CacheMisses.Inc()

	ch := c.group.DoChan(key, func() (interface{}, error) {
		r, err := fetch()
		if err != nil {
			return nil, err
		}
		c.cache.Set(key, r, cache.DefaultExpiration)
		return r, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(models.Resource), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *recordCache) invalidate(keys ...string) {
	for _, k := range keys {
		c.cache.Delete(k)
	}
}
