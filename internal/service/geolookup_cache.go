package service

import (
	"context"
	"time"

	"proxypool/internal/cache"
)

// CachedGeoLookup memoizes country resolutions behind a Cache so that
// proxies sharing an IP range, or re-crawled after eviction, don't repeat
// an external geolocation round trip within ttl.
type CachedGeoLookup struct {
	next GeoLookup
	c    cache.Cache
	ttl  time.Duration
}

// NewCachedGeoLookup wraps next with c, caching successful lookups for ttl.
func NewCachedGeoLookup(next GeoLookup, c cache.Cache, ttl time.Duration) *CachedGeoLookup {
	return &CachedGeoLookup{next: next, c: c, ttl: ttl}
}

func (g *CachedGeoLookup) Lookup(ctx context.Context, ip string) (string, error) {
	key := "geo:" + ip
	if cached, err := g.c.Get(ctx, key); err == nil {
		return string(cached), nil
	}

	country, err := g.next.Lookup(ctx, ip)
	if err != nil {
		return "", err
	}

	_ = g.c.Set(ctx, key, []byte(country), g.ttl)
	return country, nil
}
