package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// DefaultCacheTTL bounds document reuse when no TTL is configured.
const DefaultCacheTTL = 2 * time.Second

// Client fetches source documents through a short-lived byte cache.
// The cache exists to collapse refresh bursts, not to serve stale
// data: entries expire after the TTL and fetch errors are never
// cached, so a failing source fails every caller until it recovers.
type Client struct {
	cache  *ttlcache.Cache[string, []byte]
	logger *slog.Logger
}

// NewClient returns a client whose cache holds documents for ttl.
// Non-positive TTLs fall back to the default.
func NewClient(ttl time.Duration, logger *slog.Logger) *Client {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	cache := ttlcache.New[string, []byte](
		ttlcache.WithTTL[string, []byte](ttl),
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	)
	go cache.Start()
	return &Client{cache: cache, logger: logger}
}

// Fetch returns the source document, from cache when a fresh copy
// exists.
func (c *Client) Fetch(ctx context.Context, src Source) ([]byte, error) {
	key := src.Location()
	if item := c.cache.Get(key); item != nil {
		c.logger.Debug("datasource: cache hit", "source", key)
		return item.Value(), nil
	}

	data, err := src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, data, ttlcache.DefaultTTL)
	return data, nil
}

// FetchJSON fetches the source document and decodes it into dest.
// Undecodable documents are errors; a widget never renders from a
// half-parsed feed.
func (c *Client) FetchJSON(ctx context.Context, src Source, dest any) error {
	data, err := c.Fetch(ctx, src)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("datasource: decode %s: %w", src.Location(), err)
	}
	return nil
}

// Invalidate drops the cached copy of one location.
func (c *Client) Invalidate(location string) {
	c.cache.Delete(location)
}

// Close stops the cache's expiry loop.
func (c *Client) Close() {
	c.cache.Stop()
}
