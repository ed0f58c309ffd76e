// Package payload memoizes raw upstream responses in a key-value store.
package payload

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/dracor/internal/db"
)

// DefaultKeyPrefix namespaces memo keys in a shared backend.
const DefaultKeyPrefix = "dracor:payload:"

// store is the consumer interface for the payload memo (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Cache stores response bodies keyed by request URL and Accept header.
// Entries never expire; callers drop them with Invalidate or Purge.
type Cache struct {
	store      store
	prefix     string
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a payload memo over s.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), may be nil.
func New(s store, prefix string, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Cache {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		store:      s,
		prefix:     prefix,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Get returns the memoized body for url and accept.
// Backend failures are logged and reported as a miss.
func (c *Cache) Get(ctx context.Context, url, accept string) ([]byte, bool) {
	key := c.key(url, accept)
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached payload", zap.String("url", url), zap.Error(err))
		}
		c.inc("miss")
		return nil, false
	}
	c.inc("hit")
	return data, true
}

// Put memoizes body. Backend failures are logged and otherwise ignored.
func (c *Cache) Put(ctx context.Context, url, accept string, body []byte) {
	if err := c.store.Set(ctx, c.key(url, accept), body); err != nil {
		c.logger.Warn("Failed to cache payload", zap.String("url", url), zap.Error(err))
	}
}

// Invalidate drops every memoized representation of url.
func (c *Cache) Invalidate(ctx context.Context, url string) (int, error) {
	return c.deleteMatching(ctx, c.urlPrefix(url)+"*")
}

// Purge drops every entry under the cache prefix and returns the number removed.
func (c *Cache) Purge(ctx context.Context) (int, error) {
	return c.deleteMatching(ctx, c.prefix+"*")
}

// Ping checks the backend when it supports it.
func (c *Cache) Ping(ctx context.Context) error {
	if p, ok := c.store.(db.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (c *Cache) deleteMatching(ctx context.Context, pattern string) (int, error) {
	keys, err := c.store.Scan(ctx, pattern)
	if err != nil {
		return 0, fmt.Errorf("scan %s: %w", pattern, err)
	}
	for i, k := range keys {
		if err := c.store.Del(ctx, k); err != nil {
			return i, fmt.Errorf("delete %s: %w", k, err)
		}
	}
	return len(keys), nil
}

func (c *Cache) inc(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *Cache) urlPrefix(url string) string {
	h := sha256.Sum256([]byte(url))
	return c.prefix + hex.EncodeToString(h[:]) + ":"
}

func (c *Cache) key(url, accept string) string {
	h := sha256.Sum256([]byte(accept))
	return c.urlPrefix(url) + hex.EncodeToString(h[:8])
}
