package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/electrokart/electrokart_api/internal/models"
)

const catalogVersionKey = "catalog:version"

// CatalogCache caches catalog reads in Redis. Every entry key embeds the
// current catalog version, so bumping the version invalidates all entries at
// once and stale ones simply expire.
type CatalogCache struct {
	redis *RedisClient
	ttl   time.Duration
}

// NewCatalogCache creates a new CatalogCache.
func NewCatalogCache(redis *RedisClient, ttl time.Duration) *CatalogCache {
	return &CatalogCache{redis: redis, ttl: ttl}
}

func (c *CatalogCache) version(ctx context.Context) (int64, error) {
	raw, err := c.redis.Get(ctx, catalogVersionKey)
	if IsMiss(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}

// key returns the versioned Redis key for a named read, e.g. catalog:v3:top.
func (c *CatalogCache) key(ctx context.Context, name string) (string, error) {
	v, err := c.version(ctx)
	if err != nil {
		return "", fmt.Errorf("read catalog version: %w", err)
	}
	return fmt.Sprintf("catalog:v%d:%s", v, name), nil
}

// GetProducts returns the cached products for name. ok is false on a miss.
func (c *CatalogCache) GetProducts(ctx context.Context, name string) (products []models.Product, ok bool, err error) {
	key, err := c.key(ctx, name)
	if err != nil {
		return nil, false, err
	}
	return c.get(ctx, key)
}

// SetProducts stores products under name for the configured TTL.
func (c *CatalogCache) SetProducts(ctx context.Context, name string, products []models.Product) error {
	key, err := c.key(ctx, name)
	if err != nil {
		return err
	}
	return c.set(ctx, key, products)
}

func (c *CatalogCache) get(ctx context.Context, key string) ([]models.Product, bool, error) {
	raw, err := c.redis.Get(ctx, key)
	if IsMiss(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var products []models.Product
	if err := json.Unmarshal([]byte(raw), &products); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached products: %w", err)
	}
	return products, true, nil
}

func (c *CatalogCache) set(ctx context.Context, key string, products []models.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to marshal products: %w", err)
	}
	return c.redis.Set(ctx, key, string(data), c.ttl)
}

// Invalidate drops every cached catalog read.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}
	_, err := c.redis.Incr(ctx, catalogVersionKey)
	return err
}

// Products is a read-through helper. Cache failures are logged and never
// fail the read; a nil cache always calls load. The key is resolved once
// before load, so rows loaded across an Invalidate land under the old
// version and are never served.
func (c *CatalogCache) Products(ctx context.Context, name string, load func(ctx context.Context) ([]models.Product, error)) ([]models.Product, error) {
	if c == nil {
		return load(ctx)
	}

	key, err := c.key(ctx, name)
	if err != nil {
		log.Warn().Err(err).Str("key", name).Msg("catalog cache read failed")
		return load(ctx)
	}

	cached, ok, err := c.get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
	}
	if ok {
		return cached, nil
	}

	products, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.set(ctx, key, products); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("catalog cache write failed")
	}
	return products, nil
}
