// Package cache provides a read-through cache for task repositories on top of
// the mono storage interface.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

// Store is the part of storage.Storage the cache service needs.
type Store interface {
	GetWithContext(ctx context.Context, key string) ([]byte, error)
	SetWithContext(ctx context.Context, key string, val []byte, exp time.Duration) error
	DeleteWithContext(ctx context.Context, key string) error
	Close() error
}

// CacheService defines the caching operations used by consumers.
type CacheService interface {
	// Get unmarshals the value at key into dest. It reports false on a miss.
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Set stores value as JSON with the default TTL.
	Set(ctx context.Context, key string, value any) error

	// SetWithTTL stores value as JSON with a custom TTL.
	SetWithTTL(ctx context.Context, key string, value any, ttl time.Duration) error

	// Delete removes a single key.
	Delete(ctx context.Context, key string) error

	// Close closes the underlying storage connection.
	Close() error
}

type cacheService struct {
	store  Store
	prefix string
	ttl    time.Duration
}

// NewCacheService creates a CacheService over s. Keys are namespaced by prefix.
func NewCacheService(s Store, prefix string, ttl time.Duration) CacheService {
	return &cacheService{
		store:  s,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (c *cacheService) Get(ctx context.Context, key string, dest any) (bool, error) {
	fullKey := c.prefix + key

	data, err := c.store.GetWithContext(ctx, fullKey)
	if err != nil {
		return false, fmt.Errorf("cache get error: %w", err)
	}

	// nil or empty means key not found
	if len(data) == 0 {
		log.Printf("[cache] Cache Miss! key=%s", fullKey)
		return false, nil
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal error: %w", err)
	}

	log.Printf("[cache] Cache Hit! key=%s", fullKey)
	return true, nil
}

func (c *cacheService) Set(ctx context.Context, key string, value any) error {
	return c.SetWithTTL(ctx, key, value, c.ttl)
}

func (c *cacheService) SetWithTTL(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}

	if err := c.store.SetWithContext(ctx, c.prefix+key, data, ttl); err != nil {
		return fmt.Errorf("cache set error: %w", err)
	}
	return nil
}

func (c *cacheService) Delete(ctx context.Context, key string) error {
	if err := c.store.DeleteWithContext(ctx, c.prefix+key); err != nil {
		return fmt.Errorf("cache delete error: %w", err)
	}
	return nil
}

func (c *cacheService) Close() error {
	return c.store.Close()
}
