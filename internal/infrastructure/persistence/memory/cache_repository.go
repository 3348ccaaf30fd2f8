// Package memory provides the in-process cache used when Redis is disabled
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/recipewise/server/internal/ports/outbound"
)

const defaultTTL = 24 * time.Hour

type cacheItem struct {
	value     []byte
	expiresAt time.Time
}

// CacheRepository implements outbound.CacheRepository in memory
type CacheRepository struct {
	data  map[string]cacheItem
	mutex sync.RWMutex
	now   func() time.Time
}

// NewCacheRepository creates an empty cache
func NewCacheRepository() *CacheRepository {
	return &CacheRepository{
		data: make(map[string]cacheItem),
		now:  time.Now,
	}
}

// Get returns outbound.ErrCacheMiss for absent or expired keys
func (r *CacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	r.mutex.RLock()
	item, exists := r.data[key]
	r.mutex.RUnlock()

	if !exists || r.now().After(item.expiresAt) {
		return nil, outbound.ErrCacheMiss
	}
	return item.value, nil
}

// Set stores a copy of value. A zero ttl means 24 hours.
func (r *CacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = defaultTTL
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.data[key] = cacheItem{
		value:     append([]byte(nil), value...),
		expiresAt: r.now().Add(ttl),
	}
	return nil
}

// Delete removes a key from cache
func (r *CacheRepository) Delete(ctx context.Context, key string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.data, key)
	return nil
}

// Exists checks if an unexpired key is present
func (r *CacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	item, exists := r.data[key]
	return exists && !r.now().After(item.expiresAt), nil
}

// Cleanup drops expired entries until ctx is cancelled
func (r *CacheRepository) Cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.mutex.Lock()
			now := r.now()
			for key, item := range r.data {
				if now.After(item.expiresAt) {
					delete(r.data, key)
				}
			}
			r.mutex.Unlock()
		}
	}
}
