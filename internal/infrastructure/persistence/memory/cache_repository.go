// Package memory provides in-memory cache repository implementation
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/alchemorsel/cookbook/internal/ports/outbound"
)

// DefaultTTL applies when Set is called with a zero TTL.
const DefaultTTL = 5 * time.Minute

// CacheItem represents a cached item
type CacheItem struct {
	Value     []byte
	ExpiresAt time.Time
}

func (i CacheItem) expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// CacheRepository implements in-memory cache repository
type CacheRepository struct {
	data       map[string]CacheItem
	mutex      sync.RWMutex
	maxEntries int
	now        func() time.Time
}

var _ outbound.CacheRepository = (*CacheRepository)(nil)

// NewCacheRepository creates a new in-memory cache repository holding at
// most maxEntries keys; zero means unbounded.
func NewCacheRepository(maxEntries int) *CacheRepository {
	return &CacheRepository{
		data:       make(map[string]CacheItem),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get retrieves a value from cache
func (r *CacheRepository) Get(_ context.Context, key string) ([]byte, error) {
	r.mutex.RLock()
	item, exists := r.data[key]
	r.mutex.RUnlock()

	if !exists || item.expired(r.now()) {
		return nil, outbound.ErrCacheMiss
	}
	return item.Value, nil
}

// Set stores a value in cache with TTL
func (r *CacheRepository) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := r.now()

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.data[key]; !exists && r.maxEntries > 0 && len(r.data) >= r.maxEntries {
		r.evict(now)
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	r.data[key] = CacheItem{
		Value:     stored,
		ExpiresAt: now.Add(ttl),
	}
	return nil
}

// evict drops expired items, or the item closest to expiry when none has
// expired. Callers hold the write lock.
func (r *CacheRepository) evict(now time.Time) {
	var (
		victim    string
		victimExp time.Time
		removed   bool
	)
	for key, item := range r.data {
		if item.expired(now) {
			delete(r.data, key)
			removed = true
			continue
		}
		if victim == "" || item.ExpiresAt.Before(victimExp) {
			victim, victimExp = key, item.ExpiresAt
		}
	}
	if !removed && victim != "" {
		delete(r.data, victim)
	}
}

// Delete removes a key from cache
func (r *CacheRepository) Delete(_ context.Context, key string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.data, key)
	return nil
}

// Exists checks if a key exists in cache
func (r *CacheRepository) Exists(_ context.Context, key string) (bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	item, exists := r.data[key]
	return exists && !item.expired(r.now()), nil
}

// Len returns the number of stored keys, expired ones included
func (r *CacheRepository) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.data)
}

// RunCleanup removes expired items every interval until ctx is done
func (r *CacheRepository) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.removeExpired()
		}
	}
}

func (r *CacheRepository) removeExpired() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := r.now()
	removed := 0
	for key, item := range r.data {
		if item.expired(now) {
			delete(r.data, key)
			removed++
		}
	}
	return removed
}
