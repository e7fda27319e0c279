package core

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"time"
)

// Category names a cached resource. The value doubles as the storage key
// (or key prefix for per-counselor messages).
type Category string

const (
	CategoryCounselors      Category = "cached_counselors"
	CategoryMessages        Category = "cached_messages"
	CategoryResume          Category = "cached_resume"
	CategoryLearningJourney Category = "cached_learning_journey"
)

const (
	DirectoryTTL = 24 * time.Hour
	ContentTTL   = time.Hour
)

var categoryTTL = map[Category]time.Duration{
	CategoryCounselors:      DirectoryTTL,
	CategoryMessages:        ContentTTL,
	CategoryResume:          ContentTTL,
	CategoryLearningJourney: ContentTTL,
}

// Categories lists every cache category.
func Categories() []Category {
	return []Category{CategoryCounselors, CategoryMessages, CategoryResume, CategoryLearningJourney}
}

func (c Category) TTL() time.Duration {
	return categoryTTL[c]
}

// Key returns the storage key for the category, suffixed with id when the
// category is partitioned (messages are cached per counselor).
func (c Category) Key(id string) string {
	if id == "" {
		return string(c)
	}
	return string(c) + "_" + id
}

// owns reports whether key belongs to the category.
func (c Category) owns(key string) bool {
	return key == string(c) || strings.HasPrefix(key, string(c)+"_")
}

// CacheEntry wraps fetched data with the epoch-millis time it was written.
type CacheEntry[T any] struct {
	Data      T     `json:"data"`
	Timestamp int64 `json:"timestamp"`
}

func NewCacheEntry[T any](data T, now time.Time) CacheEntry[T] {
	return CacheEntry[T]{Data: data, Timestamp: now.UnixMilli()}
}

// Valid reports whether the entry is younger than ttl at now.
func (e CacheEntry[T]) Valid(now time.Time, ttl time.Duration) bool {
	return now.UnixMilli()-e.Timestamp < ttl.Milliseconds()
}

type CacheConfig struct {
	Store KVStore
	// Clock defaults to time.Now
	Clock func() time.Time
}

// CacheStats are simple counters for cache behavior.
// These are intended for diagnostics and monitoring.
type CacheStats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Expired int64 `json:"expired"`
	Sets    int64 `json:"sets"`
	Deletes int64 `json:"deletes"`
	Errors  int64 `json:"errors"`
}

// EntryCache stores CacheEntry envelopes in a KVStore. Expiry is lazy: a
// stale entry reads as absent but stays in the store until overwritten or
// cleared.
type EntryCache struct {
	store KVStore
	clock func() time.Time

	// counters
	hits    int64
	misses  int64
	expired int64
	sets    int64
	deletes int64
	errors  int64
}

func NewEntryCache(c CacheConfig) *EntryCache {
	if c.Clock == nil {
		c.Clock = time.Now
	}

	return &EntryCache{
		store: c.Store,
		clock: c.Clock,
	}
}

func (c *EntryCache) Now() time.Time {
	return c.clock()
}

// WriteEntry stores data under the category key with the current timestamp.
func WriteEntry[T any](ctx context.Context, c *EntryCache, category Category, id string, data T) error {
	raw, err := json.Marshal(NewCacheEntry(data, c.clock()))
	if err != nil {
		atomic.AddInt64(&c.errors, 1)
		return err
	}

	if err := c.store.SetItem(ctx, category.Key(id), raw); err != nil {
		atomic.AddInt64(&c.errors, 1)
		return err
	}

	atomic.AddInt64(&c.sets, 1)
	return nil
}

// ReadEntry returns the cached data when a fresh entry exists. Missing,
// expired, unreadable and undecodable entries all read as absent.
func ReadEntry[T any](ctx context.Context, c *EntryCache, category Category, id string) (T, bool) {
	var zero T

	raw, err := c.store.GetItem(ctx, category.Key(id))
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			atomic.AddInt64(&c.errors, 1)
		}
		atomic.AddInt64(&c.misses, 1)
		return zero, false
	}

	var entry CacheEntry[T]
	if err := json.Unmarshal(raw, &entry); err != nil {
		atomic.AddInt64(&c.errors, 1)
		atomic.AddInt64(&c.misses, 1)
		return zero, false
	}

	if !entry.Valid(c.clock(), category.TTL()) {
		// expired
		atomic.AddInt64(&c.expired, 1)
		atomic.AddInt64(&c.misses, 1)
		return zero, false
	}

	atomic.AddInt64(&c.hits, 1)
	return entry.Data, true
}

func (c *EntryCache) Delete(ctx context.Context, category Category, id string) error {
	if err := c.store.RemoveItem(ctx, category.Key(id)); err != nil {
		atomic.AddInt64(&c.errors, 1)
		return err
	}
	atomic.AddInt64(&c.deletes, 1)
	return nil
}

// Clear removes every cache entry of every category, leaving session and
// settings keys alone.
func (c *EntryCache) Clear(ctx context.Context) error {
	keys, err := c.store.Keys(ctx)
	if err != nil {
		atomic.AddInt64(&c.errors, 1)
		return err
	}

	var doomed []string
	for _, key := range keys {
		for _, category := range Categories() {
			if category.owns(key) {
				doomed = append(doomed, key)
				break
			}
		}
	}
	if len(doomed) == 0 {
		return nil
	}

	if err := c.store.MultiRemove(ctx, doomed...); err != nil {
		atomic.AddInt64(&c.errors, 1)
		return err
	}
	atomic.AddInt64(&c.deletes, int64(len(doomed)))
	return nil
}

func (c *EntryCache) Stats() CacheStats {
	return CacheStats{
		Hits:    atomic.LoadInt64(&c.hits),
		Misses:  atomic.LoadInt64(&c.misses),
		Expired: atomic.LoadInt64(&c.expired),
		Sets:    atomic.LoadInt64(&c.sets),
		Deletes: atomic.LoadInt64(&c.deletes),
		Errors:  atomic.LoadInt64(&c.errors),
	}
}
