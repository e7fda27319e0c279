package core

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"
)

// mapStore is a minimal KVStore for exercising EntryCache in isolation.
type mapStore struct {
	mu     sync.Mutex
	items  map[string][]byte
	getErr error
}

func newMapStore() *mapStore {
	return &mapStore{items: make(map[string][]byte)}
}

func (s *mapStore) SetItem(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = append([]byte(nil), value...)
	return nil
}

func (s *mapStore) GetItem(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	v, ok := s.items[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return v, nil
}

func (s *mapStore) RemoveItem(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

func (s *mapStore) MultiRemove(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		_ = s.RemoveItem(ctx, k)
	}
	return nil
}

func (s *mapStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string][]byte)
	return nil
}

func (s *mapStore) Keys(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// fakeClock is advanced manually by tests.
type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestCache() (*EntryCache, *mapStore, *fakeClock) {
	store := newMapStore()
	clock := &fakeClock{now: time.UnixMilli(1_700_000_000_000)}
	return NewEntryCache(CacheConfig{Store: store, Clock: clock.Now}), store, clock
}

func TestCategoryTTLShouldMatchPolicy(t *testing.T) {
	tests := []struct {
		category Category
		want     int64
	}{
		{CategoryCounselors, 86_400_000},
		{CategoryMessages, 3_600_000},
		{CategoryResume, 3_600_000},
		{CategoryLearningJourney, 3_600_000},
	}

	for _, tt := range tests {
		if got := tt.category.TTL().Milliseconds(); got != tt.want {
			t.Errorf("%s TTL = %dms, want %dms", tt.category, got, tt.want)
		}
	}
}

func TestCategoryKeyShouldSuffixPartitionedEntries(t *testing.T) {
	if got := CategoryCounselors.Key(""); got != "cached_counselors" {
		t.Errorf("Expected cached_counselors, got %s", got)
	}
	if got := CategoryMessages.Key("42"); got != "cached_messages_42" {
		t.Errorf("Expected cached_messages_42, got %s", got)
	}
}

func TestEntryCacheWriteReadShouldRoundTripWithinTTL(t *testing.T) {
	cache, _, clock := newTestCache()
	ctx := context.Background()

	counselors := []Counselor{{ID: 1, Name: "Dr. Sarah Johnson"}}
	if err := WriteEntry(ctx, cache, CategoryCounselors, "", counselors); err != nil {
		t.Fatalf("WriteEntry failed: %v", err)
	}

	clock.Advance(DirectoryTTL - time.Millisecond)

	got, ok := ReadEntry[[]Counselor](ctx, cache, CategoryCounselors, "")
	if !ok {
		t.Fatal("Entry should be readable within TTL")
	}
	if len(got) != 1 || got[0].Name != "Dr. Sarah Johnson" {
		t.Errorf("Expected round-tripped counselors, got %+v", got)
	}
}

func TestEntryCacheReadShouldTreatExpiredAsAbsentWithoutDeleting(t *testing.T) {
	cache, store, clock := newTestCache()
	ctx := context.Background()

	if err := WriteEntry(ctx, cache, CategoryResume, "", map[string]string{"title": "CV"}); err != nil {
		t.Fatalf("WriteEntry failed: %v", err)
	}

	// Exactly TTL old is already stale
	clock.Advance(ContentTTL)

	if _, ok := ReadEntry[map[string]string](ctx, cache, CategoryResume, ""); ok {
		t.Error("Entry should be absent once TTL has elapsed")
	}

	if _, err := store.GetItem(ctx, "cached_resume"); err != nil {
		t.Errorf("Expired entry should remain in the store, got %v", err)
	}

	stats := cache.Stats()
	if stats.Expired != 1 || stats.Misses != 1 {
		t.Errorf("Expected 1 expired miss, got %+v", stats)
	}
}

func TestEntryCacheWriteShouldRefreshTimestampOnOverwrite(t *testing.T) {
	cache, _, clock := newTestCache()
	ctx := context.Background()

	_ = WriteEntry(ctx, cache, CategoryMessages, "7", []Message{{ID: "a"}})
	clock.Advance(2 * ContentTTL)

	if _, ok := ReadEntry[[]Message](ctx, cache, CategoryMessages, "7"); ok {
		t.Fatal("Entry should be stale before overwrite")
	}

	_ = WriteEntry(ctx, cache, CategoryMessages, "7", []Message{{ID: "b"}})

	got, ok := ReadEntry[[]Message](ctx, cache, CategoryMessages, "7")
	if !ok || got[0].ID != "b" {
		t.Errorf("Expected fresh overwritten entry, got %+v (ok=%v)", got, ok)
	}
}

func TestEntryCacheReadShouldReportAbsentOnStoreError(t *testing.T) {
	cache, store, _ := newTestCache()
	store.getErr = errors.New("disk unavailable")

	if _, ok := ReadEntry[string](context.Background(), cache, CategoryResume, ""); ok {
		t.Error("Read should report absent when the store fails")
	}
	if cache.Stats().Errors != 1 {
		t.Errorf("Expected 1 error, got %d", cache.Stats().Errors)
	}
}

func TestEntryCacheReadShouldReportAbsentOnCorruptEntry(t *testing.T) {
	cache, store, _ := newTestCache()
	ctx := context.Background()
	_ = store.SetItem(ctx, "cached_learning_journey", []byte("{not json"))

	if _, ok := ReadEntry[map[string]any](ctx, cache, CategoryLearningJourney, ""); ok {
		t.Error("Corrupt entry should read as absent")
	}
}

func TestEntryCacheClearShouldOnlyRemoveCacheKeys(t *testing.T) {
	cache, store, _ := newTestCache()
	ctx := context.Background()

	_ = store.SetItem(ctx, KeyAuthToken, []byte(`"T"`))
	_ = store.SetItem(ctx, KeyAppSettings, []byte(`{}`))
	_ = WriteEntry(ctx, cache, CategoryCounselors, "", []Counselor{})
	_ = WriteEntry(ctx, cache, CategoryMessages, "1", []Message{})
	_ = WriteEntry(ctx, cache, CategoryMessages, "2", []Message{})
	_ = WriteEntry(ctx, cache, CategoryResume, "", "r")

	if err := cache.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	keys, _ := store.Keys(ctx)
	if len(keys) != 2 || keys[0] != KeyAppSettings || keys[1] != KeyAuthToken {
		t.Errorf("Expected only session/settings keys to survive, got %v", keys)
	}
	if cache.Stats().Deletes != 4 {
		t.Errorf("Expected 4 deletes, got %d", cache.Stats().Deletes)
	}
}

func TestCacheEntryValidShouldCompareMilliseconds(t *testing.T) {
	now := time.UnixMilli(10_000)
	entry := CacheEntry[int]{Data: 1, Timestamp: 9_000}

	if !entry.Valid(now, 1001*time.Millisecond) {
		t.Error("Entry 1000ms old should be valid for a 1001ms TTL")
	}
	if entry.Valid(now, time.Second) {
		t.Error("Entry 1000ms old should be invalid for a 1000ms TTL")
	}
}
