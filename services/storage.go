package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lborres/careerguide/core"
)

// Storage layers JSON encoding over a core.KVStore.
//
// The lenient methods (SetItem, GetItem, RemoveItem, MultiRemove) log
// failures and report them as false, matching what UI callers expect from
// device storage. The strict methods (Put, Load, Delete) return errors and
// are used wherever a silent failure could misreport session state.
type Storage struct {
	store  core.KVStore
	logger *slog.Logger
}

func NewStorage(store core.KVStore, logger *slog.Logger) *Storage {
	if logger == nil {
		logger = slog.Default()
	}
	return &Storage{store: store, logger: logger}
}

func (s *Storage) Store() core.KVStore { return s.store }

func (s *Storage) SetItem(ctx context.Context, key string, value any) bool {
	if err := s.Put(ctx, key, value); err != nil {
		s.logger.Warn("storage set failed", "key", key, "error", err)
		return false
	}
	return true
}

// GetItem decodes key into out. It reports false when the key is absent or
// cannot be read.
func (s *Storage) GetItem(ctx context.Context, key string, out any) bool {
	found, err := s.Load(ctx, key, out)
	if err != nil {
		s.logger.Warn("storage get failed", "key", key, "error", err)
		return false
	}
	return found
}

func (s *Storage) RemoveItem(ctx context.Context, key string) bool {
	return s.MultiRemove(ctx, key)
}

func (s *Storage) MultiRemove(ctx context.Context, keys ...string) bool {
	if err := s.Delete(ctx, keys...); err != nil {
		s.logger.Warn("storage remove failed", "keys", keys, "error", err)
		return false
	}
	return true
}

func (s *Storage) Put(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.store.SetItem(ctx, key, raw); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Load decodes key into out. A missing key is (false, nil).
func (s *Storage) Load(ctx context.Context, key string, out any) (bool, error) {
	raw, err := s.store.GetItem(ctx, key)
	if errors.Is(err, core.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Storage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.store.MultiRemove(ctx, keys...); err != nil {
		return fmt.Errorf("remove %v: %w", keys, err)
	}
	return nil
}

// snapshot captures the raw values of keys. Absent keys map to nil.
func (s *Storage) snapshot(ctx context.Context, keys ...string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	for _, key := range keys {
		raw, err := s.store.GetItem(ctx, key)
		switch {
		case errors.Is(err, core.ErrKeyNotFound):
			out[key] = nil
		case err != nil:
			return nil, fmt.Errorf("get %s: %w", key, err)
		default:
			out[key] = raw
		}
	}
	return out, nil
}

// restore writes a snapshot back, removing keys that were absent. Every key
// is attempted; the first error is returned.
func (s *Storage) restore(ctx context.Context, prev map[string][]byte) error {
	var first error
	for key, raw := range prev {
		var err error
		if raw == nil {
			err = s.store.RemoveItem(ctx, key)
		} else {
			err = s.store.SetItem(ctx, key, raw)
		}
		if err != nil && first == nil {
			first = fmt.Errorf("restore %s: %w", key, err)
		}
	}
	return first
}
