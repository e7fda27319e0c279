package kv

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/lborres/careerguide/core"
)

// FileStore persists every key in a single JSON document. Each mutation
// rewrites the document atomically (temp file + rename).
type FileStore struct {
	path   string
	logger *slog.Logger

	mu      sync.RWMutex
	items   map[string]string
	closed  bool
	// last document flushed or loaded
	written []byte
}

var _ core.KVStore = (*FileStore)(nil)

type FileStoreConfig struct {
	Path   string
	Logger *slog.Logger
}

// OpenFileStore loads the document at c.Path, creating parent directories.
// A missing file is an empty store.
func OpenFileStore(c FileStoreConfig) (*FileStore, error) {
	if c.Path == "" {
		return nil, errors.New("file store path is required")
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(c.Path), 0o700); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	s := &FileStore{path: c.Path, logger: c.Logger}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) Path() string { return s.path }

// reload replaces the in-memory items with the document on disk. The lock
// is held across the read so a reload cannot interleave with a flush.
func (s *FileStore) reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		data = nil
	case err != nil:
		return fmt.Errorf("read store: %w", err)
	}

	// our own rename
	if s.items != nil && bytes.Equal(data, s.written) {
		return nil
	}

	items := make(map[string]string)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("decode store: %w", err)
		}
	}
	s.items = items
	s.written = data
	return nil
}

// flush must be called with mu held.
func (s *FileStore) flush() error {
	data, err := json.MarshalIndent(s.items, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".kv-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return err
	}
	s.written = data
	return nil
}

func (s *FileStore) mutate(ctx context.Context, fn func(items map[string]string)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.ErrStoreClosed
	}

	prev := maps.Clone(s.items)
	fn(s.items)
	if err := s.flush(); err != nil {
		s.items = prev
		return err
	}
	return nil
}

func (s *FileStore) SetItem(ctx context.Context, key string, value []byte) error {
	return s.mutate(ctx, func(items map[string]string) {
		items[key] = string(value)
	})
}

func (s *FileStore) GetItem(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, core.ErrStoreClosed
	}
	v, ok := s.items[key]
	if !ok {
		return nil, core.ErrKeyNotFound
	}
	return []byte(v), nil
}

func (s *FileStore) RemoveItem(ctx context.Context, key string) error {
	return s.MultiRemove(ctx, key)
}

func (s *FileStore) MultiRemove(ctx context.Context, keys ...string) error {
	return s.mutate(ctx, func(items map[string]string) {
		for _, k := range keys {
			delete(items, k)
		}
	})
}

func (s *FileStore) Clear(ctx context.Context) error {
	return s.mutate(ctx, func(items map[string]string) {
		clear(items)
	})
}

func (s *FileStore) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, core.ErrStoreClosed
	}
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

// Watch reloads the document whenever another process rewrites it, until
// ctx is done. The directory is watched rather than the file because
// atomic renames replace the inode. The watch is registered before Watch
// returns.
func (s *FileStore) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch store dir: %w", err)
	}

	go s.watch(ctx, watcher)
	return nil
}

func (s *FileStore) watch(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()

	target := filepath.Clean(s.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) {
				if err := s.reload(); err != nil {
					s.logger.Warn("file store reload failed", "path", s.path, "error", err)
					continue
				}
				s.logger.Debug("file store reloaded", "path", s.path, "op", event.Op.String())
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("file store watcher error", "error", err)
		}
	}
}

func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
