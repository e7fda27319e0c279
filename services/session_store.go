package services

import (
	"context"
	"fmt"

	"github.com/lborres/careerguide/core"
)

// SessionStore persists the token, user profile and role.
type SessionStore struct {
	storage *Storage
}

func NewSessionStore(storage *Storage) *SessionStore {
	return &SessionStore{storage: storage}
}

// PersistedSession is what SessionStore.Load found on disk.
type PersistedSession struct {
	Token string
	User  core.UserRecord
	Role  core.Role
}

func (s *SessionStore) Token(ctx context.Context) (string, error) {
	var token string
	_, err := s.storage.Load(ctx, core.KeyAuthToken, &token)
	return token, err
}

func (s *SessionStore) User(ctx context.Context) (core.UserRecord, error) {
	var user core.UserRecord
	_, err := s.storage.Load(ctx, core.KeyUserData, &user)
	return user, err
}

func (s *SessionStore) Role(ctx context.Context) (core.Role, error) {
	var role core.Role
	_, err := s.storage.Load(ctx, core.KeyUserRole, &role)
	return role, err
}

// Load reads all three session keys. Missing keys read as zero values; a
// read or decode failure is returned.
func (s *SessionStore) Load(ctx context.Context) (PersistedSession, error) {
	var out PersistedSession
	var err error

	if out.Token, err = s.Token(ctx); err != nil {
		return PersistedSession{}, err
	}
	if out.User, err = s.User(ctx); err != nil {
		return PersistedSession{}, err
	}
	if out.Role, err = s.Role(ctx); err != nil {
		return PersistedSession{}, err
	}
	return out, nil
}

// Persist writes token, user and role together. If any write fails the
// previous values are restored and the write error is returned wrapped in
// core.ErrPersistFailed.
func (s *SessionStore) Persist(ctx context.Context, token string, user core.UserRecord, role core.Role) error {
	prev, err := s.storage.snapshot(ctx, core.SessionKeys...)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrPersistFailed, err)
	}

	writes := []struct {
		key   string
		value any
	}{
		{core.KeyAuthToken, token},
		{core.KeyUserData, user},
		{core.KeyUserRole, role},
	}
	for _, w := range writes {
		if err := s.storage.Put(ctx, w.key, w.value); err != nil {
			if rerr := s.storage.restore(context.WithoutCancel(ctx), prev); rerr != nil {
				s.storage.logger.Error("session rollback failed", "error", rerr)
			}
			return fmt.Errorf("%w: %w", core.ErrPersistFailed, err)
		}
	}
	return nil
}

// SaveUser writes the user profile and returns what was stored. Replace
// stores user as given; Merge lays user over the stored profile.
func (s *SessionStore) SaveUser(ctx context.Context, user core.UserRecord, mode core.WriteMode) (core.UserRecord, error) {
	next := user.Clone()
	if mode == core.Merge {
		current, err := s.User(ctx)
		if err != nil {
			return nil, err
		}
		next = current.Merge(user)
	}

	if err := s.storage.Put(ctx, core.KeyUserData, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Clear removes all three session keys. Removing absent keys succeeds.
func (s *SessionStore) Clear(ctx context.Context) error {
	return s.storage.Delete(ctx, core.SessionKeys...)
}
