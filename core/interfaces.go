package core

import (
	"context"
	"encoding/json"
)

// Ports define interfaces for external dependencies

// ============================================
// STORAGE PORT (device key-value persistence)
// ============================================

// KVStore is the persistent key-value store the session and caches live in.
// Values are opaque bytes; callers own the encoding.
type KVStore interface {
	SetItem(ctx context.Context, key string, value []byte) error
	// GetItem returns ErrKeyNotFound when the key is absent.
	GetItem(ctx context.Context, key string) ([]byte, error)
	// RemoveItem succeeds when the key is already absent.
	RemoveItem(ctx context.Context, key string) error
	MultiRemove(ctx context.Context, keys ...string) error
	Clear(ctx context.Context) error
	Keys(ctx context.Context) ([]string, error)
}

// WriteMode makes merge-vs-replace explicit at every write site.
type WriteMode int

const (
	Replace WriteMode = iota
	Merge
)

func (m WriteMode) String() string {
	if m == Merge {
		return "merge"
	}
	return "replace"
}

// ============================================
// API PORTS (remote career-guide backend)
// ============================================

// Every call reads its bearer token from ctx (see ContextWithToken). Transport
// and decoding failures are returned as errors; a response with
// Success=false is returned as-is.

// AuthAPI is the part of the backend the session controller depends on.
type AuthAPI interface {
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Register(ctx context.Context, payload RegistrationPayload) (*Envelope, error)
	GetUserProfile(ctx context.Context) (*AuthResponse, error)
	UpdateUserProfile(ctx context.Context, fields UserRecord) (*AuthResponse, error)
}

// ResourceAPI serves the cached resources.
type ResourceAPI interface {
	GetCounselors(ctx context.Context) (*CounselorsResponse, error)
	GetCounselor(ctx context.Context, id string) (*CounselorResponse, error)
	GetMessages(ctx context.Context, counselorID string) (*MessagesResponse, error)
	SendMessage(ctx context.Context, req SendMessageRequest) (*SendMessageResponse, error)
	GetResume(ctx context.Context) (*DocumentResponse, error)
	SaveResume(ctx context.Context, data json.RawMessage) (*DocumentResponse, error)
	GetLearningJourney(ctx context.Context) (*DocumentResponse, error)
	SaveLearningJourney(ctx context.Context, data json.RawMessage) (*DocumentResponse, error)
}

type API interface {
	AuthAPI
	ResourceAPI
}
