// Package careerguide is the session and cache manager of the career-guide
// client. New wires the session controller, resource cache and settings
// store over one key-value store and one API client.
package careerguide

import (
	"log/slog"
	"time"

	"github.com/lborres/careerguide/core"
	"github.com/lborres/careerguide/services"
)

// interfaces
type (
	KVStore = core.KVStore
	API     = core.API
)

// structs
type (
	Session           = core.Session
	Result            = core.Result
	UserRecord        = core.UserRecord
	Role              = core.Role
	Settings          = core.Settings
	Counselor         = core.Counselor
	Message           = core.Message
	RegistrationInput = core.RegistrationInput
	CacheStats        = core.CacheStats
	WriteMode         = core.WriteMode
)

const (
	RoleStudent   = core.RoleStudent
	RoleCounselor = core.RoleCounselor

	Replace = core.Replace
	Merge   = core.Merge
)

var (
	ErrStoreRequired = core.ErrStoreRequired
	ErrAPIRequired   = core.ErrAPIRequired
)

var (
	ErrNotAuthenticated = core.ErrNotAuthenticated
	ErrPersistFailed    = core.ErrPersistFailed
	ErrKeyNotFound      = core.ErrKeyNotFound
	ErrRequestFailed    = core.ErrRequestFailed
)

type Config struct {
	Store KVStore
	API   API
	// Logger defaults to slog.Default()
	Logger *slog.Logger
	// Clock defaults to time.Now; it drives cache expiry and token expiry checks.
	Clock func() time.Time
}

// Client is the shared state surface handed to UI collaborators.
type Client struct {
	Session   *services.SessionController
	Resources *services.Resources
	Settings  *services.SettingsStore
	Storage   *services.Storage
}

func New(config Config) (*Client, error) {
	if config.Store == nil {
		return nil, ErrStoreRequired
	}
	if config.API == nil {
		return nil, ErrAPIRequired
	}

	// Set Defaults

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	clock := config.Clock
	if clock == nil {
		clock = time.Now
	}

	storage := services.NewStorage(config.Store, logger)

	session := services.NewSessionController(services.SessionControllerConfig{
		API:    config.API,
		Store:  services.NewSessionStore(storage),
		Logger: logger,
		Clock:  clock,
	})

	resources := services.NewResources(services.ResourcesConfig{
		API:  config.API,
		Auth: session,
		Cache: core.NewEntryCache(core.CacheConfig{
			Store: config.Store,
			Clock: clock,
		}),
		Storage: storage,
		Logger:  logger,
	})

	return &Client{
		Session:   session,
		Resources: resources,
		Settings:  services.NewSettingsStore(storage),
		Storage:   storage,
	}, nil
}
