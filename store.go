package careerguide

import (
	"context"
	"fmt"
	"log/slog"

	pgxadapter "github.com/lborres/careerguide/adapters/pgx"
	redisadapter "github.com/lborres/careerguide/adapters/redis"
	sqliteadapter "github.com/lborres/careerguide/adapters/sqlite"
	"github.com/lborres/careerguide/apiclient"
	"github.com/lborres/careerguide/config"
	"github.com/lborres/careerguide/core"
	"github.com/lborres/careerguide/pkg/kv"
)

// OpenStore opens the back end named by c.Driver. The returned func
// releases it. A file store is reloaded on external edits until ctx is done.
func OpenStore(ctx context.Context, c config.StoreConfig, logger *slog.Logger) (KVStore, func() error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	noop := func() error { return nil }

	switch c.Driver {
	case config.DriverMemory:
		return kv.NewMemoryStore(), noop, nil

	case config.DriverFile:
		s, err := kv.OpenFileStore(kv.FileStoreConfig{Path: c.Path, Logger: logger})
		if err != nil {
			return nil, nil, err
		}
		if err := s.Watch(ctx); err != nil {
			logger.Warn("file store watch unavailable", "path", c.Path, "error", err)
		}
		return s, s.Close, nil

	case config.DriverSQLite:
		s, err := sqliteadapter.Open(ctx, c.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	case config.DriverRedis:
		s, err := redisadapter.Dial(ctx, redisadapter.Config{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	case config.DriverPostgres:
		a, err := pgxadapter.Connect(ctx, c.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return a, func() error { a.Close(); return nil }, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", core.ErrUnknownStoreDriver, c.Driver)
	}
}

// NewFromConfig opens the configured store and API client and wires a
// Client over them.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Client, func() error, error) {
	if logger == nil {
		logger = slog.Default()
	}

	api, err := apiclient.New(apiclient.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		RateLimit: cfg.API.RateLimit,
		Burst:     cfg.API.Burst,
		Logger:    logger,
	})
	if err != nil {
		return nil, nil, err
	}

	store, closeStore, err := OpenStore(ctx, cfg.Store, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}

	client, err := New(Config{Store: store, API: api, Logger: logger})
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return client, closeStore, nil
}
