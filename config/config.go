// Package config loads client and mock-server settings from a TOML file
// with CAREERGUIDE_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lborres/careerguide/apiclient"
	"github.com/lborres/careerguide/core"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

type Config struct {
	Environment string       `toml:"environment"`
	LogLevel    string       `toml:"log_level"`
	API         APIConfig    `toml:"api"`
	Store       StoreConfig  `toml:"store"`
	Server      ServerConfig `toml:"server"`
}

type APIConfig struct {
	BaseURL   string        `toml:"base_url"`
	Timeout   time.Duration `toml:"timeout"`
	RateLimit float64       `toml:"rate_limit"`
	Burst     int           `toml:"burst"`
}

type StoreConfig struct {
	Driver        string `toml:"driver"`
	Path          string `toml:"path"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	PostgresDSN   string `toml:"postgres_dsn"`
}

// ServerConfig configures cmd/mockapi.
type ServerConfig struct {
	Listen   string        `toml:"listen"`
	BasePath string        `toml:"base_path"`
	Secret   string        `toml:"secret"`
	TokenTTL time.Duration `toml:"token_ttl"`
	Seed     bool          `toml:"seed"`
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "careerguide.toml"
	}
	return filepath.Join(dir, "careerguide", "config.toml")
}

// Default returns the development configuration. The API timeout is left
// unset so Load can pick it per environment.
func Default() *Config {
	return &Config{
		Environment: EnvDevelopment,
		LogLevel:    "info",
		API: APIConfig{
			BaseURL: apiclient.DevelopmentBaseURL,
		},
		Store: StoreConfig{
			Driver: DriverFile,
			Path:   defaultStorePath(),
		},
		Server: ServerConfig{
			Listen:   ":8080",
			BasePath: "/ECareerGuide/backend/api",
			TokenTTL: 24 * time.Hour,
			Seed:     true,
		},
	}
}

func defaultStorePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "careerguide-store.json"
	}
	return filepath.Join(dir, "careerguide", "store.json")
}

// Load reads path over the defaults, then applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getEnv("CAREERGUIDE_CONFIG", DefaultPath())
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	cfg.applyEnvironmentDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides lets CAREERGUIDE_* variables replace file values.
func (c *Config) ApplyEnvOverrides() {
	c.Environment = getEnv("CAREERGUIDE_ENV", c.Environment)
	c.LogLevel = getEnv("CAREERGUIDE_LOG_LEVEL", c.LogLevel)

	c.API.BaseURL = getEnv("CAREERGUIDE_API_URL", c.API.BaseURL)
	c.API.Timeout = getDurationEnv("CAREERGUIDE_API_TIMEOUT", c.API.Timeout)
	c.API.RateLimit = getFloatEnv("CAREERGUIDE_API_RATE_LIMIT", c.API.RateLimit)

	c.Store.Driver = getEnv("CAREERGUIDE_STORE", c.Store.Driver)
	c.Store.Path = getEnv("CAREERGUIDE_STORE_PATH", c.Store.Path)
	c.Store.RedisAddr = getEnv("CAREERGUIDE_REDIS_ADDR", c.Store.RedisAddr)
	c.Store.RedisPassword = getEnv("CAREERGUIDE_REDIS_PASSWORD", c.Store.RedisPassword)
	c.Store.PostgresDSN = getEnv("CAREERGUIDE_POSTGRES_DSN", c.Store.PostgresDSN)

	c.Server.Listen = getEnv("CAREERGUIDE_LISTEN", c.Server.Listen)
	c.Server.Secret = getEnv("CAREERGUIDE_SECRET", c.Server.Secret)
	c.Server.TokenTTL = getDurationEnv("CAREERGUIDE_TOKEN_TTL", c.Server.TokenTTL)
}

// applyEnvironmentDefaults fills what depends on the environment. Production
// has no default base URL.
func (c *Config) applyEnvironmentDefaults() {
	if c.API.Timeout > 0 {
		return
	}
	if c.IsProduction() {
		c.API.Timeout = apiclient.ProductionTimeout
	} else {
		c.API.Timeout = apiclient.DevelopmentTimeout
	}
}

func (c *Config) Validate() error {
	switch c.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("unknown environment %q", c.Environment)
	}

	if c.API.BaseURL == "" {
		return core.ErrBaseURLRequired
	}

	switch c.Store.Driver {
	case DriverMemory:
	case DriverFile, DriverSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("store driver %s requires a path", c.Store.Driver)
		}
	case DriverRedis:
		if c.Store.RedisAddr == "" {
			return errors.New("store driver redis requires redis_addr")
		}
	case DriverPostgres:
		if c.Store.PostgresDSN == "" {
			return errors.New("store driver postgres requires postgres_dsn")
		}
	default:
		return fmt.Errorf("%w: %q", core.ErrUnknownStoreDriver, c.Store.Driver)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Save writes c to path as TOML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
