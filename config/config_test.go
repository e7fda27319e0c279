package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lborres/careerguide/apiclient"
	"github.com/lborres/careerguide/core"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("CAREERGUIDE_STORE_PATH", filepath.Join(t.TempDir(), "store.json"))

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	require.True(t, cfg.IsDevelopment())
	require.Equal(t, apiclient.DevelopmentBaseURL, cfg.API.BaseURL)
	require.Equal(t, apiclient.DevelopmentTimeout, cfg.API.Timeout)
	require.Equal(t, DriverFile, cfg.Store.Driver)
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, `
environment = "production"
log_level = "debug"

[api]
base_url = "https://api.careerguide.dev/api"
rate_limit = 5.0
burst = 2

[store]
driver = "sqlite"
path = "/tmp/careerguide.db"

[server]
listen = ":9090"
token_ttl = "2h"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.True(t, cfg.IsProduction())
	require.Equal(t, "https://api.careerguide.dev/api", cfg.API.BaseURL)
	require.Equal(t, apiclient.ProductionTimeout, cfg.API.Timeout)
	require.Equal(t, 5.0, cfg.API.RateLimit)
	require.Equal(t, DriverSQLite, cfg.Store.Driver)
	require.Equal(t, ":9090", cfg.Server.Listen)
	require.Equal(t, 2*time.Hour, cfg.Server.TokenTTL)
	require.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
[store]
driver = "memory"
`)
	t.Setenv("CAREERGUIDE_API_URL", "http://127.0.0.1:8080/api")
	t.Setenv("CAREERGUIDE_API_TIMEOUT", "3s")
	t.Setenv("CAREERGUIDE_STORE", "redis")
	t.Setenv("CAREERGUIDE_REDIS_ADDR", "localhost:6379")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:8080/api", cfg.API.BaseURL)
	require.Equal(t, 3*time.Second, cfg.API.Timeout)
	require.Equal(t, DriverRedis, cfg.Store.Driver)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "production needs a base url", mutate: func(c *Config) { c.Environment = EnvProduction; c.API.BaseURL = "" }, wantErr: core.ErrBaseURLRequired},
		{name: "unknown driver", mutate: func(c *Config) { c.Store.Driver = "etcd" }, wantErr: core.ErrUnknownStoreDriver},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := Default()
			test.mutate(cfg)

			err := cfg.Validate()
			if test.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, test.wantErr)
		})
	}

	cfg := Default()
	cfg.Store.Driver = DriverPostgres
	require.Error(t, cfg.Validate())
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	_, err := Load(writeConfig(t, `environment = `))
	require.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Store.Driver = DriverMemory
	cfg.API.RateLimit = 2

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, DriverMemory, loaded.Store.Driver)
	require.Equal(t, 2.0, loaded.API.RateLimit)
}
