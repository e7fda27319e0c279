package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lborres/careerguide/config"
	"github.com/lborres/careerguide/core"
	"github.com/lborres/careerguide/pkg/kv"
	"github.com/lborres/careerguide/services"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	storePath := filepath.Join(dir, "store.json")
	t.Setenv("CAREERGUIDE_CONFIG", filepath.Join(dir, "missing.toml"))
	t.Setenv("CAREERGUIDE_ENV", config.EnvDevelopment)
	t.Setenv("CAREERGUIDE_STORE", config.DriverFile)
	t.Setenv("CAREERGUIDE_STORE_PATH", storePath)
	return storePath
}

func TestRealMainExitCodes(t *testing.T) {
	setupEnv(t)

	tests := []struct {
		name string
		args []string
		want int
	}{
		{name: "no command", args: nil, want: 2},
		{name: "bad flag", args: []string{"-nope"}, want: 2},
		{name: "unknown command", args: []string{"fly"}, want: 2},
		{name: "missing login args", args: []string{"login"}, want: 2},
		{name: "status", args: []string{"status"}, want: 0},
		{name: "unknown setting", args: []string{"settings", "volume", "11"}, want: 1},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.want, realMain(test.args))
		})
	}
}

func TestRealMainSettingsShouldPersist(t *testing.T) {
	storePath := setupEnv(t)

	require.Equal(t, 0, realMain([]string{"settings", "theme", "dark"}))
	require.Equal(t, 0, realMain([]string{"settings", "notificationsEnabled", "false"}))

	store, err := kv.OpenFileStore(kv.FileStoreConfig{Path: storePath})
	require.NoError(t, err)
	defer store.Close()

	got := services.NewSettingsStore(services.NewStorage(store, nil)).Get(context.Background())
	require.Equal(t, "dark", got.Theme)
	require.False(t, got.NotificationsEnabled)
	require.Equal(t, core.DefaultSettings().Language, got.Language)
}
