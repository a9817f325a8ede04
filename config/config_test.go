package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := LoadFile("")
		require.NoError(t, err)
		assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
		assert.Equal(t, "storefront", cfg.API.APIPath)
		assert.Equal(t, CacheBackendMemory, cfg.Cache.Backend)
		assert.Zero(t, cfg.Cache.TTL)
		assert.False(t, cfg.Activity.Enabled)
		assert.Equal(t, 5*time.Second, cfg.MockServer.Timeout)
	})

	t.Run("File", func(t *testing.T) {
		path := writeConfig(t, `
log_level: debug
api:
  base_url: https://shop.example.com
  api_path: tea-house
  timeout: 3s
cache:
  backend: redis
  ttl: 1m
activity:
  enabled: true
  seed_brokers: ["k1:9092", "k2:9092"]
  topic: carts
`)
		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
		assert.Equal(t, "https://shop.example.com", cfg.API.BaseURL)
		assert.Equal(t, "tea-house", cfg.API.APIPath)
		assert.Equal(t, 3*time.Second, cfg.API.Timeout)
		assert.Equal(t, CacheBackendRedis, cfg.Cache.Backend)
		assert.Equal(t, time.Minute, cfg.Cache.TTL)
		assert.True(t, cfg.Activity.Enabled)
		assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Activity.SeedBrokers)
		assert.Equal(t, "carts", cfg.Activity.Topic)
	})

	t.Run("EnvOverridesFile", func(t *testing.T) {
		path := writeConfig(t, "api:\n  api_path: from-file\n")
		t.Setenv("STOREFRONT_API_API_PATH", "from-env")
		t.Setenv("STOREFRONT_ACTIVITY_SEED_BROKERS", "a:1,b:2")

		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.API.APIPath)
		assert.Equal(t, []string{"a:1", "b:2"}, cfg.Activity.SeedBrokers)
	})

	t.Run("UnknownKey", func(t *testing.T) {
		path := writeConfig(t, "unknown_key: 1\n")
		_, err := LoadFile(path)
		assert.Error(t, err)
	})

	t.Run("InvalidLogLevel", func(t *testing.T) {
		path := writeConfig(t, "log_level: loud\n")
		_, err := LoadFile(path)
		assert.Error(t, err)
	})

	t.Run("UnknownCacheBackend", func(t *testing.T) {
		path := writeConfig(t, "cache:\n  backend: disk\n")
		_, err := LoadFile(path)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "none.yaml"))
		assert.Error(t, err)
	})
}

func TestGetConfigFilepath(t *testing.T) {
	t.Run("Flag", func(t *testing.T) {
		path := getConfigFilepath(
			[]string{"cart-add", "--config", "/etc/sf.yaml", "--qty", "2"},
		)
		assert.Equal(t, "/etc/sf.yaml", path)
	})

	t.Run("EnvWins", func(t *testing.T) {
		t.Setenv(configFileEnvName, "/env.yaml")
		assert.Equal(t, "/env.yaml", getConfigFilepath([]string{"--config", "x"}))
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Empty(t, getConfigFilepath([]string{"cart"}))
	})
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("Missing", func(t *testing.T) {
		assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
	})

	t.Run("SetsUnsetVariables", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		content := "STOREFRONT_API_API_PATH=from-dotenv\nSTOREFRONT_CACHE_BACKEND=redis\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		t.Setenv("STOREFRONT_API_API_PATH", "")
		os.Unsetenv("STOREFRONT_API_API_PATH")
		t.Setenv("STOREFRONT_CACHE_BACKEND", "memory")

		require.NoError(t, LoadDotEnv(path))
		t.Cleanup(func() { os.Unsetenv("STOREFRONT_API_API_PATH") })

		cfg, err := LoadFile("")
		require.NoError(t, err)
		assert.Equal(t, "from-dotenv", cfg.API.APIPath)
		assert.Equal(t, CacheBackendMemory, cfg.Cache.Backend)
	})
}
