package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STORAGE_BACKEND", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, StorageMemory, cfg.StorageBackend)
	assert.Equal(t, 60, cfg.CacheTTLSeconds)
	assert.False(t, cfg.NeedsAWS())
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `
storage_backend: sqlite
sqlite_path: /tmp/strings.db
log_level: debug
cache_ttl_seconds: 5
shutdown_timeout: 3s
`)
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StorageSQLite, cfg.StorageBackend)
	assert.Equal(t, "/tmp/strings.db", cfg.SQLitePath)
	assert.Equal(t, "warn", cfg.LogLevel, "environment wins over the file")
	assert.Equal(t, 5, cfg.CacheTTLSeconds)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestLoadConfig_CacheDisabledForSharedStores(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("CACHE_TTL_SECONDS", "")
	t.Setenv("IS_LAMBDA", "")
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "")

	t.Setenv("STORAGE_BACKEND", StorageSQLite)
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.CacheTTLSeconds)

	t.Setenv("STORAGE_BACKEND", StorageMemory)
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "string-analyzer-api")
	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsLambda)
	assert.Equal(t, 0, cfg.CacheTTLSeconds)

	t.Setenv("STORAGE_BACKEND", StorageSQLite)
	t.Setenv("CACHE_TTL_SECONDS", "15")
	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 15, cfg.CacheTTLSeconds, "an explicit ttl is kept")
}

func TestLoadConfig_UnknownKeyRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "storage: sqlite\n")

	_, err := LoadConfigFrom(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.StorageBackend = "postgres" }},
		{"auth without secret", func(c *Config) { c.RequireAuth = true }},
		{"negative ttl", func(c *Config) { c.CacheTTLSeconds = -1 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"sample rate", func(c *Config) { c.TraceSampleRate = 2 }},
		{"dynamodb without table", func(c *Config) { c.StorageBackend = StorageDynamoDB; c.DynamoDBTable = "" }},
	}

	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestWatcher_ReloadsDynamicSettings(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("CACHE_TTL_SECONDS", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "log_level: info\ncache_ttl_seconds: 60\n")

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)
	rt := NewRuntime(cfg)
	require.Equal(t, zapcore.InfoLevel, rt.Level().Level())

	w := NewWatcher(path, rt, zap.NewNop())
	w.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// fsnotify needs the watch registered before the write is observed
	require.Eventually(t, func() bool {
		writeFile(t, path, "log_level: debug\ncache_ttl_seconds: 7\n")
		return rt.CacheTTLSeconds() == 7
	}, 5*time.Second, 50*time.Millisecond)
	assert.Equal(t, zapcore.DebugLevel, rt.Level().Level())

	// An invalid file keeps the current settings
	writeFile(t, path, "log_level: nonsense\n")
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 7, rt.CacheTTLSeconds())

	cancel()
	require.NoError(t, <-done)
}
