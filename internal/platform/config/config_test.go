package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.Addr)
		assert.Equal(t, DefaultProgramCacheTTL, cfg.ProgramCacheTTL)
		assert.Equal(t, 8, cfg.Batch.Concurrency)
		assert.Equal(t, 500, cfg.Batch.MaxSize)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "json", cfg.Log.Format)
		assert.Empty(t, cfg.DatabaseURL)
		assert.Empty(t, cfg.Redis.URL)
		assert.False(t, cfg.RateLimit.Disabled)
		assert.Equal(t, time.Minute, cfg.RateLimit.Window)
		assert.Equal(t, 120, cfg.RateLimit.Evaluate)
		assert.Zero(t, cfg.RateLimit.Read)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("GRANTGATE_ADDR", ":9090")
		t.Setenv("PROGRAM_CACHE_TTL", "30s")
		t.Setenv("BATCH_CONCURRENCY", "2")
		t.Setenv("LOG_FORMAT", "TEXT")
		t.Setenv("REDIS_URL", "redis://localhost:6379/0")
		t.Setenv("RATE_LIMIT_DISABLED", "true")
		t.Setenv("RATE_LIMIT_AUTHORING", "5")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, ":9090", cfg.Addr)
		assert.Equal(t, 30*time.Second, cfg.ProgramCacheTTL)
		assert.Equal(t, 2, cfg.Batch.Concurrency)
		assert.Equal(t, "text", cfg.Log.Format)
		assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
		assert.True(t, cfg.RateLimit.Disabled)
		assert.Equal(t, 5, cfg.RateLimit.Authoring)
	})

	t.Run("invalid values are collected", func(t *testing.T) {
		t.Setenv("BATCH_CONCURRENCY", "many")
		t.Setenv("PROGRAM_CACHE_TTL", "soon")
		t.Setenv("LOG_FORMAT", "xml")
		t.Setenv("RATE_LIMIT_DISABLED", "sometimes")
		t.Setenv("RATE_LIMIT_READ", "-1")

		_, err := FromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "BATCH_CONCURRENCY")
		assert.Contains(t, err.Error(), "PROGRAM_CACHE_TTL")
		assert.Contains(t, err.Error(), "LOG_FORMAT")
		assert.Contains(t, err.Error(), "RATE_LIMIT_DISABLED")
		assert.Contains(t, err.Error(), "budgets must not be negative")
	})
}

func TestLoad(t *testing.T) {
	t.Run("reads a dotenv file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("PROGRAMS_FILE=/etc/grantgate/programs.yaml\n"), 0o600))
		t.Setenv("PROGRAMS_FILE", "")
		t.Cleanup(func() { os.Unsetenv("PROGRAMS_FILE") })
		os.Unsetenv("PROGRAMS_FILE")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "/etc/grantgate/programs.yaml", cfg.ProgramsFile)
	})

	t.Run("missing file is ignored", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
		assert.NoError(t, err)
	})
}
