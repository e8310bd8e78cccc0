package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "http://localhost:8080", cfg.Tracking.BaseURL)
	assert.Equal(t, 90, cfg.Tracking.RetentionDays)
	assert.Equal(t, 24, cfg.Tracking.CleanupIntervalHours)
	assert.Equal(t, "file", cfg.Storage.Type)
	assert.Equal(t, "./data/engagement.json", cfg.Storage.FilePath)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
}

func TestLoadExplicitValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  port: 9090
tracking:
  base_url: "https://track.example.com"
  retention_days: 30
storage:
  type: "redis"
  redis_addr: "redis.internal:6379"
`))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "https://track.example.com", cfg.Tracking.BaseURL)
	assert.Equal(t, 30, cfg.Tracking.RetentionDays)
	assert.Equal(t, "redis", cfg.Storage.Type)
	assert.Equal(t, "redis.internal:6379", cfg.Storage.RedisAddr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("TRACKING_BASE_URL", "https://env.example.com")
	t.Setenv("DATABASE_URL", "postgres://env")

	cfg, err := LoadFromEnv(writeConfig(t, "{}"))
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com", cfg.Tracking.BaseURL)
	assert.Equal(t, "postgres://env", cfg.Storage.DatabaseURL)
	assert.Equal(t, "postgres", cfg.Storage.Type, "database URL switches the default backend")
}
