package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "server: {}\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 65535, cfg.Database.MaxBindParams)
	assert.Equal(t, "audience.events", cfg.Redis.EventChannel)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Privacy.DisableGravatar)
	assert.Empty(t, cfg.Redis.Addr, "redis sink should be off by default")
}

func TestLoadFullFile(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 0.0.0.0
  port: 9090
database:
  url: postgres://app@db/audience
  max_bind_params: 32766
redis:
  addr: localhost:6379
  event_channel: custom.events
privacy:
  disable_gravatar: true
logging:
  level: debug
  redact_pii: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres://app@db/audience", cfg.Database.URL)
	assert.Equal(t, 32766, cfg.Database.MaxBindParams)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "custom.events", cfg.Redis.EventChannel)
	assert.True(t, cfg.Privacy.DisableGravatar)
	assert.Equal(t, "debug", cfg.Logging.Level)
	require.NotNil(t, cfg.Logging.RedactPII)
	assert.False(t, *cfg.Logging.RedactPII)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a map\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
database:
  url: postgres://file@db/audience
logging:
  level: warn
`)

	t.Setenv("DATABASE_URL", "postgres://env@db/audience")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("MAX_BIND_PARAMS", "999")
	t.Setenv("DISABLE_GRAVATAR", "true")

	cfg, err := LoadFromEnv(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://env@db/audience", cfg.Database.URL)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, 999, cfg.Database.MaxBindParams)
	assert.True(t, cfg.Privacy.DisableGravatar)
}

func TestLoadFromEnvIgnoresBadNumericOverride(t *testing.T) {
	path := writeConfig(t, "database:\n  max_bind_params: 32766\n")

	t.Setenv("MAX_BIND_PARAMS", "not-a-number")

	cfg, err := LoadFromEnv(path)
	require.NoError(t, err)
	assert.Equal(t, 32766, cfg.Database.MaxBindParams)
}
