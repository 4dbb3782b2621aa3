package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/vizinho/internal/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	want := DefaultConfig()
	assert.Equal(t, want.Retry, cfg.Retry)
	assert.Equal(t, want.Repository.Timeout, cfg.Repository.Timeout)
	assert.Equal(t, float64(domain.DefaultMaxPrice), cfg.Filters.DefaultMaxPrice)
	assert.True(t, cfg.UsesFixtures())
}

func TestLoad_ReadsFile(t *testing.T) {
	path := writeConfig(t, `
repository:
  url: https://api.vizinho.app
  token: secret
  timeout: 3s
user:
  id: u1
  condominium_id: cond-jardins
retry:
  max_attempts: 5
  base_delay: 250ms
filters:
  store_path: ""
  default_max_price: 3000
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.vizinho.app", cfg.Repository.URL)
	assert.Equal(t, "secret", cfg.Repository.Token)
	assert.Equal(t, 3*time.Second, cfg.Repository.Timeout)
	assert.Equal(t, UserConfig{ID: "u1", CondominiumID: "cond-jardins"}, cfg.User)
	assert.Equal(t, RetryConfig{MaxAttempts: 5, BaseDelay: 250 * time.Millisecond}, cfg.Retry)
	assert.Equal(t, "", cfg.Filters.StorePath)
	assert.Equal(t, 3000.0, cfg.Filters.DefaultMaxPrice)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.UsesFixtures())
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "user:\n  id: from-file\n")
	t.Setenv("VIZINHO_USER_ID", "from-env")
	t.Setenv("VIZINHO_RETRY_MAX_ATTEMPTS", "1")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.User.ID)
	assert.Equal(t, 1, cfg.Retry.MaxAttempts)
}

func TestLoad_Invalid(t *testing.T) {
	path := writeConfig(t, "repository:\n  url: ftp://nope\nfilters:\n  default_max_price: -1\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "repository.url")
	assert.Contains(t, err.Error(), "default_max_price")
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Repository.URL = "http://localhost:8080"
	cfg.User.ID = "u9"
	cfg.Retry.BaseDelay = 2 * time.Second
	require.NoError(t, Save(cfg, path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", got.Repository.URL)
	assert.Equal(t, "u9", got.User.ID)
	assert.Equal(t, 2*time.Second, got.Retry.BaseDelay)
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, filepath.Join(home, "logs", "v.log"), expandHome("~/logs/v.log"))
	assert.Equal(t, "/var/log/v.log", expandHome("/var/log/v.log"))
}
