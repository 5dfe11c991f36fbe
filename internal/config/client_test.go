package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/riskibarqy/golf-league/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeClientFile(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "golfsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadClient_FromFile(t *testing.T) {
	path := writeClientFile(t, `
server_url: https://golf.example.com/
user_id: 7
store_path: /tmp/golf.db
interval: 90s
log_level: debug
`)

	cfg, err := LoadClient(NewClientViper(), path)
	require.NoError(t, err)
	assert.Equal(t, "https://golf.example.com", cfg.ServerURL)
	assert.Equal(t, int64(7), cfg.UserID)
	assert.Equal(t, "/tmp/golf.db", cfg.StorePath)
	assert.Equal(t, 90*time.Second, cfg.Interval)
	assert.Equal(t, logging.LevelDebug, cfg.LogLevel)
}

func TestLoadClient_EnvOverridesFile(t *testing.T) {
	path := writeClientFile(t, "user_id: 7\n")
	t.Setenv("GOLFSYNC_USER_ID", "11")
	t.Setenv("GOLFSYNC_LOG_FILE", "/var/log/golfsync.log")

	cfg, err := LoadClient(NewClientViper(), path)
	require.NoError(t, err)
	assert.Equal(t, int64(11), cfg.UserID)
	assert.Equal(t, "/var/log/golfsync.log", cfg.LogFile)
	assert.Equal(t, 5*time.Minute, cfg.Interval)
}

func TestLoadClient_OverrideWins(t *testing.T) {
	path := writeClientFile(t, "user_id: 7\nserver_url: http://file\n")

	v := NewClientViper()
	v.Set(KeyServerURL, "http://flag")
	cfg, err := LoadClient(v, path)
	require.NoError(t, err)
	assert.Equal(t, "http://flag", cfg.ServerURL)
}

func TestLoadClient_Validation(t *testing.T) {
	t.Run("missing user", func(t *testing.T) {
		path := writeClientFile(t, "server_url: http://localhost:8080\n")
		_, err := LoadClient(NewClientViper(), path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), KeyUserID)
	})

	t.Run("negative interval", func(t *testing.T) {
		path := writeClientFile(t, "user_id: 3\ninterval: -1s\n")
		_, err := LoadClient(NewClientViper(), path)
		require.Error(t, err)
	})

	t.Run("explicit file must exist", func(t *testing.T) {
		_, err := LoadClient(NewClientViper(), filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
	})
}
