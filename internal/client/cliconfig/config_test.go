package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marketctl.yaml")
	content := "server_url: http://api.marketvue.test\nsession_dir: /tmp/mv\ntimeout: 3s\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://api.marketvue.test", cfg.ServerURL)
	assert.Equal(t, "/tmp/mv", cfg.SessionDir)
	assert.Equal(t, 3*time.Second, cfg.Timeout)

	t.Setenv("MARKETCTL_SERVER_URL", "http://override:9000")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://override:9000", cfg.ServerURL)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MARKETCTL_SERVER_URL", "")
	t.Setenv("MARKETCTL_TIMEOUT", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.ServerURL)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.NotEmpty(t, cfg.SessionDir)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
