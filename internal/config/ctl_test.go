package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCtlConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv(KeyEnv, "")
	cfg, err := LoadCtlConfig(filepath.Join(t.TempDir(), "ctl.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8790", cfg.Server)
	assert.Empty(t, cfg.Key)
}

func TestLoadCtlConfig_EnvOverridesKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: http://10.0.0.5:8790\nkey: file-key\n"), 0600))
	t.Setenv(KeyEnv, "env-key")

	cfg, err := LoadCtlConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Key)
	assert.Equal(t, "http://10.0.0.5:8790", cfg.Server)
}

func TestSaveCtlConfig_RoundTrip(t *testing.T) {
	t.Setenv(KeyEnv, "")
	path := filepath.Join(t.TempDir(), "sub", "ctl.yaml")
	in := &CtlConfig{Server: "https://host:8790", Key: "abc"}
	require.NoError(t, SaveCtlConfig(path, in))

	out, err := LoadCtlConfig(path)
	require.NoError(t, err)
	assert.Equal(t, *in, *out)
}
