package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePaths_Default(t *testing.T) {
	t.Setenv("AGENTDESK_HOME", "")

	paths, err := ResolvePaths()
	require.NoError(t, err)

	home, _ := os.UserHomeDir()
	base := filepath.Join(home, ".agentdesk")
	assert.Equal(t, base, paths.Base)
	assert.Equal(t, filepath.Join(base, "config.yaml"), paths.Config)
	assert.Equal(t, filepath.Join(base, "logs"), paths.Logs)
	assert.Equal(t, filepath.Join(base, "data"), paths.Data)
	assert.Equal(t, filepath.Join(base, "data", "transcripts.db"), paths.Archive)
	assert.Equal(t, filepath.Join(base, "exports"), paths.Exports)
}

func TestResolvePaths_AgentdeskHome(t *testing.T) {
	t.Setenv("AGENTDESK_HOME", "/tmp/deskhome")

	paths, err := ResolvePaths()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/deskhome", paths.Base)
	assert.Equal(t, "/tmp/deskhome/config.yaml", paths.Config)
	assert.Equal(t, "/tmp/deskhome/logs", paths.Logs)
	assert.Equal(t, "/tmp/deskhome/data", paths.Data)
	assert.Equal(t, "/tmp/deskhome/data/transcripts.db", paths.Archive)
	assert.Equal(t, "/tmp/deskhome/exports", paths.Exports)
}

func TestEnsureDirs_CreatesAll(t *testing.T) {
	t.Setenv("AGENTDESK_HOME", filepath.Join(t.TempDir(), "desk"))
	paths, err := ResolvePaths()
	require.NoError(t, err)

	require.NoError(t, paths.EnsureDirs())

	for _, dir := range []string{paths.Base, paths.Logs, paths.Data, paths.Exports} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
	_, err = os.Stat(paths.Archive)
	assert.True(t, os.IsNotExist(err), "archive file is created by the store, not EnsureDirs")
}

func TestEnsureDirs_Idempotent(t *testing.T) {
	tmpDir := t.TempDir()
	paths := Paths{
		Base:    tmpDir,
		Logs:    filepath.Join(tmpDir, "logs"),
		Data:    filepath.Join(tmpDir, "data"),
		Exports: filepath.Join(tmpDir, "exports"),
	}

	require.NoError(t, paths.EnsureDirs())
	require.NoError(t, paths.EnsureDirs()) // second call should succeed
}
