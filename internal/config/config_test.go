package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("config", "", "")
	cmd.Flags().String("log-level", "info", "")
	cmd.Flags().String("backend", "", "")
	cmd.Flags().String("storage-root", "", "")
	cmd.Flags().String("catalog-path", "", "")
	return cmd
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(testCommand())
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "dropbox", cfg.Storage.Backend)
	assert.Equal(t, "captioner.db", cfg.Catalog.Path)
	assert.Empty(t, cfg.Storage.Dropbox.RootPath)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CAPTIONER_STORAGE_BACKEND", "filesystem")
	t.Setenv("CAPTIONER_STORAGE_DROPBOX_APP_KEY", "env-key")

	cfg, err := Load(testCommand())
	require.NoError(t, err)

	assert.Equal(t, "filesystem", cfg.Storage.Backend)
	assert.Equal(t, "env-key", cfg.Storage.Dropbox.AppKey)
}

func TestLoadFromFlags(t *testing.T) {
	cmd := testCommand()
	require.NoError(t, cmd.Flags().Set("backend", "s3"))
	require.NoError(t, cmd.Flags().Set("catalog-path", "/tmp/other.db"))

	cfg, err := Load(cmd)
	require.NoError(t, err)

	assert.Equal(t, "s3", cfg.Storage.Backend)
	assert.Equal(t, "/tmp/other.db", cfg.Catalog.Path)
}

func TestLoadFromConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
storage:
  backend: filesystem
  root: /photos
catalog:
  path: /data/catalog.db
`), 0644))

	cmd := testCommand()
	require.NoError(t, cmd.Flags().Set("config", path))

	cfg, err := Load(cmd)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "filesystem", cfg.Storage.Backend)
	assert.Equal(t, "/photos", cfg.Storage.Root)
	assert.Equal(t, "/data/catalog.db", cfg.Catalog.Path)
}

func TestDropboxRootPathNormalization(t *testing.T) {
	t.Run("adds the leading slash", func(t *testing.T) {
		t.Setenv("CAPTIONER_STORAGE_DROPBOX_ROOT_PATH", "vacation/2024")

		cfg, err := Load(testCommand())
		require.NoError(t, err)
		assert.Equal(t, "/vacation/2024", cfg.Storage.Dropbox.RootPath)
	})

	t.Run("keeps an existing leading slash", func(t *testing.T) {
		t.Setenv("CAPTIONER_STORAGE_DROPBOX_ROOT_PATH", "/vacation")

		cfg, err := Load(testCommand())
		require.NoError(t, err)
		assert.Equal(t, "/vacation", cfg.Storage.Dropbox.RootPath)
	})

	t.Run("empty root stays empty", func(t *testing.T) {
		cfg, err := Load(testCommand())
		require.NoError(t, err)
		assert.Equal(t, "", cfg.Storage.Dropbox.RootPath)
	})
}
