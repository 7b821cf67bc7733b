package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupConfigFile_NoFile_ReturnsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	backup, err := BackupConfigFile(path)

	require.NoError(t, err)
	assert.Empty(t, backup)
}

func TestBackupConfigFile_CopiesContent(t *testing.T) {
	// Given: an existing config file
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  base_url: http://x:1\n"), 0o644))

	// When: backing it up
	backup, err := BackupConfigFile(path)

	// Then: the backup holds the same bytes
	require.NoError(t, err)
	data, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Contains(t, string(data), "http://x:1")
	assert.Contains(t, filepath.Base(backup), "config.yaml.bak.")
}

func TestBackupConfigFile_KeepsOnlyMaxBackups(t *testing.T) {
	// Given: more stale backups than the limit
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0o644))
	for _, stamp := range []string{"20200101-000000.000", "20200102-000000.000", "20200103-000000.000", "20200104-000000.000"} {
		require.NoError(t, os.WriteFile(path+BackupSuffix+"."+stamp, []byte("old"), 0o644))
	}

	// When: taking a new backup
	newest, err := BackupConfigFile(path)
	require.NoError(t, err)

	// Then: only the newest MaxBackups remain, led by the new one
	backups, err := ListConfigBackups(path)
	require.NoError(t, err)
	require.Len(t, backups, MaxBackups)
	assert.Equal(t, newest, backups[0])
	assert.NoFileExists(t, path+BackupSuffix+".20200101-000000.000")
}

func TestListConfigBackups_MissingDir(t *testing.T) {
	backups, err := ListConfigBackups(filepath.Join(t.TempDir(), "missing", "config.yaml"))

	require.NoError(t, err)
	assert.Empty(t, backups)
}
