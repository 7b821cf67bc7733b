package configs

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/scout/internal/config"
)

func TestUserConfigTemplate_MatchesDefaults(t *testing.T) {
	// Given: the template written as a config file
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, config.WriteConfigFile(path, []byte(UserConfigTemplate)))

	// When: loading it
	cfg, err := config.Load(path)

	// Then: it parses and changes nothing
	require.NoError(t, err)
	defaults := config.NewConfig()
	assert.Equal(t, defaults.API, cfg.API)
	assert.Equal(t, defaults.Search, cfg.Search)
	assert.Equal(t, defaults.History, cfg.History)
	assert.Equal(t, defaults.UI, cfg.UI)
	assert.Equal(t, defaults.Logging, cfg.Logging)
	assert.Equal(t, defaults.Metrics, cfg.Metrics)
	require.NoError(t, cfg.Validate())
}
