package charm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultCharmHost, cfg.Host)
	assert.True(t, cfg.AutoSync)
}

func TestConfigRoundTripAndHostOverride(t *testing.T) {
	dir := t.TempDir()
	cfg, err := loadConfig(dir)
	require.NoError(t, err)
	cfg.Host = "charm.example.com"
	require.NoError(t, cfg.SetAutoSync(false))

	again, err := loadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "charm.example.com", again.Host)
	assert.False(t, again.AutoSync)

	t.Setenv("AGENCY_CHARM_HOST", "charm.internal")
	again, err = loadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "charm.internal", again.Host)
}

func TestLoadConfigIgnoresCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("{nope"), 0600))
	cfg, err := loadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultCharmHost, cfg.Host)
}
