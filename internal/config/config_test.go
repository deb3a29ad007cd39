package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	cfg, err := loadServerConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
}

func TestLoadServerConfigPassesThroughAddr(t *testing.T) {
	t.Setenv("PORT", "127.0.0.1:9000")
	cfg, err := loadServerConfig()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
}

func TestLoadServerConfigRejectsGarbage(t *testing.T) {
	t.Setenv("PORT", "80 80")
	_, err := loadServerConfig()
	require.Error(t, err)
}

func TestLoadEngineConfigDefaults(t *testing.T) {
	t.Setenv("PARLOR_MAX_TOKENS", "")
	t.Setenv("PARLOR_EXPORT_WIDTH", "")
	t.Setenv("PARLOR_SESSIONS_DIR", "")
	t.Setenv("ARK_MODEL", "")

	cfg, err := loadEngineConfig()
	require.NoError(t, err)
	assert.Equal(t, "sessions", cfg.SessionsDir)
	assert.Equal(t, 150, cfg.MaxOutputTokens)
	assert.Equal(t, 60, cfg.ExportWidth)
	assert.Equal(t, "gpt-4o-mini", cfg.DefaultModel)
}

func TestLoadEngineConfigRejectsNonPositiveTokenCap(t *testing.T) {
	t.Setenv("PARLOR_MAX_TOKENS", "0")
	_, err := loadEngineConfig()
	require.Error(t, err)
}

func TestAIConfigEnabled(t *testing.T) {
	assert.False(t, AIConfig{}.Enabled())
	assert.False(t, AIConfig{Model: "m"}.Enabled())
	assert.True(t, AIConfig{Model: "m", APIKey: "k"}.Enabled())
	assert.True(t, AIConfig{Model: "m", AccessKey: "a", SecretKey: "s"}.Enabled())
}
