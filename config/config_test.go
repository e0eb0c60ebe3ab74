package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/spf13/viper"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := unmarshal(v)
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, "graph.json", cfg.Data.Source)
	assert.True(t, cfg.Data.Watch)
	assert.Equal(t, -120.0, cfg.Layout.ChargeStrength)
	assert.Equal(t, 60.0, cfg.Layout.LinkDistance)
	assert.Equal(t, 6.0, cfg.Layout.NodeSize)
	assert.Equal(t, 30.0, cfg.Layout.FrameRate)
	assert.Contains(t, cfg.Server.AllowedOrigins, "http://localhost")
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "phylomap.toml")
	content := `
[server]
port = 9000

[data]
source = "http://localhost:9090/graph.json"
watch = false

[layout]
charge_strength = -200.0
node_size = 8.0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "http://localhost:9090/graph.json", cfg.Data.Source)
	assert.False(t, cfg.Data.Watch)
	assert.Equal(t, -200.0, cfg.Layout.ChargeStrength)
	assert.Equal(t, 8.0, cfg.Layout.NodeSize)
	// unset keys keep defaults
	assert.Equal(t, 60.0, cfg.Layout.LinkDistance)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() *Config {
		v := viper.New()
		SetDefaults(v)
		cfg, err := unmarshal(v)
		require.NoError(t, err)
		return cfg
	}

	cfg := base()
	cfg.Server.Port = 70000
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Layout.CanvasWidth = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Layout.LinkDistance = -1
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Layout.FrameRate = 500
	assert.Error(t, cfg.Validate())
}
