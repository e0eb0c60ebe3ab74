// Package config loads the phylomap configuration from TOML files and
// PHYLOMAP_* environment variables via Viper.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/phylomap/phylomap/errors"
)

// DefaultPort is the phylomap server port
const DefaultPort = 8144

// Config is the full phylomap configuration
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Data   DataConfig   `mapstructure:"data"`
	Layout LayoutConfig `mapstructure:"layout"`
}

// ServerConfig controls the HTTP/WebSocket server
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	LogTheme       string   `mapstructure:"log_theme"`
}

// DataConfig points at the graph artifact produced by the export pipeline
type DataConfig struct {
	Source string `mapstructure:"source"` // file path or http(s) URL
	Watch  bool   `mapstructure:"watch"`  // reload on artifact file change
}

// LayoutConfig seeds the simulation and display defaults; all of these are
// further adjustable per-session from the config panel.
type LayoutConfig struct {
	CanvasWidth    float64 `mapstructure:"canvas_width"`
	CanvasHeight   float64 `mapstructure:"canvas_height"`
	ChargeStrength float64 `mapstructure:"charge_strength"`
	LinkDistance   float64 `mapstructure:"link_distance"`
	NodeSize       float64 `mapstructure:"node_size"`
	FrameRate      float64 `mapstructure:"frame_rate"` // position frames per second
}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.allowed_origins", []string{
		"http://localhost",
		"https://localhost",
		"http://127.0.0.1",
		"https://127.0.0.1",
	})
	v.SetDefault("server.log_theme", "everforest")

	v.SetDefault("data.source", "graph.json")
	v.SetDefault("data.watch", true)

	v.SetDefault("layout.canvas_width", 1200.0)
	v.SetDefault("layout.canvas_height", 800.0)
	v.SetDefault("layout.charge_strength", -120.0)
	v.SetDefault("layout.link_distance", 60.0)
	v.SetDefault("layout.node_size", 6.0)
	v.SetDefault("layout.frame_rate", 30.0)
}

// Load reads configuration from defaults, a discovered phylomap.toml, and
// PHYLOMAP_* environment variables, in increasing precedence.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PHYLOMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if path := findProjectConfig(); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	}

	return unmarshal(v)
}

// LoadFromFile loads configuration from a specific TOML file
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}
	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects configurations the server cannot run with
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.Newf("server.port %d out of range", c.Server.Port)
	}
	if c.Layout.CanvasWidth <= 0 || c.Layout.CanvasHeight <= 0 {
		return errors.Newf("layout canvas %gx%g must be positive",
			c.Layout.CanvasWidth, c.Layout.CanvasHeight)
	}
	if c.Layout.LinkDistance <= 0 {
		return errors.Newf("layout.link_distance %g must be positive", c.Layout.LinkDistance)
	}
	if c.Layout.NodeSize <= 0 {
		return errors.Newf("layout.node_size %g must be positive", c.Layout.NodeSize)
	}
	if c.Layout.FrameRate <= 0 || c.Layout.FrameRate > 120 {
		return errors.Newf("layout.frame_rate %g out of range (0, 120]", c.Layout.FrameRate)
	}
	return nil
}

// findProjectConfig searches for phylomap.toml by walking up from the
// working directory. Returns "" when none is found.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		path := filepath.Join(dir, "phylomap.toml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
