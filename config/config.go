// Package config loads graphpad settings from YAML.
//
// Config file locations (priority order):
//  1. $GRAPHPAD_CONFIG
//  2. ./graphpad.yaml
//  3. $XDG_CONFIG_HOME/graphpad/config.yaml
//  4. ~/.config/graphpad/config.yaml
//
// Command-line flags override whatever the file sets.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment selects the logger flavour.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

// Config is the full application configuration.
type Config struct {
	Environment Environment       `yaml:"environment" validate:"oneof=development production"`
	LogLevel    string            `yaml:"log_level" validate:"oneof=debug info warn error"`
	DataFile    string            `yaml:"data_file,omitempty"`
	Server      ServerConfig      `yaml:"server"`
	Canvas      CanvasConfig      `yaml:"canvas"`
	Interaction InteractionConfig `yaml:"interaction"`
	Layout      LayoutConfig      `yaml:"layout"`
	Stats       StatsConfig       `yaml:"stats"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Address         string   `yaml:"address" validate:"required"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// CanvasConfig is the drawing area
type CanvasConfig struct {
	Width  float64 `yaml:"width" validate:"gt=0"`
	Height float64 `yaml:"height" validate:"gt=0"`
}

// InteractionConfig tunes the edge-drag gesture
type InteractionConfig struct {
	DragThreshold Duration `yaml:"drag_threshold"`
	DropRadius    float64  `yaml:"drop_radius" validate:"gt=0"`
}

// LayoutConfig selects and bounds the layout simulation
type LayoutConfig struct {
	Algorithm string  `yaml:"algorithm" validate:"oneof=force surreal"`
	Noise     float64 `yaml:"noise" validate:"gte=0,lte=1"`
	Seed      int64   `yaml:"seed"`
	Steps     int     `yaml:"steps" validate:"gt=0"`
}

// StatsConfig holds statistics defaults
type StatsConfig struct {
	HistogramBuckets int `yaml:"histogram_buckets" validate:"gt=0"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()
	if path == "" {
		return DefaultConfig(), "", nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}
	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns the settings used when no file is found
func DefaultConfig() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Environment == "" {
		c.Environment = Development
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(10 * time.Second)
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = Duration(30 * time.Second)
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = Duration(5 * time.Second)
	}
	if c.Canvas.Width == 0 {
		c.Canvas.Width = 800
	}
	if c.Canvas.Height == 0 {
		c.Canvas.Height = 600
	}
	if c.Interaction.DragThreshold == 0 {
		c.Interaction.DragThreshold = Duration(5 * time.Millisecond)
	}
	if c.Interaction.DropRadius == 0 {
		c.Interaction.DropRadius = 5
	}
	if c.Layout.Algorithm == "" {
		c.Layout.Algorithm = "force"
	}
	if c.Layout.Steps == 0 {
		c.Layout.Steps = 300
	}
	if c.Stats.HistogramBuckets == 0 {
		c.Stats.HistogramBuckets = 10
	}
}
