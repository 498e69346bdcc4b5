// Package config loads CalmCanvas settings from defaults, an optional YAML
// file and CALMCANVAS_* environment variables, in that order of priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const envPrefix = "CALMCANVAS_"

var ErrInvalid = errors.New("invalid configuration")

// Config is the complete application configuration.
type Config struct {
	Canvas  Canvas  `yaml:"canvas"`
	Brush   Brush   `yaml:"brush"`
	Bridge  Bridge  `yaml:"bridge"`
	Logging Logging `yaml:"logging"`
	Metrics Metrics `yaml:"metrics"`
}

// Canvas sizes the raster surface and bounds the editing state.
type Canvas struct {
	Width       int    `yaml:"width" validate:"min=1,max=8192"`
	Height      int    `yaml:"height" validate:"min=1,max=8192"`
	Background  string `yaml:"background" validate:"required"`
	Symmetry    int    `yaml:"symmetry" validate:"min=1,max=24"`
	MaxSymmetry int    `yaml:"max_symmetry" validate:"min=1,max=24,gtefield=Symmetry"`
	RedoLimit   int    `yaml:"redo_limit" validate:"min=1"`
}

// Brush holds the initial drawing tool settings.
type Brush struct {
	Color     string  `yaml:"color" validate:"required"`
	Width     float64 `yaml:"width" validate:"gt=0,lte=500"`
	Opacity   float64 `yaml:"opacity" validate:"gte=0,lte=1"`
	StampSize float64 `yaml:"stamp_size" validate:"gt=0,lte=2000"`
}

// Bridge configures the remote input bridge.
type Bridge struct {
	Enabled  bool   `yaml:"enabled"`
	Port     int    `yaml:"port" validate:"min=1,max=65535"`
	MDNS     bool   `yaml:"mdns"`
	Instance string `yaml:"instance"`
}

type Logging struct {
	Level       string `yaml:"level" validate:"oneof=debug info warn error"`
	Development bool   `yaml:"development"`
}

type Metrics struct {
	Namespace string `yaml:"namespace" validate:"required,alphanum"`
}

// Default returns a configuration that needs no file.
func Default() *Config {
	return &Config{
		Canvas: Canvas{
			Width:       1024,
			Height:      768,
			Background:  "#ffffff",
			Symmetry:    1,
			MaxSymmetry: 12,
			RedoLimit:   100,
		},
		Brush: Brush{
			Color:     "#000000",
			Width:     3,
			Opacity:   1,
			StampSize: 48,
		},
		Bridge: Bridge{
			Port: 8888,
		},
		Logging: Logging{
			Level: "info",
		},
		Metrics: Metrics{
			Namespace: "calmcanvas",
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field constraint.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(envPrefix + key); ok {
			*dst = v
		}
	}
	integer := func(key string, dst *int) error {
		v, ok := lookup(envPrefix + key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q is not an integer", ErrInvalid, envPrefix, key, v)
		}
		*dst = n
		return nil
	}
	float := func(key string, dst *float64) error {
		v, ok := lookup(envPrefix + key)
		if !ok {
			return nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q is not a number", ErrInvalid, envPrefix, key, v)
		}
		*dst = f
		return nil
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(envPrefix + key)
		if !ok {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q is not a boolean", ErrInvalid, envPrefix, key, v)
		}
		*dst = b
		return nil
	}

	str("BACKGROUND", &c.Canvas.Background)
	str("BRUSH_COLOR", &c.Brush.Color)
	str("BRIDGE_INSTANCE", &c.Bridge.Instance)
	str("LOG_LEVEL", &c.Logging.Level)
	str("METRICS_NAMESPACE", &c.Metrics.Namespace)

	return errors.Join(
		integer("WIDTH", &c.Canvas.Width),
		integer("HEIGHT", &c.Canvas.Height),
		integer("SYMMETRY", &c.Canvas.Symmetry),
		integer("REDO_LIMIT", &c.Canvas.RedoLimit),
		integer("BRIDGE_PORT", &c.Bridge.Port),
		float("BRUSH_WIDTH", &c.Brush.Width),
		float("BRUSH_OPACITY", &c.Brush.Opacity),
		float("STAMP_SIZE", &c.Brush.StampSize),
		boolean("BRIDGE_ENABLED", &c.Bridge.Enabled),
		boolean("BRIDGE_MDNS", &c.Bridge.MDNS),
		boolean("LOG_DEVELOPMENT", &c.Logging.Development),
	)
}
