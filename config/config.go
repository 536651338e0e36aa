// Package config loads the statshub configuration file.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/ghodss/yaml"

	"github.com/zephyrtronium/bodmas"
)

// DefaultFile is the configuration file used when none is named.
const DefaultFile = "./statshub.yml"

// Config is the root of the configuration file.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `json:"listen"`
	// MaxBody is the largest request body accepted, in bytes, after
	// decompression.
	MaxBody int64 `json:"max_body"`
	// ShutdownTimeout is how long to wait for requests to finish on exit,
	// as a duration string like "5s".
	ShutdownTimeout string `json:"shutdown_timeout"`

	Limits     Limits     `json:"limits"`
	Sample     Sample     `json:"sample"`
	Confidence Confidence `json:"confidence"`
}

// Limits bounds expressions accepted by the evaluator.
type Limits struct {
	MaxLength int  `json:"max_length"`
	MaxDepth  int  `json:"max_depth"`
	Precision uint `json:"precision"`
}

// Sample describes the generated sample dataset.
type Sample struct {
	Seed   int64   `json:"seed"`
	Size   int     `json:"size"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
}

// Confidence holds defaults for the Z-score calculator.
type Confidence struct {
	Level float64 `json:"level"`
}

// Default returns the configuration used for anything the file leaves unset.
func Default() *Config {
	return &Config{
		Listen:          ":8080",
		MaxBody:         1 << 16,
		ShutdownTimeout: "5s",
		Limits: Limits{
			MaxLength: bodmas.DefaultMaxLength,
			MaxDepth:  bodmas.DefaultMaxDepth,
			Precision: bodmas.DefaultPrec,
		},
		Sample: Sample{
			Seed:   42,
			Size:   30,
			Mean:   50,
			StdDev: 10,
		},
		Confidence: Confidence{Level: 0.95},
	}
}

// Parse decodes a configuration over the defaults and validates it.
func Parse(raw []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and parses the configuration file at path. A missing file gives
// the defaults when missingOK is set.
func Load(path string, missingOK bool) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if missingOK && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w (in %s)", err, path)
	}
	return cfg, nil
}

// Validate reports the first setting that is out of range.
func (c *Config) Validate() error {
	switch {
	case c.Listen == "":
		return errors.New("config: listen address is empty")
	case c.MaxBody <= 0:
		return fmt.Errorf("config: max_body %d must be positive", c.MaxBody)
	case c.Limits.MaxLength < 0:
		return fmt.Errorf("config: limits.max_length %d is negative", c.Limits.MaxLength)
	case c.Limits.MaxDepth < 0:
		return fmt.Errorf("config: limits.max_depth %d is negative", c.Limits.MaxDepth)
	case c.Limits.Precision > 1<<16:
		return fmt.Errorf("config: limits.precision %d is too large", c.Limits.Precision)
	case c.Sample.Size < 1 || c.Sample.Size > 100000:
		return fmt.Errorf("config: sample.size %d not in [1, 100000]", c.Sample.Size)
	case math.IsNaN(c.Sample.Mean) || math.IsInf(c.Sample.Mean, 0):
		return fmt.Errorf("config: sample.mean %g is not finite", c.Sample.Mean)
	case !(c.Sample.StdDev >= 0) || math.IsInf(c.Sample.StdDev, 0):
		return fmt.Errorf("config: sample.stddev %g is negative or infinite", c.Sample.StdDev)
	case !(c.Confidence.Level > 0 && c.Confidence.Level < 1):
		return fmt.Errorf("config: confidence.level %g not in (0, 1)", c.Confidence.Level)
	}
	if _, err := c.Shutdown(); err != nil {
		return err
	}
	return nil
}

// Shutdown parses ShutdownTimeout.
func (c *Config) Shutdown() (time.Duration, error) {
	d, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		return 0, fmt.Errorf("config: shutdown_timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("config: shutdown_timeout %v is negative", d)
	}
	return d, nil
}

// Options returns the evaluator options for the configured limits.
func (c *Config) Options() []bodmas.Option {
	return []bodmas.Option{
		bodmas.MaxLength(c.Limits.MaxLength),
		bodmas.MaxDepth(c.Limits.MaxDepth),
		bodmas.Prec(c.Limits.Precision),
	}
}
