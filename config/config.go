package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ByLCY/timeline/layout"
)

// Config is the YAML configuration of the timeline command.
type Config struct {
	Wrap struct {
		TargetLength int `yaml:"target_length"` // characters per tooltip line
	} `yaml:"wrap"`
	Enhancer EnhancerConfig `yaml:"enhancer"`
	Output   OutputConfig   `yaml:"output"`
	Metrics  struct {
		Textfile string `yaml:"textfile"` // optional prometheus textfile path
	} `yaml:"metrics"`
}

type EnhancerConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Mode       string        `yaml:"mode"`  // timeline | event
	URL        string        `yaml:"url"`   // http://localhost:11434/api/generate
	Model      string        `yaml:"model"` // llama3
	Timeout    time.Duration `yaml:"timeout"`
	Retries    int           `yaml:"retries"`
	Backoff    time.Duration `yaml:"backoff"`
	MaxBackoff time.Duration `yaml:"max_backoff"`
}

type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"` // html | svg | pdf | text
	Name   string `yaml:"name"`   // file name template without extension
}

const (
	ModeTimeline = "timeline"
	ModeEvent    = "event"
)

var formats = map[string]bool{"html": true, "svg": true, "pdf": true, "text": true}

// Default returns the configuration used when no file is given.
func Default() Config {
	var c Config
	c.Wrap.TargetLength = layout.DefaultTargetLength
	c.Enhancer = EnhancerConfig{
		Enabled:    true,
		Mode:       ModeTimeline,
		URL:        "http://localhost:11434/api/generate",
		Model:      "llama3",
		Timeout:    2 * time.Minute,
		Retries:    2,
		Backoff:    500 * time.Millisecond,
		MaxBackoff: 5 * time.Second,
	}
	c.Output = OutputConfig{
		Dir:    ".",
		Format: "html",
		Name:   "timeline_${topic|slug}",
	}
	return c
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted silently.
func (c *Config) Validate() error {
	var errs []error
	if c.Wrap.TargetLength <= 0 {
		errs = append(errs, fmt.Errorf("wrap.target_length must be positive, got %d", c.Wrap.TargetLength))
	}
	c.Output.Format = strings.ToLower(c.Output.Format)
	if !formats[c.Output.Format] {
		errs = append(errs, fmt.Errorf("output.format %q is not one of html, svg, pdf, text", c.Output.Format))
	}
	switch c.Enhancer.Mode {
	case ModeTimeline, ModeEvent:
	default:
		errs = append(errs, fmt.Errorf("enhancer.mode %q is not one of timeline, event", c.Enhancer.Mode))
	}
	if c.Enhancer.Retries < 0 {
		errs = append(errs, errors.New("enhancer.retries must not be negative"))
	}
	return errors.Join(errs...)
}
