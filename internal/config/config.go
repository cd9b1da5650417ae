
// Package config loads the YAML settings shared by the command line tool and
// the HTTP service.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"markup-tokens/pkg/logger"
)

var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrInvalidConfig  = errors.New("invalid config")
)

// MaxInputSize limits the size of a config file.
const MaxInputSize = 1 << 20

type Config struct {
	Evernote    bool         `yaml:"evernote"`
	Selector    string       `yaml:"selector"`
	Concurrency int          `yaml:"concurrency"`
	LogLevel    string       `yaml:"logLevel"`
	Fetch       FetchConfig  `yaml:"fetch"`
	Server      ServerConfig `yaml:"server"`
}

// FetchConfig controls how markup is downloaded when a source is a URL.
type FetchConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	DialTimeout   time.Duration `yaml:"dialTimeout"`
	SizeCap       int64         `yaml:"sizeCap"` // bytes read per document
	UserAgent     string        `yaml:"userAgent"`
	RespectRobots bool          `yaml:"respectRobots"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
}

func Default() *Config {
	return &Config{
		Concurrency: 10,
		LogLevel:    "info",
		Fetch: FetchConfig{
			Timeout:     15 * time.Second,
			DialTimeout: 5 * time.Second,
			SizeCap:     5 << 20,
			UserAgent:   "markup-tokens/1.0",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
	}
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes data, rejecting unknown keys. Keys left out or set to zero
// keep their default values.
func Parse(data []byte) (*Config, error) {
	if len(data) > MaxInputSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrConfigParse, len(data), MaxInputSize)
	}
	var cfg Config
	if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	cfg.applyDefaults(Default())
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults(d *Config) {
	if c.Concurrency == 0 {
		c.Concurrency = d.Concurrency
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	setDuration(&c.Fetch.Timeout, d.Fetch.Timeout)
	setDuration(&c.Fetch.DialTimeout, d.Fetch.DialTimeout)
	if c.Fetch.SizeCap == 0 {
		c.Fetch.SizeCap = d.Fetch.SizeCap
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = d.Fetch.UserAgent
	}
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	setDuration(&c.Server.ReadTimeout, d.Server.ReadTimeout)
	setDuration(&c.Server.WriteTimeout, d.Server.WriteTimeout)
	setDuration(&c.Server.IdleTimeout, d.Server.IdleTimeout)
}

func setDuration(d *time.Duration, def time.Duration) {
	if *d == 0 {
		*d = def
	}
}

func (c *Config) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be at least 1, got %d", ErrInvalidConfig, c.Concurrency)
	}
	if c.Fetch.SizeCap < 1 {
		return fmt.Errorf("%w: fetch.sizeCap must be positive, got %d", ErrInvalidConfig, c.Fetch.SizeCap)
	}
	timeouts := []struct {
		name string
		d    time.Duration
	}{
		{"fetch.timeout", c.Fetch.Timeout},
		{"fetch.dialTimeout", c.Fetch.DialTimeout},
		{"server.readTimeout", c.Server.ReadTimeout},
		{"server.writeTimeout", c.Server.WriteTimeout},
		{"server.idleTimeout", c.Server.IdleTimeout},
	}
	for _, t := range timeouts {
		if t.d <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidConfig, t.name, t.d)
		}
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: logLevel: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Marshal renders c as YAML, the same shape Parse accepts.
func (c *Config) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return out, nil
}
