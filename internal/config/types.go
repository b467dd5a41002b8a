package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultConfigFile is the name of the config file inside the config dir.
	DefaultConfigFile = "config.toml"

	// DefaultFilename is used when a download URL has no path segment.
	DefaultFilename = "randl-reward"

	// DefaultProgressInterval is the number of bytes between progress reports.
	DefaultProgressInterval int64 = 512 * 1024

	// DefaultOutputDir is where downloads are written.
	DefaultOutputDir = "."

	// DefaultUserAgent is sent with every HTTP request.
	DefaultUserAgent = "randl/dev"
)

// Config holds the user-tunable settings read from config.toml.
type Config struct {
	// MaxDepth bounds the number of nested repository hops. 0 means unbounded.
	MaxDepth int `toml:"max_depth"`

	OutputDir        string `toml:"output_dir,omitempty"`
	ProgressInterval int64  `toml:"progress_interval,omitempty"`
	DefaultFilename  string `toml:"default_filename,omitempty"`
	UserAgent        string `toml:"user_agent,omitempty"`
}

// Default returns a Config with every field set to its default.
func Default() *Config {
	return &Config{
		MaxDepth:         0,
		OutputDir:        DefaultOutputDir,
		ProgressInterval: DefaultProgressInterval,
		DefaultFilename:  DefaultFilename,
		UserAgent:        DefaultUserAgent,
	}
}

// Load reads and parses a config.toml file from the given path.
// If the file does not exist it returns the defaults (no error).
func Load(path string) (*Config, error) {
	c := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := c.normalize(); err != nil {
		return nil, err
	}

	return c, nil
}

// normalize fills zero values with defaults and rejects invalid settings.
func (c *Config) normalize() error {
	if c.MaxDepth < 0 {
		return fmt.Errorf("invalid max_depth %d: must be 0 (unbounded) or positive", c.MaxDepth)
	}
	if c.ProgressInterval < 0 {
		return fmt.Errorf("invalid progress_interval %d: must be positive", c.ProgressInterval)
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.ProgressInterval == 0 {
		c.ProgressInterval = DefaultProgressInterval
	}
	if c.DefaultFilename == "" {
		c.DefaultFilename = DefaultFilename
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	return nil
}

// Save writes the config back to the given path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	return nil
}
