package internal

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds defaults that may come from a YAML file. Command line flags
// override any value set here.
type Config struct {
	// Keywords searched in every run
	Keywords []string `yaml:"keywords"`

	// Regex are expressions matched against every line
	Regex []string `yaml:"regex"`

	// Omit lists extensions that are never scanned (log and tmp always are)
	Omit []string `yaml:"omit"`

	// MaxSizeMB skips larger files, 0 - unlimited
	MaxSizeMB int `yaml:"maxsize"`

	Depth          int    `yaml:"depth"`
	Show           bool   `yaml:"show"`
	Archives       bool   `yaml:"archives"`
	FollowSymlinks bool   `yaml:"follow_symlinks"`
	LogLevel       string `yaml:"log_level"`
	Color          *bool  `yaml:"color"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
	}
}

// LoadConfig reads path over the defaults. An empty path or a missing file
// yields the defaults when optional is true.
func LoadConfig(path string, optional bool) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}
