package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/vbraga/tubefetch/internal/platform"
)

// Default values
const (
	DefaultMaxParallel = 1
	DefaultRetries     = 3
	MaxParallelLimit   = 8
)

// Config holds all application configuration. Values come from an optional
// YAML file overridden by TUBEFETCH_* environment variables; CLI flags
// override both.
type Config struct {
	Download DownloadConfig `yaml:"download"`
	History  HistoryConfig  `yaml:"history"`
}

// DownloadConfig holds download behavior configuration.
type DownloadConfig struct {
	Dir        string `yaml:"dir" envconfig:"TUBEFETCH_DOWNLOAD_DIR"`
	FFmpegPath string `yaml:"ffmpeg_path" envconfig:"TUBEFETCH_FFMPEG_PATH"`
	Parallel   int    `yaml:"parallel" envconfig:"TUBEFETCH_PARALLEL"`
	Retries    int    `yaml:"retries" envconfig:"TUBEFETCH_RETRIES"`
}

// HistoryConfig holds download-history storage configuration.
type HistoryConfig struct {
	Path     string `yaml:"path" envconfig:"TUBEFETCH_HISTORY_PATH"`
	Disabled bool   `yaml:"disabled" envconfig:"TUBEFETCH_HISTORY_DISABLED"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Download.Dir == "" {
		c.Download.Dir = platform.DefaultDownloadDir()
	}
	if c.Download.Parallel < 1 {
		c.Download.Parallel = DefaultMaxParallel
	}
	if c.Download.Parallel > MaxParallelLimit {
		c.Download.Parallel = MaxParallelLimit
	}
	if c.Download.Retries < 1 {
		c.Download.Retries = DefaultRetries
	}
	if c.History.Path == "" {
		c.History.Path = filepath.Join(c.Download.Dir, "tubefetch-history.db")
	}
}
