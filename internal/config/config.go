package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level ptrwatch.yaml configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// FetchConfig controls the disclosure-site client.
type FetchConfig struct {
	DownloadDir     string        `yaml:"download_dir"`
	FilingYear      string        `yaml:"filing_year,omitempty"` // empty means current year
	RequestInterval time.Duration `yaml:"request_interval"`
	Timeout         time.Duration `yaml:"timeout"`
}

// IngestConfig controls the batch pipeline.
type IngestConfig struct {
	Workers int    `yaml:"workers"`
	LogDir  string `yaml:"log_dir"` // root for logs/run-log.csv
}

// LoggingConfig controls structured log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads a ptrwatch.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new workspace.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "ptr.db",
		},
		Fetch: FetchConfig{
			DownloadDir:     "reports",
			RequestInterval: time.Second,
			Timeout:         30 * time.Second,
		},
		Ingest: IngestConfig{
			Workers: 4,
			LogDir:  ".",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
