package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the full revizor service configuration.
type Config struct {
	Listen          string `yaml:"listen"`
	DBPath          string `yaml:"db_path"`
	MaxUploadMB     int    `yaml:"max_upload_mb"`
	DefaultPageSize int    `yaml:"default_page_size"`
	LogLevel        string `yaml:"log_level"`
}

// DefaultConfig returns sane defaults.
func DefaultConfig() *Config {
	return &Config{
		Listen:          ":8080",
		DBPath:          "revizor.db",
		MaxUploadMB:     20,
		DefaultPageSize: 20,
		LogLevel:        "info",
	}
}

// LoadConfig reads and parses a YAML config file. Returns DefaultConfig
// merged with the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that required fields are present and values are sane.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("max_upload_mb must be > 0")
	}
	if c.DefaultPageSize <= 0 {
		return fmt.Errorf("default_page_size must be > 0")
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log_level %q", c.LogLevel)
	}
	return nil
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}
