// Package config provides functionality for loading, saving, and managing
// application configuration settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the configuration settings for the application.
type Config struct {
	Listen       string `yaml:"listen"`
	DatabaseDir  string `yaml:"database_dir"`
	DatabaseFile string `yaml:"database_file"`
	ExportDir    string `yaml:"export_dir"`
	LogLevel     string `yaml:"log_level"`
	LogPretty    bool   `yaml:"log_pretty"`
}

// Default returns the configuration used when no file or overrides exist.
func Default() *Config {
	return &Config{
		Listen:       ":8460",
		DatabaseDir:  "./data",
		DatabaseFile: "siteforge.db",
		ExportDir:    ".",
		LogLevel:     "info",
		LogPretty:    true,
	}
}

// Load reads the configuration from the YAML file at path, creating a
// default file when none exists, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := Save(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else {
		file, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// Save writes the configuration to the YAML file at path.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Listen = getEnv("SITEFORGE_LISTEN", c.Listen)
	c.DatabaseDir = getEnv("SITEFORGE_DATA", c.DatabaseDir)
	c.DatabaseFile = getEnv("SITEFORGE_DB_FILE", c.DatabaseFile)
	c.ExportDir = getEnv("SITEFORGE_EXPORT_DIR", c.ExportDir)
	c.LogLevel = getEnv("SITEFORGE_LOG_LEVEL", c.LogLevel)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
