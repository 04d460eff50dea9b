package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// ProjectConfig holds the per-package defaults read from wingetrel.yaml.
// Pointer fields distinguish "not configured" from a zero value.
type ProjectConfig struct {
	ManifestVersion string `yaml:"manifest_version"`
	SchemaBaseURL   string `yaml:"schema_base_url"`
	Concurrency     *int   `yaml:"concurrency"`
	Validate        *bool  `yaml:"validate"`
	Retries         *int   `yaml:"retries"`
	Timeout         string `yaml:"timeout"`
}

const ConfigFileName = "wingetrel.yaml"

// Load reads ConfigFileName from packageDir.
func Load(packageDir string) (*ProjectConfig, error) {
	configPath := filepath.Join(packageDir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return &cfg, nil
}

func (c *ProjectConfig) validate() error {
	if c.Concurrency != nil && *c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", *c.Concurrency)
	}
	if c.Retries != nil && *c.Retries < 0 {
		return fmt.Errorf("retries cannot be negative, got %d", *c.Retries)
	}
	return nil
}
