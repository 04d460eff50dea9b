package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vvka-141/wingetrel/internal/config"
	"github.com/vvka-141/wingetrel/pkg/wingetrel"
)

// Environment variables consulted between flags and wingetrel.yaml.
const (
	EnvManifestVersion = "WINGETREL_MANIFEST_VERSION"
	EnvSchemaBaseURL   = "WINGETREL_SCHEMA_BASE_URL"
	EnvConcurrency     = "WINGETREL_CONCURRENCY"
)

// loadProjectConfig loads .env and the package's wingetrel.yaml.
// Returns nil config if wingetrel.yaml does not exist (not an error).
func loadProjectConfig(packageDir string) (*config.ProjectConfig, error) {
	_ = godotenv.Load()

	projectCfg, err := config.Load(packageDir)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: failed to load %s: %w", wingetrel.ErrInvalidConfig, config.ConfigFileName, err)
	}
	return projectCfg, nil
}

// resolveString picks the first configured value:
// flag > environment > wingetrel.yaml > default.
func resolveString(cmd *cobra.Command, flag, flagValue, envKey, fileValue, def string) string {
	if cmd.Flags().Changed(flag) {
		return flagValue
	}
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	if fileValue != "" {
		return fileValue
	}
	return def
}

// resolveConcurrency applies the same precedence to the download concurrency.
func resolveConcurrency(cmd *cobra.Command, flagValue int, projectCfg *config.ProjectConfig) (int, error) {
	n := wingetrel.DefaultConcurrency
	switch {
	case cmd.Flags().Changed("concurrency"):
		n = flagValue
	case os.Getenv(EnvConcurrency) != "":
		parsed, err := strconv.Atoi(os.Getenv(EnvConcurrency))
		if err != nil {
			return 0, fmt.Errorf("%w: %s=%q is not a number", wingetrel.ErrInvalidConfig, EnvConcurrency, os.Getenv(EnvConcurrency))
		}
		n = parsed
	case projectCfg != nil && projectCfg.Concurrency != nil:
		n = *projectCfg.Concurrency
	}

	if n < 1 {
		return 0, fmt.Errorf("%w: concurrency must be at least 1, got %d", wingetrel.ErrInvalidConfig, n)
	}
	return n, nil
}

// resolveRetries returns the number of whole-run retries: flag > wingetrel.yaml > 0.
func resolveRetries(cmd *cobra.Command, flagValue int, projectCfg *config.ProjectConfig) (int, error) {
	n := 0
	switch {
	case cmd.Flags().Changed("retries"):
		n = flagValue
	case projectCfg != nil && projectCfg.Retries != nil:
		n = *projectCfg.Retries
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: retries cannot be negative, got %d", wingetrel.ErrInvalidConfig, n)
	}
	return n, nil
}

// resolveValidate returns whether output is validated: flag > wingetrel.yaml > false.
func resolveValidate(cmd *cobra.Command, flagValue bool, projectCfg *config.ProjectConfig) bool {
	if cmd.Flags().Changed("validate") {
		return flagValue
	}
	if projectCfg != nil && projectCfg.Validate != nil {
		return *projectCfg.Validate
	}
	return false
}

// resolveEffectiveTimeout returns the effective timeout, preferring wingetrel.yaml if the flag wasn't set.
func resolveEffectiveTimeout(cmd *cobra.Command, projectCfg *config.ProjectConfig, flagTimeout time.Duration) (time.Duration, error) {
	if projectCfg != nil && projectCfg.Timeout != "" && !cmd.Flags().Changed("timeout") {
		parsed, err := time.ParseDuration(projectCfg.Timeout)
		if err != nil {
			return 0, fmt.Errorf("%w: invalid timeout in %s: %w", wingetrel.ErrInvalidConfig, config.ConfigFileName, err)
		}
		return parsed, nil
	}
	return flagTimeout, nil
}
