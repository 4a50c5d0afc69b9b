package conf

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tphakala/applog/internal/logger"
)

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVars   []string           // Environment variable names, first set wins
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation
func getEnvBindings() []envBinding {
	return []envBinding{
		{"environment", []string{"APP_ENV", "ENV"}, validateEnvEnvironment},
		{"database.url", []string{"DATABASE_URL"}, validateEnvDatabaseURL},
		{"log.dir", []string{"LOG_DIR"}, nil},
		{"log.queuesize", []string{"LOG_BUFFER_SIZE"}, validateEnvQueueSize},
		{"log.blockonfull", []string{"LOG_BLOCK_ON_FULL"}, validateEnvBool},
		{"log.redact", []string{"LOG_REDACT"}, validateEnvBool},
		{"database.janitorinterval", []string{"LOG_JANITOR_INTERVAL"}, validateEnvDuration},
		{"metrics.listen", []string{"METRICS_LISTEN"}, nil},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars(v *viper.Viper) error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		args := append([]string{binding.ConfigKey}, binding.EnvVars...)
		if err := v.BindEnv(args...); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", strings.Join(binding.EnvVars, "/"), err))
			continue
		}

		if binding.Validate == nil {
			continue
		}
		for _, name := range binding.EnvVars {
			if envValue := os.Getenv(name); envValue != "" {
				if err := binding.Validate(envValue); err != nil {
					warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", name, envValue, err))
				}
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}

	return nil
}

// Environment variable validation functions

// validateEnvBool validates boolean environment variables
func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("invalid boolean value '%s': must be true/false, 1/0, t/f, TRUE/FALSE, T/F", value)
	}
	return nil
}

func validateEnvEnvironment(value string) error {
	_, err := logger.ParseEnvironment(value)
	return err
}

func validateEnvDatabaseURL(value string) error {
	if strings.TrimSpace(value) != value {
		return fmt.Errorf("database url must not have surrounding whitespace")
	}
	return nil
}

func validateEnvQueueSize(value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid queue size: %w", err)
	}
	if n < 1 || n > maxQueueSize {
		return fmt.Errorf("queue size must be between 1 and %d, got %d", maxQueueSize, n)
	}
	return nil
}

func validateEnvDuration(value string) error {
	if _, err := time.ParseDuration(value); err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}
	return nil
}
