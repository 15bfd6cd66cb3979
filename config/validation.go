package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that the configuration is usable in the current
// environment. Development and test run fine on defaults; production must
// not ship with placeholder credentials.
func ValidateConfig(cfg *Config) error {
	var errors []string

	if cfg.ServerPort == "" {
		errors = append(errors, "server port is required")
	}
	if cfg.DBHost == "" || cfg.DBPort == "" {
		errors = append(errors, "database host and port are required")
	}
	if cfg.DBName == "" {
		errors = append(errors, "database name is required")
	}
	if cfg.SessionSecret == "" {
		errors = append(errors, "session secret is required")
	}

	if IsProduction() {
		if cfg.SessionSecret == "dev-session-secret" {
			errors = append(errors, "session_secret secret is required in production")
		}
		if cfg.DBPassword == "" || cfg.DBPassword == "postgres" {
			errors = append(errors, "db_password secret is required in production")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "\n"))
	}

	return nil
}
