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

// ValidateConfig checks that hard-required configuration is present.
// Provider settings (vision endpoint, chat API key) are intentionally not
// validated here: their routes respond 503 at call time instead.
func ValidateConfig(cfg *Config) error {
	var errors []string

	if cfg.ServerPort == "" {
		errors = append(errors, "SERVER_PORT must not be empty")
	}
	if cfg.JWTSecret == "" {
		errors = append(errors, "JWT_SECRET environment variable is required")
	}
	if cfg.DBUser == "" {
		errors = append(errors, "DB_USER environment variable is required")
	}
	if cfg.DBPassword == "" {
		errors = append(errors, "DB_PASSWORD environment variable is required")
	}
	if cfg.MealDBAPIURL == "" {
		errors = append(errors, "MEALDB_API_URL must not be empty")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}
