package config

import (
	"fmt"
	"os"
)

// Config holds all configuration for the application. It is read once at
// process start and treated as read-only afterwards.
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT configuration
	JWTSecret string

	// External providers. These are soft requirements: a missing value
	// leaves the dependent route failing at call time instead of
	// aborting startup.
	MealDBAPIURL   string
	VisionEndpoint string
	TogetherAPIKey string
	TogetherAPIURL string
}

// LoadConfig creates a new Config instance from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		ServerHost: getEnv("SERVER_HOST", "0.0.0.0"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "forkcast"),
		DBSSLMode:  getEnv("DB_SSL_MODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       0,

		JWTSecret: os.Getenv("JWT_SECRET"),

		MealDBAPIURL:   getEnv("MEALDB_API_URL", "https://www.themealdb.com/api/json/v1/1"),
		VisionEndpoint: os.Getenv("VISION_ENDPOINT"),
		TogetherAPIKey: os.Getenv("TOGETHER_API_KEY"),
		TogetherAPIURL: getEnv("TOGETHER_API_URL", "https://api.together.xyz/v1/chat/completions"),
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// getEnv reads an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
