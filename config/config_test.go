package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_USER", "test")
	t.Setenv("DB_PASSWORD", "test")
}

func TestLoadConfig(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "https://www.themealdb.com/api/json/v1/1", cfg.MealDBAPIURL)
	assert.Equal(t, "https://api.together.xyz/v1/chat/completions", cfg.TogetherAPIURL)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("MEALDB_API_URL", "http://localhost:9000/mealdb")
	t.Setenv("VISION_ENDPOINT", "http://localhost:9001/vision")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.ServerPort)
	assert.Equal(t, "http://localhost:9000/mealdb", cfg.MealDBAPIURL)
	assert.Equal(t, "http://localhost:9001/vision", cfg.VisionEndpoint)
}

func TestLoadConfigMissingSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_PASSWORD", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestProviderSettingsAreOptional(t *testing.T) {
	setRequiredEnv(t)
	os.Unsetenv("VISION_ENDPOINT")
	os.Unsetenv("TOGETHER_API_KEY")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	// Startup must succeed without provider credentials; the dependent
	// routes fail at call time instead.
	assert.Empty(t, cfg.VisionEndpoint)
	assert.Empty(t, cfg.TogetherAPIKey)
}

func TestGetEnvironment(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("ENV", "test")
	assert.Equal(t, Test, GetEnvironment())
	assert.True(t, IsTest())

	t.Setenv("ENV", "production")
	assert.Equal(t, Production, GetEnvironment())

	t.Setenv("ENV", "")
	assert.Equal(t, Development, GetEnvironment())
}
