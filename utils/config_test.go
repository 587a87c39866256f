package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	os.Setenv("TEST_ENV_VAR", "test-value")
	defer os.Unsetenv("TEST_ENV_VAR")

	value := getEnv("TEST_ENV_VAR", "default-value")
	assert.Equal(t, "test-value", value)

	value = getEnv("NON_EXISTENT_VAR", "default-value")
	assert.Equal(t, "default-value", value)
}

func TestGetEnvAsInt(t *testing.T) {
	os.Setenv("TEST_INT_VAR", "42")
	defer os.Unsetenv("TEST_INT_VAR")

	value := getEnvAsInt("TEST_INT_VAR", 10)
	assert.Equal(t, 42, value)

	os.Setenv("TEST_INVALID_INT_VAR", "not-an-int")
	defer os.Unsetenv("TEST_INVALID_INT_VAR")

	value = getEnvAsInt("TEST_INVALID_INT_VAR", 10)
	assert.Equal(t, 10, value)

	value = getEnvAsInt("NON_EXISTENT_VAR", 10)
	assert.Equal(t, 10, value)
}

func validTestConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		Reddit: RedditConfig{
			ClientID:     "id",
			ClientSecret: "secret",
			UserAgent:    "agent",
			MaxPosts:     50,
			MaxComments:  100,
		},
		Gemini: GeminiConfig{
			APIKey:      "key",
			Model:       "gemini-1.5-flash",
			MaxAttempts: 1,
		},
		Output: OutputConfig{
			Dir: filepath.Join(t.TempDir(), "out"),
		},
	}
}

func TestValidateConfig(t *testing.T) {
	// valid
	validConfig := validTestConfig(t)
	assert.NoError(t, validateConfig(validConfig))

	// output dir should have been created
	info, err := os.Stat(validConfig.Output.Dir)
	assert.NoError(t, err)
	assert.True(t, info.IsDir())

	// missing Reddit client ID
	invalidConfig := validTestConfig(t)
	invalidConfig.Reddit.ClientID = ""
	err = validateConfig(invalidConfig)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "REDDIT_CLIENT_ID")

	// missing user agent
	invalidConfig = validTestConfig(t)
	invalidConfig.Reddit.UserAgent = ""
	err = validateConfig(invalidConfig)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "REDDIT_USER_AGENT")

	// missing Gemini key
	invalidConfig = validTestConfig(t)
	invalidConfig.Gemini.APIKey = ""
	err = validateConfig(invalidConfig)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")

	// non-positive caps
	invalidConfig = validTestConfig(t)
	invalidConfig.Reddit.MaxPosts = 0
	err = validateConfig(invalidConfig)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "REDDIT_MAX_POSTS")

	invalidConfig = validTestConfig(t)
	invalidConfig.Gemini.MaxAttempts = 0
	err = validateConfig(invalidConfig)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_MAX_ATTEMPTS")
}
