package utils

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all configuration for the application
type Config struct {
	App    AppConfig
	Reddit RedditConfig
	Gemini GeminiConfig
	Output OutputConfig
	Server ServerConfig
}

// AppConfig holds application-level configuration
type AppConfig struct {
	Name    string
	Version string
}

// RedditConfig holds Reddit API configuration
type RedditConfig struct {
	ClientID             string
	ClientSecret         string
	UserAgent            string
	MaxPosts             int
	MaxComments          int
	MaxRequestsPerMinute int // value is per minute, multiply by 10 for 10-minute rate
}

// GeminiConfig holds LLM API configuration
type GeminiConfig struct {
	APIKey         string
	Model          string
	MaxAttempts    int
	TimeoutSeconds int
}

// OutputConfig holds report output configuration
type OutputConfig struct {
	Dir string
}

// ServerConfig holds the optional serve-mode configuration
type ServerConfig struct {
	Port int
}

// LoadConfig loads configuration from a .env file plus the environment.
// A missing .env file is tolerated when the variables are already set.
func LoadConfig(envPath string, log *logrus.Logger) (*Config, error) {
	if envPath == "" {
		envPath = ".env"
	}

	if err := godotenv.Load(envPath); err != nil {
		log.WithField("file", envPath).Debug("No .env file loaded, using process environment")
	}

	config := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "Reddit Persona Generator"),
			Version: getEnv("APP_VERSION", "1.0.0"),
		},
		Reddit: RedditConfig{
			ClientID:             getEnv("REDDIT_CLIENT_ID", ""),
			ClientSecret:         getEnv("REDDIT_CLIENT_SECRET", ""),
			UserAgent:            getEnv("REDDIT_USER_AGENT", ""),
			MaxPosts:             getEnvAsInt("REDDIT_MAX_POSTS", 100),
			MaxComments:          getEnvAsInt("REDDIT_MAX_COMMENTS", 100),
			MaxRequestsPerMinute: getEnvAsInt("REDDIT_MAX_REQUESTS_PER_MINUTE", 100),
		},
		Gemini: GeminiConfig{
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			Model:          getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			MaxAttempts:    getEnvAsInt("GEMINI_MAX_ATTEMPTS", 1),
			TimeoutSeconds: getEnvAsInt("GEMINI_TIMEOUT_SECONDS", 60),
		},
		Output: OutputConfig{
			Dir: getEnv("OUTPUT_DIR", "sample_outputs"),
		},
		Server: ServerConfig{
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
	}

	// validation
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	log.WithField("file", envPath).Info("Config loaded successfully")
	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	// Check Reddit API credentials
	if config.Reddit.ClientID == "" {
		return fmt.Errorf("REDDIT_CLIENT_ID environment variable is required")
	}
	if config.Reddit.ClientSecret == "" {
		return fmt.Errorf("REDDIT_CLIENT_SECRET environment variable is required")
	}

	// User-Agent required per API documentation;  it has strict requirements.  see example.env
	if config.Reddit.UserAgent == "" {
		return fmt.Errorf("REDDIT_USER_AGENT environment variable is required")
	}
	if config.Gemini.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}
	if config.Reddit.MaxPosts < 1 {
		return fmt.Errorf("REDDIT_MAX_POSTS must be positive")
	}
	if config.Reddit.MaxComments < 1 {
		return fmt.Errorf("REDDIT_MAX_COMMENTS must be positive")
	}
	if config.Gemini.MaxAttempts < 1 {
		return fmt.Errorf("GEMINI_MAX_ATTEMPTS must be positive")
	}
	if config.Output.Dir == "" {
		return fmt.Errorf("OUTPUT_DIR must not be empty")
	}

	// create the output directory up front so render failures are caught early
	if err := os.MkdirAll(config.Output.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	return nil
}
