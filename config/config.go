package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported LLM providers
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort     string   `mapstructure:"server_port"`
	ServerHost     string   `mapstructure:"server_host"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// Logging configuration
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// Database configuration (suggestion history)
	HistoryEnabled bool   `mapstructure:"history_enabled"`
	DBHost         string `mapstructure:"db_host"`
	DBPort         string `mapstructure:"db_port"`
	DBUser         string `mapstructure:"db_user"`
	DBPassword     string `mapstructure:"db_password"`
	DBName         string `mapstructure:"db_name"`
	DBSSLMode      string `mapstructure:"db_ssl_mode"`

	// Redis configuration
	RedisHost     string `mapstructure:"redis_host"`
	RedisPort     string `mapstructure:"redis_port"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisURL      string `mapstructure:"redis_url"`

	// Session configuration
	JWTSecret  string        `mapstructure:"jwt_secret"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`

	// LLM configuration
	LLMProvider   string        `mapstructure:"llm_provider"`
	LLMAPIKey     string        `mapstructure:"llm_api_key"`
	LLMAPIURL     string        `mapstructure:"llm_api_url"`
	LLMModel      string        `mapstructure:"llm_model"`
	LLMTimeout    time.Duration `mapstructure:"llm_timeout"`
	LLMMaxRetries int           `mapstructure:"llm_max_retries"`

	// Suggestion configuration
	MaxPhotoBytes      int64         `mapstructure:"max_photo_bytes"`
	SuggestionCacheTTL time.Duration `mapstructure:"suggestion_cache_ttl"`
	RateLimitPerHour   int           `mapstructure:"rate_limit_per_hour"`

	// Photo archive configuration
	ArchivePhotos bool   `mapstructure:"archive_photos"`
	S3BucketName  string `mapstructure:"s3_bucket_name"`
	AWSRegion     string `mapstructure:"aws_region"`

	TelemetryEnabled bool `mapstructure:"telemetry_enabled"`
}

// sensitive keys may be supplied as Docker secrets and take precedence over the environment
var secretKeys = []string{
	"db_password",
	"redis_password",
	"jwt_secret",
	"llm_api_key",
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	v := viper.New()
	setDefaults(v, env)
	v.AutomaticEnv()

	// Docker secrets override plain environment variables
	for _, name := range secretKeys {
		if value := readSecret(name); value != "" {
			v.Set(name, value)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	if cfg.LLMAPIURL == "" {
		cfg.LLMAPIURL = defaultAPIURL(cfg.LLMProvider)
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = defaultModel(cfg.LLMProvider)
	}

	// Validate the configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults registers every key so that AutomaticEnv can resolve it during Unmarshal
func setDefaults(v *viper.Viper, env Environment) {
	v.SetDefault("server_port", "8080")
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("allowed_origins", []string{"http://localhost:5173", "http://frontend:5173"})

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	if env == Production {
		v.SetDefault("log_format", "json")
	}

	v.SetDefault("history_enabled", false)
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "recipesnap")
	v.SetDefault("db_ssl_mode", "disable")

	v.SetDefault("redis_host", "")
	v.SetDefault("redis_port", "6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_url", "")

	v.SetDefault("jwt_secret", "")
	v.SetDefault("session_ttl", 24*time.Hour)

	v.SetDefault("llm_provider", ProviderOpenAI)
	v.SetDefault("llm_api_key", "")
	v.SetDefault("llm_api_url", "")
	v.SetDefault("llm_model", "")
	v.SetDefault("llm_timeout", 60*time.Second)
	v.SetDefault("llm_max_retries", 3)

	v.SetDefault("max_photo_bytes", int64(10<<20))
	v.SetDefault("suggestion_cache_ttl", time.Hour)
	v.SetDefault("rate_limit_per_hour", 30)

	v.SetDefault("archive_photos", false)
	v.SetDefault("s3_bucket_name", "recipesnap-ingredient-photos")
	v.SetDefault("aws_region", "")

	v.SetDefault("telemetry_enabled", false)
}

func defaultAPIURL(provider string) string {
	if provider == ProviderAnthropic {
		// the SDK appends the /v1/messages path itself
		return "https://api.anthropic.com"
	}
	return "https://api.openai.com/v1/chat/completions"
}

func defaultModel(provider string) string {
	if provider == ProviderAnthropic {
		return "claude-3-5-haiku-latest"
	}
	return "gpt-4o-mini"
}

// Addr returns the listen address of the HTTP server
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// RedisConfigured reports whether a Redis endpoint was provided
func (c *Config) RedisConfigured() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// DSN returns the Postgres connection string for the history database
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
