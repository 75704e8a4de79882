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

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()

	var errs []ValidationError

	if cfg.ServerPort == "" {
		errs = append(errs, ValidationError{"SERVER_PORT", "must not be empty"})
	}

	switch cfg.LLMProvider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		errs = append(errs, ValidationError{"LLM_PROVIDER", fmt.Sprintf("unsupported provider %q", cfg.LLMProvider)})
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, ValidationError{"LOG_FORMAT", fmt.Sprintf("must be text or json, got %q", cfg.LogFormat)})
	}

	if cfg.LLMTimeout <= 0 {
		errs = append(errs, ValidationError{"LLM_TIMEOUT", "must be positive"})
	}
	if cfg.LLMMaxRetries < 0 {
		errs = append(errs, ValidationError{"LLM_MAX_RETRIES", "must not be negative"})
	}
	if cfg.MaxPhotoBytes <= 0 {
		errs = append(errs, ValidationError{"MAX_PHOTO_BYTES", "must be positive"})
	}
	if cfg.SessionTTL <= 0 {
		errs = append(errs, ValidationError{"SESSION_TTL", "must be positive"})
	}
	if cfg.RateLimitPerHour < 0 {
		errs = append(errs, ValidationError{"RATE_LIMIT_PER_HOUR", "must not be negative"})
	}
	if cfg.ArchivePhotos && cfg.S3BucketName == "" {
		errs = append(errs, ValidationError{"S3_BUCKET_NAME", "is required when ARCHIVE_PHOTOS is enabled"})
	}

	// Sensitive values are mandatory outside of local development
	if env == Production || env == CI {
		if cfg.JWTSecret == "" {
			errs = append(errs, ValidationError{"JWT_SECRET", "is required"})
		}
		if cfg.LLMAPIKey == "" {
			errs = append(errs, ValidationError{"LLM_API_KEY", "is required"})
		}
		if cfg.HistoryEnabled && cfg.DBPassword == "" {
			errs = append(errs, ValidationError{"DB_PASSWORD", "is required when HISTORY_ENABLED is set"})
		}
	}

	if len(errs) > 0 {
		lines := make([]string, 0, len(errs))
		for _, e := range errs {
			lines = append(lines, e.Error())
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(lines, "\n"))
	}

	return nil
}
