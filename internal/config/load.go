package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables use the
// SMARTTIME_ prefix with underscores for nesting, e.g.
// SMARTTIME_SERVER_PORT or SMARTTIME_AUTH_JWT_SECRET, and take precedence
// over file values. Returns a populated Config or an error if loading or
// validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No file is fine, environment variables can carry everything
	}

	v.SetEnvPrefix("SMARTTIME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers a default for every key so AutomaticEnv can
// override each one during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.path", "smarttime.db")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.verification_cache_ttl_seconds", 300)

	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay_seconds", 1)

	v.SetDefault("jobs.worker_count", 2)
	v.SetDefault("jobs.queue_size", 100)
	v.SetDefault("jobs.retention_minutes", 60)

	v.SetDefault("cache.task_ttl_seconds", 300)
	v.SetDefault("cache.schedule_ttl_seconds", 600)
	v.SetDefault("cache.extraction_ttl_seconds", 600)
	v.SetDefault("cache.max_entries", 1024)

	v.SetDefault("reminder.scan_cron", "* * * * *")
	v.SetDefault("reminder.cleanup_cron", "0 * * * *")
}
