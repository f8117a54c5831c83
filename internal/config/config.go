package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
	Jobs     JobsConfig     `mapstructure:"jobs"     validate:"required"`
	Cache    CacheConfig    `mapstructure:"cache"    validate:"required"`
	Reminder ReminderConfig `mapstructure:"reminder" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Path is the SQLite database file; ":memory:" keeps everything in RAM.
	Path string `mapstructure:"path" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`

	// VerificationCacheTTLSeconds bounds how long a verified token is
	// trusted without re-checking the signature.
	VerificationCacheTTLSeconds int `mapstructure:"verification_cache_ttl_seconds" validate:"required,gt=0"`
}

// LLMConfig contains all LLM integration related settings. An empty API key
// disables the model and routes all extraction through the keyword parser.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key"`
	ModelName         string `mapstructure:"model_name"          validate:"required"`
	MaxRetries        int    `mapstructure:"max_retries"         validate:"gte=0"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=0"`
}

// JobsConfig controls the background job queue.
type JobsConfig struct {
	WorkerCount      int `mapstructure:"worker_count"      validate:"required,gt=0"`
	QueueSize        int `mapstructure:"queue_size"        validate:"required,gt=0"`
	RetentionMinutes int `mapstructure:"retention_minutes" validate:"required,gt=0"`
}

// CacheConfig controls the in-memory read caches.
type CacheConfig struct {
	TaskTTLSeconds       int `mapstructure:"task_ttl_seconds"       validate:"required,gt=0"`
	ScheduleTTLSeconds   int `mapstructure:"schedule_ttl_seconds"   validate:"required,gt=0"`
	ExtractionTTLSeconds int `mapstructure:"extraction_ttl_seconds" validate:"required,gt=0"`
	MaxEntries           int `mapstructure:"max_entries"            validate:"required,gt=0"`
}

// ReminderConfig controls the periodic reminder scan and job cleanup.
type ReminderConfig struct {
	// ScanCron is a standard five-field cron expression.
	ScanCron    string `mapstructure:"scan_cron"    validate:"required"`
	CleanupCron string `mapstructure:"cleanup_cron" validate:"required"`
}
