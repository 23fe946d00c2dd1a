package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=1"`
}

// ShutdownTimeout is the grace period given to in-flight requests on shutdown.
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL                    string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns           int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns" validate:"gte=0,ltefield=MaxOpenConns"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
	// Access tokens live at most one week.
	TokenLifetimeMinutes        int `mapstructure:"token_lifetime_minutes" validate:"required,gt=0,lte=10080"`
	RefreshTokenLifetimeMinutes int `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gtfield=TokenLifetimeMinutes"`
	BCryptCost                  int `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
}

// CacheConfig selects and tunes the cache backend. An empty RedisURL selects
// the in-process cache.
type CacheConfig struct {
	RedisURL           string `mapstructure:"redis_url" validate:"omitempty,url"`
	TaskListTTLSeconds int    `mapstructure:"task_list_ttl_seconds" validate:"gte=1"`
	StatsTTLSeconds    int    `mapstructure:"stats_ttl_seconds" validate:"gte=1"`
}

// TaskListTTL is how long a cached task list stays fresh.
func (c CacheConfig) TaskListTTL() time.Duration {
	return time.Duration(c.TaskListTTLSeconds) * time.Second
}

// StatsTTL is how long cached statistics stay fresh.
func (c CacheConfig) StatsTTL() time.Duration {
	return time.Duration(c.StatsTTLSeconds) * time.Second
}

// JobsConfig configures the background job runner.
type JobsConfig struct {
	WorkerCount            int `mapstructure:"worker_count" validate:"gte=1"`
	QueueSize              int `mapstructure:"queue_size" validate:"gte=1"`
	CleanupIntervalMinutes int `mapstructure:"cleanup_interval_minutes" validate:"gte=0"`
	TaskRetentionDays      int `mapstructure:"task_retention_days" validate:"gte=1"`
}

// CleanupInterval is the period of the retention sweep; zero disables it.
func (c JobsConfig) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupIntervalMinutes) * time.Minute
}
