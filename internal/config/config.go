// Package config provides configuration management for the fight
// win-probability service.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	OddsAPI    OddsAPIConfig    `mapstructure:"odds_api" validate:"required"`
	Classifier ClassifierConfig `mapstructure:"classifier" validate:"required"`
	Model      ModelConfig      `mapstructure:"model" validate:"required"`
	Elo        EloConfig        `mapstructure:"elo" validate:"required"`
	Jobs       JobsConfig       `mapstructure:"jobs" validate:"required"`
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// OddsAPIConfig represents the odds provider configuration
type OddsAPIConfig struct {
	BaseURL           string  `mapstructure:"base_url" validate:"required,url"`
	StreamURL         string  `mapstructure:"stream_url"`
	APIKey            string  `mapstructure:"api_key"`
	Market            string  `mapstructure:"market" validate:"required"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts     int     `mapstructure:"retry_attempts" validate:"gte=0"`
	RateLimitPerSec   float64 `mapstructure:"rate_limit_per_sec" validate:"required,gt=0"`
	CircuitBreakerMax int     `mapstructure:"circuit_breaker_max" validate:"required,gt=0"`
}

// ClassifierConfig represents the external classifier service configuration
type ClassifierConfig struct {
	HTTPAddress           string `mapstructure:"http_address" validate:"required"`
	RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`
	ModelVersion          string `mapstructure:"model_version" validate:"required"`
	CacheTTLSeconds       int    `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	CacheMaxSize          int    `mapstructure:"cache_max_size" validate:"required,gt=0"`
}

// ModelConfig represents calibration and prediction configuration
type ModelConfig struct {
	ArtifactDir           string  `mapstructure:"artifact_dir" validate:"required"`
	CalibrationMethod     string  `mapstructure:"calibration_method" validate:"required,oneof=isotonic platt"`
	CalibrationMinSamples int     `mapstructure:"calibration_min_samples" validate:"required,gt=0"`
	ConfidenceDelta       float64 `mapstructure:"confidence_delta" validate:"required,gt=0,lt=0.5"`
	MinExpectedValue      float64 `mapstructure:"min_expected_value" validate:"gte=0"`
	MaxKellyFraction      float64 `mapstructure:"max_kelly_fraction" validate:"required,gt=0,lte=1"`
}

// EloConfig represents component Elo configuration
type EloConfig struct {
	Components []string `mapstructure:"components" validate:"required,min=1"`
	KBase      float64  `mapstructure:"k_base" validate:"required,gt=0"`
}

// JobsConfig represents scheduled job configuration
type JobsConfig struct {
	DailyRefreshCron string `mapstructure:"daily_refresh_cron" validate:"required"`
	RefreshDays      int    `mapstructure:"refresh_days" validate:"required,gt=0"`
}

// ServerConfig represents the prediction API server configuration
type ServerConfig struct {
	Port                  int `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadTimeoutSeconds    int `mapstructure:"read_timeout_seconds" validate:"required,gt=0"`
	WriteTimeoutSeconds   int `mapstructure:"write_timeout_seconds" validate:"required,gt=0"`
	ShutdownGraceSeconds  int `mapstructure:"shutdown_grace_seconds" validate:"required,gt=0"`
}

// ConnectionString builds the postgres connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}
