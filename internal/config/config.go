// Package config provides configuration management for the Bucket Props application.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"`
	StatsAPI   StatsAPIConfig   `mapstructure:"stats_api" validate:"required"`
	PropFeed   PropFeedConfig   `mapstructure:"prop_feed" validate:"required"`
	Model      ModelConfig      `mapstructure:"model" validate:"required"`
	Confidence ConfidenceConfig `mapstructure:"confidence" validate:"required"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline" validate:"required"`
	Training   TrainingConfig   `mapstructure:"training"`
	Refresh    RefreshConfig    `mapstructure:"refresh"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents optional Postgres persistence configuration
type DatabaseConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name               string `mapstructure:"name"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"omitempty,gt=0"`
}

// StatsAPIConfig represents the league stats provider configuration
type StatsAPIConfig struct {
	BaseURL            string  `mapstructure:"base_url" validate:"required,url"`
	APIKey             string  `mapstructure:"api_key"`
	Season             string  `mapstructure:"season" validate:"required,season"`
	RateLimitPerSecond float64 `mapstructure:"rate_limit_per_second" validate:"required,gt=0"`
	TimeoutSeconds     int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries         int     `mapstructure:"max_retries" validate:"gte=0"`
	CacheDir           string  `mapstructure:"cache_dir" validate:"required"`
	CacheTTLMinutes    int     `mapstructure:"cache_ttl_minutes" validate:"required,gt=0"`
}

// PropFeedConfig represents the projections feed configuration
type PropFeedConfig struct {
	BaseURL  string `mapstructure:"base_url" validate:"required,url"`
	APIKey   string `mapstructure:"api_key"`
	LeagueID int    `mapstructure:"league_id" validate:"required,gt=0"`
	PerPage  int    `mapstructure:"per_page" validate:"required,gt=0"`
	Enabled  bool   `mapstructure:"enabled"`
}

// ModelConfig represents the regressor backend configuration
type ModelConfig struct {
	Backend        string `mapstructure:"backend" validate:"required,oneof=artifact http"`
	ArtifactPath   string `mapstructure:"artifact_path"`
	MetadataPath   string `mapstructure:"metadata_path"`
	ServiceURL     string `mapstructure:"service_url" validate:"omitempty,url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"omitempty,gt=0"`
}

// ConfidenceConfig represents confidence scoring configuration
type ConfidenceConfig struct {
	Policy  string `mapstructure:"policy" validate:"required,confidencepolicy"`
	Ceiling int    `mapstructure:"ceiling" validate:"required,min=1,max=100"`
}

// PipelineConfig represents prediction pipeline configuration
type PipelineConfig struct {
	OutputPath        string  `mapstructure:"output_path" validate:"required"`
	PaceSeconds       float64 `mapstructure:"pace_seconds" validate:"gte=0"`
	MinimumConfidence int     `mapstructure:"minimum_confidence" validate:"gte=0,lte=100"`
}

// TrainingConfig represents training dataset export configuration
type TrainingConfig struct {
	Seasons     []string `mapstructure:"seasons" validate:"omitempty,min=1,dive,season"`
	SampleSize  int      `mapstructure:"sample_size" validate:"omitempty,gt=0"`
	OutputPath  string   `mapstructure:"output_path"`
	PaceSeconds float64  `mapstructure:"pace_seconds" validate:"gte=0"`
}

// RefreshConfig represents cache refresh configuration
type RefreshConfig struct {
	Schedule    string  `mapstructure:"schedule"`
	PaceSeconds float64 `mapstructure:"pace_seconds" validate:"gte=0"`
	HealthPort  int     `mapstructure:"health_port" validate:"omitempty,min=1,max=65535"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// StatsAPITimeout returns the stats client timeout as a duration
func (c *Config) StatsAPITimeout() time.Duration {
	return time.Duration(c.StatsAPI.TimeoutSeconds) * time.Second
}

// CacheTTL returns the in-process history cache TTL
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.StatsAPI.CacheTTLMinutes) * time.Minute
}

// Pace returns the between-prop pacing delay
func (c *Config) Pace() time.Duration {
	return time.Duration(c.Pipeline.PaceSeconds * float64(time.Second))
}

// RefreshPace returns the between-player delay during cache refresh
func (c *Config) RefreshPace() time.Duration {
	return time.Duration(c.Refresh.PaceSeconds * float64(time.Second))
}

// TrainingPace returns the between-request delay during training export
func (c *Config) TrainingPace() time.Duration {
	return time.Duration(c.Training.PaceSeconds * float64(time.Second))
}
