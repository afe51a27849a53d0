// Package config provides configuration management for the TradePilot API.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	AIGateway AIGatewayConfig `mapstructure:"ai_gateway" validate:"required"`
	Scraper   ScraperConfig   `mapstructure:"scraper" validate:"required"`
	Strategy  StrategyConfig  `mapstructure:"strategy" validate:"required"`
	Blog      BlogConfig      `mapstructure:"blog" validate:"required"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Health    HealthConfig    `mapstructure:"health"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ServerConfig represents the public HTTP API listener
type ServerConfig struct {
	Port                int `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadTimeoutSeconds  int `mapstructure:"read_timeout_seconds" validate:"required,gt=0"`
	WriteTimeoutSeconds int `mapstructure:"write_timeout_seconds" validate:"required,gt=0"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required"`
	User           string `mapstructure:"user" validate:"required"`
	Password       string `mapstructure:"password" validate:"required"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MinConnections int    `mapstructure:"min_connections" validate:"gte=0"`
}

// AIGatewayConfig represents the hosted chat-completion gateway
type AIGatewayConfig struct {
	BaseURL               string  `mapstructure:"base_url" validate:"required,url"`
	APIKey                string  `mapstructure:"api_key" validate:"required"`
	Model                 string  `mapstructure:"model" validate:"required"`
	VisionModel           string  `mapstructure:"vision_model"`
	Temperature           float32 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	RequestTimeoutSeconds int     `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`
	RetryAttempts         int     `mapstructure:"retry_attempts" validate:"gte=0,lte=5"`
}

// ScraperConfig represents the hosted markdown scraping service
type ScraperConfig struct {
	BaseURL               string  `mapstructure:"base_url" validate:"required,url"`
	APIKey                string  `mapstructure:"api_key" validate:"required"`
	RequestTimeoutSeconds int     `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`
	RetryAttempts         int     `mapstructure:"retry_attempts" validate:"gte=0"`
	RateLimit             float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
	CacheTTLSeconds       int     `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
	OnlyMainContent       bool    `mapstructure:"only_main_content"`
}

// StrategyConfig represents strategy pipeline settings
type StrategyConfig struct {
	DefaultBroker      string `mapstructure:"default_broker" validate:"required"`
	AnalysisPreviewLen int    `mapstructure:"analysis_preview_len" validate:"required,gt=0"`
}

// BlogConfig represents blog generation settings
type BlogConfig struct {
	Sources          []string `mapstructure:"sources" validate:"required,min=1,dive,url"`
	DefaultSourceURL string   `mapstructure:"default_source_url" validate:"required,url"`
	MaxContentChars  int      `mapstructure:"max_content_chars" validate:"required,gt=0"`
	SchedulerEnabled bool     `mapstructure:"scheduler_enabled"`
	Schedule         string   `mapstructure:"schedule" validate:"required_if=SchedulerEnabled true"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// HealthConfig represents the health check listener
type HealthConfig struct {
	Port string `mapstructure:"port"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
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

// ListenAddr returns the API listen address
func (c *Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// RequestTimeout returns the gateway request timeout as a duration
func (g AIGatewayConfig) RequestTimeout() time.Duration {
	return time.Duration(g.RequestTimeoutSeconds) * time.Second
}

// RequestTimeout returns the scraper request timeout as a duration
func (s ScraperConfig) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// CacheTTL returns the scrape cache TTL as a duration
func (s ScraperConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSeconds) * time.Second
}
