// Package config provides configuration management for the TradePilot API.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix         = "TRADEPILOT"
	defaultConfigPath = "config/config.yaml"
)

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	setDefaults(v)

	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration, tolerating a missing file so that a
// deployment can be driven entirely by TRADEPILOT_* environment variables.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// setDefaults registers every key so AutomaticEnv can resolve it even when
// the YAML file omits the section.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "tradepilot")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 120)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "tradepilot")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.min_connections", 1)

	v.SetDefault("ai_gateway.base_url", "")
	v.SetDefault("ai_gateway.api_key", "")
	v.SetDefault("ai_gateway.model", "google/gemini-2.5-flash")
	v.SetDefault("ai_gateway.vision_model", "")
	v.SetDefault("ai_gateway.temperature", 0.7)
	v.SetDefault("ai_gateway.request_timeout_seconds", 90)
	v.SetDefault("ai_gateway.retry_attempts", 0)

	v.SetDefault("scraper.base_url", "")
	v.SetDefault("scraper.api_key", "")
	v.SetDefault("scraper.request_timeout_seconds", 45)
	v.SetDefault("scraper.retry_attempts", 2)
	v.SetDefault("scraper.rate_limit", 2.0)
	v.SetDefault("scraper.cache_ttl_seconds", 900)
	v.SetDefault("scraper.only_main_content", true)

	v.SetDefault("strategy.default_broker", "paper")
	v.SetDefault("strategy.analysis_preview_len", 500)

	v.SetDefault("blog.default_source_url", "https://finance.yahoo.com/topic/stock-market-news/")
	v.SetDefault("blog.max_content_chars", 8000)
	v.SetDefault("blog.scheduler_enabled", false)
	v.SetDefault("blog.schedule", "0 0 8 * * *")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("health.port", "8081")
}
