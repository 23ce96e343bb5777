package config

import (
	"os"
	"strconv"
	"time"
)

// Application settings
type Config struct {
	Server     ServerConfig
	Logging    LoggingConfig
	Upstream   UpstreamConfig
	Pipeline   PipelineConfig
	Simulation SimulationConfig
}

// Server settings
type ServerConfig struct {
	Port string
}

// Upstream insights API settings
type UpstreamConfig struct {
	BaseURL            string
	APIVersion         string
	AccessToken        string
	AccountID          string
	AccountName        string
	RequestTimeout     time.Duration
	RateLimitPerSecond int
	PageLimit          int
}

// Pipeline policy settings
type PipelineConfig struct {
	// MaxRangeDays bounds the span a single request may cover. Enforced
	// at the delivery boundary, not inside the aggregation core.
	MaxRangeDays          int
	AllowSimulatedDefault bool
}

// Fallback generator bounds
type SimulationConfig struct {
	MinImpressions int
	MaxImpressions int
}

// Logging settings
type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Upstream: UpstreamConfig{
			BaseURL:            getEnv("INSIGHTS_API_URL", "https://graph.facebook.com"),
			APIVersion:         getEnv("INSIGHTS_API_VERSION", "v19.0"),
			AccessToken:        getEnv("INSIGHTS_ACCESS_TOKEN", ""),
			AccountID:          getEnv("INSIGHTS_ACCOUNT_ID", ""),
			AccountName:        getEnv("INSIGHTS_ACCOUNT_NAME", "Primary Account"),
			RequestTimeout:     getDurationEnv("REQUEST_TIMEOUT", "30s"),
			RateLimitPerSecond: getIntEnv("RATE_LIMIT_PER_SECOND", 10),
			PageLimit:          getIntEnv("INSIGHTS_PAGE_LIMIT", 500),
		},
		Pipeline: PipelineConfig{
			MaxRangeDays:          getIntEnv("MAX_RANGE_DAYS", 366),
			AllowSimulatedDefault: getBoolEnv("ALLOW_SIMULATED_DEFAULT", true),
		},
		Simulation: SimulationConfig{
			MinImpressions: getIntEnv("SIM_MIN_IMPRESSIONS", 8000),
			MaxImpressions: getIntEnv("SIM_MAX_IMPRESSIONS", 15000),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
