// Package config provides configuration management for the solfolio service.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Ledger    LedgerConfig
	Redis     RedisConfig
	Postgres  PostgresConfig
	Cache     CacheConfig
	Insights  InsightsConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// LedgerConfig holds upstream ledger API configuration
type LedgerConfig struct {
	BaseURL           string
	APIKey            string
	Currency          string
	DefaultChain      string
	PageSize          int
	RequestsPerSecond float64
	Timeout           time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host           string
	Port           string
	Password       string
	DB             int
	MaxConnections int
}

// PostgresConfig holds Postgres configuration for the durable cache backend
type PostgresConfig struct {
	Host           string
	Port           string
	Database       string
	User           string
	Password       string
	MaxConnections int
}

// URL builds a migrate-compatible connection URL
func (c *PostgresConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// CacheConfig holds insights cache configuration
type CacheConfig struct {
	Backend string // "redis", "postgres" or "memory"
	TTL     time.Duration
}

// InsightsConfig holds insights computation configuration
type InsightsConfig struct {
	MaxTransactions int
	TopPartners     int
	TreemapTopN     int
}

// RateLimitConfig holds per-client API rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from a .env file and environment variables
func LoadConfig() (*Config, error) {
	// .env file is optional - environment variables can be set directly
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnv("SERVER_PORT", "8080"),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:     getEnvAsDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Ledger: LedgerConfig{
			BaseURL:           getEnv("LEDGER_API_BASE_URL", "https://api.zerion.io/v1"),
			APIKey:            getEnv("LEDGER_API_KEY", ""),
			Currency:          getEnv("LEDGER_CURRENCY", "usd"),
			DefaultChain:      getEnv("LEDGER_DEFAULT_CHAIN", "solana"),
			PageSize:          getEnvAsInt("LEDGER_PAGE_SIZE", 100),
			RequestsPerSecond: getEnvAsFloat("LEDGER_REQUESTS_PER_SECOND", 3.0),
			Timeout:           getEnvAsDuration("LEDGER_TIMEOUT", 30*time.Second),
		},
		Redis: RedisConfig{
			Host:           getEnv("REDIS_HOST", "localhost"),
			Port:           getEnv("REDIS_PORT", "6379"),
			Password:       getEnv("REDIS_PASSWORD", ""),
			DB:             getEnvAsInt("REDIS_DB", 0),
			MaxConnections: getEnvAsInt("REDIS_MAX_CONNECTIONS", 50),
		},
		Postgres: PostgresConfig{
			Host:           getEnv("POSTGRES_HOST", "localhost"),
			Port:           getEnv("POSTGRES_PORT", "5432"),
			Database:       getEnv("POSTGRES_DB", "solfolio"),
			User:           getEnv("POSTGRES_USER", "solfolio"),
			Password:       getEnv("POSTGRES_PASSWORD", ""),
			MaxConnections: getEnvAsInt("POSTGRES_MAX_CONNECTIONS", 20),
		},
		Cache: CacheConfig{
			Backend: getEnv("CACHE_BACKEND", "redis"),
			TTL:     getEnvAsDuration("CACHE_TTL", 6*time.Hour),
		},
		Insights: InsightsConfig{
			MaxTransactions: getEnvAsInt("INSIGHTS_MAX_TRANSACTIONS", 1000),
			TopPartners:     getEnvAsInt("INSIGHTS_TOP_PARTNERS", 10),
			TreemapTopN:     getEnvAsInt("INSIGHTS_TREEMAP_TOP_N", 50),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsInt("RATE_LIMIT_RPS", 10),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 20),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks configuration invariants that cannot be defaulted away
func (c *Config) Validate() error {
	if c.Ledger.PageSize <= 0 || c.Ledger.PageSize > 100 {
		return fmt.Errorf("ledger page size must be in (0, 100], got %d", c.Ledger.PageSize)
	}
	if c.Insights.MaxTransactions <= 0 {
		return fmt.Errorf("insights max transactions must be positive, got %d", c.Insights.MaxTransactions)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got %v", c.Cache.TTL)
	}
	switch c.Cache.Backend {
	case "redis", "postgres", "memory":
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	return nil
}

// getEnv retrieves an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat retrieves an environment variable as a float64
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsDuration retrieves an environment variable as a duration
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
