/**
 * @description
 * Configuration loader for the GoldPulse worker.
 * Responsible for reading environment variables, setting defaults, and performing strict validation.
 *
 * @dependencies
 * - github.com/joho/godotenv: For loading .env files
 * - standard "os": For reading env vars
 * - standard "fmt": For error reporting
 *
 * @notes
 * - Fails fast if critical variables (Database URL) are missing.
 * - Job intervals default to the production values (5s prices, 15m news, 60s verification).
 */

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	Redis      RedisConfig
	MarketData MarketDataConfig
	News       NewsConfig
	Jobs       JobsConfig
}

// ServerConfig holds HTTP server settings for the status surface and the
// websocket listener
type ServerConfig struct {
	Port   string
	WSPort string
	Env    string // "development" or "production"
}

// DBConfig holds PostgreSQL settings
type DBConfig struct {
	URL string
}

// RedisConfig holds Redis settings
type RedisConfig struct {
	URL string
}

// MarketDataConfig holds settings for the external price API (Twelve Data compatible)
type MarketDataConfig struct {
	BaseURL string
	APIKey  string
	// MaxConcurrent bounds simultaneous outbound calls to respect upstream throttling
	MaxConcurrent int
}

// NewsConfig holds settings for the external news source
type NewsConfig struct {
	BaseURL    string
	APIKey     string
	Categories []string
}

// JobsConfig holds job intervals and the static poll symbol list
type JobsConfig struct {
	PricePollInterval time.Duration
	NewsInterval      time.Duration
	VerifyInterval    time.Duration
	PollSymbols       []string
}

// Load reads .env file and populates the Config struct
func Load() (*Config, error) {
	// Attempt to load .env, but don't crash if it fails (prod might inject env vars directly)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:   getEnv("PORT", "8081"),
			WSPort: getEnv("WS_PORT", "8082"),
			Env:    getEnv("GO_ENV", "development"),
		},
		DB: DBConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		MarketData: MarketDataConfig{
			BaseURL:       getEnv("MARKET_DATA_BASE_URL", "https://api.twelvedata.com"),
			APIKey:        sanitizeCredential(getEnv("MARKET_DATA_API_KEY", "")),
			MaxConcurrent: getEnvAsInt("MARKET_DATA_RATE_LIMIT", 8),
		},
		News: NewsConfig{
			BaseURL:    getEnv("NEWS_API_BASE_URL", ""),
			APIKey:     sanitizeCredential(getEnv("NEWS_API_KEY", "")),
			Categories: getEnvAsList("NEWS_CATEGORIES", []string{"gold", "forex", "markets"}),
		},
		Jobs: JobsConfig{
			PricePollInterval: time.Duration(getEnvAsInt("PRICE_POLL_INTERVAL_SECONDS", 5)) * time.Second,
			NewsInterval:      time.Duration(getEnvAsInt("NEWS_FETCH_INTERVAL_SECONDS", 900)) * time.Second,
			VerifyInterval:    time.Duration(getEnvAsInt("VERIFY_INTERVAL_SECONDS", 60)) * time.Second,
			PollSymbols: getEnvAsList("PRICE_POLL_SYMBOLS", []string{
				"XAUUSD", // Spot Gold
				"XAGUSD", // Spot Silver
				"EURUSD",
				"GBPUSD",
				"USDJPY",
				"BTCUSD",
			}),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks for required variables
func validate(cfg *Config) error {
	if cfg.DB.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.MarketData.APIKey == "" && cfg.Server.Env != "test" {
		fmt.Println("Warning: MARKET_DATA_API_KEY is missing. Price polling will fail.")
	}
	if cfg.MarketData.MaxConcurrent <= 0 {
		return fmt.Errorf("MARKET_DATA_RATE_LIMIT must be positive")
	}
	return nil
}

// Helper to get env var with default
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func sanitizeCredential(value string) string {
	trimmed := strings.TrimSpace(value)
	return strings.Trim(trimmed, "\"")
}

// Helper to get env var as int
func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

// Helper to get env var as a comma-separated list
func getEnvAsList(key string, fallback []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	parts := strings.Split(valueStr, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	if len(result) == 0 {
		return fallback
	}
	return result
}
