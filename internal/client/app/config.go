package app

import (
	"os"
	"strconv"
	"time"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

type Config struct {
	APIURL          string        // Base URL of the banking API (default: http://localhost:8080)
	Store           string        // Persistence driver: memory, sqlite, redis (default: sqlite)
	DatabaseFile    string        // SQLite database file (default: ./banksync.db)
	RedisAddr       string        // Redis address (default: localhost:6379)
	RedisPrefix     string        // Redis key prefix (default: banksync:)
	PageSize        int           // Page size of every list (default: 25)
	RateLimit       float64       // Outgoing requests per second, 0 disables (default: 10)
	RateBurst       int           // Rate limiter burst (default: 20)
	HTTPTimeout     time.Duration // Per request timeout (default: 10s)
	RefreshInterval time.Duration // Credential refresh check interval (default: 1m)
	Token           string        // Optional: credential to assign at startup
	Env             string        // Environment (dev, staging, prod) (default: dev)
	LogLevel        string        // Log level (debug, info, warn, error) (default: info)
	LogFormat       string        // Log format (json, text) (default: text)
}

func LoadConfig() Config {
	return Config{
		APIURL:          getEnvOrDefault("BANKSYNC_API_URL", "http://localhost:8080"),
		Store:           getEnvOrDefault("BANKSYNC_STORE", StoreSQLite),
		DatabaseFile:    getEnvOrDefault("BANKSYNC_DATABASE_FILE", "banksync.db"),
		RedisAddr:       getEnvOrDefault("BANKSYNC_REDIS_ADDR", "localhost:6379"),
		RedisPrefix:     getEnvOrDefault("BANKSYNC_REDIS_PREFIX", "banksync:"),
		PageSize:        getEnvIntOrDefault("BANKSYNC_PAGE_SIZE", 25),
		RateLimit:       getEnvFloatOrDefault("BANKSYNC_RATE_LIMIT", 10),
		RateBurst:       getEnvIntOrDefault("BANKSYNC_RATE_BURST", 20),
		HTTPTimeout:     getEnvDurationOrDefault("BANKSYNC_HTTP_TIMEOUT", 10*time.Second),
		RefreshInterval: getEnvDurationOrDefault("BANKSYNC_REFRESH_INTERVAL", 1*time.Minute),
		Token:           os.Getenv("BANKSYNC_TOKEN"),
		Env:             getEnvOrDefault("ENV", "dev"),
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       getEnvOrDefault("LOG_FORMAT", "text"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
