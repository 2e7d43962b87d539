package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the application configuration
type Config struct {
	Environment string
	ServerPort  int
	LogLevel    string

	// BaseURL is the public origin used when building payment redirect
	// targets, e.g. https://swiftstore.com
	BaseURL string

	RedisURL string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	CORSAllowedOrigins []string

	// Currency is the ISO code quoted on checkout initiation.
	Currency string

	// StoreCacheTTLSeconds bounds how long the router trusts a cached
	// subdomain resolution.
	StoreCacheTTLSeconds int

	// PendingOrderTTLMinutes is how long an unpaid checkout order may sit
	// in PENDING before the reaper cancels it.
	PendingOrderTTLMinutes int
	ReaperIntervalMinutes  int

	// StartbuttonAPIURL is the payment provider endpoint. Empty means the
	// client runs in local mode and mints redirect URLs itself.
	StartbuttonAPIURL string
	StartbuttonAPIKey string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	dbPort, err := intEnv("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := intEnv("STORE_CACHE_TTL_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	pendingTTL, err := intEnv("PENDING_ORDER_TTL_MINUTES", 60)
	if err != nil {
		return nil, err
	}
	reaperInterval, err := intEnv("REAPER_INTERVAL_MINUTES", 5)
	if err != nil {
		return nil, err
	}

	return &Config{
		Environment:            getEnv("ENVIRONMENT", "development"),
		ServerPort:             port,
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		BaseURL:                strings.TrimSuffix(getEnv("BASE_URL", "http://localhost:8080"), "/"),
		RedisURL:               getEnv("REDIS_URL", "redis://localhost:6379"),
		DBHost:                 getEnv("DB_HOST", "localhost"),
		DBPort:                 dbPort,
		DBUser:                 getEnv("DB_USER", "swiftstore"),
		DBPassword:             getEnv("DB_PASSWORD", "dev"),
		DBName:                 getEnv("DB_NAME", "swiftstore"),
		DBSSLMode:              getEnv("DB_SSLMODE", "disable"),
		CORSAllowedOrigins:     parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		Currency:               getEnv("CURRENCY", "USD"),
		StoreCacheTTLSeconds:   cacheTTL,
		PendingOrderTTLMinutes: pendingTTL,
		ReaperIntervalMinutes:  reaperInterval,
		StartbuttonAPIURL:      os.Getenv("STARTBUTTON_API_URL"),
		StartbuttonAPIKey:      os.Getenv("STARTBUTTON_API_KEY"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func intEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
