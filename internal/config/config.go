// Package config centralises configuration parsing for the lifting diary
// service.
package config

import (
	"os"
	"strings"
	"time"
)

// Config captures runtime configuration values.
type Config struct {
	HTTPAddress            string
	PostgresURL            string
	JWTSecret              string
	JWTIssuer              string
	HTTPTimeout            time.Duration
	CacheInvalidationURL   string
	CacheInvalidationToken string
	KafkaBrokers           []string
	InvalidationTopic      string
}

// Load reads environment variables into Config, applying sensible
// defaults for local dev. An empty POSTGRES_URL selects the in-memory
// repository; an empty invalidation URL and topic selects the no-op
// invalidator.
func Load() Config {
	return Config{
		HTTPAddress:            getEnv("HTTP_ADDRESS", ":8080"),
		PostgresURL:            getEnv("POSTGRES_URL", ""),
		JWTSecret:              getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTIssuer:              getEnv("JWT_ISSUER", "liftingdiary.identity"),
		HTTPTimeout:            getDurationEnv("HTTP_TIMEOUT", 5*time.Second),
		CacheInvalidationURL:   getEnv("CACHE_INVALIDATION_URL", ""),
		CacheInvalidationToken: getEnv("CACHE_INVALIDATION_TOKEN", ""),
		KafkaBrokers:           splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		InvalidationTopic:      getEnv("INVALIDATION_TOPIC", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
