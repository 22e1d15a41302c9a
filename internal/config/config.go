// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

const (
	TokenFormatOpaque = "opaque"
	TokenFormatJWT    = "jwt"
)

// Config holds the service settings. It is read once at startup and treated as immutable.
type Config struct {
	// Server
	ListenAddr string
	GinMode    string

	// Session tokens
	TokenTTL    time.Duration
	TokenFormat string

	// Key material; a key is generated when empty
	ServerKeyHex string

	// Redis backs the shared token store and the event stream when set
	RedisURL          string
	EventsTopicPrefix string

	// Logging
	LogLevel slog.Level
}

// Load reads the configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:        getEnvString("LISTEN_ADDR", ":9000"),
		GinMode:           getEnvString("GIN_MODE", "release"),
		TokenFormat:       strings.ToLower(getEnvString("TOKEN_FORMAT", TokenFormatOpaque)),
		ServerKeyHex:      os.Getenv("SERVER_KEY_HEX"),
		RedisURL:          os.Getenv("REDIS_URL"),
		EventsTopicPrefix: getEnvString("EVENTS_TOPIC_PREFIX", "auctioneer"),
	}

	ttl, err := getEnvDuration("TOKEN_TTL", 10*time.Second)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive, got %s", ttl)
	}
	cfg.TokenTTL = ttl

	switch cfg.TokenFormat {
	case TokenFormatOpaque, TokenFormatJWT:
	default:
		return nil, fmt.Errorf("TOKEN_FORMAT must be %q or %q, got %q", TokenFormatOpaque, TokenFormatJWT, cfg.TokenFormat)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnvString("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
