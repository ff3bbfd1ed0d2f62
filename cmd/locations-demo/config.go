package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the demo server settings.
type Config struct {
	Adapter         string
	Port            int
	Environment     string
	LogLevel        slog.Level
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// LoadConfig reads settings from the environment after loading envFiles.
// Missing env files are ignored; variables already set win over file values.
func LoadConfig(envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	port, err := strconv.Atoi(getEnvOrDefault("PORT", "8080"))
	if err != nil || port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid PORT %q", os.Getenv("PORT"))
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(getEnvOrDefault("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	shutdown, err := time.ParseDuration(getEnvOrDefault("SHUTDOWN_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Adapter:         strings.ToLower(getEnvOrDefault("ADAPTER", "echo")),
		Port:            port,
		Environment:     getEnvOrDefault("APP_ENV", "development"),
		LogLevel:        level,
		ShutdownTimeout: shutdown,
	}
	for _, origin := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	switch cfg.Adapter {
	case "echo", "gin", "fiber":
	default:
		return nil, fmt.Errorf("invalid ADAPTER %q: must be echo, gin or fiber", cfg.Adapter)
	}
	return cfg, nil
}

// Addr is the listen address for Port.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}
