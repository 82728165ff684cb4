// Package config loads service configuration from the environment.
// A local .env file is honored in development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration.
type Config struct {
	AppEnv   string
	Port     string
	LogLevel string

	DatabaseURL string
	RunMigrate  bool

	// JWTSecret enables session token validation when set
	JWTSecret string

	// Issuer identity printed on rendered documents
	IssuerName     string
	IssuerAddress  string
	IssuerEmail    string
	IssuerPhone    string
	CurrencySymbol string
	PDFFooter      string

	ShutdownTimeout time.Duration
}

// Load reads configuration from the environment, after merging an optional
// .env file.
func Load() (*Config, error) {
	// Missing .env is fine outside development
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		Port:     getEnv("APP_PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RunMigrate:  getEnvBool("MIGRATIONS", true),

		JWTSecret: os.Getenv("JWT_SECRET"),

		IssuerName:     getEnv("ISSUER_NAME", "BillCraft"),
		IssuerAddress:  os.Getenv("ISSUER_ADDRESS"),
		IssuerEmail:    os.Getenv("ISSUER_EMAIL"),
		IssuerPhone:    os.Getenv("ISSUER_PHONE"),
		CurrencySymbol: getEnv("CURRENCY_SYMBOL", "$"),
		PDFFooter:      getEnv("PDF_FOOTER", "Thank you for your business."),

		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}
