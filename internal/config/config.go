// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Session  SessionConfig
	Receipt  ReceiptConfig
	App      AppConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// DatabaseConfig selects the driver and holds its connection settings.
// Driver is "sqlite" or "postgres". For sqlite, DSN is the database file
// path; for postgres an explicit DSN wins over the individual fields.
type DatabaseConfig struct {
	Driver   string
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	Debug    bool
}

// SessionConfig holds the signing secret and lifetime of the login cookie.
type SessionConfig struct {
	Secret string
	TTL    time.Duration
}

// ReceiptConfig controls how PDF receipts format money and timestamps.
type ReceiptConfig struct {
	Currency string
	Timezone string
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev          bool
	Migrations   bool
	SeedUsername string
	SeedPassword string
	LogLevel     string
}

// IsPostgres reports whether the postgres driver is selected.
func (d DatabaseConfig) IsPostgres() bool {
	return d.Driver == "postgres" || d.Driver == "postgresql"
}

// ConnString returns the string handed to the gorm driver.
func (d DatabaseConfig) ConnString() string {
	if d.IsPostgres() {
		if d.DSN != "" {
			return d.DSN
		}
		return d.KeyValue()
	}
	return d.DSN
}

// KeyValue returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) KeyValue() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Location resolves the receipt timezone, falling back to UTC.
func (r ReceiptConfig) Location() *time.Location {
	if r.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			DSN:      getEnv("DATABASE_DSN", "ebill.db"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "ebill"),
			Password: getEnv("DB_PASSWORD", "ebill"),
			DBName:   getEnv("DB_NAME", "ebill"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Debug:    getEnvBool("DB_DEBUG", false),
		},
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", "dev-secret-change-me"),
			TTL:    time.Duration(getEnvInt("SESSION_TTL_HOURS", 12)) * time.Hour,
		},
		Receipt: ReceiptConfig{
			Currency: getEnv("RECEIPT_CURRENCY", "$"),
			Timezone: getEnv("RECEIPT_TZ", "UTC"),
		},
		App: AppConfig{
			Dev:          getEnvBool("DEV", true),
			Migrations:   getEnvBool("MIGRATIONS", false),
			SeedUsername: getEnv("SEED_USERNAME", "admin"),
			SeedPassword: os.Getenv("SEED_PASSWORD"),
			LogLevel:     getEnv("LOG_LEVEL", "info"),
		},
	}
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}
