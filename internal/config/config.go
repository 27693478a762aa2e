// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Backend identifiers. Exactly one backend is active per process.
const (
	BackendLocal    = "local"
	BackendHosted   = "hosted"
	BackendFirebase = "firebase"
)

// Config holds all configuration for the application.
type Config struct {
	// Server Configuration
	GinMode       string        `mapstructure:"GIN_MODE"`
	ServerHost    string        `mapstructure:"SERVER_HOST"`
	ServerPort    string        `mapstructure:"SERVER_PORT"`
	ServerTimeout time.Duration `mapstructure:"SERVER_TIMEOUT_SECONDS"`

	// Backend selection: local | hosted | firebase
	Backend string `mapstructure:"BACKEND"`

	// Embedded database (local backend)
	SQLitePath string `mapstructure:"SQLITE_PATH"`

	// Database Configuration (hosted backend)
	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            string        `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBSSLMode         string        `mapstructure:"DB_SSL_MODE"`
	DBTimezone        string        `mapstructure:"DB_TIMEZONE"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`

	// Session Configuration
	SessionLifetime      time.Duration `mapstructure:"SESSION_LIFETIME_HOURS"`
	SessionCachePath     string        `mapstructure:"SESSION_CACHE_PATH"`
	SessionPurgeSchedule string        `mapstructure:"SESSION_PURGE_SCHEDULE"`
	JWTSecretKey         string        `mapstructure:"JWT_SECRET_KEY"`

	// Redis Configuration (session cache for remote backends)
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	// Firebase Configuration (firebase backend)
	FirebaseServiceAccountKeyPath string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_KEY_PATH"`
	FirebaseProjectID             string `mapstructure:"FIREBASE_PROJECT_ID"`

	// Bootstrap administrator account. The single hard-coded role
	// exception: this email is granted the admin role at creation.
	AdminBootstrapEmail    string `mapstructure:"ADMIN_BOOTSTRAP_EMAIL"`
	AdminBootstrapName     string `mapstructure:"ADMIN_BOOTSTRAP_NAME"`
	AdminBootstrapPassword string `mapstructure:"ADMIN_BOOTSTRAP_PASSWORD"`

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
}

// IsRemoteBackend reports whether the configured backend talks to a remote
// provider (and therefore requires credential material at startup).
func (c *Config) IsRemoteBackend() bool {
	return c.Backend == BackendHosted || c.Backend == BackendFirebase
}

// Load attempts to load configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()

	// Set default values
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_TIMEOUT_SECONDS", 30)

	v.SetDefault("BACKEND", BackendLocal)
	v.SetDefault("SQLITE_PATH", "cv_bank.db")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "cv_bank_db")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 60)

	v.SetDefault("SESSION_LIFETIME_HOURS", 24)
	v.SetDefault("SESSION_CACHE_PATH", "cv_bank_session.json")
	v.SetDefault("SESSION_PURGE_SCHEDULE", "@hourly")
	v.SetDefault("JWT_SECRET_KEY", "")

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	// Firebase
	v.SetDefault("FIREBASE_PROJECT_ID", "")
	v.SetDefault("FIREBASE_SERVICE_ACCOUNT_KEY_PATH", "")

	v.SetDefault("ADMIN_BOOTSTRAP_EMAIL", "admin@usm.edu.co")
	v.SetDefault("ADMIN_BOOTSTRAP_NAME", "Administrador")
	v.SetDefault("ADMIN_BOOTSTRAP_PASSWORD", "admin123")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Convert duration fields
	cfg.ServerTimeout = time.Duration(v.GetInt("SERVER_TIMEOUT_SECONDS")) * time.Second
	cfg.DBConnMaxLifetime = time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES")) * time.Minute
	cfg.SessionLifetime = time.Duration(v.GetInt("SESSION_LIFETIME_HOURS")) * time.Hour

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate enforces the startup-fatal rules: a remote-backed variant must not
// start without its credential material, the local variant must always start.
func (c *Config) validate() error {
	switch c.Backend {
	case BackendLocal:
		return nil
	case BackendHosted:
		if strings.TrimSpace(c.JWTSecretKey) == "" {
			return fmt.Errorf("FATAL: JWT_SECRET_KEY is not set. It is required for the hosted backend")
		}
		if strings.TrimSpace(c.RedisAddr) == "" {
			return fmt.Errorf("FATAL: REDIS_ADDR is not set. It is required for the hosted backend")
		}
		return nil
	case BackendFirebase:
		if strings.TrimSpace(c.FirebaseServiceAccountKeyPath) == "" {
			return fmt.Errorf("FATAL: FIREBASE_SERVICE_ACCOUNT_KEY_PATH is not set. It is required for Firebase Admin SDK initialization")
		}
		if _, err := os.Stat(c.FirebaseServiceAccountKeyPath); os.IsNotExist(err) {
			return fmt.Errorf("FATAL: Firebase service account key file specified in FIREBASE_SERVICE_ACCOUNT_KEY_PATH (%s) not found", c.FirebaseServiceAccountKeyPath)
		}
		if strings.TrimSpace(c.RedisAddr) == "" {
			return fmt.Errorf("FATAL: REDIS_ADDR is not set. It is required for the firebase backend")
		}
		return nil
	default:
		return fmt.Errorf("FATAL: unknown BACKEND %q (expected local, hosted or firebase)", c.Backend)
	}
}
