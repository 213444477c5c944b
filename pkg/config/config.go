package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Redis    RedisConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for probes)
	HealthPort string
}

// DatabaseConfig holds relational storage configuration. Driver is
// "postgres" or "sqlite3"; both use the same query dialect.
type DatabaseConfig struct {
	Driver string
	DSN    string
}

// AuthConfig holds credential and permission seed configuration
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration

	// PermissionSeedFile optionally overrides the built-in permission
	// matrix with a YAML file.
	PermissionSeedFile string
}

// RedisConfig holds the optional Redis connection for login throttling
type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("MERIDIAN_HOST", "0.0.0.0"),
			Port:            getEnv("MERIDIAN_PORT", "8080"),
			ReadTimeout:     getEnvDuration("MERIDIAN_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("MERIDIAN_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("MERIDIAN_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("MERIDIAN_SHUTDOWN_TIMEOUT", 30*time.Second),
			HealthPort:      getEnv("MERIDIAN_HEALTH_PORT", "9090"),
		},
		Database: DatabaseConfig{
			Driver: getEnv("MERIDIAN_DB_DRIVER", "postgres"),
			DSN:    getEnv("MERIDIAN_DB_DSN", ""),
		},
		Auth: AuthConfig{
			JWTSecret:          getEnv("MERIDIAN_JWT_SECRET", ""),
			TokenTTL:           getEnvDuration("MERIDIAN_TOKEN_TTL", time.Hour),
			PermissionSeedFile: getEnv("MERIDIAN_PERMISSION_SEED_FILE", ""),
		},
		Redis: RedisConfig{
			URL:      getEnv("MERIDIAN_REDIS_URL", ""),
			Password: getEnv("MERIDIAN_REDIS_PASSWORD", ""),
			DB:       getEnvInt("MERIDIAN_REDIS_DB", 0),
		},
		Log: LogConfig{
			Level:  getEnv("MERIDIAN_LOG_LEVEL", "info"),
			Format: getEnv("MERIDIAN_LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	switch c.Database.Driver {
	case "postgres", "sqlite3":
	default:
		return fmt.Errorf("invalid database driver: %s (must be postgres or sqlite3)", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database DSN is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token TTL must be positive")
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}
