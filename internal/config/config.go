package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const (
	SequenceBackendPostgres = "postgres"
	SequenceBackendRedis    = "redis"

	devJWTSecret = "default_super_secret_key"
)

// Config holds every runtime setting of the API process
type Config struct {
	Port        string
	MetricsAddr string
	GinMode     string
	Environment string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTSecret string
	JWTExpiry time.Duration

	CORSOrigins []string

	LogLevel  string
	LogFormat string

	SequenceBackend string
	RedisAddr       string
	RedisPassword   string
}

// Load reads configs/.env when present and then the process environment
func Load() (*Config, error) {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Debug("no configs/.env file found, using process environment")
	}

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		MetricsAddr:     getEnv("METRICS_ADDR", ":2112"),
		GinMode:         getEnv("GIN_MODE", "debug"),
		Environment:     getEnv("APP_ENV", "development"),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnv("DB_PORT", "5432"),
		DBUser:          getEnv("DB_USER", "postgres"),
		DBPassword:      getEnv("DB_PASSWORD", "postgres"),
		DBName:          getEnv("DB_NAME", "procurement"),
		DBSSLMode:       getEnv("DB_SSLMODE", "disable"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		CORSOrigins:     splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
		SequenceBackend: getEnv("SEQUENCE_BACKEND", SequenceBackendPostgres),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
	}

	if cfg.JWTSecret == "" {
		if cfg.GinMode == "release" {
			return nil, fmt.Errorf("JWT_SECRET environment variable is required in release mode")
		}
		cfg.JWTSecret = devJWTSecret
	}

	expiry, err := ParseExpiry(getEnv("JWT_EXPIRE", "7d"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRE: %w", err)
	}
	cfg.JWTExpiry = expiry

	switch cfg.SequenceBackend {
	case SequenceBackendPostgres, SequenceBackendRedis:
	default:
		return nil, fmt.Errorf("unknown SEQUENCE_BACKEND %q", cfg.SequenceBackend)
	}

	return cfg, nil
}

// DSN builds the postgres connection string
func (c *Config) DSN() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=" + c.DBSSLMode
}

// ParseExpiry accepts Go durations plus a day suffix, e.g. "7d" or "12h"
func ParseExpiry(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if strings.HasSuffix(value, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(value, "d"))
		if err != nil {
			return 0, err
		}
		if days <= 0 {
			return 0, fmt.Errorf("expiry must be positive, got %q", value)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("expiry must be positive, got %q", value)
	}
	return d, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
