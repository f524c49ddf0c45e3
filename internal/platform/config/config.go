// Package config centralizes the environment variables used by the binaries.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config aggregates every parameter the API and worker need.
type Config struct {
	HTTPAddress string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	TaskQueueKey   string
	TallyKeyPrefix string

	RateLimitEnabled       bool
	RateLimitMaxActions    int
	RateLimitWindowSeconds int
	RateLimitKeyPrefix     string

	AutoMigrate bool

	WorkerMetricsAddress string
	WorkerMaxAttempts    int

	ObjectStoreDir     string
	ObjectStoreBaseURL string

	// AdminRecipientID is the profile that receives candidacy
	// application notifications.
	AdminRecipientID string
}

func Load() (Config, error) {
	// Defaults favor local runs; variables override them in Docker/K8s.
	cfg := Config{
		HTTPAddress:            getEnv("HTTP_ADDRESS", ":8080"),
		PostgresHost:           getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:           getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:           getEnv("POSTGRES_USER", "halalan"),
		PostgresPassword:       getEnv("POSTGRES_PASSWORD", "halalan"),
		PostgresDB:             getEnv("POSTGRES_DB", "halalan"),
		PostgresSSLMode:        getEnv("POSTGRES_SSLMODE", "disable"),
		RedisAddr:              getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		TaskQueueKey:           getEnv("REDIS_TASK_QUEUE_KEY", "tasks:sideeffects"),
		TallyKeyPrefix:         getEnv("REDIS_TALLY_PREFIX", "tally"),
		RateLimitEnabled:       getEnv("VOTE_RATE_LIMIT_ENABLED", "true") == "true",
		RateLimitMaxActions:    getEnvAsInt("VOTE_RATE_LIMIT_MAX", 10),
		RateLimitWindowSeconds: getEnvAsInt("VOTE_RATE_LIMIT_WINDOW", 60),
		RateLimitKeyPrefix:     getEnv("VOTE_RATE_LIMIT_PREFIX", "ratelimit"),
		AutoMigrate:            getEnvAsBool("DB_AUTO_MIGRATE", true),
		WorkerMetricsAddress:   getEnv("WORKER_METRICS_ADDRESS", ":9090"),
		WorkerMaxAttempts:      getEnvAsInt("WORKER_MAX_ATTEMPTS", 3),
		ObjectStoreDir:         getEnv("OBJECT_STORE_DIR", "./data/uploads"),
		ObjectStoreBaseURL:     getEnv("OBJECT_STORE_BASE_URL", "http://localhost:8080/uploads"),
		AdminRecipientID:       os.Getenv("ADMIN_RECIPIENT_ID"),
	}

	dbStr := getEnv("REDIS_DB", "0")
	dbInt, err := strconv.Atoi(dbStr)
	if err != nil {
		return Config{}, fmt.Errorf("config: invalid REDIS_DB: %w", err)
	}
	cfg.RedisDB = dbInt

	return cfg, nil
}

func (c Config) PostgresDSN() string {
	// DSN format stays compatible with GORM and migration tooling.
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.PostgresUser,
		c.PostgresPassword,
		c.PostgresHost,
		c.PostgresPort,
		c.PostgresDB,
		c.PostgresSSLMode,
	)
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvAsInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func getEnvAsBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	switch value {
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return true
	}
}
