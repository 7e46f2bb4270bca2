// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	DefaultModelName       = "gemini-2.5-flash"
	DefaultCurrency        = "PEN"
	DefaultQueueBufferSize = 100
	DefaultWorkerCount     = 5
	DefaultMaxJobRetries   = 2
	DefaultSweepSchedule   = "" // empty disables the scheduled sweep
)

// Config holds everything the worker and CLI binaries need.
type Config struct {
	// DatabaseURL is a pgx connection string. Empty selects the in-memory store.
	DatabaseURL string

	// ModelName is the text-generation model used for extraction.
	ModelName string

	// Currency is the fallback currency code when the model omits one.
	Currency string

	LogLevel  string
	LogPretty bool

	QueueBufferSize int
	WorkerCount     int
	MaxJobRetries   int

	// SweepSchedule is a cron expression for the periodic re-categorization
	// sweep. Empty disables it.
	SweepSchedule string
}

// Load reads configuration from the environment. A missing .env file is not
// an error.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		ModelName:       envOr("EXTRACTION_MODEL", DefaultModelName),
		Currency:        envOr("DEFAULT_CURRENCY", DefaultCurrency),
		LogLevel:        envOr("LOG_LEVEL", "info"),
		LogPretty:       envBool("LOG_PRETTY", false),
		QueueBufferSize: envInt("QUEUE_BUFFER_SIZE", DefaultQueueBufferSize),
		WorkerCount:     envInt("WORKER_COUNT", DefaultWorkerCount),
		MaxJobRetries:   envInt("MAX_JOB_RETRIES", DefaultMaxJobRetries),
		SweepSchedule:   envOr("SWEEP_SCHEDULE", DefaultSweepSchedule),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
