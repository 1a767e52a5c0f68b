package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr              string
	DBDriver          string
	DBDSN             string
	LogLevel          string
	Timezone          string
	TokenTTL          time.Duration
	WorkerCount       int
	WorkerQueueSize   int
	ReminderInterval  time.Duration
	ReminderStartHour int
	ReminderEndHour   int
	TelegramBotToken  string
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:              envOr("ADDR", ":8080"),
		DBDriver:          envOr("DB_DRIVER", "sqlite3"),
		DBDSN:             envOr("DB_DSN", "file:studyflow.db"),
		LogLevel:          envOr("LOG_LEVEL", "INFO"),
		Timezone:          envOr("TIMEZONE", "UTC"),
		TokenTTL:          time.Duration(envIntOr("TOKEN_TTL_HOURS", 720)) * time.Hour,
		WorkerCount:       envIntOr("WORKER_COUNT", 2),
		WorkerQueueSize:   envIntOr("WORKER_QUEUE_SIZE", 64),
		ReminderInterval:  envDurationOr("REMINDER_INTERVAL", time.Hour),
		ReminderStartHour: envIntOr("REMINDER_START_HOUR", 8),
		ReminderEndHour:   envIntOr("REMINDER_END_HOUR", 22),
		TelegramBotToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
	}
}

// Validate checks the configuration and reports every problem found.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	switch c.DBDriver {
	case "sqlite3", "postgres":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be sqlite3 or postgres, got %q", c.DBDriver))
	}
	if strings.TrimSpace(c.DBDSN) == "" {
		errs = append(errs, errors.New("DB_DSN cannot be empty"))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("TIMEZONE is invalid: %w", err))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL_HOURS must be positive"))
	}
	if c.WorkerCount < 1 {
		errs = append(errs, errors.New("WORKER_COUNT must be at least 1"))
	}
	if c.WorkerQueueSize < 1 {
		errs = append(errs, errors.New("WORKER_QUEUE_SIZE must be at least 1"))
	}
	if c.ReminderInterval < 0 {
		errs = append(errs, errors.New("REMINDER_INTERVAL cannot be negative"))
	}
	if c.ReminderStartHour < 0 || c.ReminderStartHour > 23 {
		errs = append(errs, errors.New("REMINDER_START_HOUR must be between 0 and 23"))
	}
	if c.ReminderEndHour < 0 || c.ReminderEndHour > 23 {
		errs = append(errs, errors.New("REMINDER_END_HOUR must be between 0 and 23"))
	}
	return errors.Join(errs...)
}

// Location returns the configured time zone, falling back to UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if v == "0" {
			return 0
		}
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %s", key, v, def)
	}
	return def
}
