package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers accepted in STORAGE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DevJWTSecret signs tokens when JWT_SECRET is unset. Only the memory driver
// accepts it.
const DevJWTSecret = "your_strong_secret_key"

var ErrDevJWTSecret = errors.New("JWT_SECRET is not set; refusing to use the development secret with the postgres driver")

type Config struct {
	Port          string
	StorageDriver string
	DatabaseURL   string
	RedisURL      string
	JWTSecret     string

	TelegramBotToken string
	TelegramChatID   int64
	NotifyLang       string

	SchedulerEnabled  bool
	SchedulerInterval time.Duration
	LockTTL           time.Duration
}

// Load reads the process environment, falling back to a local .env file and
// then to defaults.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: .env file not loaded, using process environment")
	}

	if os.Getenv("JWT_SECRET") == "" {
		log.Println("WARNING: JWT_SECRET not set, using an insecure development secret")
	}

	return &Config{
		Port:              getEnv("PORT", "8080"),
		StorageDriver:     getEnv("STORAGE_DRIVER", DriverPostgres),
		DatabaseURL:       getEnv("DATABASE_URL", "host=localhost user=user password=password dbname=civicdesk port=5432 sslmode=disable"),
		RedisURL:          getEnv("REDIS_URL", ""),
		JWTSecret:         getEnv("JWT_SECRET", DevJWTSecret),
		TelegramBotToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:    getEnvInt64("TELEGRAM_CHAT_ID", 0),
		NotifyLang:        getEnv("NOTIFY_LANG", "en"),
		SchedulerEnabled:  getEnvBool("SCHEDULER_ENABLED", false),
		SchedulerInterval: getEnvDuration("SCHEDULER_INTERVAL", 15*time.Minute),
		LockTTL:           getEnvDuration("COMPLAINT_LOCK_TTL", DefaultLockTTL),
	}
}

// Validate rejects configurations that must not serve real traffic.
func (c *Config) Validate() error {
	if c.StorageDriver == DriverPostgres && c.JWTSecret == DevJWTSecret {
		return ErrDevJWTSecret
	}
	return nil
}

// RedisEnabled reports whether a Redis URL is configured. Without Redis the
// process uses in-process locks and the local event hub only.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != ""
}

// TelegramEnabled reports whether both bot token and target chat are configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("WARNING: invalid boolean for %s=%q, using %v", key, value, defaultValue)
		return defaultValue
	}
	return b
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		log.Printf("WARNING: invalid integer for %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		log.Printf("WARNING: invalid duration for %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}
