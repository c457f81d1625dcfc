package config_test

import (
	"civicdesk/backend/internal/config"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORAGE_DRIVER", "REDIS_URL", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID",
		"SCHEDULER_ENABLED", "SCHEDULER_INTERVAL", "COMPLAINT_LOCK_TTL", "NOTIFY_LANG"} {
		t.Setenv(key, "")
	}

	cfg := config.Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, config.DriverPostgres, cfg.StorageDriver)
	assert.Equal(t, "en", cfg.NotifyLang)
	assert.False(t, cfg.SchedulerEnabled)
	assert.Equal(t, 15*time.Minute, cfg.SchedulerInterval)
	assert.Equal(t, config.DefaultLockTTL, cfg.LockTTL)
	assert.False(t, cfg.RedisEnabled())
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")
	t.Setenv("SCHEDULER_ENABLED", "true")
	t.Setenv("SCHEDULER_INTERVAL", "30s")
	t.Setenv("COMPLAINT_LOCK_TTL", "2s")

	cfg := config.Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, config.DriverMemory, cfg.StorageDriver)
	assert.Equal(t, int64(-100123), cfg.TelegramChatID)
	assert.True(t, cfg.TelegramEnabled())
	assert.True(t, cfg.RedisEnabled())
	assert.True(t, cfg.SchedulerEnabled)
	assert.Equal(t, 30*time.Second, cfg.SchedulerInterval)
	assert.Equal(t, 2*time.Second, cfg.LockTTL)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("SCHEDULER_ENABLED", "maybe")
	t.Setenv("SCHEDULER_INTERVAL", "-5m")
	t.Setenv("TELEGRAM_CHAT_ID", "abc")

	cfg := config.Load()

	assert.False(t, cfg.SchedulerEnabled)
	assert.Equal(t, 15*time.Minute, cfg.SchedulerInterval)
	assert.Equal(t, int64(0), cfg.TelegramChatID)
}

func TestValidateRejectsDevSecretWithPostgres(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORAGE_DRIVER", config.DriverPostgres)

	cfg := config.Load()

	assert.Equal(t, config.DevJWTSecret, cfg.JWTSecret)
	assert.ErrorIs(t, cfg.Validate(), config.ErrDevJWTSecret)

	cfg.StorageDriver = config.DriverMemory
	assert.NoError(t, cfg.Validate())

	t.Setenv("JWT_SECRET", "rotated-secret")
	assert.NoError(t, config.Load().Validate())
}
