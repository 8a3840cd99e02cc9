package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"ENV", "TELEGRAM_BOT_TOKEN", "DB_DRIVER", "DB_DSN", "DB_MAX_OPEN_CONNS",
	"DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME", "SESSION_TTL",
	"REMINDER_ENABLED", "REMINDER_TIMEZONE", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "sqlite3", cfg.DB.Driver)
	assert.Equal(t, "data/linguabot.db", cfg.DB.DSN)
	assert.Equal(t, 10*time.Minute, cfg.Session.TTL)
	assert.True(t, cfg.Reminder.Enabled)
	assert.Equal(t, "Local", cfg.Reminder.Timezone)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.ErrorIs(t, cfg.RequireBotToken(), ErrMissingToken)
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "development")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "postgres://bot@localhost/linguabot?sslmode=disable")
	t.Setenv("SESSION_TTL", "5m")
	t.Setenv("REMINDER_ENABLED", "false")
	t.Setenv("REMINDER_TIMEZONE", "UTC")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Session.TTL)
	assert.False(t, cfg.Reminder.Enabled)
	assert.NoError(t, cfg.RequireBotToken())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"unknown driver", "DB_DRIVER", "mysql", "Tag: oneof"},
		{"unknown log level", "LOG_LEVEL", "verbose", "Tag: oneof"},
		{"unknown timezone", "REMINDER_TIMEZONE", "Mars/Olympus", "invalid reminder timezone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewLogger(t *testing.T) {
	cfg := &Config{Env: "development", Log: LogConfig{Level: "debug"}}
	log, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, log)

	cfg.Log.Level = "loud"
	_, err = NewLogger(cfg)
	assert.Error(t, err)
}
