package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the application configuration
type Config struct {
	Env      string         `mapstructure:"env" validate:"oneof=development production"`
	BotToken string         `mapstructure:"telegram_bot_token"`
	DB       DBConfig       `mapstructure:"db"`
	Session  SessionConfig  `mapstructure:"session"`
	Reminder ReminderConfig `mapstructure:"reminder"`
	Log      LogConfig      `mapstructure:"log"`
}

// DBConfig describes the card store connection
type DBConfig struct {
	Driver          string        `mapstructure:"driver" validate:"oneof=sqlite3 postgres"`
	DSN             string        `mapstructure:"dsn" validate:"required"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"min=1,max=1000"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"min=0,max=100"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"min=0"`
}

// SessionConfig controls the in-memory exercise sessions
type SessionConfig struct {
	TTL time.Duration `mapstructure:"ttl" validate:"min=0"`
}

// ReminderConfig controls the periodic reminder scan
type ReminderConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Timezone string `mapstructure:"timezone" validate:"required"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

// ErrMissingToken is returned by RequireBotToken when no token is configured
var ErrMissingToken = errors.New("TELEGRAM_BOT_TOKEN environment variable is not set")

var validate = validator.New()

// Load reads configuration from an optional .env file and the environment
func Load() (*Config, error) {
	// A missing .env file is fine, the environment may already be populated
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	bindings := map[string]string{
		"env":                  "ENV",
		"telegram_bot_token":   "TELEGRAM_BOT_TOKEN",
		"db.driver":            "DB_DRIVER",
		"db.dsn":               "DB_DSN",
		"db.max_open_conns":    "DB_MAX_OPEN_CONNS",
		"db.max_idle_conns":    "DB_MAX_IDLE_CONNS",
		"db.conn_max_lifetime": "DB_CONN_MAX_LIFETIME",
		"session.ttl":          "SESSION_TTL",
		"reminder.enabled":     "REMINDER_ENABLED",
		"reminder.timezone":    "REMINDER_TIMEZONE",
		"log.level":            "LOG_LEVEL",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "production")
	v.SetDefault("telegram_bot_token", "")

	v.SetDefault("db.driver", "sqlite3")
	v.SetDefault("db.dsn", "data/linguabot.db")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", time.Hour)

	v.SetDefault("session.ttl", 10*time.Minute)

	v.SetDefault("reminder.enabled", true)
	v.SetDefault("reminder.timezone", "Local")

	v.SetDefault("log.level", "info")
}

// Validate checks field constraints and that the reminder timezone exists
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validation failed: %w", err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, e := range verrs {
			msgs = append(msgs, fmt.Sprintf("Field: %s, Tag: %s, Param: %s", e.Namespace(), e.Tag(), e.Param()))
		}
		return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// RequireBotToken fails when the transport cannot be started
func (c *Config) RequireBotToken() error {
	if strings.TrimSpace(c.BotToken) == "" {
		return ErrMissingToken
	}
	return nil
}

// Location resolves the timezone used for reminder wall-clock matching
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Reminder.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid reminder timezone %q: %w", c.Reminder.Timezone, err)
	}
	return loc, nil
}
