package config

import (
	"log/slog"

	"github.com/spf13/viper"
)

type Config struct {
	Port                     string
	RedisURL                 string
	DatabasePath             string
	JWTSecret                string
	CronSecret               string
	PublicBaseURL            string
	TwilioAccountSID         string
	TwilioAuthToken          string
	TwilioPhoneNumber        string
	MaxNotificationsPerEvent int
	LogLevel                 string
}

func Load() *Config {
	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("REDIS_URL", "redis://localhost:6379")
	v.SetDefault("DATABASE_PATH", "rsvp.db")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("CRON_SECRET", "")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("TWILIO_ACCOUNT_SID", "")
	v.SetDefault("TWILIO_AUTH_TOKEN", "")
	v.SetDefault("TWILIO_PHONE_NUMBER", "")
	v.SetDefault("MAX_NOTIFICATIONS_PER_EVENT", 5)
	v.SetDefault("LOG_LEVEL", "info")
	v.AutomaticEnv()

	return &Config{
		Port:                     v.GetString("PORT"),
		RedisURL:                 v.GetString("REDIS_URL"),
		DatabasePath:             v.GetString("DATABASE_PATH"),
		JWTSecret:                v.GetString("JWT_SECRET"),
		CronSecret:               v.GetString("CRON_SECRET"),
		PublicBaseURL:            v.GetString("PUBLIC_BASE_URL"),
		TwilioAccountSID:         v.GetString("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:          v.GetString("TWILIO_AUTH_TOKEN"),
		TwilioPhoneNumber:        v.GetString("TWILIO_PHONE_NUMBER"),
		MaxNotificationsPerEvent: v.GetInt("MAX_NOTIFICATIONS_PER_EVENT"),
		LogLevel:                 v.GetString("LOG_LEVEL"),
	}
}

// SlogLevel maps the configured level string to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
