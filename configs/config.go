package config

import (
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

var (
	loadOnce sync.Once
	v        *viper.Viper
)

type AppConfig struct {
	Port         string
	StoreBackend string
	DatabaseURL  string
	RedisURL     string

	JWTSecret string
	JWTTTL    time.Duration

	CloudinaryURL string

	ReminderSchedule     string
	PendingReminderAfter time.Duration
	ChatPollInterval     time.Duration
	TimeZone             string

	locOnce  sync.Once
	location *time.Location

	LogLevel        string
	SeedDemoData    bool
	RateLimitMax    int
	RateLimitWindow time.Duration
}

func load() {
	loadOnce.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Warn().Msg("⚠️ .env file not found, reading from system environment variables")
		}

		v = viper.New()
		v.AutomaticEnv()
		v.SetDefault("PORT", "8080")
		v.SetDefault("STORE_BACKEND", "memory")
		v.SetDefault("JWT_TTL", "72h")
		v.SetDefault("REMINDER_SCHEDULE", "*/5 * * * *")
		v.SetDefault("PENDING_REMINDER_AFTER", "24h")
		v.SetDefault("CHAT_POLL_INTERVAL", "2s")
		v.SetDefault("TIME_ZONE", "UTC")
		v.SetDefault("LOG_LEVEL", "info")
		v.SetDefault("SEED_DEMO_DATA", false)
		v.SetDefault("RATE_LIMIT_MAX", 20)
		v.SetDefault("RATE_LIMIT_WINDOW", "1m")
	})
}

func Config(key string) string {
	load()
	return v.GetString(key)
}

func Load() *AppConfig {
	load()
	cfg := &AppConfig{
		Port:                 v.GetString("PORT"),
		StoreBackend:         v.GetString("STORE_BACKEND"),
		DatabaseURL:          v.GetString("DATABASE_URL"),
		RedisURL:             v.GetString("REDIS_URL"),
		JWTSecret:            v.GetString("JWT_SECRET"),
		JWTTTL:               v.GetDuration("JWT_TTL"),
		CloudinaryURL:        v.GetString("CLOUDINARY_URL"),
		ReminderSchedule:     v.GetString("REMINDER_SCHEDULE"),
		PendingReminderAfter: v.GetDuration("PENDING_REMINDER_AFTER"),
		ChatPollInterval:     v.GetDuration("CHAT_POLL_INTERVAL"),
		TimeZone:             v.GetString("TIME_ZONE"),
		LogLevel:             v.GetString("LOG_LEVEL"),
		SeedDemoData:         v.GetBool("SEED_DEMO_DATA"),
		RateLimitMax:         v.GetInt("RATE_LIMIT_MAX"),
		RateLimitWindow:      v.GetDuration("RATE_LIMIT_WINDOW"),
	}
	cfg.Location()
	return cfg
}

// Location returns the zone used to group chat messages by calendar date.
// TimeZone is resolved on first use and must not change afterwards.
func (c *AppConfig) Location() *time.Location {
	c.locOnce.Do(func() {
		loc, err := time.LoadLocation(c.TimeZone)
		if err != nil {
			log.Warn().Err(err).Str("time_zone", c.TimeZone).Msg("unknown time zone, falling back to UTC")
			loc = time.UTC
		}
		c.location = loc
	})
	return c.location
}
