package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config holds the application settings read from the environment
type Config struct {
	TelegramToken string

	StorageBackend string
	DBPath         string
	DatabaseURL    string
	RedisURL       string

	OpenAIKey   string
	OpenAIURL   string
	OpenAIModel string
	MyMemoryURL string

	// Per-tier limits for the network translation tiers
	TranslationTimeout time.Duration
	GenerationTimeout  time.Duration

	// How long answer feedback stays visible before the quest moves on
	ChoiceFeedbackDelay   time.Duration
	SpellingFeedbackDelay time.Duration

	HTTPPort         string
	ReminderHour     int
	SchedulerEnabled bool
	LogLevel         slog.Level
}

// Load reads the configuration, falling back to defaults for unset values
func Load() *Config {
	return &Config{
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),

		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", BackendSQLite)),
		DBPath:         getEnv("DB_PATH", "data/wordquest.db"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379/0"),

		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIURL:   getEnv("OPENAI_API_URL", "https://api.openai.com/v1"),
		OpenAIModel: getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		MyMemoryURL: getEnv("MYMEMORY_API_URL", "https://api.mymemory.translated.net"),

		TranslationTimeout: getDuration("TRANSLATION_TIMEOUT", 4*time.Second),
		GenerationTimeout:  getDuration("GENERATION_TIMEOUT", 5*time.Second),

		ChoiceFeedbackDelay:   getDuration("CHOICE_FEEDBACK_DELAY", 800*time.Millisecond),
		SpellingFeedbackDelay: getDuration("SPELLING_FEEDBACK_DELAY", time.Second),

		HTTPPort:         getEnv("HTTP_PORT", "8080"),
		ReminderHour:     getHour("REMINDER_HOUR", 18),
		SchedulerEnabled: os.Getenv("ENABLE_SCHEDULER") != "false",
		LogLevel:         getLevel("LOG_LEVEL", slog.LevelInfo),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return defaultValue
	}
	return d
}

// getHour accepts only 0-23
func getHour(key string, defaultValue int) int {
	h, err := strconv.Atoi(os.Getenv(key))
	if err != nil || h < 0 || h > 23 {
		return defaultValue
	}
	return h
}

func getLevel(key string, defaultValue slog.Level) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(os.Getenv(key))); err != nil {
		return defaultValue
	}
	return level
}
