// Package config resolves the backend settings from the environment, optionally seeded
// from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultEnvFile is read when no other file is named.
const DefaultEnvFile = ".env"

type Config struct {
	ServerURL string

	DataDir      string
	HabitsFile   string
	GoalsFile    string
	UsersFile    string
	StrictStores bool

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	LLMTimeout    time.Duration

	RabbitMQURL  string
	NumProducers int

	LogLevel  string
	LogFormat string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_URL", "http://localhost:8080")
	v.SetDefault("DATA_DIR", ".")
	v.SetDefault("HABITS_FILE", "habits.json")
	v.SetDefault("GOALS_FILE", "goals.json")
	v.SetDefault("USERS_FILE", "users.json")
	v.SetDefault("STRICT_STORES", false)
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	v.SetDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com")
	v.SetDefault("LLM_TIMEOUT", 60*time.Second)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_PRODUCERS", 1)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
}

// Load reads envFile into the process environment, without overriding variables that are
// already set, and resolves every setting against its default. A missing envFile is not
// an error.
func Load(envFile string) (Config, error) {
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := Config{
		ServerURL:     strings.TrimSpace(v.GetString("SERVER_URL")),
		DataDir:       v.GetString("DATA_DIR"),
		HabitsFile:    v.GetString("HABITS_FILE"),
		GoalsFile:     v.GetString("GOALS_FILE"),
		UsersFile:     v.GetString("USERS_FILE"),
		StrictStores:  v.GetBool("STRICT_STORES"),
		GeminiAPIKey:  v.GetString("GEMINI_API_KEY"),
		GeminiModel:   v.GetString("GEMINI_MODEL"),
		GeminiBaseURL: v.GetString("GEMINI_BASE_URL"),
		LLMTimeout:    v.GetDuration("LLM_TIMEOUT"),
		RabbitMQURL:   v.GetString("RABBITMQ_URL"),
		NumProducers:  v.GetInt("RABBITMQ_PRODUCERS"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		LogFormat:     v.GetString("LOG_FORMAT"),
	}
	if cfg.LLMTimeout <= 0 {
		return Config{}, fmt.Errorf("LLM_TIMEOUT must be positive, got %q", v.GetString("LLM_TIMEOUT"))
	}
	if cfg.NumProducers < 1 {
		cfg.NumProducers = 1
	}
	return cfg, nil
}
