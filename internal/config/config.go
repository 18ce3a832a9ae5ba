package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string     `envconfig:"PORT" default:"8080"`
	Environment string     `envconfig:"ENVIRONMENT" default:"development"`
	LogLevelRaw string     `envconfig:"LOG_LEVEL" default:"info"`
	LogLevel    slog.Level `ignored:"true"`

	// Generator
	LLMProvider string        `envconfig:"LLM_PROVIDER" default:"openai"`
	LLMBaseURL  string        `envconfig:"LLM_BASE_URL"`
	LLMAPIKey   string        `envconfig:"LLM_API_KEY"`
	ModelName   string        `envconfig:"MODEL_NAME" default:"gpt-4o-mini"`
	LLMTimeout  time.Duration `envconfig:"LLM_TIMEOUT" default:"60s"`

	// State storage; empty RedisURL keeps state client-side only.
	RedisURL string        `envconfig:"REDIS_URL"`
	StateTTL time.Duration `envconfig:"STATE_TTL" default:"24h"`

	// Directory holding characters/ and users/ YAML files.
	ProfilesDir string `envconfig:"PROFILES_DIR" default:"./data"`
}

// Load reads the configuration from the environment, after loading a .env
// file if one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.LogLevelRaw)
	return &cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
