package services

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jwebster45206/action-stage/internal/config"
)

// NewGenerator builds the generator backend selected by the configuration.
func NewGenerator(cfg *config.Config, logger *slog.Logger) (Generator, error) {
	switch strings.ToLower(cfg.LLMProvider) {
	case "openai", "openrouter":
		if cfg.LLMAPIKey == "" {
			return nil, fmt.Errorf("LLM_API_KEY is required for provider %q", cfg.LLMProvider)
		}
		return NewOpenAIGenerator(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.ModelName, cfg.LLMTimeout, logger), nil
	case "venice":
		if cfg.LLMAPIKey == "" {
			return nil, fmt.Errorf("LLM_API_KEY is required for provider %q", cfg.LLMProvider)
		}
		baseURL := cfg.LLMBaseURL
		if baseURL == "" {
			baseURL = VeniceBaseURL
		}
		return NewOpenAIGenerator(cfg.LLMAPIKey, baseURL, cfg.ModelName, cfg.LLMTimeout, logger), nil
	case "anthropic":
		if cfg.LLMAPIKey == "" {
			return nil, fmt.Errorf("LLM_API_KEY is required for provider %q", cfg.LLMProvider)
		}
		return NewAnthropicGenerator(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.ModelName, cfg.LLMTimeout, logger), nil
	case "ollama":
		baseURL := cfg.LLMBaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		gen, err := NewOllamaGenerator(baseURL, cfg.ModelName, cfg.LLMTimeout, logger)
		if err != nil {
			return nil, err
		}
		return gen, nil
	case "mock":
		logger.Warn("Using mock generator; menus will be canned")
		return NewMockGenerator(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q (supported: openai, openrouter, venice, anthropic, ollama, mock)", cfg.LLMProvider)
	}
}
