package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/jwebster45206/action-stage/pkg/chat"
)

const (
	backendOpenAI = "openai"

	// VeniceBaseURL is Venice AI's OpenAI-compatible endpoint.
	VeniceBaseURL = "https://api.venice.ai/api/v1"
)

// OpenAIGenerator implements Generator for any OpenAI-compatible chat
// completions API (OpenAI, Venice, OpenRouter, vLLM).
type OpenAIGenerator struct {
	client    *openai.Client
	modelName string
	tokens    *tokenCounter
	logger    *slog.Logger
}

// NewOpenAIGenerator creates a generator. An empty baseURL uses OpenAI's.
func NewOpenAIGenerator(apiKey, baseURL, modelName string, timeout time.Duration, logger *slog.Logger) *OpenAIGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAIGenerator{
		client:    openai.NewClientWithConfig(cfg),
		modelName: modelName,
		tokens:    newTokenCounter(modelName, logger),
		logger:    logger,
	}
}

// TextGen sends the rendered prompt as a single user message. MinTokens has
// no equivalent in this API and is ignored.
func (g *OpenAIGenerator) TextGen(ctx context.Context, req chat.TextGenRequest) (*chat.TextGenResult, error) {
	prompt := renderPrompt(req)
	promptTokens := g.tokens.Count(prompt)
	observePromptTokens(backendOpenAI, g.modelName, promptTokens)

	g.logger.Debug("Sending generator request",
		"backend", backendOpenAI,
		"model", g.modelName,
		"prompt_bytes", len(prompt),
		"prompt_tokens", promptTokens,
		"max_tokens", req.MaxTokens)

	started := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: req.MaxTokens,
		Stop:      req.Stop,
	})
	if err != nil {
		observeRequest(backendOpenAI, g.modelName, statusError, started)
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		observeRequest(backendOpenAI, g.modelName, statusEmpty, started)
		return nil, ErrNoResult
	}

	observeRequest(backendOpenAI, g.modelName, statusSuccess, started)
	g.logger.Debug("Generator request completed",
		"backend", backendOpenAI,
		"model", g.modelName,
		"duration", time.Since(started),
		"completion_tokens", resp.Usage.CompletionTokens)

	return &chat.TextGenResult{Result: resp.Choices[0].Message.Content}, nil
}
