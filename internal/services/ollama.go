package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/jwebster45206/action-stage/pkg/chat"
)

const backendOllama = "ollama"

// OllamaGenerator implements Generator for a self-hosted Ollama server.
type OllamaGenerator struct {
	client    *api.Client
	modelName string
	logger    *slog.Logger
}

// NewOllamaGenerator creates a generator for the server at baseURL
// (e.g. http://localhost:11434).
func NewOllamaGenerator(baseURL, modelName string, timeout time.Duration, logger *slog.Logger) (*OllamaGenerator, error) {
	baseURL = strings.TrimSuffix(strings.TrimSuffix(baseURL, "/"), "/v1")
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ollama base URL %q: %w", baseURL, err)
	}

	return &OllamaGenerator{
		client:    api.NewClient(parsed, &http.Client{Timeout: timeout}),
		modelName: modelName,
		logger:    logger,
	}, nil
}

// InitModel waits for the server and pulls the model if it is missing.
func (s *OllamaGenerator) InitModel(ctx context.Context) error {
	s.logger.Info("Initializing LLM model", "model", s.modelName)

	if err := s.waitForReady(ctx); err != nil {
		return fmt.Errorf("ollama service is not ready: %w", err)
	}

	ready, err := s.isModelReady(ctx)
	if err != nil {
		return fmt.Errorf("failed to check model readiness: %w", err)
	}
	if ready {
		s.logger.Info("Model already available", "model", s.modelName)
		return nil
	}

	s.logger.Info("Model not found, pulling it", "model", s.modelName)
	err = s.client.Pull(ctx, &api.PullRequest{Model: s.modelName}, func(p api.ProgressResponse) error {
		s.logger.Debug("Pull progress", "model", s.modelName, "status", p.Status, "completed", p.Completed, "total", p.Total)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to pull model: %w", err)
	}
	s.logger.Info("Model pulled successfully", "model", s.modelName)
	return nil
}

// TextGen sends the rendered prompt as a single, non-streamed chat turn.
func (s *OllamaGenerator) TextGen(ctx context.Context, req chat.TextGenRequest) (*chat.TextGenResult, error) {
	stream := false
	options := map[string]any{}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}
	if len(req.Stop) > 0 {
		options["stop"] = req.Stop
	}

	chatReq := &api.ChatRequest{
		Model:    s.modelName,
		Messages: []api.Message{{Role: chat.ChatRoleUser, Content: renderPrompt(req)}},
		Stream:   &stream,
		Options:  options,
	}

	started := time.Now()
	var resp api.ChatResponse
	err := s.client.Chat(ctx, chatReq, func(r api.ChatResponse) error {
		resp = r
		return nil
	})
	if err != nil {
		observeRequest(backendOllama, s.modelName, statusError, started)
		return nil, fmt.Errorf("ollama chat failed: %w", err)
	}

	if strings.TrimSpace(resp.Message.Content) == "" {
		observeRequest(backendOllama, s.modelName, statusEmpty, started)
		return nil, ErrNoResult
	}

	observeRequest(backendOllama, s.modelName, statusSuccess, started)
	observePromptTokens(backendOllama, s.modelName, resp.PromptEvalCount)
	s.logger.Debug("Generator request completed",
		"backend", backendOllama,
		"model", s.modelName,
		"duration", time.Since(started),
		"eval_count", resp.EvalCount)

	return &chat.TextGenResult{Result: resp.Message.Content}, nil
}

func (s *OllamaGenerator) isModelReady(ctx context.Context) (bool, error) {
	list, err := s.client.List(ctx)
	if err != nil {
		return false, err
	}
	for _, model := range list.Models {
		if model.Name == s.modelName || model.Model == s.modelName {
			return true, nil
		}
	}
	return false, nil
}

// waitForReady polls the server with retries.
func (s *OllamaGenerator) waitForReady(ctx context.Context) error {
	maxRetries := 5
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		err := s.client.Heartbeat(ctx)
		if err == nil {
			s.logger.Info("Ollama service is ready")
			return nil
		}
		s.logger.Debug("Ollama not ready yet", "error", err, "attempt", i+1)

		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled while waiting for ollama: %w", ctx.Err())
		case <-time.After(retryDelay):
		}
	}

	return fmt.Errorf("ollama service did not become ready after %d attempts", maxRetries)
}
