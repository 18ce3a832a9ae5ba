package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jwebster45206/action-stage/pkg/chat"
)

const (
	backendAnthropic = "anthropic"

	anthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion = "2023-06-01"

	DefaultAnthropicMaxTokens = 1024
)

// AnthropicGenerator implements Generator for the Anthropic Messages API.
type AnthropicGenerator struct {
	apiKey     string
	baseURL    string
	modelName  string
	httpClient *http.Client
	logger     *slog.Logger
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model         string             `json:"model"`
	MaxTokens     int                `json:"max_tokens"`
	Messages      []anthropicMessage `json:"messages"`
	StopSequences []string           `json:"stop_sequences,omitempty"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewAnthropicGenerator creates a generator. An empty baseURL uses Anthropic's.
func NewAnthropicGenerator(apiKey, baseURL, modelName string, timeout time.Duration, logger *slog.Logger) *AnthropicGenerator {
	if baseURL == "" {
		baseURL = anthropicBaseURL
	}
	return &AnthropicGenerator{
		apiKey:    apiKey,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		modelName: modelName,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (a *AnthropicGenerator) TextGen(ctx context.Context, req chat.TextGenRequest) (*chat.TextGenResult, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultAnthropicMaxTokens
	}

	reqBody, err := json.Marshal(anthropicRequest{
		Model:         a.modelName,
		MaxTokens:     maxTokens,
		Messages:      []anthropicMessage{{Role: chat.ChatRoleUser, Content: renderPrompt(req)}},
		StopSequences: req.Stop,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/messages", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)
	httpReq.Header.Set("content-type", "application/json")

	started := time.Now()
	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		observeRequest(backendAnthropic, a.modelName, statusError, started)
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		observeRequest(backendAnthropic, a.modelName, statusError, started)
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		observeRequest(backendAnthropic, a.modelName, statusError, started)
		a.logger.Error("Anthropic API returned error",
			"status_code", resp.StatusCode,
			"response_body", string(body))
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		observeRequest(backendAnthropic, a.modelName, statusError, started)
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if parsed.Error != nil {
		observeRequest(backendAnthropic, a.modelName, statusError, started)
		return nil, fmt.Errorf("API error: %s", parsed.Error.Message)
	}

	var text strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		observeRequest(backendAnthropic, a.modelName, statusEmpty, started)
		return nil, ErrNoResult
	}

	observeRequest(backendAnthropic, a.modelName, statusSuccess, started)
	observePromptTokens(backendAnthropic, a.modelName, parsed.Usage.InputTokens)
	a.logger.Debug("Generator request completed",
		"backend", backendAnthropic,
		"model", a.modelName,
		"stop_reason", parsed.StopReason,
		"output_tokens", parsed.Usage.OutputTokens)

	return &chat.TextGenResult{Result: text.String()}, nil
}
