package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwebster45206/action-stage/internal/config"
	"github.com/jwebster45206/action-stage/pkg/chat"
)

func TestRenderPrompt(t *testing.T) {
	history := []chat.ChatMessage{
		{Role: chat.ChatRoleUser, Name: "Ana", Content: "I draw my sword."},
		{Role: chat.ChatRoleAgent, Name: "Orc", Content: " Grr. "},
	}

	tests := []struct {
		name string
		req  chat.TextGenRequest
		want string
	}{
		{
			name: "history included",
			req:  chat.TextGenRequest{Prompt: "{{messages}}\n{{post_history_instructions}}|{{char}}", IncludeHistory: true, History: history},
			want: "Ana: I draw my sword.\nOrc: Grr.\n|{{char}}",
		},
		{
			name: "history excluded",
			req:  chat.TextGenRequest{Prompt: "[{{messages}}]", History: history},
			want: "[]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, renderPrompt(tt.req))
		})
	}
}

func TestNewGenerator(t *testing.T) {
	log := discardLogger()

	tests := []struct {
		name     string
		cfg      config.Config
		wantType any
		wantErr  bool
	}{
		{name: "openai", cfg: config.Config{LLMProvider: "openai", LLMAPIKey: "k"}, wantType: &OpenAIGenerator{}},
		{name: "openrouter", cfg: config.Config{LLMProvider: "OpenRouter", LLMAPIKey: "k", LLMBaseURL: "https://openrouter.ai/api/v1"}, wantType: &OpenAIGenerator{}},
		{name: "venice", cfg: config.Config{LLMProvider: "venice", LLMAPIKey: "k"}, wantType: &OpenAIGenerator{}},
		{name: "anthropic", cfg: config.Config{LLMProvider: "anthropic", LLMAPIKey: "k"}, wantType: &AnthropicGenerator{}},
		{name: "ollama", cfg: config.Config{LLMProvider: "ollama"}, wantType: &OllamaGenerator{}},
		{name: "mock", cfg: config.Config{LLMProvider: "mock"}, wantType: &MockGenerator{}},
		{name: "missing key", cfg: config.Config{LLMProvider: "openai"}, wantErr: true},
		{name: "unknown provider", cfg: config.Config{LLMProvider: "carrier-pigeon"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := NewGenerator(&tt.cfg, log)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, gen)
				return
			}
			assert.NoError(t, err)
			assert.IsType(t, tt.wantType, gen)
		})
	}
}
