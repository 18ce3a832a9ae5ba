package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/action-stage/pkg/chat"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewAnthropicGenerator(t *testing.T) {
	g := NewAnthropicGenerator("test-api-key", "", "claude-3-5-haiku-latest", time.Second, discardLogger())

	assert.Equal(t, "test-api-key", g.apiKey)
	assert.Equal(t, anthropicBaseURL, g.baseURL)
	assert.Equal(t, "claude-3-5-haiku-latest", g.modelName)
	require.NotNil(t, g.httpClient)
	assert.Equal(t, time.Second, g.httpClient.Timeout)
}

func TestAnthropicGenerator_TextGen(t *testing.T) {
	var got anthropicRequest
	var headers http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		headers = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"content": [{"type": "text", "text": "1. Draw steel\n"}, {"type": "text", "text": "2. Run"}],
			"stop_reason": "stop_sequence",
			"usage": {"input_tokens": 120, "output_tokens": 9}
		}`))
	}))
	defer server.Close()

	g := NewAnthropicGenerator("k", server.URL+"/", "claude", time.Second, discardLogger())
	res, err := g.TextGen(context.Background(), chat.TextGenRequest{
		Prompt:         "History:\n{{messages}}\nEnd",
		MaxTokens:      150,
		IncludeHistory: true,
		History:        []chat.ChatMessage{{Role: chat.ChatRoleUser, Name: "Ana", Content: "hello"}},
		Stop:           []string{"###"},
	})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, "1. Draw steel\n2. Run", res.Result)
	assert.Equal(t, "k", headers.Get("x-api-key"))
	assert.Equal(t, anthropicVersion, headers.Get("anthropic-version"))
	assert.Equal(t, "claude", got.Model)
	assert.Equal(t, 150, got.MaxTokens)
	assert.Equal(t, []string{"###"}, got.StopSequences)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, chat.ChatRoleUser, got.Messages[0].Role)
	assert.Equal(t, "History:\nAna: hello\nEnd", got.Messages[0].Content)
}

func TestAnthropicGenerator_DefaultMaxTokens(t *testing.T) {
	var got anthropicRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"content": [{"type": "text", "text": "- Wait"}]}`))
	}))
	defer server.Close()

	g := NewAnthropicGenerator("k", server.URL, "claude", time.Second, discardLogger())
	_, err := g.TextGen(context.Background(), chat.TextGenRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, DefaultAnthropicMaxTokens, got.MaxTokens)
}

func TestAnthropicGenerator_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{
			name:   "http error",
			status: http.StatusTooManyRequests,
			body:   `{"error": {"type": "rate_limit_error", "message": "slow down"}}`,
		},
		{
			name:   "malformed body",
			status: http.StatusOK,
			body:   `{not json`,
		},
		{
			name:   "error payload",
			status: http.StatusOK,
			body:   `{"error": {"type": "overloaded_error", "message": "busy"}}`,
		},
		{
			name:    "empty content",
			status:  http.StatusOK,
			body:    `{"content": [{"type": "text", "text": "  "}]}`,
			wantErr: ErrNoResult,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			g := NewAnthropicGenerator("k", server.URL, "claude", time.Second, discardLogger())
			res, err := g.TextGen(context.Background(), chat.TextGenRequest{Prompt: "p"})
			require.Error(t, err)
			assert.Nil(t, res)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
