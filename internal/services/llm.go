package services

import (
	"context"
	"errors"

	"github.com/jwebster45206/action-stage/pkg/chat"
	"github.com/jwebster45206/action-stage/pkg/prompts"
)

// ErrNoResult is returned when a backend answers without usable text.
var ErrNoResult = errors.New("generator returned no result")

// Generator is the external text-completion service. A nil result or an
// error both mean no usable text was produced.
type Generator interface {
	TextGen(ctx context.Context, req chat.TextGenRequest) (*chat.TextGenResult, error)
}

// ModelInitializer is implemented by backends that must prepare a model
// before first use.
type ModelInitializer interface {
	InitModel(ctx context.Context) error
}

// renderPrompt expands the host placeholders the way the hosting platform
// would before the prompt reaches a model: chat history is inlined when
// requested, and prior instructions are empty outside the host.
func renderPrompt(req chat.TextGenRequest) string {
	history := ""
	if req.IncludeHistory {
		history = chat.FormatHistory(req.History)
	}
	return prompts.ReplaceTags(req.Prompt, map[string]string{
		"messages":                  history,
		"post_history_instructions": "",
	})
}
