package services

import (
	"log/slog"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const fallbackEncoding = "cl100k_base"

// tokenCounter estimates prompt sizes. Encoder loading can fail (unknown
// model, no network to fetch the BPE ranks); counts are then reported as 0.
type tokenCounter struct {
	model  string
	logger *slog.Logger

	once sync.Once
	enc  *tiktoken.Tiktoken
}

func newTokenCounter(model string, logger *slog.Logger) *tokenCounter {
	return &tokenCounter{model: model, logger: logger}
}

func (t *tokenCounter) Count(text string) int {
	if t == nil {
		return 0
	}
	t.once.Do(t.load)
	if t.enc == nil {
		return 0
	}
	return len(t.enc.Encode(text, nil, nil))
}

func (t *tokenCounter) load() {
	enc, err := tiktoken.EncodingForModel(t.model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
	}
	if err != nil {
		t.logger.Debug("Token counting disabled", "model", t.model, "error", err)
		return
	}
	t.enc = enc
}
