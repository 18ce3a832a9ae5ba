package storage

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// StateStore persists the opaque per-conversation message state between
// turns when the caller does not carry it itself.
type StateStore interface {
	// Ping tests the store connection
	Ping(ctx context.Context) error
	// Close closes the store connection
	Close() error

	// SaveMessageState stores the blob for a conversation, replacing any
	// previous one.
	SaveMessageState(ctx context.Context, id uuid.UUID, blob json.RawMessage) error
	// LoadMessageState returns the stored blob, or nil if none exists.
	LoadMessageState(ctx context.Context, id uuid.UUID) (json.RawMessage, error)
	DeleteMessageState(ctx context.Context, id uuid.UUID) error
}
