package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "stage:"
	DefaultTTL = 24 * time.Hour
)

// RedisStore implements StateStore using Redis.
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

// Ensure RedisStore implements StateStore interface
var _ StateStore = (*RedisStore)(nil)

// NewRedisStore creates a store from a redis:// URL or a bare host:port.
// A non-positive ttl falls back to DefaultTTL.
func NewRedisStore(redisURL string, ttl time.Duration, logger *slog.Logger) (*RedisStore, error) {
	var opt *redis.Options
	switch {
	case redisURL == "":
		return nil, errors.New("redis URL is required")
	case strings.Contains(redisURL, "://"):
		parsed, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis URL: %w", err)
		}
		opt = parsed
	default:
		opt = &redis.Options{Addr: redisURL}
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &RedisStore{
		client: redis.NewClient(opt),
		logger: logger,
		ttl:    ttl,
	}, nil
}

// Health and lifecycle methods

func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStore) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Message state operations

func (r *RedisStore) SaveMessageState(ctx context.Context, id uuid.UUID, blob json.RawMessage) error {
	if len(blob) == 0 {
		return errors.New("message state cannot be empty")
	}
	if err := r.client.Set(ctx, key(id), []byte(blob), r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save message state", "conversation_id", id, "error", err)
		return fmt.Errorf("failed to save message state: %w", err)
	}
	return nil
}

func (r *RedisStore) LoadMessageState(ctx context.Context, id uuid.UUID) (json.RawMessage, error) {
	data, err := r.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		r.logger.Error("Failed to load message state", "conversation_id", id, "error", err)
		return nil, fmt.Errorf("failed to load message state: %w", err)
	}
	return json.RawMessage(data), nil
}

func (r *RedisStore) DeleteMessageState(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, key(id)).Err(); err != nil {
		r.logger.Error("Failed to delete message state", "conversation_id", id, "error", err)
		return fmt.Errorf("failed to delete message state: %w", err)
	}
	return nil
}

func key(id uuid.UUID) string {
	return keyPrefix + id.String()
}
