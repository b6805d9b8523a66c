package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"casaora/models"

	"github.com/go-redis/redis/v8"
)

const (
	aiContextPrefix = "ai:ctx:"
	// ContextTTL is how long an idle conversation keeps its state.
	ContextTTL = 30 * time.Minute
)

// ContextStore keeps the assistant's per-user state between turns.
type ContextStore interface {
	Get(ctx context.Context, userID string) (*models.AssistantContext, error)
	Set(ctx context.Context, userID string, aiCtx *models.AssistantContext) error
	Clear(ctx context.Context, userID string) error
}

type RedisContextStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisContextStore(client *redis.Client, ttl time.Duration) *RedisContextStore {
	if ttl <= 0 {
		ttl = ContextTTL
	}
	return &RedisContextStore{client: client, ttl: ttl}
}

// Get returns an empty context when the user has none stored.
func (s *RedisContextStore) Get(ctx context.Context, userID string) (*models.AssistantContext, error) {
	data, err := s.client.Get(ctx, aiContextPrefix+userID).Bytes()
	if err == redis.Nil {
		return &models.AssistantContext{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load assistant context: %w", err)
	}
	var aiCtx models.AssistantContext
	if err := json.Unmarshal(data, &aiCtx); err != nil {
		return nil, fmt.Errorf("failed to decode assistant context: %w", err)
	}
	return &aiCtx, nil
}

// Set stores the context and restarts its TTL.
func (s *RedisContextStore) Set(ctx context.Context, userID string, aiCtx *models.AssistantContext) error {
	b, err := json.Marshal(aiCtx)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, aiContextPrefix+userID, b, s.ttl).Err()
}

func (s *RedisContextStore) Clear(ctx context.Context, userID string) error {
	return s.client.Del(ctx, aiContextPrefix+userID).Err()
}
