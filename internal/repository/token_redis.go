package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sumire/strava-bridge/internal/domain"
)

// RedisTokenStore persists the latest Strava token pair per user in Redis.
type RedisTokenStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisTokenStore creates a Redis-backed token store.
func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{
		client: client,
		prefix: "strava_tokens:",
		now:    time.Now,
	}
}

func (s *RedisTokenStore) key(userID string) string {
	return s.prefix + userID
}

// SaveTokens writes the token pair for tokens.UserID without expiry,
// replacing any previous pair.
func (s *RedisTokenStore) SaveTokens(ctx context.Context, tokens domain.StoredTokens) error {
	if tokens.UserID == "" {
		return fmt.Errorf("save tokens: missing user id")
	}
	tokens.UpdatedAt = s.now().UTC()

	data, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("save tokens: marshal: %w", err)
	}

	if err := s.client.Set(ctx, s.key(tokens.UserID), data, 0).Err(); err != nil {
		return fmt.Errorf("save tokens for %s: %w", tokens.UserID, err)
	}
	return nil
}
