package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pageza/recipesnap/backend/internal/types"
)

const suggestionKeyPrefix = "recipesnap:suggestions:"

// SuggestionCache remembers the unfiltered suggestions for a photo digest
type SuggestionCache interface {
	Get(ctx context.Context, digest string) ([]types.Recipe, bool, error)
	Set(ctx context.Context, digest string, recipes []types.Recipe, ttl time.Duration) error
}

// RedisSuggestionCache stores suggestions as JSON in Redis
type RedisSuggestionCache struct {
	redis *redis.Client
}

// NewRedisSuggestionCache creates a new RedisSuggestionCache instance
func NewRedisSuggestionCache(client *redis.Client) *RedisSuggestionCache {
	return &RedisSuggestionCache{redis: client}
}

// Get returns the cached suggestions, reporting false on a miss
func (c *RedisSuggestionCache) Get(ctx context.Context, digest string) ([]types.Recipe, bool, error) {
	data, err := c.redis.Get(ctx, suggestionKeyPrefix+digest).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached suggestions: %w", err)
	}

	var recipes []types.Recipe
	if err := json.Unmarshal(data, &recipes); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached suggestions: %w", err)
	}
	return recipes, true, nil
}

// Set caches the suggestions for ttl
func (c *RedisSuggestionCache) Set(ctx context.Context, digest string, recipes []types.Recipe, ttl time.Duration) error {
	data, err := json.Marshal(recipes)
	if err != nil {
		return fmt.Errorf("failed to encode suggestions: %w", err)
	}
	if err := c.redis.Set(ctx, suggestionKeyPrefix+digest, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache suggestions: %w", err)
	}
	return nil
}
