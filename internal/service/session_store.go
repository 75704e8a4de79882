package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pageza/recipesnap/backend/internal/types"
)

// ErrSessionNotFound is returned for unknown or expired sessions
var ErrSessionNotFound = errors.New("session not found")

const sessionKeyPrefix = "recipesnap:session:"

// SessionStore keeps session state between requests
type SessionStore interface {
	Load(ctx context.Context, id string) (*types.SessionState, error)
	Save(ctx context.Context, state *types.SessionState, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// RedisSessionStore keeps sessions in Redis as JSON
type RedisSessionStore struct {
	redis *redis.Client
}

// NewRedisSessionStore creates a new RedisSessionStore instance
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{redis: client}
}

// Load reads a session
func (s *RedisSessionStore) Load(ctx context.Context, id string) (*types.SessionState, error) {
	data, err := s.redis.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var state types.SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &state, nil
}

// Save writes a session and refreshes its expiry
func (s *RedisSessionStore) Save(ctx context.Context, state *types.SessionState, ttl time.Duration) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKeyPrefix+state.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete removes a session
func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	if err := s.redis.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// MemorySessionStore keeps sessions in process memory. Used in tests and
// when no Redis is configured.
type MemorySessionStore struct {
	mu        sync.Mutex
	entries   map[string]memoryEntry
	now       func() time.Time
	nextSweep time.Time
}

// expired sessions are swept on Save at most this often
const memorySweepInterval = time.Minute

// NewMemorySessionStore creates a new MemorySessionStore instance
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Load reads a session
func (s *MemorySessionStore) Load(ctx context.Context, id string) (*types.SessionState, error) {
	s.mu.Lock()
	entry, ok := s.entries[id]
	if ok && !entry.expires.After(s.now()) {
		delete(s.entries, id)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	var state types.SessionState
	if err := json.Unmarshal(entry.data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &state, nil
}

// Save writes a copy of the session
func (s *MemorySessionStore) Save(ctx context.Context, state *types.SessionState, ttl time.Duration) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if !now.Before(s.nextSweep) {
		for id, entry := range s.entries {
			if !entry.expires.After(now) {
				delete(s.entries, id)
			}
		}
		s.nextSweep = now.Add(memorySweepInterval)
	}
	s.entries[state.ID] = memoryEntry{data: data, expires: now.Add(ttl)}
	return nil
}

// Delete removes a session
func (s *MemorySessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}
