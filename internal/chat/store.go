package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"studybuddy/internal/models"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned by Load when no transcript is stored under the id.
var ErrSessionNotFound = errors.New("CHAT_SESSION_NOT_FOUND")

// TranscriptStore keeps one transcript per session id.
type TranscriptStore interface {
	Load(ctx context.Context, sessionID string) (models.Transcript, error)
	Save(ctx context.Context, t models.Transcript) error
	Delete(ctx context.Context, sessionID string) error
}

const keyPrefix = "studybuddy:chat:"

// RedisStore keeps transcripts as JSON values that expire after ttl.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func key(sessionID string) string {
	return keyPrefix + sessionID
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (models.Transcript, error) {
	raw, err := s.client.Get(ctx, key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Transcript{}, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return models.Transcript{}, fmt.Errorf("load transcript: %w", err)
	}

	var t models.Transcript
	if err := json.Unmarshal(raw, &t); err != nil {
		return models.Transcript{}, fmt.Errorf("decode transcript: %w", err)
	}
	return t, nil
}

// Save overwrites the transcript and restarts its ttl.
func (s *RedisStore) Save(ctx context.Context, t models.Transcript) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	if err := s.client.Set(ctx, key(t.SessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, key(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete transcript: %w", err)
	}
	return nil
}

type memoryEntry struct {
	transcript models.Transcript
	expires    time.Time
}

// MemoryStore is the in-process store used when Redis is not configured.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore builds a store whose entries expire after ttl; zero keeps them forever.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemoryStore) Load(ctx context.Context, sessionID string) (models.Transcript, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[sessionID]
	if !ok {
		return models.Transcript{}, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if !e.expires.IsZero() && m.now().After(e.expires) {
		delete(m.sessions, sessionID)
		return models.Transcript{}, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return e.transcript.Clone(), nil
}

func (m *MemoryStore) Save(ctx context.Context, t models.Transcript) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memoryEntry{transcript: t.Clone()}
	if m.ttl > 0 {
		e.expires = m.now().Add(m.ttl)
	}
	m.sessions[t.SessionID] = e
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	return nil
}
