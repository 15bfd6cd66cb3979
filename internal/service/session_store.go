package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned when a session id has no server-side record,
// either because it was never issued or because it was revoked at logout.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists the server-side half of a session. The cookie alone
// is never trusted: its session id must resolve here.
type SessionStore interface {
	Save(ctx context.Context, sessionID, userID uuid.UUID, ttl time.Duration) error
	Get(ctx context.Context, sessionID uuid.UUID) (uuid.UUID, error)
	Delete(ctx context.Context, sessionID uuid.UUID) error
}

// RedisSessionStore stores sessions in Redis with a TTL.
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore creates a Redis-backed session store
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(sessionID uuid.UUID) string {
	return "session:" + sessionID.String()
}

func (s *RedisSessionStore) Save(ctx context.Context, sessionID, userID uuid.UUID, ttl time.Duration) error {
	return s.client.Set(ctx, sessionKey(sessionID), userID.String(), ttl).Err()
}

func (s *RedisSessionStore) Get(ctx context.Context, sessionID uuid.UUID) (uuid.UUID, error) {
	val, err := s.client.Get(ctx, sessionKey(sessionID)).Result()
	if err == redis.Nil {
		return uuid.Nil, ErrSessionNotFound
	}
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(val)
}

func (s *RedisSessionStore) Delete(ctx context.Context, sessionID uuid.UUID) error {
	return s.client.Del(ctx, sessionKey(sessionID)).Err()
}

// MemorySessionStore keeps sessions in process memory. Used in tests and
// redis-less development; sessions do not survive a restart.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]memorySession
}

type memorySession struct {
	userID    uuid.UUID
	expiresAt time.Time
}

// NewMemorySessionStore creates an in-memory session store
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[uuid.UUID]memorySession)}
}

func (s *MemorySessionStore) Save(ctx context.Context, sessionID, userID uuid.UUID, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = memorySession{userID: userID, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *MemorySessionStore) Get(ctx context.Context, sessionID uuid.UUID) (uuid.UUID, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok || time.Now().After(sess.expiresAt) {
		return uuid.Nil, ErrSessionNotFound
	}
	return sess.userID, nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, sessionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
