// Package session tracks API client sessions in Redis. Sessions are
// opaque identifiers used to group query history; there is no user
// identity attached to them.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/apexionhq/cx-copilot/internal/config"
	"github.com/apexionhq/cx-copilot/internal/errors"
)

const sessionKeyPrefix = "session:"

// Session holds per-session bookkeeping
type Session struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
	QueryCount int       `json:"query_count"`
}

// Manager creates and refreshes sessions in Redis
type Manager struct {
	client *redis.Client
	expiry time.Duration
}

// NewManager connects to Redis and verifies connectivity
func NewManager(cfg config.RedisConfig, expiry time.Duration) (*Manager, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.NewSessionCreationError(fmt.Errorf("redis ping failed: %w", err))
	}

	return &Manager{client: client, expiry: expiry}, nil
}

// NewManagerWithClient wraps an existing client, used in tests
func NewManagerWithClient(client *redis.Client, expiry time.Duration) *Manager {
	return &Manager{client: client, expiry: expiry}
}

// Create starts a new session and returns it
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	now := time.Now().UTC()
	session := &Session{
		ID:         uuid.New().String(),
		CreatedAt:  now,
		LastSeenAt: now,
	}

	if err := m.save(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// Get fetches a session by ID, returning nil if it does not exist or
// has expired.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	data, err := m.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	return &session, nil
}

// Touch bumps the session's activity timestamp and query count and
// renews its expiry. Unknown session IDs get a fresh session so stale
// clients keep working after an expiry.
func (m *Manager) Touch(ctx context.Context, id string) (*Session, error) {
	session, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return m.Create(ctx)
	}

	session.LastSeenAt = time.Now().UTC()
	session.QueryCount++

	if err := m.save(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// Delete removes a session
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.client.Del(ctx, sessionKeyPrefix+id).Err()
}

// Ping verifies Redis connectivity for health checks
func (m *Manager) Ping(ctx context.Context) error {
	return m.client.Ping(ctx).Err()
}

// Close releases the Redis connection
func (m *Manager) Close() error {
	return m.client.Close()
}

func (m *Manager) save(ctx context.Context, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return errors.NewSessionCreationError(err)
	}

	if err := m.client.Set(ctx, sessionKeyPrefix+session.ID, data, m.expiry).Err(); err != nil {
		return errors.NewSessionCreationError(err)
	}

	return nil
}
