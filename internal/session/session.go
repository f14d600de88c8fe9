// Package session binds opaque tokens to authenticated provider
// identities. The core trusts this identity as the sole source of a
// booking's owner.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrUnauthenticated signals a missing, expired or invalidated session.
var ErrUnauthenticated = errors.New("no autenticado")

const keyPrefix = "sgc:session:"

// Manager stores sessions in redis with a sliding TTL.
type Manager struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewManager creates a session manager. ttl bounds how long an idle
// session stays valid.
func NewManager(rdb *redis.Client, ttl time.Duration, logger zerolog.Logger) *Manager {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Manager{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger.With().Str("component", "session").Logger(),
	}
}

// Create establishes a session bound to the normalized phone and returns
// the opaque token.
func (m *Manager) Create(ctx context.Context, phone string) (string, error) {
	token := uuid.NewString()
	if err := m.rdb.Set(ctx, keyPrefix+token, phone, m.ttl).Err(); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return token, nil
}

// Phone resolves a token to the authenticated phone, refreshing the TTL.
// An unknown token is ErrUnauthenticated.
func (m *Manager) Phone(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthenticated
	}
	phone, err := m.rdb.GetEx(ctx, keyPrefix+token, m.ttl).Result()
	if err == redis.Nil {
		return "", ErrUnauthenticated
	}
	if err != nil {
		return "", fmt.Errorf("resolve session: %w", err)
	}
	return phone, nil
}

// Destroy invalidates a session. Destroying an unknown token is a no-op.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := m.rdb.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}
