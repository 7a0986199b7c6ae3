package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revoker remembers logged-out token ids until they would have expired.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	Revoked(ctx context.Context, tokenID string) (bool, error)
}

// RedisRevoker keeps revoked ids as expiring redis keys.
type RedisRevoker struct {
	client *redis.Client
	prefix string
}

// NewRedisRevoker stores keys under prefix.
func NewRedisRevoker(client *redis.Client, prefix string) *RedisRevoker {
	return &RedisRevoker{client: client, prefix: prefix}
}

func (r *RedisRevoker) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, r.prefix+tokenID, 1, ttl).Err()
}

func (r *RedisRevoker) Revoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.prefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MemoryRevoker is an in-process Revoker for single-instance deployments
// and tests.
type MemoryRevoker struct {
	mu  sync.Mutex
	ids map[string]time.Time
	now func() time.Time
}

// NewMemoryRevoker creates an empty revoker.
func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{ids: make(map[string]time.Time), now: time.Now}
}

func (m *MemoryRevoker) Revoke(_ context.Context, tokenID string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for id, exp := range m.ids {
		if !exp.After(now) {
			delete(m.ids, id)
		}
	}
	if until.After(now) {
		m.ids[tokenID] = until
	}
	return nil
}

func (m *MemoryRevoker) Revoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.ids[tokenID]
	return ok && exp.After(m.now()), nil
}
