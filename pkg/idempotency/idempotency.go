package idempotency

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Store is the slice of pkg/redis.Client the guard depends on.
type Store interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	ProcessedEventKey(consumer, eventID string) string
}

// Manager tracks processed event IDs per consumer using Redis SETNX
// with a TTL. At-least-once delivery means the same event can arrive
// twice; the guard makes the second arrival a no-op.
type Manager struct {
	store Store
	ttl   time.Duration
}

// NewManager builds an idempotency guard that marks events as processed
// for the given TTL.
func NewManager(store Store, ttl time.Duration) (*Manager, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	return &Manager{store: store, ttl: ttl}, nil
}

// CheckAndMarkProcessed atomically marks the event as processed and
// reports whether it had been processed before.
func (m *Manager) CheckAndMarkProcessed(ctx context.Context, consumer, eventID string) (bool, error) {
	if strings.TrimSpace(consumer) == "" {
		return false, errors.New("consumer name is required")
	}
	if strings.TrimSpace(eventID) == "" {
		return false, errors.New("event id is required")
	}

	key := m.store.ProcessedEventKey(consumer, eventID)
	set, err := m.store.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), m.ttl)
	if err != nil {
		return false, err
	}
	return !set, nil
}

// Delete removes the processed mark so a failed handler can see the
// event again on redelivery.
func (m *Manager) Delete(ctx context.Context, consumer, eventID string) error {
	return m.store.Del(ctx, m.store.ProcessedEventKey(consumer, eventID))
}
