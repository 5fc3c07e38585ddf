// Package cache implements the TTL cache the dashboard panels read through.
// Entries carry their own freshness envelope, so any keyed byte store can
// serve as the storage backend.
package cache

import (
	"context"
	"time"
)

// Backend defines the raw keyed byte store a Cache runs on.
// The ttl passed to Set is a native-expiry hint only: the envelope stored
// in the value stays the source of truth for freshness decisions.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}
