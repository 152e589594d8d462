package cache

import (
	"context"
	"time"
)

// Store is a time-expiring key-value store for rendered output.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Clear drops every entry owned by the store.
	Clear(ctx context.Context) error
	Close() error
}
