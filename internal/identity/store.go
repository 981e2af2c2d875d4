// Package identity holds the ephemeral session token store: opaque keys
// mapped to user ids, each entry carrying its own TTL. The store is a
// collaborator with plain get/set/del semantics; revocation is a delete and
// expiry is the store's own job.
package identity

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key is absent or already expired.
var ErrNotFound = errors.New("identity: key not found")

type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}
