package ports

import "context"

// KeyValueCache is the minimal cache surface the session binder needs.
// Implementations namespace keys with a configurable prefix. Get reports a
// miss through its second return value rather than an error, because a miss
// is an expected outcome for unbound sessions.
type KeyValueCache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	// IncrBy must be atomic at the storage layer (no read-modify-write).
	IncrBy(ctx context.Context, key string, delta int64) (int64, error)
}
