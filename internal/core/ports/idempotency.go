package ports

import "context"

// IdempotencyStore remembers which item an Idempotency-Key created.
type IdempotencyStore interface {
	// Reserve claims key. When the key is already known it returns the stored
	// item id (empty while the first request is still in flight) and false.
	Reserve(ctx context.Context, key string) (itemID string, reserved bool, err error)
	Complete(ctx context.Context, key, itemID string) error
	Release(ctx context.Context, key string) error
}
