package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mercadito/marketplace-api/internal/core/ports"
)

const (
	idempotencyTTL = 24 * time.Hour
	pendingMarker  = "pending"
)

// reserveScript claims KEYS[1] with the pending marker unless it already
// exists. Reply: {1} when claimed, {0, value} otherwise.
var reserveScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if v then
  return {0, v}
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
return {1}
`)

// IdempotencyStore implements ports.IdempotencyStore backed by Redis.
// Key format: idem:<seller_id>:<idempotency_key>
type IdempotencyStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// NewIdempotencyStore creates a store whose keys expire after ttl
// (24h when ttl <= 0).
func NewIdempotencyStore(client redis.UniversalClient, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = idempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Reserve claims key for the caller. When another request already claimed it,
// the stored item id is returned, or "" while that request is in flight.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string) (string, bool, error) {
	res, err := reserveScript.Run(ctx, s.client, []string{s.key(key)}, pendingMarker, s.ttl.Milliseconds()).Slice()
	if err != nil {
		return "", false, fmt.Errorf("idempotency reserve: %w", err)
	}
	if len(res) == 0 {
		return "", false, fmt.Errorf("idempotency reserve: empty reply")
	}
	if claimed, _ := res[0].(int64); claimed == 1 {
		return "", true, nil
	}

	var stored string
	if len(res) > 1 {
		stored, _ = res[1].(string)
	}
	if stored == pendingMarker {
		stored = ""
	}
	return stored, false, nil
}

// Complete records the item created under key.
func (s *IdempotencyStore) Complete(ctx context.Context, key, itemID string) error {
	if err := s.client.Set(ctx, s.key(key), itemID, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency complete: %w", err)
	}
	return nil
}

// Release drops a reservation so the key can be retried.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) key(k string) string {
	return "idem:" + k
}
