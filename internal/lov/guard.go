package lov

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fleetops/fleet-console/internal/shared"
)

// SaveGuard rejects a second submission of a rendered form while the first
// one is still being saved.
type SaveGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSaveGuard constructs the guard. A nil client disables it.
func NewSaveGuard(client *redis.Client, ttl time.Duration) *SaveGuard {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &SaveGuard{client: client, ttl: ttl}
}

// Acquire claims the form token. The returned release frees the token again
// and is meant for failed saves only; successful saves let it expire.
func (g *SaveGuard) Acquire(ctx context.Context, token string) (func(context.Context), error) {
	noop := func(context.Context) {}
	if g == nil || g.client == nil || token == "" {
		return noop, nil
	}
	key := shared.LOVSaveLockKey(token)
	ok, err := g.client.SetNX(ctx, key, "1", g.ttl).Result()
	if err != nil {
		return noop, err
	}
	if !ok {
		return noop, ErrSaveInFlight
	}
	return func(ctx context.Context) {
		_ = g.client.Del(ctx, key).Err()
	}, nil
}
