package lov

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const cacheKeyPrefix = "lov"

// ListCache keeps the list-all collection of each organisation in Redis.
// Keys carry a per-organisation version so a save invalidates by bumping it.
// Concurrent misses for one organisation share a single loader call.
type ListCache struct {
	client  *redis.Client
	ttl     time.Duration
	metrics *APIMetrics
	group   singleflight.Group
}

// NewListCache instantiates the cache helper. A nil client disables caching
// but keeps request collapsing.
func NewListCache(client *redis.Client, ttl time.Duration, metrics *APIMetrics) *ListCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ListCache{client: client, ttl: ttl, metrics: metrics}
}

// Fetch returns the cached collection or populates it with loader.
func (c *ListCache) Fetch(ctx context.Context, orgID string, loader func(context.Context) ([]ListRecord, error)) ([]ListRecord, error) {
	if loader == nil {
		return nil, errors.New("lov cache: loader required")
	}
	if c == nil {
		return loader(ctx)
	}
	key, err := c.key(ctx, orgID)
	if err != nil {
		// Redis trouble must not take the list view down.
		key = ""
	}
	if key != "" {
		if records, ok := c.get(ctx, key); ok {
			c.metrics.cacheResult("hit")
			return records, nil
		}
	}
	c.metrics.cacheResult("miss")

	flightKey := orgID + "|" + key
	resultChan := c.group.DoChan(flightKey, func() (interface{}, error) {
		records, err := loader(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		if key != "" {
			c.set(context.WithoutCancel(ctx), key, records)
		}
		return records, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return nil, res.Err
		}
		loaded, _ := res.Val.([]ListRecord)
		out := make([]ListRecord, len(loaded))
		copy(out, loaded)
		return out, nil
	}
}

// Bump invalidates the cached collection of an organisation.
func (c *ListCache) Bump(ctx context.Context, orgID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, versionKey(orgID)).Err()
}

// Version returns the current cache version of an organisation.
func (c *ListCache) Version(ctx context.Context, orgID string) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, versionKey(orgID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return ver, err
}

func (c *ListCache) key(ctx context.Context, orgID string) (string, error) {
	if c.client == nil {
		return "", nil
	}
	ver, err := c.Version(ctx, orgID)
	if err != nil {
		return "", err
	}
	return cacheKeyPrefix + ":lists:" + orgID + ":" + strconv.FormatInt(ver, 10), nil
}

func (c *ListCache) get(ctx context.Context, key string) ([]ListRecord, bool) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var records []ListRecord
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, false
	}
	return records, true
}

func (c *ListCache) set(ctx context.Context, key string, records []ListRecord) {
	raw, err := json.Marshal(records)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, key, raw, c.ttl).Err()
}

func versionKey(orgID string) string {
	return cacheKeyPrefix + ":version:" + orgID
}
