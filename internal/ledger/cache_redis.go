package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	id "veracity/pkg/domain"
)

const cacheKeyPrefix = "ledger:event:"

// EventCache is a read-through cache for point lookups by event id. Events are
// immutable, so cached entries can never go stale; the TTL only bounds memory.
// Cache failures degrade to a store read, never to an error.
type EventCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewEventCache wraps a redis client as an event cache.
func NewEventCache(client redis.Cmdable, ttl time.Duration) *EventCache {
	return &EventCache{client: client, ttl: ttl}
}

// Get returns the cached event and whether it was present.
func (c *EventCache) Get(ctx context.Context, eventID id.EventID) (*Event, bool) {
	raw, err := c.client.Get(ctx, cacheKeyPrefix+eventID.String()).Bytes()
	if err != nil {
		return nil, false
	}
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, false
	}
	return &ev, true
}

// Put stores an event. Errors are reported so callers can log them, but a
// failed put is harmless.
func (c *EventCache) Put(ctx context.Context, ev Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, cacheKeyPrefix+ev.EventID.String(), raw, c.ttl).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}
