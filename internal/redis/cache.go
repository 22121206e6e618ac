package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// tombstoneValue marks a deleted view. It is not valid JSON, so it can never
// collide with a stored projection.
const tombstoneValue = "~deleted"

// setUnlessTombstoned writes ARGV[1] to KEYS[1] unless the key holds a
// tombstone. ARGV[3] is the TTL in milliseconds, 0 for none.
var setUnlessTombstoned = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[2] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[3])
else
	redis.call("SET", KEYS[1], ARGV[1])
end
return 1
`)

// ViewCache stores JSON projections of type T under "<prefix><id>" keys.
// Redis failures never reach the caller; they are logged and treated as a
// miss. A zero TTL stores keys without expiry.
//
// A tombstoned id is never written again: Set refuses to overwrite a
// tombstone and Load only fills keys that are absent, so a read that started
// before a delete cannot bring the deleted view back.
type ViewCache[T any] struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
	log    *slog.Logger
}

func NewViewCache[T any](client *goredis.Client, prefix string, ttl time.Duration, log *slog.Logger) *ViewCache[T] {
	if log == nil {
		log = slog.Default()
	}
	return &ViewCache[T]{client: client, prefix: prefix, ttl: ttl, log: log}
}

// Key returns the Redis key holding the view of id.
func (c *ViewCache[T]) Key(id string) string { return c.prefix + id }

// Get reports a miss for absent, tombstoned and undecodable entries.
func (c *ViewCache[T]) Get(ctx context.Context, id string) (*T, bool) {
	key := c.Key(id)
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false
	}
	if err != nil {
		c.log.WarnContext(ctx, "view cache read failed", slog.String("key", key), slog.Any("error", err))
		return nil, false
	}
	if string(data) == tombstoneValue {
		return nil, false
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		c.log.WarnContext(ctx, "view cache entry undecodable", slog.String("key", key), slog.Any("error", err))
		return nil, false
	}
	return &v, true
}

// Set stores value under key unless the key is tombstoned.
func (c *ViewCache[T]) Set(ctx context.Context, id string, value *T) {
	key := c.Key(id)
	data, err := json.Marshal(value)
	if err != nil {
		c.log.ErrorContext(ctx, "view cache marshal failed", slog.String("key", key), slog.Any("error", err))
		return
	}
	err = setUnlessTombstoned.Run(ctx, c.client, []string{key}, data, tombstoneValue, c.ttl.Milliseconds()).Err()
	if err != nil {
		c.log.WarnContext(ctx, "view cache write failed", slog.String("key", key), slog.Any("error", err))
	}
}

// Tombstone replaces the view of id with a deletion marker.
func (c *ViewCache[T]) Tombstone(ctx context.Context, id string) {
	key := c.Key(id)
	if err := c.client.Set(ctx, key, tombstoneValue, c.ttl).Err(); err != nil {
		c.log.WarnContext(ctx, "view cache tombstone failed", slog.String("key", key), slog.Any("error", err))
	}
}

// Load returns the cached view of id. On a miss it calls load and stores the
// result only if the key is still absent; errors from load are returned
// unchanged and nothing is cached.
func (c *ViewCache[T]) Load(ctx context.Context, id string, load func(context.Context) (*T, error)) (*T, error) {
	if v, ok := c.Get(ctx, id); ok {
		return v, nil
	}
	v, err := load(ctx)
	if err != nil {
		return nil, err
	}
	c.addIfAbsent(ctx, id, v)
	return v, nil
}

func (c *ViewCache[T]) addIfAbsent(ctx context.Context, id string, value *T) {
	key := c.Key(id)
	data, err := json.Marshal(value)
	if err != nil {
		c.log.ErrorContext(ctx, "view cache marshal failed", slog.String("key", key), slog.Any("error", err))
		return
	}
	if err := c.client.SetNX(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.WarnContext(ctx, "view cache write failed", slog.String("key", key), slog.Any("error", err))
	}
}
