package throttle

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// windowScript rolls and optionally increments one counter. Times are Unix
// milliseconds; the hash holds the window start and the count.
var windowScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local len = tonumber(ARGV[2])
local n = tonumber(ARGV[3])
local start = tonumber(redis.call('HGET', KEYS[1], 'start'))
local count = tonumber(redis.call('HGET', KEYS[1], 'count')) or 0
if not start then
  start = now
  count = 0
elseif now - start >= len then
  start = start + math.floor((now - start) / len) * len
  count = 0
end
if n > 0 then
  count = count + n
  redis.call('HSET', KEYS[1], 'start', start, 'count', count)
  redis.call('PEXPIREAT', KEYS[1], start + len)
end
return {start, count}
`)

// RedisStore keeps counters in Redis so every API process shares them.
// Each call runs as one Lua script, which Redis executes atomically.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore constructs a RedisStore; keys are namespaced with prefix.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string, now time.Time, length time.Duration) (Window, error) {
	return s.run(ctx, key, now, length, 0)
}

// Increment implements Store.
func (s *RedisStore) Increment(ctx context.Context, key string, now time.Time, length time.Duration) (Window, error) {
	return s.run(ctx, key, now, length, 1)
}

// Reset implements Store.
func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (s *RedisStore) run(ctx context.Context, key string, now time.Time, length time.Duration, n int) (Window, error) {
	res, err := windowScript.Run(ctx, s.client, []string{s.prefix + key},
		now.UnixMilli(), length.Milliseconds(), n).Int64Slice()
	if err != nil {
		return Window{}, fmt.Errorf("redis error: %w", err)
	}
	if len(res) != 2 {
		return Window{}, fmt.Errorf("redis error: unexpected script reply %v", res)
	}
	return Window{Start: time.UnixMilli(res[0]).UTC(), Count: int(res[1])}, nil
}
