package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// slidingWindow trims the sorted set to the window, then admits the event if
// there is room. Members are made unique with a counter key.
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local counter_key = KEYS[2]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
	local count = redis.call('ZCARD', key)
	if count >= limit then
		return 0
	end
	local counter = redis.call('INCR', counter_key)
	redis.call('ZADD', key, now, now .. ':' .. counter)
	redis.call('PEXPIRE', key, window_ms)
	redis.call('PEXPIRE', counter_key, window_ms)
	return 1
`)

// Redis shares the window across every hub instance behind a balancer.
type Redis struct {
	client *redis.Client
	cfg    Config
	prefix string
}

func NewRedis(client *redis.Client, cfg Config, prefix string) *Redis {
	return &Redis{client: client, cfg: cfg, prefix: prefix}
}

func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now()
	redisKey := r.prefix + key
	allowed, err := slidingWindow.Run(ctx, r.client, []string{redisKey, redisKey + ":counter"},
		now.UnixMilli(),
		now.Add(-r.cfg.Interval).UnixMilli(),
		r.cfg.Events,
		r.cfg.Interval.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit script: %w", err)
	}
	return allowed == 1, nil
}
