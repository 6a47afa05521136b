package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

var (
	ErrNotConfigured = errors.New("rate limiter not configured")
	ErrEmptyKey      = errors.New("rate limiter key is empty")
	ErrInvalidLimit  = errors.New("rate limiter rate and burst must be positive")
)

// tokenBucketScript refills the bucket by the time elapsed on the Redis clock
// and takes one token when available. It replies
// {allowed, remaining tokens as a string, retry after in ms}.
const tokenBucketScript = `
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local ttl_ms = tonumber(ARGV[3])

local clock = redis.call("TIME")
local now_ms = clock[1] * 1000 + math.floor(clock[2] / 1000)

local state = redis.call("HMGET", KEYS[1], "tokens", "ts")
local tokens = tonumber(state[1]) or burst
local last_ms = tonumber(state[2]) or now_ms
if now_ms > last_ms then
  tokens = math.min(burst, tokens + (now_ms - last_ms) / 1000 * rate)
end

local allowed = 0
local retry_ms = 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
else
  retry_ms = math.ceil((1 - tokens) / rate * 1000)
end

redis.call("HSET", KEYS[1], "tokens", tostring(tokens), "ts", now_ms)
redis.call("PEXPIRE", KEYS[1], ttl_ms)

return {allowed, tostring(tokens), retry_ms}
`

// TokenBucket is a Redis-backed token bucket shared by every portal instance.
type TokenBucket struct {
	client *redis.Client
	script *redis.Script
}

type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

func NewTokenBucket(client *redis.Client) *TokenBucket {
	if client == nil {
		return nil
	}
	return &TokenBucket{client: client, script: redis.NewScript(tokenBucketScript)}
}

// Allow takes one token from the bucket stored at key. rate is tokens per
// second, burst the bucket capacity.
func (t *TokenBucket) Allow(ctx context.Context, key string, rate float64, burst int) (*Result, error) {
	switch {
	case t == nil || t.client == nil:
		return nil, ErrNotConfigured
	case key == "":
		return nil, ErrEmptyKey
	case rate <= 0 || burst <= 0:
		return nil, ErrInvalidLimit
	}

	reply, err := t.script.Run(ctx, t.client, []string{key},
		rate, burst, bucketTTL(rate, burst).Milliseconds(),
	).Slice()
	if err != nil {
		return nil, fmt.Errorf("run token bucket: %w", err)
	}

	res, err := parseReply(reply)
	if err != nil {
		return nil, err
	}
	res.Limit = burst
	return res, nil
}

// bucketTTL keeps idle buckets around for twice the time a full refill takes.
func bucketTTL(rate float64, burst int) time.Duration {
	if rate <= 0 || burst <= 0 {
		return time.Second
	}
	seconds := math.Max(1, math.Ceil(2*float64(burst)/rate))
	return time.Duration(seconds) * time.Second
}

func parseReply(reply []any) (*Result, error) {
	if len(reply) != 3 {
		return nil, fmt.Errorf("token bucket: unexpected reply length %d", len(reply))
	}
	allowed, ok := reply[0].(int64)
	if !ok {
		return nil, fmt.Errorf("token bucket: unexpected allowed value %T", reply[0])
	}
	rawRemaining, ok := reply[1].(string)
	if !ok {
		return nil, fmt.Errorf("token bucket: unexpected remaining value %T", reply[1])
	}
	remaining, err := strconv.ParseFloat(rawRemaining, 64)
	if err != nil {
		return nil, fmt.Errorf("token bucket: parse remaining: %w", err)
	}
	retryMS, ok := reply[2].(int64)
	if !ok {
		return nil, fmt.Errorf("token bucket: unexpected retry value %T", reply[2])
	}

	return &Result{
		Allowed:    allowed == 1,
		Remaining:  int(math.Floor(remaining)),
		RetryAfter: time.Duration(retryMS) * time.Millisecond,
	}, nil
}
