package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/inviteportal/internal/config"
)

const keyInviteClient = "invite:ratelimit:client:%s"

// InviteLimiter throttles invite submissions per client.
type InviteLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

// NewInviteLimiter returns nil when rate limiting is disabled.
func NewInviteLimiter(cfg config.Config, client *redis.Client) (*InviteLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}
	if client == nil {
		return nil, errors.New("invite rate limit requires redis")
	}
	if limitCfg.Rate <= 0 || limitCfg.Burst <= 0 {
		return nil, errors.New("invite rate limit rate and burst must be positive")
	}

	return &InviteLimiter{
		bucket: NewTokenBucket(client),
		rate:   limitCfg.Rate,
		burst:  limitCfg.Burst,
	}, nil
}

func (l *InviteLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// Allow takes one token from the bucket for clientKey. A disabled limiter
// always allows.
func (l *InviteLimiter) Allow(ctx context.Context, clientKey string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	clientKey = strings.TrimSpace(clientKey)
	if clientKey == "" {
		clientKey = "unknown"
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyInviteClient, clientKey), l.rate, l.burst)
}
