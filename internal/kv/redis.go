package kv

import (
	"context"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/inviteportal/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewClient returns the shared Redis client, or nil when no component is
// configured against Redis.
func NewClient(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*redis.Client, error) {
	if !cfg.NeedsRedis() {
		return nil, nil
	}

	addr := strings.TrimSpace(cfg.Redis.Addr)
	if addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.Redis.Password),
		DB:       cfg.Redis.DB,
	})

	if lc != nil {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
				defer cancel()
				if err := client.Ping(pingCtx).Err(); err != nil {
					return fmt.Errorf("failed to connect to Redis: %w", err)
				}
				log.Info("redis connected", zap.String("addr", addr), zap.Int("db", cfg.Redis.DB))
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return client.Close()
			},
		})
	}

	return client, nil
}

var Module = fx.Module("kv",
	fx.Provide(NewClient),
)
