package ratelimit

import (
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/inviteportal/internal/config"
	"go.uber.org/fx"
)

type limiterParams struct {
	fx.In

	Config config.Config
	Redis  *redis.Client `optional:"true"`
}

var Module = fx.Module("rate.limit",
	fx.Provide(func(p limiterParams) (*InviteLimiter, error) {
		return NewInviteLimiter(p.Config, p.Redis)
	}),
)
