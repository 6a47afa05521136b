package credentials

import (
	"fmt"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/inviteportal/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("credentials",
	fx.Provide(
		provideEnvSource,
		provideOverrideStore,
		provideRuntimeSource,
		provideCookieCodec,
	),
)

type storeParams struct {
	fx.In

	Config config.Config
	Redis  *redis.Client `optional:"true"`
	Log    *zap.Logger
}

func provideEnvSource(cfg config.Config) EnvSource {
	return NewEnvSource(cfg.Upstream.Token, cfg.Upstream.AccountID)
}

func provideOverrideStore(p storeParams) (OverrideStore, error) {
	switch p.Config.Override.Backend {
	case config.OverrideBackendRedis:
		store, err := NewRedisStore(p.Redis, DefaultRedisKey)
		if err != nil {
			return nil, fmt.Errorf("override store: %w", err)
		}
		p.Log.Info("credential overrides stored in redis", zap.String("key", DefaultRedisKey))
		return store, nil
	default:
		return NewMemoryStore(), nil
	}
}

// provideRuntimeSource layers the admin override over the environment.
func provideRuntimeSource(env EnvSource, store OverrideStore) *Layered {
	return NewLayered(env, store)
}

func provideCookieCodec(cfg config.Config, log *zap.Logger) (*CookieCodec, error) {
	if cfg.CookieSecret == "" {
		log.Warn("COOKIE_SECRET not set; session credentials will not survive a restart")
	}
	return NewCookieCodec(cfg.CookieSecret, cfg.CookieSecure)
}
