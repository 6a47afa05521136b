package invite

import (
	"github.com/smallbiznis/inviteportal/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("invite",
	fx.Provide(
		provideClient,
		provideResolver,
	),
)

type resolverParams struct {
	fx.In

	Client   *Client
	Log      *zap.Logger
	Observer Observer `optional:"true"`
}

func provideClient(cfg config.Config) *Client {
	return NewClient(ClientConfig{
		BaseURL:   cfg.Upstream.BaseURL,
		UserAgent: cfg.Upstream.UserAgent,
		Timeout:   cfg.Upstream.Timeout(),
	}, nil)
}

func provideResolver(p resolverParams) *Resolver {
	return NewResolver(p.Client, p.Log, p.Observer)
}
