package main

import (
	"github.com/smallbiznis/inviteportal/internal/config"
	"github.com/smallbiznis/inviteportal/internal/observability"
	"github.com/smallbiznis/inviteportal/internal/server"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		server.Module,
	)
	app.Run()
}
