//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"divination-bot/internal/biz"
	"divination-bot/internal/bot"
	"divination-bot/internal/conf"
	"divination-bot/internal/data"
	"divination-bot/internal/server"
	"divination-bot/internal/service"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// wireApp init kratos application.
func wireApp(*conf.Bootstrap, log.Logger) (*kratos.App, func(), error) {
	panic(wire.Build(
		server.ProviderSet,
		data.ProviderSet,
		biz.ProviderSet,
		bot.ProviderSet,
		service.ProviderSet,
		wire.Bind(new(service.ReadingNotifier), new(*bot.Handler)),
		wire.Bind(new(service.Pinger), new(*data.Data)),
		newApp,
	))
}
