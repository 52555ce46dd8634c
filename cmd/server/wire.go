//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"notify_relay/internal/app"
	"notify_relay/internal/config"
	"notify_relay/internal/http"
	"notify_relay/internal/http/controller"
	"notify_relay/internal/logging"
	"notify_relay/internal/metrics"
	"notify_relay/internal/native"
	"notify_relay/internal/queue/rabbitmq"
	"notify_relay/internal/service/notify"
	"notify_relay/internal/sse"
	"notify_relay/internal/store"
)

func InitializeApp() (*app.App, error) {
	wire.Build(
		config.New,
		logging.New,
		metrics.New,
		native.New,
		sse.NewHub,
		store.NewEventStore,
		rabbitmq.NewPublisher,
		notify.NewService,
		wire.Bind(new(rabbitmq.Notifier), new(*notify.Service)),
		rabbitmq.NewConsumer,
		controller.NewHandler,
		http.NewRouter,
		app.NewApp,
	)
	return &app.App{}, nil
}
