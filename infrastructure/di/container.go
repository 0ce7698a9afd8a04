package di

import (
	"string-analyzer/application/commands/bus"
	"string-analyzer/application/ports"
	querybus "string-analyzer/application/queries/bus"
	"string-analyzer/infrastructure/config"
	"string-analyzer/pkg/auth"
	"string-analyzer/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Runtime     *config.Runtime
	Logger      *zap.Logger
	Repository  ports.StringRepository
	Publisher   ports.EventPublisher
	Cache       ports.Cache
	CommandBus  *bus.CommandBus
	QueryBus    *querybus.QueryBus
	Metrics     *observability.Metrics
	Collector   *observability.Collector
	Tracing     *observability.TracerProvider
	RateLimiter auth.RateLimiter
	JWT         *auth.JWTValidator
}
