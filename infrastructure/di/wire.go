//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/ShabiDHM/advocatus-sub001/application/commands/bus"
	"github.com/ShabiDHM/advocatus-sub001/application/ports"
	querybus "github.com/ShabiDHM/advocatus-sub001/application/queries/bus"
	"github.com/ShabiDHM/advocatus-sub001/application/services"
	"github.com/ShabiDHM/advocatus-sub001/infrastructure/config"
	"github.com/ShabiDHM/advocatus-sub001/pkg/auth"
	"github.com/ShabiDHM/advocatus-sub001/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	LogLevel   zap.AtomicLevel
	Watcher    *config.Watcher
	Tracer     *observability.Tracer
	Metrics    *observability.Collector
	Repository ports.EvidenceMapRepository
	Publisher  ports.EventPublisher
	Cache      *InMemoryCache
	CommandBus *bus.CommandBus
	QueryBus   *querybus.QueryBus
	Importer   *services.EvidenceMapService
	JWT        *auth.JWTValidator
}

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogLevel,
	ProvideLogger,
	ProvideConfigWatcher,
	ProvideTracer,
	ProvideMetrics,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideRepository,
	ProvideEventPublisher,
	ProvideInMemoryCache,
	ProvideImportOptions,
	ProvideReportRenderer,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideEvidenceMapService,
	ProvideJWTValidator,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil
}
