package di

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ShabiDHM/advocatus-sub001/application/commands"
	"github.com/ShabiDHM/advocatus-sub001/application/ports"
	"github.com/ShabiDHM/advocatus-sub001/application/queries"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/aggregates"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/entities"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/valueobjects"
	domainsvc "github.com/ShabiDHM/advocatus-sub001/domain/services"
	"github.com/ShabiDHM/advocatus-sub001/infrastructure/config"
	"github.com/ShabiDHM/advocatus-sub001/infrastructure/messaging"
	"github.com/ShabiDHM/advocatus-sub001/pkg/observability"
)

func TestProvideLogLevel(t *testing.T) {
	cfg := config.Defaults()
	cfg.LogLevel = "debug"
	level, err := ProvideLogLevel(cfg)
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, level.Level())

	cfg.LogLevel = "loud"
	_, err = ProvideLogLevel(cfg)
	assert.Error(t, err)
}

func TestProvideRepository(t *testing.T) {
	logger := zap.NewNop()
	tracer := observability.NewNoopTracer()

	cfg := config.Defaults()
	repo, cleanup, err := ProvideRepository(cfg, nil, tracer, logger)
	require.NoError(t, err)
	defer cleanup()
	_, isHealth := repo.(ports.HealthChecker)
	assert.True(t, isHealth)

	cfg.StorageBackend = config.StorageSQLite
	cfg.SQLitePath = t.TempDir() + "/maps.db"
	repo, cleanup2, err := ProvideRepository(cfg, nil, tracer, logger)
	require.NoError(t, err)
	defer cleanup2()
	require.NoError(t, repo.(ports.HealthChecker).Ping(context.Background()))

	cfg.StorageBackend = "postgres"
	_, _, err = ProvideRepository(cfg, nil, tracer, logger)
	assert.Error(t, err)
}

func TestProvideEventPublisher_LogsWhenEventsDisabled(t *testing.T) {
	cfg := config.Defaults()
	cfg.EnableEvents = false
	_, ok := ProvideEventPublisher(cfg, nil, zap.NewNop()).(*messaging.LogPublisher)
	assert.True(t, ok)
}

func TestProvideImportOptions(t *testing.T) {
	cfg := config.Defaults()
	cfg.ImportDanglingPolicy = "redirect"
	opts, err := ProvideImportOptions(cfg)
	require.NoError(t, err)
	assert.Equal(t, domainsvc.DanglingRedirect, opts.Dangling)
	assert.Equal(t, "CONTRADICTS", opts.ContradictionKeyword)

	cfg.ImportDanglingPolicy = "explode"
	_, err = ProvideImportOptions(cfg)
	assert.Error(t, err)
}

func TestProvideJWTValidator(t *testing.T) {
	cfg := config.Defaults()
	v, err := ProvideJWTValidator(cfg)
	require.NoError(t, err)
	assert.Nil(t, v)

	cfg.AuthEnabled = true
	cfg.JWTSecret = "s3cret"
	v, err = ProvideJWTValidator(cfg)
	require.NoError(t, err)
	assert.NotNil(t, v)
}

func TestBusesRoundTrip(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()
	cfg := config.Defaults()
	metrics := observability.NewCollector("test")
	cache := NewInMemoryCache(cacheSweepInterval)
	defer cache.Close()

	repo, cleanup, err := ProvideRepository(cfg, nil, observability.NewNoopTracer(), logger)
	require.NoError(t, err)
	defer cleanup()

	commandBus, err := ProvideCommandBus(repo, cache, messaging.NewLogPublisher(logger), metrics, logger)
	require.NoError(t, err)
	queryBus, err := ProvideQueryBus(cfg, repo, cache, ProvideReportRenderer(observability.NewNoopTracer(), logger), metrics, logger)
	require.NoError(t, err)

	first, err := queryBus.Ask(ctx, queries.GetEvidenceMapQuery{CaseID: "case-1"})
	require.NoError(t, err)
	assert.Empty(t, first.(aggregates.Document).Nodes)

	n, err := entities.NewFactNode("F1", valueobjects.Position{}, "Meeting", "")
	require.NoError(t, err)
	doc := aggregates.Document{Nodes: []entities.Node{n}, Viewport: valueobjects.DefaultViewport()}
	require.NoError(t, commandBus.Send(ctx, commands.SaveEvidenceMapCommand{CaseID: "case-1", Document: doc}))

	second, err := queryBus.Ask(ctx, queries.GetEvidenceMapQuery{CaseID: "case-1"})
	require.NoError(t, err)
	assert.Len(t, second.(aggregates.Document).Nodes, 1, "save invalidates the cached map")
}
