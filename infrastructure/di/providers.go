package di

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ShabiDHM/advocatus-sub001/application/commands/bus"
	commandhandlers "github.com/ShabiDHM/advocatus-sub001/application/commands/handlers"
	"github.com/ShabiDHM/advocatus-sub001/application/ports"
	querybus "github.com/ShabiDHM/advocatus-sub001/application/queries/bus"
	queryhandlers "github.com/ShabiDHM/advocatus-sub001/application/queries/handlers"
	"github.com/ShabiDHM/advocatus-sub001/application/services"
	domainsvc "github.com/ShabiDHM/advocatus-sub001/domain/services"
	"github.com/ShabiDHM/advocatus-sub001/infrastructure/config"
	"github.com/ShabiDHM/advocatus-sub001/infrastructure/messaging"
	"github.com/ShabiDHM/advocatus-sub001/infrastructure/messaging/eventbridge"
	"github.com/ShabiDHM/advocatus-sub001/infrastructure/persistence"
	"github.com/ShabiDHM/advocatus-sub001/infrastructure/persistence/dynamodb"
	"github.com/ShabiDHM/advocatus-sub001/infrastructure/persistence/memory"
	"github.com/ShabiDHM/advocatus-sub001/infrastructure/persistence/sqlite"
	"github.com/ShabiDHM/advocatus-sub001/infrastructure/report"
	"github.com/ShabiDHM/advocatus-sub001/pkg/auth"
	"github.com/ShabiDHM/advocatus-sub001/pkg/observability"
)

// cacheSweepInterval is how often expired cache entries are dropped
const cacheSweepInterval = time.Minute

// ProvideLogLevel parses the configured level into a level that can be
// changed while the process runs
func ProvideLogLevel(cfg *config.Config) (zap.AtomicLevel, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zap.AtomicLevel{}, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	return zap.NewAtomicLevelAt(level), nil
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config, level zap.AtomicLevel) (*zap.Logger, func(), error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = level

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

// ProvideConfigWatcher hot-reloads the YAML file in development and keeps
// the log level in step with it
func ProvideConfigWatcher(cfg *config.Config, level zap.AtomicLevel, logger *zap.Logger) (*config.Watcher, func(), error) {
	watcher, err := config.NewWatcher(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	watcher.OnChange(func(next *config.Config) {
		if l, err := zapcore.ParseLevel(next.LogLevel); err == nil {
			level.SetLevel(l)
		}
	})
	return watcher, func() { _ = watcher.Close() }, nil
}

// ProvideTracer creates the tracer; it is a no-op unless tracing is enabled
func ProvideTracer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.Tracer, func(), error) {
	tracer, err := observability.NewTracer(ctx, observability.TracingConfig{
		ServiceName: "evidence-map",
		Environment: cfg.Environment,
		Endpoint:    cfg.OTLPEndpoint,
		Enabled:     cfg.EnableTracing,
	})
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Failed to flush traces", zap.Error(err))
		}
	}
	return tracer, cleanup, nil
}

// ProvideMetrics creates the Prometheus collector
func ProvideMetrics() *observability.Collector {
	return observability.NewCollector("evidence_map")
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideRepository picks the storage backend named in the configuration
// and wraps it in tracing
func ProvideRepository(
	cfg *config.Config,
	client *awsdynamodb.Client,
	tracer *observability.Tracer,
	logger *zap.Logger,
) (ports.EvidenceMapRepository, func(), error) {
	var repo ports.EvidenceMapRepository
	cleanup := func() {}

	switch cfg.StorageBackend {
	case config.StorageMemory:
		repo = memory.NewRepository()
	case config.StorageSQLite:
		store, err := sqlite.Open(cfg.SQLitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		repo = store
		cleanup = func() {
			if err := store.Close(); err != nil {
				logger.Warn("Failed to close sqlite store", zap.Error(err))
			}
		}
	case config.StorageDynamoDB:
		repo = dynamodb.NewRepository(client, cfg.DynamoDBTable, logger)
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	logger.Info("Evidence map storage ready", zap.String("backend", cfg.StorageBackend))
	return persistence.NewTracedRepository(repo, tracer, cfg.StorageBackend), cleanup, nil
}

// ProvideEventPublisher publishes to EventBridge when events are enabled and
// to the log otherwise
func ProvideEventPublisher(cfg *config.Config, client *awseventbridge.Client, logger *zap.Logger) ports.EventPublisher {
	if cfg.EnableEvents {
		return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
	}
	return messaging.NewLogPublisher(logger)
}

// ProvideInMemoryCache creates the query cache
func ProvideInMemoryCache() (*InMemoryCache, func()) {
	cache := NewInMemoryCache(cacheSweepInterval)
	return cache, cache.Close
}

// ProvideImportOptions maps the import settings onto the merger's options
func ProvideImportOptions(cfg *config.Config) (domainsvc.ImportOptions, error) {
	policy, err := domainsvc.ParseDanglingPolicy(cfg.ImportDanglingPolicy)
	if err != nil {
		return domainsvc.ImportOptions{}, err
	}
	return domainsvc.ImportOptions{
		ContradictionKeyword: cfg.ImportContradictionKeyword,
		Placeholder:          cfg.ImportPlaceholder,
		Dangling:             policy,
	}, nil
}

// ProvideReportRenderer creates the PDF renderer
func ProvideReportRenderer(tracer *observability.Tracer, logger *zap.Logger) ports.ReportRenderer {
	return report.NewTracedRenderer(report.NewPDFRenderer(logger), tracer)
}

// ProvideCommandBus creates the command bus with its handlers registered
func ProvideCommandBus(
	repo ports.EvidenceMapRepository,
	cache *InMemoryCache,
	publisher ports.EventPublisher,
	metrics *observability.Collector,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	b := bus.NewCommandBus(
		bus.LoggingMiddleware(logger),
		bus.MetricsMiddleware(metrics),
	)
	save := commandhandlers.NewSaveEvidenceMapHandler(repo, cache, publisher, metrics, logger)
	if err := commandhandlers.RegisterHandlers(b, save); err != nil {
		return nil, err
	}
	return b, nil
}

// ProvideQueryBus creates the query bus with its handlers registered
func ProvideQueryBus(
	cfg *config.Config,
	repo ports.EvidenceMapRepository,
	cache *InMemoryCache,
	renderer ports.ReportRenderer,
	metrics *observability.Collector,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	b := querybus.NewQueryBus(
		querybus.LoggingMiddleware(logger),
		querybus.MetricsMiddleware(metrics),
		querybus.CachingMiddleware(cache, cfg.CacheTTL, metrics),
	)
	err := queryhandlers.RegisterHandlers(b,
		queryhandlers.NewGetEvidenceMapHandler(repo, logger),
		queryhandlers.NewGetDisplayedViewHandler(repo, logger),
		queryhandlers.NewGenerateReportHandler(repo, renderer, metrics, logger),
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ProvideEvidenceMapService creates the import service
func ProvideEvidenceMapService(
	repo ports.EvidenceMapRepository,
	cache *InMemoryCache,
	publisher ports.EventPublisher,
	metrics *observability.Collector,
	options domainsvc.ImportOptions,
	logger *zap.Logger,
) *services.EvidenceMapService {
	return services.NewEvidenceMapService(repo, cache, publisher, metrics, options, logger)
}

// ProvideJWTValidator creates the token validator. It is nil when
// authentication is disabled.
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	if !cfg.AuthEnabled {
		return nil, nil
	}
	return auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
	})
}
