package di

import (
	"context"
	"fmt"
	"strings"
	"time"

	"string-analyzer/application/commands"
	"string-analyzer/application/commands/bus"
	commands_handlers "string-analyzer/application/commands/handlers"
	"string-analyzer/application/ports"
	"string-analyzer/application/queries"
	querybus "string-analyzer/application/queries/bus"
	queries_handlers "string-analyzer/application/queries/handlers"
	"string-analyzer/infrastructure/config"
	"string-analyzer/infrastructure/messaging/eventbridge"
	"string-analyzer/infrastructure/messaging/logging"
	"string-analyzer/infrastructure/persistence/decorators"
	"string-analyzer/infrastructure/persistence/dynamodb"
	"string-analyzer/infrastructure/persistence/memory"
	"string-analyzer/infrastructure/persistence/sqlite"
	"string-analyzer/pkg/auth"
	"string-analyzer/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
)

// ProvideRuntime creates the holder for settings the config watcher may change
func ProvideRuntime(cfg *config.Config) *config.Runtime {
	return config.NewRuntime(cfg)
}

// ProvideLogger creates a new logger whose level follows the runtime settings
func ProvideLogger(cfg *config.Config, runtime *config.Runtime) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = runtime.Level()

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}

	return logger.With(zap.String("service", "string-analyzer")), nil
}

// ProvideAWSConfig creates AWS configuration. Nothing is loaded when no
// enabled component talks to AWS.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	if !cfg.NeedsAWS() {
		return aws.Config{Region: cfg.AWSRegion}, nil
	}
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

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideCollector creates the Prometheus collector
func ProvideCollector(cfg *config.Config) *observability.Collector {
	return observability.NewCollector(cfg.MetricsNamespace)
}

// ProvideTracerProvider installs tracing. The cleanup flushes pending spans.
func ProvideTracerProvider(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	tp, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName: "string-analyzer",
		Environment: cfg.Environment,
		Endpoint:    cfg.OTLPEndpoint,
		SampleRate:  cfg.TraceSampleRate,
		Enabled:     cfg.EnableTracing,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Failed to flush traces", zap.Error(err))
		}
	}
	return tp, cleanup, nil
}

// ProvideStringRepository opens the configured storage backend and wraps it
// with metrics, tracing and, when enabled, a circuit breaker.
func ProvideStringRepository(
	ctx context.Context,
	cfg *config.Config,
	client *awsdynamodb.Client,
	collector *observability.Collector,
	tp *observability.TracerProvider,
	logger *zap.Logger,
) (ports.StringRepository, func(), error) {
	var (
		repo    ports.StringRepository
		cleanup = func() {}
	)

	switch cfg.StorageBackend {
	case config.StorageMemory:
		repo = memory.NewStringRepository()
	case config.StorageSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		repo = store
		cleanup = func() {
			if err := store.Close(); err != nil {
				logger.Warn("Failed to close sqlite store", zap.Error(err))
			}
		}
	case config.StorageDynamoDB:
		repo = dynamodb.NewStringRepository(client, cfg.DynamoDBTable, logger)
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	repo = decorators.NewMetricsRepository(repo, collector, cfg.StorageBackend)
	repo = decorators.NewTracingRepository(repo, tp.Tracer(), cfg.StorageBackend)
	if cfg.EnableCircuitBreaker {
		repo = decorators.NewCircuitBreakerRepository(repo,
			decorators.DefaultCircuitBreakerConfig("storage-"+cfg.StorageBackend), logger)
	}

	logger.Info("Storage backend ready", zap.String("backend", cfg.StorageBackend))
	return repo, cleanup, nil
}

// ProvideEventPublisher publishes to EventBridge when events are enabled and
// only logs them otherwise
func ProvideEventPublisher(cfg *config.Config, client *awseventbridge.Client, logger *zap.Logger) ports.EventPublisher {
	if !cfg.EnableEvents {
		return logging.NewPublisher(logger)
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideMetrics creates the CloudWatch command metrics. Publishing is
// disabled unless CloudWatch is enabled.
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) *observability.Metrics {
	namespace := fmt.Sprintf("StringAnalyzer/%s", cfg.Environment)
	if !cfg.EnableCloudWatch {
		return observability.NewMetrics(namespace, nil, logger)
	}
	return observability.NewMetrics(namespace, client, logger)
}

// ProvideInMemoryCache creates the read cache. The cleanup stops its sweeper.
func ProvideInMemoryCache(collector *observability.Collector) (*InMemoryCache, func()) {
	cache := NewInMemoryCache(time.Minute, collector)
	return cache, cache.Stop
}

// ProvideRateLimiter creates the per-client request limiter. With a
// RateLimitTable the budget lives in DynamoDB and is shared by all instances;
// otherwise each process keeps its own token buckets.
func ProvideRateLimiter(cfg *config.Config, client *awsdynamodb.Client, logger *zap.Logger) (auth.RateLimiter, func()) {
	if cfg.RateLimitTable != "" {
		logger.Info("Using distributed rate limiter", zap.String("table", cfg.RateLimitTable))
		return auth.NewDistributedIPRateLimiter(client, cfg.RateLimitTable, cfg.RateLimitPerMinute), func() {}
	}
	limiter := auth.NewTokenBucketLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	return limiter, limiter.Stop
}

// ProvideJWTValidator creates the bearer token validator. It is nil when
// authentication is not required.
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	if !cfg.RequireAuth {
		return nil, nil
	}
	return auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
	})
}

// CommandHandlerAdapter adapts specific command handlers to the generic interface
type CommandHandlerAdapter struct {
	handler func(context.Context, bus.Command) error
}

func (a *CommandHandlerAdapter) Handle(ctx context.Context, cmd bus.Command) error {
	return a.handler(ctx, cmd)
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	repo ports.StringRepository,
	publisher ports.EventPublisher,
	cache ports.Cache,
	metrics *observability.Metrics,
	collector *observability.Collector,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBusWithDependencies(metrics, bus.LoggingMiddleware(&zapLoggerAdapter{logger}))

	createHandler := commands_handlers.NewCreateStringHandler(repo, publisher, logger)
	if err := commandBus.Register(commands.CreateStringCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			createCmd, ok := cmd.(commands.CreateStringCommand)
			if !ok {
				return fmt.Errorf("invalid command type %T", cmd)
			}
			if _, err := createHandler.Handle(ctx, createCmd); err != nil {
				return err
			}
			collector.IncrementCounter("strings_created")
			return nil
		},
	}); err != nil {
		return nil, err
	}

	deleteHandler := commands_handlers.NewDeleteStringHandler(repo, publisher, cache, logger)
	if err := commandBus.Register(commands.DeleteStringCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			deleteCmd, ok := cmd.(commands.DeleteStringCommand)
			if !ok {
				return fmt.Errorf("invalid command type %T", cmd)
			}
			if err := deleteHandler.Handle(ctx, deleteCmd); err != nil {
				return err
			}
			collector.IncrementCounter("strings_deleted")
			return nil
		},
	}); err != nil {
		return nil, err
	}

	return commandBus, nil
}

// QueryHandlerAdapter adapts specific query handlers to the generic interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	repo ports.StringRepository,
	cache ports.Cache,
	runtime *config.Runtime,
	collector *observability.Collector,
	metrics *observability.Metrics,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus(querybus.NewMetricsMiddleware(&queryMetricsAdapter{collector: collector, metrics: metrics}))

	getHandler := queries_handlers.NewGetStringHandler(repo, cache, runtime.CacheTTLSeconds, logger)
	if err := queryBus.Register(queries.GetStringQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			getQuery, ok := query.(queries.GetStringQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type %T", query)
			}
			return getHandler.Handle(ctx, getQuery)
		},
	}); err != nil {
		return nil, err
	}

	listHandler := queries_handlers.NewListStringsHandler(repo, logger)
	if err := queryBus.Register(queries.ListStringsQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			listQuery, ok := query.(queries.ListStringsQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type %T", query)
			}
			return listHandler.Handle(ctx, listQuery)
		},
	}); err != nil {
		return nil, err
	}

	nlHandler := queries_handlers.NewFilterByNaturalLanguageHandler(repo, logger)
	if err := queryBus.Register(queries.FilterByNaturalLanguageQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			nlQuery, ok := query.(queries.FilterByNaturalLanguageQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type %T", query)
			}
			return nlHandler.Handle(ctx, nlQuery)
		},
	}); err != nil {
		return nil, err
	}

	return queryBus, nil
}

// queryMetricsAdapter adapts the Prometheus collector and the CloudWatch
// metrics to the query bus metrics
type queryMetricsAdapter struct {
	collector *observability.Collector
	metrics   *observability.Metrics
}

func (a *queryMetricsAdapter) StartTimer(metric, label string) querybus.Timer {
	return &queryLatencyTimer{
		timer:   a.collector.StartQueryTimer(label),
		metrics: a.metrics,
		query:   label,
		start:   time.Now(),
	}
}

// queryLatencyTimer stops the Prometheus timer and pushes the same latency
// to CloudWatch
type queryLatencyTimer struct {
	timer   *observability.QueryTimer
	metrics *observability.Metrics
	query   string
	start   time.Time
}

func (t *queryLatencyTimer) Stop() {
	t.timer.Stop()
	t.metrics.RecordLatency(context.Background(), t.query, time.Since(t.start))
}

func (a *queryMetricsAdapter) Increment(metric, label string) {
	a.collector.IncrementQuery(label, strings.TrimPrefix(metric, "query_"))
}

// zapLoggerAdapter adapts zap.Logger to the bus.Logger interface
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Debug(msg string, fields ...interface{}) {
	a.logger.Debug(msg, a.fieldsToZap(fields...)...)
}

func (a *zapLoggerAdapter) Info(msg string, fields ...interface{}) {
	a.logger.Info(msg, a.fieldsToZap(fields...)...)
}

func (a *zapLoggerAdapter) Error(msg string, fields ...interface{}) {
	a.logger.Error(msg, a.fieldsToZap(fields...)...)
}

func (a *zapLoggerAdapter) fieldsToZap(fields ...interface{}) []zap.Field {
	var zapFields []zap.Field
	for i := 0; i+1 < len(fields); i += 2 {
		key, _ := fields[i].(string)
		if err, ok := fields[i+1].(error); ok {
			zapFields = append(zapFields, zap.NamedError(key, err))
			continue
		}
		zapFields = append(zapFields, zap.Any(key, fields[i+1]))
	}
	return zapFields
}
