// Package container provides dependency injection using Uber FX
package container

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	aiapp "github.com/recipewise/server/internal/application/ai"
	"github.com/recipewise/server/internal/application/events"
	"github.com/recipewise/server/internal/application/imaging"
	"github.com/recipewise/server/internal/application/mealplan"
	"github.com/recipewise/server/internal/application/recipe"
	aiinfra "github.com/recipewise/server/internal/infrastructure/ai"
	"github.com/recipewise/server/internal/infrastructure/config"
	"github.com/recipewise/server/internal/infrastructure/http/apiserver"
	"github.com/recipewise/server/internal/infrastructure/imagesearch"
	"github.com/recipewise/server/internal/infrastructure/messaging"
	"github.com/recipewise/server/internal/infrastructure/monitoring"
	gormrepo "github.com/recipewise/server/internal/infrastructure/persistence/gorm"
	"github.com/recipewise/server/internal/infrastructure/persistence/memory"
	"github.com/recipewise/server/internal/infrastructure/persistence/migrations"
	"github.com/recipewise/server/internal/infrastructure/persistence/postgres"
	redisrepo "github.com/recipewise/server/internal/infrastructure/persistence/redis"
	"github.com/recipewise/server/internal/infrastructure/persistence/seed"
	"github.com/recipewise/server/internal/infrastructure/persistence/sqlite"
	"github.com/recipewise/server/internal/infrastructure/storage/s3"
	"github.com/recipewise/server/internal/ports/inbound"
	"github.com/recipewise/server/internal/ports/outbound"
	"github.com/recipewise/server/pkg/healthcheck"
	"github.com/recipewise/server/pkg/logger"
)

// Options assembles the application, loading configuration from configPath
// (empty means the default search paths).
func Options(configPath string) fx.Option {
	return fx.Options(
		fx.Provide(func() (*config.Config, error) {
			return config.Load(configPath)
		}),
		Module,
	)
}

// Module provides all dependency injection modules except configuration
var Module = fx.Options(
	LoggerModule,
	MonitoringModule,
	DatabaseModule,
	CacheModule,
	RepositoryModule,
	AIModule,
	ImagingModule,
	ServiceModule,
	HTTPModule,
	LifecycleModule,
)

// LoggerModule provides logging
var LoggerModule = fx.Options(
	fx.Provide(func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	}),
	fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: log.Named("fx")}
	}),
)

// MonitoringModule provides metrics, tracing and health checks
var MonitoringModule = fx.Provide(
	monitoring.NewMetricsCollector,
	func(m *monitoring.MetricsCollector) outbound.PipelineMetrics { return m },
	func(lc fx.Lifecycle, cfg *config.Config, metrics *monitoring.MetricsCollector, log *zap.Logger) (*monitoring.TelemetryProvider, error) {
		tp, err := monitoring.NewTelemetryProvider(context.Background(), monitoring.TelemetryConfig{
			ServiceName:    "recipewise",
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Environment,
			OTLPEndpoint:   cfg.Monitoring.OTLPEndpoint,
			SamplingRate:   cfg.Monitoring.SamplingRate,
			TracingEnabled: cfg.Monitoring.EnableTracing,
		}, metrics.Registry(), log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: tp.Shutdown})
		return tp, nil
	},
	func(cfg *config.Config, log *zap.Logger) *healthcheck.HealthCheck {
		return healthcheck.New(cfg.App.Version, log)
	},
)

// Database is the primary store and the pool behind it
type Database struct {
	DB     *gorm.DB
	Pinger healthcheck.Pinger
}

// DatabaseModule provides the configured database
var DatabaseModule = fx.Provide(
	NewDatabase,
	func(d *Database) *gorm.DB { return d.DB },
)

// NewDatabase opens sqlite or postgres according to cfg.Database.Driver.
// Postgres schemas are migrated before the pool is opened.
func NewDatabase(lc fx.Lifecycle, cfg *config.Config, metrics *monitoring.MetricsCollector, log *zap.Logger) (*Database, error) {
	switch cfg.Database.Driver {
	case "postgres":
		if cfg.Database.AutoMigrate {
			if err := migrations.Run(cfg.Database.DSN(cfg.Database.Host), log); err != nil {
				return nil, fmt.Errorf("failed to migrate database: %w", err)
			}
		}
		cm, err := postgres.NewConnectionManager(context.Background(), cfg.Database, metrics.Registry(), log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return cm.Close() }})
		return &Database{DB: cm.DB(), Pinger: cm.SQLDB()}, nil

	case "sqlite", "":
		db, err := sqlite.Open(cfg.Database, log)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return sqlDB.Close() }})
		return &Database{DB: db, Pinger: sqlDB}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// Redis holds the optional redis client. Client is nil when redis is disabled.
type Redis struct {
	Client redis.UniversalClient
}

// CacheModule provides the cache and the event bus, backed by redis when enabled
var CacheModule = fx.Provide(
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*Redis, error) {
		if !cfg.Redis.Enabled {
			return &Redis{}, nil
		}
		client, err := redisrepo.NewClient(context.Background(), cfg.Redis, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return client.Close() }})
		return &Redis{Client: client}, nil
	},
	func(lc fx.Lifecycle, r *Redis, log *zap.Logger) outbound.CacheRepository {
		if r.Client != nil {
			return redisrepo.NewCacheRepository(r.Client, log)
		}
		log.Info("Redis disabled, using in-memory cache")
		cache := memory.NewCacheRepository()
		ctx, cancel := context.WithCancel(context.Background())
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				go cache.Cleanup(ctx, 5*time.Minute)
				return nil
			},
			OnStop: func(context.Context) error {
				cancel()
				return nil
			},
		})
		return cache
	},
	func(r *Redis, log *zap.Logger) outbound.MessageBus {
		if r.Client != nil {
			return messaging.NewRedisBus(r.Client, "recipewise:", log)
		}
		return messaging.NewLogBus(log)
	},
)

// RepositoryModule provides repository implementations
var RepositoryModule = fx.Provide(
	gormrepo.NewRecipeRepository,
	gormrepo.NewMealPlanRepository,
	gormrepo.NewProfileRepository,
	gormrepo.NewSavedRecipeRepository,
)

// AIModule provides the model provider and the gateway wrapped around it
var AIModule = fx.Provide(
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*aiinfra.Provider, error) {
		provider, err := aiinfra.NewProvider(context.Background(), cfg.AI, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return provider.Close() }})
		return provider, nil
	},
	aiinfra.NewHealthChecker,
	func(provider *aiinfra.Provider, cfg *config.Config, metrics outbound.PipelineMetrics, log *zap.Logger) *aiapp.Gateway {
		return aiapp.NewGateway(provider.Text, provider.Image, aiapp.GatewayConfig{
			Policy:  aiapp.RetryPolicy{MaxAttempts: cfg.AI.MaxAttempts, BaseDelay: cfg.AI.BaseDelay},
			Timeout: cfg.AI.Timeout(),
		}, metrics, log)
	},
	func(g *aiapp.Gateway) aiapp.Invoker { return g },
)

// ImagingModule provides the image resolver cascade
var ImagingModule = fx.Provide(
	NewObjectStorage,
	NewImageResolver,
)

// NewObjectStorage returns S3 storage when configured, otherwise nil so
// generated images are returned inline.
func NewObjectStorage(cfg *config.Config, log *zap.Logger) (outbound.ObjectStorage, error) {
	if cfg.Storage.Provider != "s3" {
		return nil, nil
	}
	storage, err := s3.NewStorage(s3.Config{
		Bucket:        cfg.Storage.S3Bucket,
		Region:        cfg.Storage.S3Region,
		Endpoint:      cfg.Storage.S3Endpoint,
		Prefix:        cfg.Storage.S3Prefix,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
	}, log)
	if err != nil {
		return nil, err
	}
	return storage, nil
}

// NewImageResolver builds the tier cascade: generative, custom search, scrape.
// Tiers whose prerequisites are not configured are left out.
func NewImageResolver(
	cfg *config.Config,
	provider *aiinfra.Provider,
	gateway *aiapp.Gateway,
	storage outbound.ObjectStorage,
	metrics outbound.PipelineMetrics,
	log *zap.Logger,
) *imaging.Resolver {
	client := &http.Client{Timeout: cfg.ImageSearch.Timeout}
	tiers := make([]outbound.ImageTier, 0, 3)

	if provider.Image != nil {
		tiers = append(tiers, imaging.NewGenerativeTier(gateway, storage, log))
	}
	if cfg.ImageSearch.CustomSearchEnabled() {
		tiers = append(tiers, imagesearch.NewCustomSearch(imagesearch.CustomSearchConfig{
			Key:      cfg.ImageSearch.GoogleKey,
			CX:       cfg.ImageSearch.GoogleCX,
			Endpoint: cfg.ImageSearch.Endpoint,
		}, client, log))
	}
	if cfg.ImageSearch.ScrapeEnabled {
		tiers = append(tiers, imagesearch.NewScraper(imagesearch.ScraperConfig{
			SearchURL: cfg.ImageSearch.ScrapeURL,
			UserAgent: cfg.ImageSearch.UserAgent,
		}, client, log))
	}

	names := make([]string, 0, len(tiers))
	for _, t := range tiers {
		names = append(names, t.Name())
	}
	log.Info("Image resolver configured", zap.Strings("tiers", names))

	return imaging.NewResolver(tiers, metrics, log)
}

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	events.NewPublisher,
	func(llm aiapp.Invoker, cache outbound.CacheRepository, cfg *config.Config, metrics outbound.PipelineMetrics, log *zap.Logger) *aiapp.Interpreter {
		return aiapp.NewInterpreter(llm, cache, aiapp.InterpreterConfig{
			EnableCache: cfg.AI.EnableCache,
			CacheTTL:    cfg.AI.CacheTTL,
		}, metrics, log)
	},
	func(recipes outbound.RecipeRepository, cfg *config.Config, log *zap.Logger) *recipe.CatalogSearch {
		return recipe.NewCatalogSearch(recipes, cfg.Retrieval.MaxCatalogResults, log)
	},
	func(
		llm aiapp.Invoker,
		images *imaging.Resolver,
		recipes outbound.RecipeRepository,
		publisher *events.Publisher,
		cfg *config.Config,
		metrics outbound.PipelineMetrics,
		log *zap.Logger,
	) *recipe.Synthesizer {
		return recipe.NewSynthesizer(llm, images, recipes, publisher, recipe.SynthesizerConfig{
			ImageConcurrency: cfg.AI.ImageConcurrency,
		}, metrics, log)
	},
	func(
		interpreter *aiapp.Interpreter,
		catalog *recipe.CatalogSearch,
		synthesizer *recipe.Synthesizer,
		profiles outbound.ProfileRepository,
		cfg *config.Config,
		metrics outbound.PipelineMetrics,
		log *zap.Logger,
	) inbound.RetrievalService {
		return recipe.NewRetrievalService(interpreter, catalog, synthesizer, profiles, recipe.RetrievalConfig{
			MinResults:      cfg.Retrieval.MinResults,
			SystemUserEmail: cfg.App.DemoUserEmail,
		}, metrics, log)
	},
	recipe.NewCatalogService,
	aiapp.NewAssistantService,
	func(llm aiapp.Invoker, cfg *config.Config, metrics outbound.PipelineMetrics, log *zap.Logger) *mealplan.Assembler {
		return mealplan.NewAssembler(llm, cfg.MealPlan.MaxDays, metrics, log)
	},
	func(
		assembler *mealplan.Assembler,
		plans outbound.MealPlanRepository,
		recipes outbound.RecipeRepository,
		profiles outbound.ProfileRepository,
		publisher *events.Publisher,
		cfg *config.Config,
		log *zap.Logger,
	) inbound.MealPlanService {
		return mealplan.NewService(assembler, plans, recipes, profiles, publisher, mealplan.ServiceConfig{
			DefaultDays: cfg.MealPlan.DefaultDays,
			MaxDays:     cfg.MealPlan.MaxDays,
			MinCorpus:   cfg.MealPlan.MinCorpus,
			CorpusLimit: cfg.MealPlan.CorpusLimit,
		}, log)
	},
)

// HTTPModule provides the API server and the ops server
var HTTPModule = fx.Provide(
	func(
		cfg *config.Config,
		log *zap.Logger,
		retrieval inbound.RetrievalService,
		catalog inbound.CatalogService,
		plans inbound.MealPlanService,
		assistant inbound.AssistantService,
		metrics *monitoring.MetricsCollector,
	) *apiserver.Server {
		return apiserver.NewServer(cfg, log, apiserver.Services{
			Retrieval: retrieval,
			Catalog:   catalog,
			MealPlans: plans,
			Assistant: assistant,
		}, apiserver.WithInstrumentation(metrics.Middleware(routePattern)))
	},
	func(cfg *config.Config, metrics *monitoring.MetricsCollector, health *healthcheck.HealthCheck, log *zap.Logger) *monitoring.OpsServer {
		return monitoring.NewOpsServer(cfg.Monitoring.MetricsPort, metrics, health, log)
	},
)

// routePattern labels requests with the matched chi pattern. It is read
// after the handler ran, when routing has filled the context in.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterHealthChecks,
	SeedDatabase,
	RegisterLifecycleHooks,
)

// RegisterHealthChecks registers the dependencies reported by /healthz and /readyz
func RegisterHealthChecks(health *healthcheck.HealthCheck, db *Database, r *Redis, ai *aiinfra.HealthChecker) {
	health.Register("database", healthcheck.NewDatabaseChecker(db.Pinger))
	if r.Client != nil {
		health.Register("redis", healthcheck.NewRedisChecker(r.Client))
	}
	health.Register("model_provider", healthcheck.NewCustomChecker("model_provider",
		func(ctx context.Context) (healthcheck.Status, string, interface{}) {
			status := ai.CheckHealth(ctx)
			if status.Overall != "healthy" {
				return healthcheck.StatusDegraded, status.Details, status
			}
			return healthcheck.StatusHealthy, "", status
		}))
}

// SeedDatabase loads the catalog into an empty database at startup
func SeedDatabase(lc fx.Lifecycle, cfg *config.Config, db *gorm.DB, log *zap.Logger) {
	if !cfg.Database.Seed {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return seed.NewSeeder(db, log).Run(ctx, cfg.App.DemoUserEmail)
		},
	})
}

// RegisterLifecycleHooks starts and stops the servers with the application
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Config,
	log *zap.Logger,
	api *apiserver.Server,
	ops *monitoring.OpsServer,
	_ *monitoring.TelemetryProvider,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting Recipewise",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
				zap.String("database", cfg.Database.Driver),
				zap.String("ai_provider", cfg.AI.Provider),
			)

			if cfg.Monitoring.EnableMetrics {
				ops.Start()
			}

			go func() {
				if err := api.Start(); err != nil {
					log.Error("API server stopped", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Stopping Recipewise")
			var errs []error
			if err := api.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("api server: %w", err))
			}
			if cfg.Monitoring.EnableMetrics {
				if err := ops.Shutdown(ctx); err != nil {
					errs = append(errs, fmt.Errorf("ops server: %w", err))
				}
			}
			_ = log.Sync()
			return errors.Join(errs...)
		},
	})
}
