// Package bootstrap assembles the analysis stack from configuration.  It is
// shared by the API server, the CLI and the worker.
package bootstrap

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/urban-dds/internal/application/analysis"
	"github.com/turtacn/urban-dds/internal/application/externalfacts"
	"github.com/turtacn/urban-dds/internal/config"
	"github.com/turtacn/urban-dds/internal/domain/region"
	"github.com/turtacn/urban-dds/internal/infrastructure/database/postgres"
	"github.com/turtacn/urban-dds/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/urban-dds/internal/infrastructure/database/redis"
	"github.com/turtacn/urban-dds/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/urban-dds/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/urban-dds/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/urban-dds/internal/infrastructure/publicdata"
	"github.com/turtacn/urban-dds/internal/infrastructure/search/opensearch"
	"github.com/turtacn/urban-dds/internal/intelligence/narrative"
	httpapi "github.com/turtacn/urban-dds/internal/interfaces/http"
	"github.com/turtacn/urban-dds/internal/interfaces/http/handlers"
	"github.com/turtacn/urban-dds/internal/interfaces/http/middleware"
)

const (
	probeRatePerSecond = 0.2
	probeBurst         = 3
)

// Check is a named dependency probe for readiness.
type Check struct {
	Name string
	Fn   func(ctx context.Context) error
}

// App holds the assembled components.  Optional integrations are nil when
// disabled or unreachable.
type App struct {
	Config *config.Config
	Logger logging.Logger

	MetricsCollector prometheus.MetricsCollector
	Metrics          *prometheus.AppMetrics

	Registry   *region.Registry
	PublicData *publicdata.Client
	Facts      *externalfacts.Collector
	Narrative  *narrative.Generator
	Service    analysis.Service

	Redis    *redis.Client
	DB       *postgres.Connection
	Producer *kafka.Producer
	Search   *opensearch.Client

	checks  []Check
	closers []func() error
}

// Options adjust New.
type Options struct {
	// Offline skips the storage and messaging integrations.  Used by CLI
	// commands that only resolve and score.
	Offline bool
}

// New builds the stack.  Unreachable optional integrations are logged and
// skipped so reports degrade instead of failing.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	a := &App{Config: cfg, Logger: logger, Registry: region.DefaultRegistry()}

	if cfg.Metrics.Enabled {
		collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfigFrom(cfg.Metrics), logger)
		if err != nil {
			return nil, err
		}
		a.MetricsCollector = collector
		a.Metrics = prometheus.NewAppMetrics(collector)
	}

	a.PublicData = publicdata.NewClient(PublicDataConfig(cfg.PublicData), logger, a.publicDataOptions()...)
	a.Narrative = narrative.NewGenerator(NarrativeOptions(cfg.Narrative), NarrativeBackends(cfg.Narrative), logger, a.narrativeOptions()...)

	deps := analysis.Deps{
		Registry:    a.Registry,
		Narrative:   a.Narrative,
		SaveTimeout: cfg.Persistence.SaveTimeout,
		Logger:      logger,
	}

	if !opts.Offline {
		a.openRedis()
	}
	a.Facts = externalfacts.NewCollector(a.PublicData, logger, a.factsOptions()...)
	deps.Facts = a.Facts

	if !opts.Offline && cfg.Persistence.Enabled {
		// Typed nils must not leak into the optional interfaces.
		if repo := a.openRepository(); repo != nil {
			deps.Repository = repo
		}
		if pub := a.openPublisher(); pub != nil {
			deps.Publisher = pub
		}
		if idx := a.openSearch(ctx); idx != nil {
			deps.Index = idx
		}
	}

	svc, err := analysis.NewService(deps)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Service = svc
	return a, nil
}

// PublicDataConfig maps the config section onto the gateway config.
func PublicDataConfig(cfg config.PublicDataConfig) publicdata.Config {
	return publicdata.Config{
		Enabled:          cfg.Enabled,
		ServiceKey:       cfg.ServiceKey,
		TimeoutMS:        cfg.TimeoutMS,
		BuildingEndpoint: cfg.BuildingEndpoint,
		TradeEndpoint:    cfg.TradeEndpoint,
		TradeMonths:      cfg.TradeMonths,
	}
}

// NarrativeOptions maps the config section onto generation options.
func NarrativeOptions(cfg config.NarrativeConfig) narrative.Options {
	return narrative.Options{
		Model:           cfg.Model,
		Temperature:     cfg.Temperature,
		MaxOutputTokens: cfg.MaxOutputTokens,
		Timeout:         cfg.Timeout,
	}
}

// NarrativeBackends orders the generation backends for cfg.Backend.
func NarrativeBackends(cfg config.NarrativeConfig) []narrative.Backend {
	apiKey := &narrative.GoogleAIBackend{
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		APIKey:  cfg.APIKey,
	}
	vertex := &narrative.VertexBackend{
		Project:          cfg.VertexProject,
		Location:         cfg.VertexLocation,
		Model:            cfg.Model,
		MetadataTokenURL: cfg.MetadataTokenURL,
	}
	return narrative.BackendChain(cfg.Backend, apiKey, vertex)
}

func (a *App) publicDataOptions() []publicdata.Option {
	if a.Metrics == nil {
		return nil
	}
	return []publicdata.Option{publicdata.WithRecorder(a.Metrics)}
}

func (a *App) narrativeOptions() []narrative.GeneratorOption {
	if a.Metrics == nil {
		return nil
	}
	return []narrative.GeneratorOption{narrative.WithRecorder(a.Metrics)}
}

func (a *App) factsOptions() []externalfacts.Option {
	var opts []externalfacts.Option
	if a.Redis != nil {
		cache := redis.NewRedisCache(a.Redis, a.Logger, redis.WithPrefix(a.Config.Redis.KeyPrefix))
		opts = append(opts, externalfacts.WithCache(cache, a.Config.PublicData.FactsCacheTTL))
	}
	if a.Metrics != nil {
		opts = append(opts, externalfacts.WithRecorder(a.Metrics))
	}
	return opts
}

func (a *App) openRedis() {
	if !a.Config.Redis.Enabled {
		return
	}
	client, err := redis.NewClient(a.Config.Redis, a.Logger)
	if err != nil {
		a.Logger.Warn("Redis unavailable, facts cache disabled", logging.Err(err))
		return
	}
	a.Redis = client
	a.addCheck("redis", client.Ping)
	a.closers = append(a.closers, client.Close)
}

func (a *App) openRepository() analysis.ReportRepository {
	if !a.Config.Database.Enabled {
		return nil
	}
	conn, err := postgres.NewConnection(a.Config.Database, a.Logger)
	if err != nil {
		a.Logger.Warn("PostgreSQL unavailable, reports will not be saved", logging.Err(err))
		return nil
	}
	if a.Config.Database.AutoMigrate {
		if err := conn.RunMigrations(); err != nil {
			a.Logger.Error("Migrations failed, reports will not be saved", logging.Err(err))
			conn.Close()
			return nil
		}
	}
	a.DB = conn
	a.addCheck("postgres", conn.HealthCheck)
	a.closers = append(a.closers, conn.Close)
	return repositories.NewPostgresReportRepo(conn, a.Logger)
}

func (a *App) openPublisher() analysis.ReportPublisher {
	if !a.Config.Kafka.Enabled {
		return nil
	}
	producer, err := kafka.NewProducer(kafka.ProducerConfigFrom(a.Config.Kafka), a.Logger)
	if err != nil {
		a.Logger.Warn("Kafka producer unavailable, report events disabled", logging.Err(err))
		return nil
	}
	a.Producer = producer
	a.closers = append(a.closers, producer.Close)
	return kafka.NewReportEventPublisher(producer, a.Config.Kafka.ReportTopic, a.Logger)
}

func (a *App) openSearch(ctx context.Context) analysis.ReportIndex {
	if !a.Config.OpenSearch.Enabled {
		return nil
	}
	client, err := opensearch.NewClient(opensearch.ClientConfigFrom(a.Config.OpenSearch), a.Logger)
	if err != nil {
		a.Logger.Warn("OpenSearch unavailable, report search disabled", logging.Err(err))
		return nil
	}
	idx := opensearch.NewReportIndex(client, a.Config.OpenSearch.Index, a.Logger)
	ensureCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := idx.EnsureIndex(ensureCtx); err != nil {
		a.Logger.Warn("Report index could not be created", logging.Err(err))
	}
	a.Search = client
	a.addCheck("opensearch", client.Ping)
	a.closers = append(a.closers, client.Close)
	return idx
}

func (a *App) addCheck(name string, fn func(ctx context.Context) error) {
	a.checks = append(a.checks, Check{Name: name, Fn: fn})
}

// HealthCheckers returns readiness probes for the opened integrations.
func (a *App) HealthCheckers() []handlers.HealthChecker {
	out := make([]handlers.HealthChecker, 0, len(a.checks))
	for _, c := range a.checks {
		out = append(out, handlers.NewChecker(c.Name, c.Fn))
	}
	return out
}

// Router builds the HTTP route tree over the assembled service.
func (a *App) Router(version string) *gin.Engine {
	var recorderOpts []handlers.AnalysisOption
	if a.Metrics != nil {
		recorderOpts = append(recorderOpts, handlers.WithReportRecorder(a.Metrics))
	}
	recorderOpts = append(recorderOpts, handlers.WithOwner(a.Config.Persistence.Owner))

	rc := httpapi.RouterConfig{
		RegionHandler:   handlers.NewRegionHandler(a.Service),
		AnalysisHandler: handlers.NewAnalysisHandler(a.Service, a.Logger, recorderOpts...),
		DebugHandler:    handlers.NewDebugHandler(a.PublicData),
		HealthHandler: handlers.NewHealthHandler(handlers.HealthInfo{
			Version:            version,
			RealDataEnabled:    a.PublicData.Enabled(),
			PersistenceEnabled: a.PersistenceEnabled(),
			NarrativeMode:      a.Config.Narrative.Backend,
		}, a.HealthCheckers()...),
		ProbeLimiter:   middleware.NewTokenBucketLimiter(probeRatePerSecond, probeBurst, 10*time.Minute),
		AllowedOrigins: a.Config.Server.AllowedOrigins,
		Logger:         a.Logger,
	}
	if a.Metrics != nil {
		rc.Metrics = a.Metrics
		rc.MetricsCollector = a.MetricsCollector
		rc.MetricsPath = a.Config.Metrics.Path
	}
	return httpapi.NewRouter(rc)
}

// PersistenceEnabled reports whether saved reports have a store.
func (a *App) PersistenceEnabled() bool {
	return a.Config.Persistence.Enabled && a.DB != nil
}

// Close releases integrations in reverse open order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Warn("Close failed", logging.Err(err))
		}
	}
	a.closers = nil
}

//Personal.AI order the ending
