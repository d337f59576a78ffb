// Command worker archives saved Urban-DDS reports.  It consumes
// report-created events from Kafka and uploads the rendered markdown to
// MinIO, using a Redis lock per document when Redis is configured.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/urban-dds/internal/config"
	"github.com/turtacn/urban-dds/internal/infrastructure/database/redis"
	"github.com/turtacn/urban-dds/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/urban-dds/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/urban-dds/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/urban-dds/internal/infrastructure/storage/minio"
	httpapi "github.com/turtacn/urban-dds/internal/interfaces/http"
	"github.com/turtacn/urban-dds/internal/interfaces/http/handlers"
	"github.com/turtacn/urban-dds/internal/interfaces/worker"
)

const (
	defaultHealthPort = 8081
	archiveLockTTL    = 2 * time.Minute
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	healthPort := flag.Int("health-port", defaultHealthPort, "port of the health and metrics server")
	flag.Parse()

	cfg, err := config.LoadOptional(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger = logger.Named("worker")

	if err := run(cfg, *healthPort, logger); err != nil {
		logger.Error("Worker failed", logging.Err(err))
		os.Exit(1)
	}
	logger.Info("Urban-DDS worker stopped")
}

func run(cfg *config.Config, healthPort int, logger logging.Logger) error {
	if !cfg.Kafka.Enabled || !cfg.MinIO.Enabled {
		return fmt.Errorf("worker requires kafka.enabled and minio.enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		collector prometheus.MetricsCollector
		metrics   *prometheus.AppMetrics
	)
	if cfg.Metrics.Enabled {
		c, err := prometheus.NewMetricsCollector(prometheus.CollectorConfigFrom(cfg.Metrics), logger)
		if err != nil {
			return err
		}
		collector = c
		metrics = prometheus.NewAppMetrics(c)
	}

	store, err := minio.NewMinIOClient(cfg.MinIO, logger)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.EnsureBucket(ctx); err != nil {
		return err
	}
	checkers := []handlers.HealthChecker{
		handlers.NewChecker("minio", func(ctx context.Context) error {
			_, err := store.HealthCheck(ctx)
			return err
		}),
	}

	opts := []worker.Option{}
	if metrics != nil {
		opts = append(opts, worker.WithRecorder(metrics))
	}
	if cfg.Redis.Enabled {
		rdb, err := redis.NewClient(cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis unavailable, archiving without locks", logging.Err(err))
		} else {
			defer rdb.Close()
			checkers = append(checkers, handlers.NewChecker("redis", rdb.Ping))
			opts = append(opts, worker.WithLocks(func(name string, ttl time.Duration) worker.Locker {
				return redis.NewMutex(rdb, name, ttl, logger)
			}, archiveLockTTL))
		}
	}
	handler := worker.NewArchiveHandler(minio.NewReportArchive(store, logger), logger, opts...)

	consumerCfg := kafka.ConsumerConfigFrom(cfg.Kafka)
	consumer, err := kafka.NewConsumer(consumerCfg, logger)
	if err != nil {
		return err
	}
	for _, topic := range consumerCfg.Topics {
		consumer.Subscribe(topic, handler.Handle)
	}

	health := newHealthServer(cfg, healthPort, collector, checkers, logger)
	go func() {
		if err := health.Start(); err != nil {
			logger.Error("Health server error", logging.Err(err))
		}
	}()

	if err := consumer.Start(ctx); err != nil {
		consumer.Close()
		return err
	}
	logger.Info("Urban-DDS worker started",
		logging.Strings("topics", consumerCfg.Topics),
		logging.String("group", consumerCfg.GroupID),
		logging.String("bucket", store.Bucket()))

	<-ctx.Done()
	logger.Info("Shutdown signal received, draining consumer")

	if err := consumer.Close(); err != nil {
		logger.Warn("Consumer close failed", logging.Err(err))
	}
	return health.Stop(context.Background())
}

func newHealthServer(cfg *config.Config, port int, collector prometheus.MetricsCollector, checkers []handlers.HealthChecker, logger logging.Logger) *httpapi.Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	h := handlers.NewHealthHandler(handlers.HealthInfo{Service: "urban-dds-worker", Version: version}, checkers...)
	r.GET("/healthz", h.Liveness)
	r.GET("/readyz", h.Readiness)
	if collector != nil {
		r.GET(cfg.Metrics.Path, gin.WrapH(collector.Handler()))
	}

	return httpapi.NewServer(config.ServerConfig{Port: port, ShutdownTimeout: 5 * time.Second}, r, logger)
}

//Personal.AI order the ending
