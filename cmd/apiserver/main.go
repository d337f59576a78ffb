// Command apiserver serves the Urban-DDS HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/urban-dds/internal/bootstrap"
	"github.com/turtacn/urban-dds/internal/config"
	"github.com/turtacn/urban-dds/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	httpPort := flag.Int("http-port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	cfg, err := config.LoadOptional(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *httpPort > 0 {
		cfg.Server.Port = *httpPort
	}
	gin.SetMode(cfg.Server.Mode)

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)

	if *configPath != "" {
		config.Watch(*configPath, func(next *config.Config) {
			if logging.SetLevel(logger, next.Log.Level) {
				logger.Info("Log level updated", logging.String("level", next.Log.Level))
			}
		}, func(err error) {
			logger.Warn("Ignoring invalid configuration change", logging.Err(err))
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting Urban-DDS API server",
		logging.String("version", version),
		logging.String("commit", commit),
		logging.Int("port", cfg.Server.Port))

	app, err := bootstrap.New(ctx, cfg, logger, bootstrap.Options{})
	if err != nil {
		logger.Error("Failed to assemble application", logging.Err(err))
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Serve(ctx, version, nil); err != nil {
		logger.Error("HTTP server error", logging.Err(err))
		app.Close()
		os.Exit(1)
	}
	logger.Info("Urban-DDS API server stopped")
}

//Personal.AI order the ending
