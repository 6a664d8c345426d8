package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iwvelando/sales-analytics/internal/config"
	"github.com/iwvelando/sales-analytics/internal/dataset"
	"github.com/iwvelando/sales-analytics/internal/logging"
	"github.com/iwvelando/sales-analytics/internal/observability"
	"github.com/iwvelando/sales-analytics/internal/report"
	"github.com/iwvelando/sales-analytics/internal/server"
	"github.com/iwvelando/sales-analytics/pkg/constants"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	address := flag.String("address", "", "listen address override, e.g. :8080")
	flag.Parse()

	_ = godotenv.Load()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if *address != "" {
		conf.Server.Address = *address
	}
	if err := conf.Validate(); err != nil {
		logger.Fatal("invalid configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	serverConfig, err := server.NewConfig(conf.Server)
	if err != nil {
		logger.Fatal("invalid server configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The dataset is loaded once and shared read-only by every request.
	ds, err := dataset.Load(ctx, logger, conf.Data)
	if err != nil {
		logger.Fatal("failed to load sales data",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	handler := server.NewHandler(server.Options{
		Logger:   logger,
		Dataset:  ds,
		Report:   report.OptionsFromConfig(conf.Report),
		Config:   serverConfig,
		Metrics:  observability.NewMetrics(),
		Version:  version,
		Settings: conf,
	})

	logger.Info("starting sales-analytics server",
		zap.String("op", "main"),
		zap.String("version", version),
		zap.String("address", serverConfig.Address),
		zap.Int("rows", ds.Len()),
	)
	if err := server.Run(ctx, logger, serverConfig, handler); err != nil {
		logger.Fatal("server error",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	logger.Info("server stopped gracefully", zap.String("op", "main"))
}
