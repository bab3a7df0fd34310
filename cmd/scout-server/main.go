// Command scout-server serves the job map API. It loads the catalog, builds
// or loads the neighbour graph, and serves until SIGINT or SIGTERM. SIGHUP
// reloads the dataset without dropping connections.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dd0wney/scout/pkg/api"
	"github.com/dd0wney/scout/pkg/catalog"
	"github.com/dd0wney/scout/pkg/config"
	"github.com/dd0wney/scout/pkg/logging"
	"github.com/dd0wney/scout/pkg/mapdata"
	"github.com/dd0wney/scout/pkg/metrics"
	"github.com/dd0wney/scout/pkg/search"
	"github.com/dd0wney/scout/pkg/server"
	"github.com/dd0wney/scout/pkg/similarity"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "YAML config file")
	port := flag.Int("port", 0, "HTTP port (overrides config and SCOUT_PORT)")
	dataset := flag.String("dataset", "", "dataset source: path, s3://bucket/key or postgres:// URL")
	flag.Parse()

	// Process lifecycle lines go through slog; components log through the
	// scout logger.
	lifecycle := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := run(*configPath, *port, *dataset, lifecycle); err != nil {
		lifecycle.Error("server exited", "error", err)
		os.Exit(1)
	}
	lifecycle.Info("server exited")
}

func run(configPath string, port int, dataset string, lifecycle *slog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if port != 0 {
		cfg.Server.Port = port
	}
	if dataset != "" {
		cfg.Dataset.Source = dataset
	}

	logger := logging.NewJSONLogger(os.Stderr, cfg.Level())
	logging.SetDefaultLogger(logger)
	registry := metrics.NewRegistry()

	lifecycle.Info("scout server starting",
		"version", version,
		"port", cfg.Server.Port,
		"dataset", cfg.Dataset.Source,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := loadService(ctx, cfg, logger, registry)
	if err != nil {
		return err
	}
	rows, jobs := svc.Neighbours()
	lifecycle.Info("dataset ready", "jobs", jobs, "neighbour_rows", rows)

	apiServer, err := api.NewServer(svc, api.Options{
		Version: version,
		Config:  cfg.Server,
		Logger:  logger,
		Metrics: registry,
	})
	if err != nil {
		return err
	}
	defer apiServer.Close()

	gs := server.NewGracefulServer(":"+strconv.Itoa(cfg.Server.Port), apiServer.Handler(), server.Options{
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Logger:          logger,
	})
	gs.SetReloadFunc(func(ctx context.Context) error {
		next, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if dataset != "" {
			next.Dataset.Source = dataset
		}
		svc, err := loadService(ctx, next, logger, registry)
		if err != nil {
			return err
		}
		apiServer.SetService(svc)
		lifecycle.Info("dataset reloaded", "dataset", next.Dataset.Source)
		return nil
	})

	return gs.ListenAndServe(ctx)
}

// loadService builds everything the map endpoints answer from.
func loadService(ctx context.Context, cfg *config.Config, logger logging.Logger, registry *metrics.Registry) (*mapdata.Service, error) {
	start := time.Now()

	c, err := catalog.Load(ctx, cfg.Dataset.Source, catalog.Options{
		S3Region:         cfg.Dataset.S3Region,
		S3Endpoint:       cfg.Dataset.S3Endpoint,
		S3AccessKey:      cfg.Dataset.S3AccessKey,
		S3SecretKey:      cfg.Dataset.S3SecretKey,
		PostgresTable:    cfg.Dataset.PostgresTable,
		PostgresMaxConns: cfg.Dataset.PostgresMaxConns,
		Logger:           logger,
		Metrics:          registry,
	})
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	idx := search.Build(c.Documents(), search.DefaultOptions())

	g, err := similarity.LoadOrBuild(ctx, cfg.Dataset.CacheDir, idx, c.Fingerprint(), similarity.BuildOptions{
		K:       cfg.Dataset.Neighbours,
		Workers: cfg.Dataset.Workers,
		Logger:  logger,
		Metrics: registry,
	})
	if err != nil {
		return nil, fmt.Errorf("neighbour graph: %w", err)
	}

	opts := mapdata.DefaultOptions()
	opts.RelatedLimit = cfg.Dataset.Neighbours
	opts.Logger = logger
	opts.Metrics = registry

	logger.Info("dataset loaded",
		logging.Count(c.Len()),
		logging.Int("vocabulary", idx.VocabularySize()),
		logging.Latency(time.Since(start)),
	)
	return mapdata.NewService(c, idx, g, opts), nil
}
