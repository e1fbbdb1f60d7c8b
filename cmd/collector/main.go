// Package main wires together the RIDB campsite collector binary.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/opencampsites/ridb-collector/internal/api"
	"github.com/opencampsites/ridb-collector/internal/collector"
	"github.com/opencampsites/ridb-collector/internal/config"
	"github.com/opencampsites/ridb-collector/internal/logging"
	"github.com/opencampsites/ridb-collector/internal/metrics"
	"github.com/opencampsites/ridb-collector/internal/ratelimit"
	"github.com/opencampsites/ridb-collector/internal/ridb"
	"github.com/opencampsites/ridb-collector/internal/storage/memory"
	"github.com/opencampsites/ridb-collector/internal/storage/postgres"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Init()

	limiter := ratelimit.New(cfg.RateInterval())
	client, err := ridb.New(ridb.Config{
		BaseURL:       cfg.RIDB.BaseURL,
		APIKey:        cfg.RIDB.APIKey,
		Timeout:       cfg.RequestTimeout(),
		MaxRetries:    cfg.RIDB.MaxRetries,
		RateLimitWait: cfg.RateLimitWait(),
	}, limiter, logger)
	if err != nil {
		logger.Error("ridb client init failed", zap.Error(err))
		os.Exit(1)
	}

	var (
		sink          collector.Sink
		progressStore collector.ProgressStore
	)
	if cfg.Collector.DryRun {
		logger.Info("dry run: using in-memory stores")
		mem := memory.New()
		sink = mem
		progressStore = mem
	} else {
		campsiteStore, err := postgres.NewCampsiteStore(ctx, postgres.CampsiteStoreConfig{
			DSN:             cfg.DB.DSN,
			Table:           cfg.DB.CampsiteTable,
			MaxConns:        cfg.DB.MaxConns,
			MinConns:        cfg.DB.MinConns,
			MaxConnLifetime: cfg.MaxConnLifetime(),
		})
		if err != nil {
			logger.Error("campsite store init failed", zap.Error(err))
			os.Exit(1)
		}
		defer campsiteStore.Close()

		pgProgress, err := postgres.NewProgressStore(ctx, cfg.DB.DSN)
		if err != nil {
			logger.Error("progress store init failed", zap.Error(err))
			os.Exit(1)
		}
		defer pgProgress.Close()

		sink = campsiteStore
		progressStore = pgProgress
	}

	orchestrator, err := collector.NewOrchestrator(collector.OrchestratorConfig{
		Source:         client,
		Filter:         collector.NewFacilityFilter(cfg.Collector.Keywords...),
		Enricher:       collector.NewEnricher(client, logger),
		Batcher:        collector.NewBatcher(sink, cfg.Collector.BatchSize, logger),
		Progress:       progressStore,
		PageSize:       cfg.Collector.PageSize,
		CollectionType: cfg.Collector.CollectionType,
		Logger:         logger,
	})
	if err != nil {
		logger.Error("orchestrator init failed", zap.Error(err))
		os.Exit(1)
	}

	opsServer := api.NewServer(progressStore, logger)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		logger.Info("ops server listening", zap.String("addr", addr))
		if err := opsServer.Serve(ctx, addr); err != nil {
			logger.Warn("ops server stopped", zap.Error(err))
		}
	}()

	report, err := orchestrator.Run(ctx)
	logger.Info("run finished",
		zap.String("run_id", report.RunID.String()),
		zap.Int("facilities_processed", report.FacilitiesProcessed),
		zap.Int("campsites_processed", report.CampsitesProcessed),
		zap.Int("records_flushed", report.RecordsFlushed),
		zap.Int("failures", len(report.Failures)),
		zap.Duration("duration", report.Duration()),
	)
	for _, f := range report.Failures {
		logger.Warn("contained failure",
			zap.String("facility_id", f.FacilityID),
			zap.String("campsite_id", f.CampsiteID),
			zap.Error(f.Err),
		)
	}
	if err != nil {
		logger.Error("collection failed", zap.Error(err))
		stop()
		os.Exit(1)
	}
}
