package collector

import (
	"context"
	"fmt"
	"time"

	"flowwatch/config"
	"flowwatch/internal/flow/archive"
	"flowwatch/internal/flow/engine"
	"flowwatch/internal/flow/stream"
	"flowwatch/pkg/flowapi"
	"flowwatch/pkg/storage/postgres"

	"go.uber.org/zap"
)

var (
	statsInterval   = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Run wires the REST source, polling engine, optional sample archive and
// snapshot feed, and blocks until ctx is done or the feed server fails.
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	source := flowapi.NewRESTClient(cfg.Source.BaseURL, cfg.Source.Path, cfg.Source.Timeout)

	var opts []engine.Option

	// Archive: PostgreSQL client and recorder observer
	var (
		recorder       *archive.Recorder
		postgresClient *postgres.PostgresClient
	)
	if cfg.Archive.Enabled {
		var err error
		postgresClient, err = postgres.InitializeAndMigrateSampleRecord(cfg.Postgres, cfg.Log.Environment, cfg.Archive.CreateDB)
		if err != nil {
			return fmt.Errorf("failed to connect to DB: %w", err)
		}
		defer postgresClient.Close()

		recorder = archive.NewRecorder(postgresClient, archive.Config{
			QueueSize:     cfg.Archive.QueueSize,
			Retention:     cfg.Archive.Retention,
			PruneInterval: cfg.Archive.PruneInterval,
		}, logger.Named("archive"))
		opts = append(opts, engine.WithObserver(recorder))
	}

	eng, err := engine.New(engine.Config{
		PollInterval:    cfg.Engine.PollInterval(),
		HistoryCapacity: cfg.Engine.HistoryCapacity,
		Instruments:     cfg.Engine.TrackedInstruments,
	}, source, logger.Named("engine"), opts...)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	// The recorder outlives the engine so it can flush what the last
	// fetches queued.
	recorderCtx, stopRecorder := context.WithCancel(context.Background())
	defer stopRecorder()
	if recorder != nil {
		recorder.Start(recorderCtx)
	}

	if err := eng.Start(ctx); err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}

	feedErr := make(chan error, 1)
	if cfg.Feed.Addr != "" {
		feed := stream.NewFeed(eng, cfg.Feed.WriteTimeout, logger.Named("feed"))
		go func() {
			feedErr <- feed.Serve(ctx, cfg.Feed.Addr)
		}()
	}

	// Periodically log engine counters for visibility
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	var runErr error
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case err := <-feedErr:
			if err != nil {
				runErr = fmt.Errorf("feed server failed: %w", err)
			}
			break loop
		case <-ticker.C:
			stats := eng.Stats()
			logger.Info("engine stats",
				zap.Uint64("cycles", stats.Cycles),
				zap.Uint64("fetched", stats.Fetched),
				zap.Uint64("failed", stats.Failed),
				zap.Uint64("seq", eng.CurrentSnapshot().Seq()),
			)
			if postgresClient != nil && !postgresClient.IsHealthy(ctx) {
				logger.Warn("archive database is unreachable")
			}
		}
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := eng.Stop(stopCtx); err != nil {
		logger.Warn("engine did not stop cleanly", zap.Error(err))
	}

	if recorder != nil {
		stopRecorder()
		recorder.Wait()
		stats := recorder.Stats()
		logger.Info("archive stopped",
			zap.Uint64("written", stats.Written),
			zap.Uint64("duplicates", stats.Duplicates),
			zap.Uint64("dropped", stats.Dropped),
			zap.Uint64("failed", stats.Failed),
		)
	}

	return runErr
}
