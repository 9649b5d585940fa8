package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"flowwatch/config"
	"flowwatch/internal/flow/collector"
	"flowwatch/logger"

	"go.uber.org/zap"
)

func main() {
	// viper config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	// zap logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// run collector until a signal arrives
	if err := collector.Run(ctx, cfg, log); err != nil {
		log.Error("collector failed", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
