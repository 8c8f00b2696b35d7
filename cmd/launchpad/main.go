// ====================================
// File: cmd/launchpad/main.go
// ====================================
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/genesis-launchpad/internal/config"
	"github.com/rovshanmuradov/genesis-launchpad/internal/node"
	"github.com/rovshanmuradov/genesis-launchpad/internal/utils/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (json or yaml)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.New(&cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() {
		_ = appLogger.Sync()
	}()
	appLogger.Info("Starting Genesis launchpad node", zap.String("listen", cfg.API.Listen))

	runner := node.NewRunner(cfg, appLogger)
	if err := runner.Initialize(ctx); err != nil {
		appLogger.Error("Failed to initialize node", zap.Error(err))
		_ = runner.Close()
		os.Exit(1)
	}

	if err := runner.Run(ctx); err != nil {
		appLogger.Error("Node execution error", zap.Error(err))
		os.Exit(1)
	}
	appLogger.Info("Node stopped")
}
