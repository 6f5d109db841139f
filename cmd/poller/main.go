package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"marketdata/internal/config"
	"marketdata/internal/database"
	"marketdata/internal/logger"
	"marketdata/internal/poller"
	"marketdata/internal/publisher"
	"marketdata/internal/venues"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		panic(fmt.Sprintf("could not load config: %v", err))
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Initialize database
	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")
	store := database.NewStore(db)

	registry, err := venues.NewRegistry(cfg, log)
	if err != nil {
		log.Fatal("Failed to set up venues", zap.Error(err))
	}
	if len(registry.Venues()) == 0 {
		log.Fatal("No venue enabled, nothing to poll")
	}

	pub := publisher.New(cfg.Publisher, log.Named("publisher"))
	defer func() {
		if err := pub.Close(); err != nil {
			log.Error("Failed to close publisher", zap.Error(err))
		}
	}()

	engine, err := poller.NewEngine(log.Named("poller"), cfg.Poller, registry, store, pub)
	if err != nil {
		log.Fatal("Failed to create polling engine", zap.Error(err))
	}

	statusServer := poller.NewStatusServer(engine, cfg.Server.StatusPort, log)
	statusServer.Start()

	// Setup context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := engine.Run(ctx); err != nil {
		log.Error("Polling engine failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := statusServer.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop status server", zap.Error(err))
	}

	log.Info("Poller has been shut down.")
}
