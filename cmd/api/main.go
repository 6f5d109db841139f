package main

import (
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	"marketdata/internal/config"
	"marketdata/internal/database"
	"marketdata/internal/logger"
	"marketdata/internal/venues"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Connect to the database
	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Live ticker calls go through the same venue services as the poller
	registry, err := venues.NewRegistry(cfg, log)
	if err != nil {
		log.Fatal("Failed to set up venues", zap.Error(err))
	}

	mux := http.NewServeMux()
	NewAPIHandler(log, database.NewStore(db), registry).Routes(mux)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("Starting web server", zap.String("address", addr))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal("Web server failed", zap.Error(err))
	}
}
