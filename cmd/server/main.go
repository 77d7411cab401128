package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/skyward-ops/sectorwatch/internal/api"
	"github.com/skyward-ops/sectorwatch/internal/config"
	"github.com/skyward-ops/sectorwatch/internal/monitor"
	"github.com/skyward-ops/sectorwatch/internal/storage/sqlite"
	"github.com/skyward-ops/sectorwatch/internal/websocket"
	"github.com/skyward-ops/sectorwatch/pkg/logger"
)

var (
	// Version is injected at build time
	Version = "dev"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file (optional - will search in configs/ and root directory)")
	flag.Parse()

	// Load configuration with fallback logic
	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Create logger
	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting SectorWatch server",
		logger.String("version", Version),
		logger.String("config_path", *configPath),
	)

	// Create SQLite storage when enabled
	var flightStorage *sqlite.FlightStorage
	var archive monitor.ArchiveStorage
	var trajectoryStorage api.TrajectoryStorage
	if cfg.Storage.Enabled {
		dbDir := filepath.Dir(cfg.Storage.SQLitePath)
		if dbDir != "." {
			if err := os.MkdirAll(dbDir, 0755); err != nil {
				log.Error("Failed to create database directory", logger.Error(err), logger.String("path", dbDir))
				os.Exit(1)
			}
		}

		flightStorage, err = sqlite.NewFlightStorage(cfg.Storage.SQLitePath, log)
		if err != nil {
			log.Error("Failed to create SQLite storage", logger.Error(err))
			os.Exit(1)
		}
		defer flightStorage.Close()
		archive = flightStorage
		trajectoryStorage = flightStorage
		log.Info("Using SQLite storage", logger.String("path", cfg.Storage.SQLitePath))
	} else {
		log.Info("SQLite storage disabled")
	}

	// Create WebSocket server
	wsServer := websocket.NewServer(log)

	// Start WebSocket server
	go wsServer.Run()

	// Create monitor service
	monitorService := monitor.New(cfg, archive, wsServer, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start monitor service (loads data, runs the initial analysis)
	if err := monitorService.Start(ctx); err != nil {
		log.Error("Failed to start monitor service", logger.Error(err))
		os.Exit(1)
	}

	// Create API router
	router := api.NewRouter(monitorService, trajectoryStorage, cfg, log, wsServer)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSecs) * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error on startup", logger.String("addr", server.Addr), logger.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutting down server...")

	// Stop background services first
	log.Info("Stopping monitor service...")
	monitorService.Stop()
	log.Info("Monitor service stopped.")

	// Cancel the main context
	cancel()

	// Shutdown the HTTP server
	log.Info("Shutting down HTTP server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", logger.Error(err))
	} else {
		log.Info("HTTP server shutdown complete")
	}

	log.Info("Server fully stopped")
}
