package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rpattn/fleetledger/internal/config"
	"github.com/rpattn/fleetledger/internal/db"
	"github.com/rpattn/fleetledger/internal/export"
	"github.com/rpattn/fleetledger/internal/importer"
	"github.com/rpattn/fleetledger/internal/middleware"
	"github.com/rpattn/fleetledger/internal/repository"

	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.StandardLogger()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.Load(".")
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup database connection
	conn, err := db.NewConnection(ctx, cfg.DB)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	// Run migrations
	if err := db.RunMigrations(cfg.DB, "./migrations"); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	// Create repositories
	driverRepo := repository.NewDriverRepository(conn.Pool)
	vehicleRepo := repository.NewVehicleRepository(conn.Pool)
	entryRepo := repository.NewShiftEntryRepository(conn.Pool)
	importLogRepo := repository.NewImportLogRepository(conn.Pool)

	// Create import handlers
	importHandler := importer.NewHTTPHandler(driverRepo, vehicleRepo, entryRepo, importLogRepo, cfg.Import, logger)
	logsHandler := importer.NewLogsHandler(importLogRepo)

	// Create export handler
	providerNames := make([]string, 0, len(cfg.Import.Providers))
	for _, provider := range cfg.Import.Providers {
		providerNames = append(providerNames, provider.Name)
	}
	exportService := export.NewService(driverRepo, vehicleRepo, entryRepo, providerNames)
	exportHandler := export.NewHTTPHandler(exportService)

	// Setup CORS
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	mux := http.NewServeMux()
	mux.Handle("/imports", middleware.LoggingMiddleware(logger, importHandler))
	mux.Handle("/imports/logs", middleware.LoggingMiddleware(logger, logsHandler))
	mux.Handle("/exports/shifts", middleware.LoggingMiddleware(logger, exportHandler))

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      corsHandler.Handler(mux),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Starting import server on %s", cfg.Addr)
		logger.Infof("Import endpoint available at http://localhost%s/imports", cfg.Addr)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}
