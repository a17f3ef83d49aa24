package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"stockroom/internal/config"
	"stockroom/internal/logger"
	"stockroom/internal/server"
	"stockroom/internal/service"
	"stockroom/internal/store"
	"stockroom/internal/store/jsonstore"
	"stockroom/internal/store/sqlstore"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The context is used to inform the server it has 30 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Close server resources
	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {
	// .env is optional; viper falls back to process environment.
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting inventory API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.Bool("mysql_enabled", cfg.Database.MySQLEnabled),
	)

	ctx := context.Background()

	var (
		recordStore store.RecordStore
		srv         *server.Server
	)

	images, err := service.NewDiskImageStore(cfg.Upload.Dir, cfg.Upload.MaxBytes)
	if err != nil {
		log.Fatal("Failed to prepare upload directory", zap.Error(err))
	}

	if cfg.Database.MySQLEnabled {
		// Fail fast: the process refuses to serve when the database ping
		// fails, rather than degrading silently.
		pool, err := sqlstore.Open(ctx, cfg.Database)
		if err != nil {
			log.Fatal("Database unreachable", zap.Error(err))
		}

		if err := sqlstore.RunMigrations(pool, "migrations", log); err != nil {
			log.Fatal("Failed to run migrations", zap.Error(err))
		}
		log.Info("Database migrations completed successfully")

		sqlStore, err := sqlstore.New(ctx, pool)
		if err != nil {
			log.Fatal("Failed to initialize store", zap.Error(err))
		}
		recordStore = sqlStore

		products := service.NewProductService(recordStore, sqlStore, images, log)
		srv = server.NewServer(cfg, log, pool, products, images)
	} else {
		// Demo deployment: flat JSON-file store, no database.
		fileStore, err := jsonstore.New(cfg.Database.DataFile, log)
		if err != nil {
			log.Fatal("Failed to open data file", zap.Error(err))
		}
		recordStore = fileStore

		products := service.NewProductService(recordStore, nil, images, log)
		srv = server.NewServer(cfg, log, nil, products, images)
	}

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Info("Graceful shutdown complete")
}
