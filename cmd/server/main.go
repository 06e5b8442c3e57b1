package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mfreitas/memflash/internal/api"
	"github.com/mfreitas/memflash/internal/config"
	"github.com/mfreitas/memflash/internal/db"
	"github.com/mfreitas/memflash/internal/jobs"
	"github.com/mfreitas/memflash/internal/logger"
	"github.com/mfreitas/memflash/internal/repository/sqlite"
	"github.com/mfreitas/memflash/internal/services"
	"github.com/mfreitas/memflash/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("MemFlash Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("persist_worker_count=%d", cfg.PersistWorkerCount)
	log.Debug("persist_queue_size=%d", cfg.PersistQueueSize)
	log.Debug("max_new_per_session=%d", cfg.MaxNewPerSession)
	log.Debug("forecast_days=%d", cfg.ForecastDays)

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// Initialize persistence pipeline
	store := sqlite.NewItemStore(database.DB)
	persistPool := worker.NewPool(cfg.PersistWorkerCount, cfg.PersistQueueSize)
	jobQueue := jobs.NewWorkerQueue(persistPool, store, func(err error) {
		log.Error("persistence failure: %v", err)
	})

	// Initialize services
	itemService := services.NewItemService(store)
	reviewService := services.NewReviewService(store, jobQueue, cfg.MaxNewPerSession)

	srv := &api.Server{
		ItemService:   itemService,
		ReviewService: reviewService,
		ForecastDays:  cfg.ForecastDays,
	}

	ctx, cancel := context.WithCancel(context.Background())
	persistPool.Start(ctx)

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Shutdown HTTP server first so no new sessions arrive while the
	// persistence queue drains.
	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping persistence pool")
	cancel()
	persistPool.Stop()

	log.Info("===========================================")
	log.Info("MemFlash Server Stopped")
	log.Info("===========================================")
}
