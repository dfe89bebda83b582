package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Hardev1237/Valorant-Rank-Fetcher/internal/api"
	"github.com/Hardev1237/Valorant-Rank-Fetcher/internal/cache"
	"github.com/Hardev1237/Valorant-Rank-Fetcher/internal/refresher"
	"github.com/Hardev1237/Valorant-Rank-Fetcher/internal/store"
	"github.com/Hardev1237/Valorant-Rank-Fetcher/internal/tracker"
	"github.com/Hardev1237/Valorant-Rank-Fetcher/pkg/config"
	"github.com/Hardev1237/Valorant-Rank-Fetcher/pkg/logging"
	"github.com/Hardev1237/Valorant-Rank-Fetcher/pkg/telemetry"
)

func main() {
	// Load .env if present, then configuration
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()

	logger := logging.GetLogger()
	logger.Info("Starting Valorant Rank Fetcher")

	// Initialize telemetry
	telemetryShutdown, err := telemetry.Init(&cfg.Telemetry)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer telemetryShutdown()

	// Connect database and prepare schema
	database, err := store.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	repo := store.NewRepository(database)

	setupCtx, setupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := repo.Migrate(setupCtx); err != nil {
		setupCancel()
		logger.Fatal("Failed to set up database schema", zap.Error(err))
	}
	setupCancel()

	// Optional Redis cache for on-demand checks
	redisCache, err := cache.New(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisCache.Close()

	// Upstream rank-lookup client
	rankClient := tracker.NewClient(&cfg.Upstream)

	// Background refresh scheduler, cancelled on shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	refreshDone := make(chan struct{})
	if cfg.Refresher.Enabled {
		scheduler := refresher.New(&cfg.Refresher, repo, rankClient)
		go func() {
			defer close(refreshDone)
			scheduler.Run(ctx)
		}()
	} else {
		close(refreshDone)
		logger.Info("Background refresh disabled")
	}

	// Create Gin router
	if cfg.Logging.Level == "DEBUG" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	router := api.NewRouter(repo, rankClient, redisCache, cfg)
	router.SetupRoutes(engine)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: engine,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Stop the refresher, then drain in-flight requests
	cancel()
	<-refreshDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
