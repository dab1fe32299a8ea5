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

	"github.com/treviro/treviro_service/internal/api/routes"
	"github.com/treviro/treviro_service/internal/infrastructure/cache"
	"github.com/treviro/treviro_service/internal/infrastructure/config"
	"github.com/treviro/treviro_service/internal/infrastructure/database"
	"github.com/treviro/treviro_service/internal/infrastructure/di"
	marketdataworker "github.com/treviro/treviro_service/internal/workers/marketdata"
	"github.com/treviro/treviro_service/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	log := logger.New(cfg.LogLevel, cfg.Environment)

	// Initialize database
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.Database.URL); err != nil {
		log.Fatal("Failed to run migrations", "error", err)
	}

	// Initialize Redis
	redisClient, err := cache.NewClient(cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", "error", err)
	}
	defer redisClient.Close()

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Build dependency injection container
	container := di.NewContainer(cfg, db, redisClient, log)

	// Initialize router with DI container
	router := routes.SetupRoutes(container)

	// Start market data ingestion scheduler
	scheduler := marketdataworker.NewScheduler(
		container.MarketDataClient,
		container.MarketDataRepo,
		cfg.MarketData,
		log,
	)
	if err := scheduler.Start(); err != nil {
		log.Fatal("Failed to start market data scheduler", "error", err)
	}

	// Create server
	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	// Start server in goroutine
	go func() {
		log.Info("Starting server", "port", cfg.Server.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	scheduler.Stop()
	container.Sessions.Shutdown()

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", "error", err)
	}

	log.Info("Server exited")
}
