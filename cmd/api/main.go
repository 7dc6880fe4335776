package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"crm/internal/config"
	"crm/internal/database"
	"crm/internal/logger"
	"crm/internal/metrics"
	"crm/internal/server"
	"crm/migrations"

	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

// gracefulShutdown drains in-flight requests on SIGINT or SIGTERM, then
// releases the database and Redis connections.
func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	done <- true
}

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting CRM API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
	)

	dbService, err := database.New(cfg.Database)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}

	health := dbService.Health()
	log.Info("Database health check", zap.Any("health", health))

	if err := database.RunMigrations(dbService.DB(), migrations.FS, log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database migrations completed successfully")

	redisClient := server.NewRedisClient(cfg.Redis)
	if cfg.RateLimit.Enabled && redisClient == nil {
		log.Warn("Rate limiting enabled but REDIS_HOST is not set, mutations are not limited")
	}

	srv := server.NewServer(cfg, log, dbService, redisClient, metrics.NewRegistry())

	done := make(chan bool, 1)
	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	<-done
	log.Info("Graceful shutdown complete")
}
