package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notekeeper-be/internal/bootstrap"
	"notekeeper-be/internal/config"
	"notekeeper-be/internal/pkg/logger"
	"notekeeper-be/internal/server"
	"notekeeper-be/internal/tracer"
	"notekeeper-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	defer sysLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Initialize Tracer
	shutdownTracer := tracer.InitTracer(ctx, cfg.Tracing, sysLogger)

	// 3. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, database.PoolConfig{
		MaxIdleConns: cfg.Database.MaxIdleConns,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		Verbose:      !cfg.IsProduction(),
	})
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 4. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(gormDB, cfg, sysLogger)
	if err != nil {
		log.Panicf("Unable to bootstrap dependencies: %v", err)
	}

	// 5. Start Background Services
	activityDone, err := container.ActivityService.Consume(ctx)
	if err != nil {
		log.Panicf("Unable to start activity consumer: %v", err)
	}

	// 6. Run Server
	srv := server.New(cfg, container)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Run()
	}()

	select {
	case err := <-serverErr:
		sysLogger.Error("MAIN", "Server stopped unexpectedly", map[string]interface{}{"error": err})
	case <-ctx.Done():
		sysLogger.Info("MAIN", "Shutdown signal received", nil)
	}

	// 7. Graceful shutdown: stop HTTP first so no new events are produced.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		sysLogger.Warn("MAIN", "HTTP shutdown error", map[string]interface{}{"error": err.Error()})
	}
	if err := container.Close(); err != nil {
		sysLogger.Warn("MAIN", "Event bus shutdown error", map[string]interface{}{"error": err.Error()})
	}
	select {
	case <-activityDone:
	case <-shutdownCtx.Done():
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		sysLogger.Warn("MAIN", "Tracer shutdown error", map[string]interface{}{"error": err.Error()})
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
