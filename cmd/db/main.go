package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"iris-prediction/config"
	"iris-prediction/logger"
	"iris-prediction/metrics"
	"iris-prediction/repository"
	"iris-prediction/router"
	"iris-prediction/server"
	"iris-prediction/services"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}

	cfg, err := config.LoadDBConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logg := logger.New(cfg.Log)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := repository.New(cfg.Database, logg)
	if err != nil {
		logg.Error("failed to open database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	cache, err := services.NewCacheService(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Warn("redis unavailable, continuing without cache", "error", err)
	} else if cache.Available() {
		logg.Info("redis connected")
	}
	defer cache.Close()

	r := router.NewDBRouter(router.DBDeps{
		Repo:     repo,
		Cache:    cache,
		CacheTTL: cfg.Redis.CacheTTL,
		CORS:     cfg.CORS,
		Metrics:  metrics.NewDBMetrics(),
		Logger:   logg,
	})

	logg.Info("starting storage service", "addr", cfg.Server.Addr(), "driver", cfg.Database.Driver)
	if err := server.Run(ctx, cfg.Server.Addr(), r, logg, cfg.Server.ShutdownTimeout); err != nil {
		logg.Error("server failed", "error", err)
		os.Exit(1)
	}
}
