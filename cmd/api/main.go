package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"iris-prediction/classifier"
	"iris-prediction/config"
	"iris-prediction/logger"
	"iris-prediction/metrics"
	"iris-prediction/router"
	"iris-prediction/server"
	"iris-prediction/services"
	"iris-prediction/web"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}

	cfg, err := config.LoadAPIConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logg := logger.New(cfg.Log)
	gin.SetMode(gin.ReleaseMode)

	model, err := loadModel(cfg.Model.Path)
	if err != nil {
		logg.Error("failed to load model", "path", cfg.Model.Path, "error", err)
		os.Exit(1)
	}
	logg.Info("model loaded", "name", model.Name(), "features", model.Features())

	tmpl, err := web.Templates()
	if err != nil {
		logg.Error("failed to parse templates", "error", err)
		os.Exit(1)
	}

	r := router.NewAPIRouter(router.APIDeps{
		Model:     model,
		DB:        services.NewDBClient(cfg.DBService.URL, cfg.DBService.Timeout),
		Metrics:   metrics.NewAPIMetrics(),
		Templates: tmpl,
		Logger:    logg,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logg.Info("starting prediction service", "addr", cfg.Server.Addr(), "db_service", cfg.DBService.URL)
	if err := server.Run(ctx, cfg.Server.Addr(), r, logg, cfg.Server.ShutdownTimeout); err != nil {
		logg.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func loadModel(path string) (*classifier.CentroidModel, error) {
	if path == "" {
		return classifier.Default()
	}
	return classifier.Load(path)
}
