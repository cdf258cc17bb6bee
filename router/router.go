// Package router wires the HTTP surface of both services.
package router

import (
	"html/template"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"iris-prediction/classifier"
	"iris-prediction/config"
	"iris-prediction/handlers"
	"iris-prediction/metrics"
	"iris-prediction/middleware"
	"iris-prediction/repository"
	"iris-prediction/services"
)

type APIDeps struct {
	Model     classifier.Classifier
	DB        *services.DBClient
	Metrics   *metrics.APIMetrics
	Templates *template.Template
	Logger    *slog.Logger
}

// NewAPIRouter builds the prediction service router.
func NewAPIRouter(d APIDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(d.Logger))
	r.SetHTMLTemplate(d.Templates)

	h := handlers.NewPredictHandler(d.Model, d.DB, d.Metrics, d.Logger)
	r.GET("/", h.Home)
	r.POST("/predict", h.Predict)
	r.GET("/show-result", h.ShowResult)
	r.GET("/health", handlers.Health)
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	return r
}

type DBDeps struct {
	Repo     repository.Repository
	Cache    *services.CacheService
	CacheTTL time.Duration
	CORS     config.CORSConfig
	Metrics  *metrics.DBMetrics
	Logger   *slog.Logger
}

// NewDBRouter builds the storage service router. Single-record routes
// under /prediction/:id are intentionally absent.
func NewDBRouter(d DBDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(d.Logger), middleware.SetupCORS(d.CORS))

	h := handlers.NewPredictionHandler(d.Repo, d.Cache, d.CacheTTL, d.Metrics, d.Logger)
	r.GET("/", h.Root)
	r.GET("/health", handlers.Health)
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	prediction := r.Group("/prediction")
	{
		prediction.POST("", h.CreatePrediction)
		prediction.GET("", h.ListPredictions)
		prediction.GET("/live", handlers.LivePredictions(d.Cache, d.CORS, d.Logger))
	}

	return r
}
