package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"iris-prediction/metrics"
	"iris-prediction/models"
	"iris-prediction/repository"
	"iris-prediction/services"
)

const (
	historyCachePrefix = "predictions:all"
	historyGenKey      = "iris:predictions:gen"
	predictionChannel  = "iris:predictions"
)

// historyCacheKey names the cached list for one generation. Every create
// bumps the generation, so a list read before the bump can only ever be
// stored under a key no later request looks up.
func historyCacheKey(gen int64) string {
	return fmt.Sprintf("%s:%d", historyCachePrefix, gen)
}

// PredictionHandler serves the storage service API.
type PredictionHandler struct {
	repo     repository.Repository
	cache    *services.CacheService
	cacheTTL time.Duration
	metrics  *metrics.DBMetrics
	logger   *slog.Logger
}

func NewPredictionHandler(repo repository.Repository, cache *services.CacheService, cacheTTL time.Duration, m *metrics.DBMetrics, logger *slog.Logger) *PredictionHandler {
	return &PredictionHandler{repo: repo, cache: cache, cacheTTL: cacheTTL, metrics: m, logger: logger}
}

func (h *PredictionHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Hello from DB"})
}

func (h *PredictionHandler) CreatePrediction(c *gin.Context) {
	var in models.PredictionIn
	if err := c.ShouldBindJSON(&in); err != nil {
		respondValidation(c, validationDetails(err))
		return
	}

	ctx := c.Request.Context()
	record := in.Record()
	if err := h.repo.Create(ctx, &record); err != nil {
		h.metrics.RecordRepositoryError("create")
		h.logger.Error("insert prediction failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}
	h.metrics.PredictionsCreated.Inc()

	h.invalidateHistory(ctx)
	if err := h.cache.Publish(ctx, predictionChannel, record); err != nil {
		h.logger.Warn("publish prediction failed", "channel", predictionChannel, "error", err)
	}

	c.JSON(http.StatusOK, record)
}

func (h *PredictionHandler) ListPredictions(c *gin.Context) {
	ctx := c.Request.Context()

	gen, err := h.cache.Generation(ctx, historyGenKey)
	useCache := err == nil
	if err != nil {
		h.logger.Warn("cache generation read failed, bypassing cache", "key", historyGenKey, "error", err)
	}
	key := historyCacheKey(gen)

	if useCache {
		var cached []models.Prediction
		found, err := h.cache.Get(ctx, key, &cached)
		if err != nil {
			h.logger.Warn("cache read failed", "key", key, "error", err)
		}
		if found {
			h.metrics.RecordList("cache")
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	rows, err := h.repo.ListAll(ctx)
	if err != nil {
		h.metrics.RecordRepositoryError("list")
		h.logger.Error("list predictions failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}

	if useCache {
		if err := h.cache.Set(ctx, key, rows, h.cacheTTL); err != nil {
			h.logger.Warn("cache write failed", "key", key, "error", err)
		}
	}

	h.metrics.RecordList("store")
	c.JSON(http.StatusOK, rows)
}

// invalidateHistory moves readers to a fresh generation. When the bump
// fails the current generation's entry is dropped instead.
func (h *PredictionHandler) invalidateHistory(ctx context.Context) {
	_, err := h.cache.Bump(ctx, historyGenKey)
	if err == nil {
		return
	}
	h.logger.Warn("cache generation bump failed", "key", historyGenKey, "error", err)

	gen, err := h.cache.Generation(ctx, historyGenKey)
	if err != nil {
		h.logger.Warn("cache invalidation failed", "key", historyGenKey, "error", err)
		return
	}
	if err := h.cache.Delete(ctx, historyCacheKey(gen)); err != nil {
		h.logger.Warn("cache invalidation failed", "key", historyCacheKey(gen), "error", err)
	}
}
