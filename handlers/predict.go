package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/prometheus/client_golang/prometheus"

	"iris-prediction/classifier"
	"iris-prediction/metrics"
	"iris-prediction/models"
	"iris-prediction/services"
)

// PredictHandler serves the HTML front-end. It keeps no state of its own;
// history lives in the storage service.
type PredictHandler struct {
	model   classifier.Classifier
	db      *services.DBClient
	metrics *metrics.APIMetrics
	logger  *slog.Logger
}

func NewPredictHandler(model classifier.Classifier, db *services.DBClient, m *metrics.APIMetrics, logger *slog.Logger) *PredictHandler {
	return &PredictHandler{model: model, db: db, metrics: m, logger: logger}
}

func (h *PredictHandler) Home(c *gin.Context) {
	h.metrics.RequestsTotal.Inc()
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Prediction": c.Query("prediction"),
		"FormData":   models.FormData{},
	})
}

func (h *PredictHandler) Predict(c *gin.Context) {
	var form models.MeasurementForm
	bindErr := c.ShouldBindWith(&form, binding.FormPost)
	if details := measurementDetails(c.Request.PostForm, models.MeasurementFields); len(details) > 0 {
		respondValidation(c, details)
		return
	}
	if bindErr != nil {
		respondValidation(c, validationDetails(bindErr))
		return
	}

	timer := prometheus.NewTimer(h.metrics.PredictionDuration)
	h.metrics.PredictionsTotal.Inc()
	code, err := h.model.Predict(form.Features())
	timer.ObserveDuration()
	if err != nil {
		h.logger.Error("classifier failed", "features", form.Features(), "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "prediction failed"})
		return
	}
	label := classifier.Label(code)

	// The relay outlives the browser request.
	ctx := context.WithoutCancel(c.Request.Context())
	h.handleRelay(h.db.SavePrediction(ctx, form.WithLabel(label)))

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Prediction": label,
		"FormData":   form.FormData(),
	})
}

// handleRelay applies the best-effort policy: every failure is logged and
// counted, none reaches the user.
func (h *PredictHandler) handleRelay(result services.RelayResult) {
	h.metrics.RecordRelay(result.Outcome.String())

	switch result.Outcome {
	case services.RelayDelivered:
		if result.Record != nil {
			h.logger.Debug("prediction stored", "id", result.Record.ID, "class", result.Record.PredictedClass)
		}
	case services.RelayUpstreamError:
		h.logger.Warn("failed to save prediction to DB", "status", result.StatusCode, "error", result.Err)
	case services.RelayTransportError:
		h.logger.Warn("error connecting to DB service", "url", h.db.BaseURL(), "error", result.Err)
	}
}

func (h *PredictHandler) ShowResult(c *gin.Context) {
	records, err := h.db.ListPredictions(c.Request.Context())
	if err != nil {
		outcome := services.RelayTransportError
		if errors.Is(err, services.ErrUpstream) {
			outcome = services.RelayUpstreamError
		}
		h.metrics.RecordHistoryFetch(outcome.String())
		h.logger.Warn("failed to fetch predictions from DB", "url", h.db.BaseURL(), "error", err)
		records = []models.Prediction{}
	} else {
		h.metrics.RecordHistoryFetch(services.RelayDelivered.String())
	}

	c.HTML(http.StatusOK, "show-result.html", gin.H{"Records": records})
}

// Health reports liveness. It is shared by both services.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
