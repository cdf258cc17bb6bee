package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"iris-prediction/config"
	"iris-prediction/metrics"
	"iris-prediction/models"
	"iris-prediction/repository"
	"iris-prediction/services"
	"iris-prediction/web"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubModel struct {
	code  int
	err   error
	calls int
}

func (m *stubModel) Predict(features []float64) (int, error) {
	m.calls++
	return m.code, m.err
}

type failingRepo struct{}

func (failingRepo) Create(context.Context, *models.Prediction) error {
	return errors.New("connection refused")
}

func (failingRepo) ListAll(context.Context) ([]models.Prediction, error) {
	return nil, errors.New("connection refused")
}

func (failingRepo) Close() error { return nil }

type storageFixture struct {
	repo    repository.Repository
	metrics *metrics.DBMetrics
	engine  *gin.Engine
}

func newStorage(repo repository.Repository, cache *services.CacheService) *storageFixture {
	m := metrics.NewDBMetrics()
	h := NewPredictionHandler(repo, cache, time.Minute, m, discardLogger())

	r := gin.New()
	r.GET("/", h.Root)
	r.POST("/prediction", h.CreatePrediction)
	r.GET("/prediction", h.ListPredictions)
	r.GET("/prediction/live", LivePredictions(cache, config.CORSConfig{AllowedOrigins: "*"}, discardLogger()))

	return &storageFixture{repo: repo, metrics: m, engine: r}
}

type apiFixture struct {
	model   *stubModel
	metrics *metrics.APIMetrics
	engine  *gin.Engine
}

func newAPI(t *testing.T, model *stubModel, storageURL string) *apiFixture {
	t.Helper()
	tmpl, err := web.Templates()
	require.NoError(t, err)

	m := metrics.NewAPIMetrics()
	h := NewPredictHandler(model, services.NewDBClient(storageURL, 2*time.Second), m, discardLogger())

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.GET("/", h.Home)
	r.POST("/predict", h.Predict)
	r.GET("/show-result", h.ShowResult)
	r.GET("/health", Health)

	return &apiFixture{model: model, metrics: m, engine: r}
}

// closedURL returns the address of a server that is no longer listening.
func closedURL() string {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	return srv.URL
}

func measurements() url.Values {
	return url.Values{
		"sepal_length": {"5.1"},
		"sepal_width":  {"3.5"},
		"petal_length": {"1.4"},
		"petal_width":  {"0.2"},
	}
}

func postForm(r http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}
