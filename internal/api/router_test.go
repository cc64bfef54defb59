package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grid-backtest/internal/api/models"
	"grid-backtest/internal/data"
	"grid-backtest/internal/metrics"
)

type fixedFetcher []float64

func (f fixedFetcher) Name() string { return "fixed" }

func (f fixedFetcher) FetchCloses(ctx context.Context, coin, startDate, endDate string) ([]float64, error) {
	return f, nil
}

func newRouter(t *testing.T) (*gin.Engine, *metrics.Metrics) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	m := metrics.New("")
	r := NewRouter(Deps{
		Fetchers: func(models.SourceConfig) (data.PriceFetcher, error) {
			return fixedFetcher{100, 150, 100}, nil
		},
		Metrics: m,
	})
	return r, m
}

func TestHealth(t *testing.T) {
	r, _ := newRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestNotFound(t *testing.T) {
	r, _ := newRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBacktestIsCountedInMetrics(t *testing.T) {
	r, _ := newRouter(t)

	body := `{"params":{"lower":90,"upper":160,"grid_count":2}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/backtest", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"final_value":975`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	out := rec.Body.String()
	assert.Contains(t, out, `grid_backtest_runs_total{endpoint="backtest",status="ok"} 1`)
	assert.Contains(t, out, `grid_backtest_simulated_trades_total{side="buy"} 1`)
}

func TestMetricsRouteOptional(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(Deps{})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
