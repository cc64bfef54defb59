// Package metrics exposes Prometheus collectors for the API server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can create as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	runs          *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	trades        *prometheus.CounterVec
	fetchFailures *prometheus.CounterVec
	seriesLength  prometheus.Histogram
}

func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "grid_backtest"
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Backtest requests by endpoint and outcome",
		}, []string{"endpoint", "status"}),
		runDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a backtest request, data fetch included",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		trades: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulated_trades_total",
			Help:      "Simulated grid fills by side",
		}, []string{"side"}),
		fetchFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Remote price fetch failures by provider",
		}, []string{"provider"}),
		seriesLength: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "price_series_length",
			Help:      "Number of closes per backtest",
			Buckets:   prometheus.ExponentialBuckets(2, 2, 12),
		}),
	}
}

func (m *Metrics) ObserveRun(endpoint, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(endpoint, status).Inc()
	m.runDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

func (m *Metrics) AddTrades(buys, sells int) {
	if m == nil {
		return
	}
	m.trades.WithLabelValues("buy").Add(float64(buys))
	m.trades.WithLabelValues("sell").Add(float64(sells))
}

func (m *Metrics) FetchFailed(provider string) {
	if m == nil {
		return
	}
	m.fetchFailures.WithLabelValues(provider).Inc()
}

func (m *Metrics) ObserveSeries(n int) {
	if m == nil {
		return
	}
	m.seriesLength.Observe(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
