// Package api assembles the HTTP surface of the backtester.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grid-backtest/internal/api/handlers"
	"grid-backtest/internal/api/middleware"
	"grid-backtest/internal/metrics"
)

type Deps struct {
	Fetchers handlers.FetcherFactory
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

// NewRouter registers every route. /metrics is only served when Metrics is set.
func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Logger(d.Logger))
	router.Use(middleware.ErrorHandler(d.Logger))

	backtestHandler := handlers.NewBacktestHandler(d.Fetchers, d.Metrics, d.Logger)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Metrics != nil {
		router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	api := router.Group("/api/v1")
	{
		api.GET("/grid", handlers.PreviewGrid)
		api.POST("/backtest", backtestHandler.RunBacktest)
		api.POST("/backtest/compare", backtestHandler.CompareBacktests)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
	return router
}
