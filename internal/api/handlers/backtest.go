package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"grid-backtest/internal/analysis"
	"grid-backtest/internal/api/models"
	"grid-backtest/internal/backtest"
	"grid-backtest/internal/data"
	"grid-backtest/internal/grid"
	"grid-backtest/internal/logging"
	"grid-backtest/internal/metrics"
	"grid-backtest/internal/model"
	"grid-backtest/internal/report"
	"grid-backtest/internal/runner"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FetcherFactory builds a price fetcher for the source named in a request.
type FetcherFactory func(src models.SourceConfig) (data.PriceFetcher, error)

// SourceFactory returns a FetcherFactory that overlays the request's provider
// and symbol on the server defaults. Fetchers share cache when it is non-nil.
func SourceFactory(defaults data.SourceOptions, cache *data.ResponseCache, logger *zap.Logger) FetcherFactory {
	return func(src models.SourceConfig) (data.PriceFetcher, error) {
		opts := defaults
		if src.Provider != "" {
			opts.Provider = src.Provider
		}
		if src.Symbol != "" {
			opts.Symbol = src.Symbol
		}
		f, err := data.NewFetcher(opts, logger)
		if err != nil {
			return nil, err
		}
		return data.WithCache(f, cache, logger), nil
	}
}

// BacktestHandler handles backtest-related requests
type BacktestHandler struct {
	newFetcher FetcherFactory
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewBacktestHandler creates a new backtest handler. m may be nil.
func NewBacktestHandler(newFetcher FetcherFactory, m *metrics.Metrics, logger *zap.Logger) *BacktestHandler {
	return &BacktestHandler{
		newFetcher: newFetcher,
		metrics:    m,
		logger:     logging.OrNop(logger),
	}
}

// RunBacktest handles POST /api/v1/backtest
func (h *BacktestHandler) RunBacktest(c *gin.Context) {
	started := time.Now()
	status := "error"
	defer func() { h.metrics.ObserveRun("backtest", status, time.Since(started)) }()

	var req models.BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err)
		return
	}

	p := toModelParams(req.Params)
	levels, err := runner.BuildGrid(p)
	if err != nil {
		badRequest(c, "INVALID_GRID_CONFIG", err)
		return
	}

	prices, ok := h.prices(c, req.Source, req.Prices, p)
	if !ok {
		return
	}

	rep, err := runner.New(nil, nil, h.logger).RunPrices(runner.BaseName, p, levels, prices)
	if err != nil {
		h.writeError(c, req.Source, err)
		return
	}
	h.metrics.ObserveSeries(len(prices))
	h.metrics.AddTrades(rep.Result.Buys, rep.Result.Sells)

	resp := models.BacktestResponse{
		Status:  "completed",
		Summary: buildSummary(rep.Outcome),
		Levels:  report.RoundLevels(levels),
	}
	if req.Options.IncludeStats {
		stats := buildStats(rep.Stats)
		resp.Stats = &stats
	}
	if req.Options.IncludeTrades {
		resp.Trades = buildTrades(rep.Result.Trades)
	}
	status = "ok"
	c.JSON(http.StatusOK, resp)
}

// CompareBacktests handles POST /api/v1/backtest/compare
func (h *BacktestHandler) CompareBacktests(c *gin.Context) {
	started := time.Now()
	status := "error"
	defer func() { h.metrics.ObserveRun("compare", status, time.Since(started)) }()

	var req models.CompareBacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err)
		return
	}

	base := toModelParams(req.Params)
	variations := make([]model.Variation, 0, len(req.Variations))
	for _, v := range req.Variations {
		variations = append(variations, model.Variation{
			Name:      v.Name,
			Lower:     v.Lower,
			Upper:     v.Upper,
			GridCount: v.GridCount,
			GridMode:  v.GridMode,
		})
	}
	named, grids, err := runner.BuildGrids(base, variations)
	if err != nil {
		badRequest(c, "INVALID_GRID_CONFIG", err)
		return
	}

	prices, ok := h.prices(c, req.Source, req.Prices, base)
	if !ok {
		return
	}

	ranked, err := runner.New(nil, nil, h.logger).ComparePrices(c.Request.Context(), base, named, grids, prices)
	if err != nil {
		h.writeError(c, req.Source, err)
		return
	}
	h.metrics.ObserveSeries(len(prices))

	comparison := make([]models.ComparisonResult, 0, len(ranked))
	for _, r := range ranked {
		h.metrics.AddTrades(r.Result.Buys, r.Result.Sells)
		comparison = append(comparison, models.ComparisonResult{
			Rank:      r.Rank,
			Name:      r.Name,
			Lower:     r.Params.Lower,
			Upper:     r.Params.Upper,
			GridCount: r.Params.GridCount,
			Summary:   buildSummary(r.Outcome),
		})
	}
	status = "ok"
	c.JSON(http.StatusOK, models.CompareBacktestResponse{Comparison: comparison})
}

// prices returns the inline series when given, otherwise fetches it from the
// requested source. On failure the response has already been written.
func (h *BacktestHandler) prices(c *gin.Context, src models.SourceConfig, inline []float64, p model.Params) ([]float64, bool) {
	if len(inline) > 0 {
		for i, v := range inline {
			if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				badRequest(c, "INVALID_PRICES", fmt.Errorf("prices[%d] must be a positive number", i))
				return nil, false
			}
		}
		return inline, true
	}

	if _, _, err := p.Window(); err != nil {
		badRequest(c, "INVALID_PARAMS", err)
		return nil, false
	}
	if h.newFetcher == nil {
		h.writeError(c, src, errors.New("no price source configured"))
		return nil, false
	}
	fetcher, err := h.newFetcher(src)
	if err != nil {
		badRequest(c, "INVALID_SOURCE", err)
		return nil, false
	}

	prices, err := runner.New(fetcher, nil, h.logger).LoadPrices(c.Request.Context(), p)
	if err != nil {
		h.writeError(c, src, err)
		return nil, false
	}
	return prices, true
}

func (h *BacktestHandler) writeError(c *gin.Context, src models.SourceConfig, err error) {
	var fe *data.FetchError
	switch {
	case errors.As(err, &fe):
		h.metrics.FetchFailed(fe.Provider)
		statusCode := http.StatusBadGateway
		if fe.StatusCode == http.StatusTooManyRequests {
			statusCode = http.StatusTooManyRequests
		}
		h.logger.Warn("price fetch failed",
			zap.String("provider", fe.Provider),
			zap.Int("status_code", fe.StatusCode),
			zap.Error(err))
		c.JSON(statusCode, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    fe.Code,
				Message: fe.Message,
				Details: map[string]interface{}{
					"provider":    fe.Provider,
					"status_code": fe.StatusCode,
					"retry_after": fe.RetryAfter,
				},
			},
		})
	case errors.Is(err, runner.ErrEmptyPriceSeries):
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "EMPTY_PRICE_SERIES",
				Message: err.Error(),
			},
		})
	case errors.Is(err, grid.ErrInvalidGridConfig):
		badRequest(c, "INVALID_GRID_CONFIG", err)
	default:
		h.logger.Error("backtest failed", zap.String("provider", src.Provider), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "BACKTEST_ERROR",
				Message: err.Error(),
			},
		})
	}
}

func badRequest(c *gin.Context, code string, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: err.Error(),
		},
	})
}

func toModelParams(p models.ParamsConfig) model.Params {
	return model.Params{
		Coin:      p.Coin,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		Lower:     p.Lower,
		Upper:     p.Upper,
		GridCount: p.GridCount,
		GridMode:  p.GridMode,
	}.WithDefaults()
}

func buildSummary(o analysis.Outcome) models.BacktestSummary {
	res := o.Result
	return models.BacktestSummary{
		FinalValue:  res.FinalValue,
		InitialCash: model.InitialCash,
		Return:      res.Return(),
		Cash:        res.Cash,
		Position:    res.Position,
		LastPrice:   res.LastPrice,
		Steps:       res.Steps,
		Buys:        res.Buys,
		Sells:       res.Sells,
		GridMode:    string(grid.ParseMode(o.Params.GridMode)),
	}
}

func buildStats(s analysis.SeriesStats) models.SeriesStats {
	return models.SeriesStats{
		Count:           s.Count,
		First:           s.First,
		Last:            s.Last,
		Min:             s.Min,
		Max:             s.Max,
		Mean:            s.Mean,
		P05:             s.P05,
		P95:             s.P95,
		BuyAndHoldValue: s.BuyAndHoldValue,
		InRangeShare:    s.InRangeShare,
		UpCrossings:     s.UpCrossings,
		DownCrossings:   s.DownCrossings,
	}
}

func buildTrades(trades []backtest.Trade) []models.Trade {
	out := make([]models.Trade, 0, len(trades))
	for _, t := range trades {
		out = append(out, models.Trade{
			Step:     t.Step,
			Side:     string(t.Side),
			Level:    t.Level,
			Close:    t.Close,
			Units:    t.Units,
			Cash:     t.Cash,
			Position: t.Position,
		})
	}
	return out
}
