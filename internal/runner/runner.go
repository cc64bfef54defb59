// Package runner wires a price source to the grid builder and the backtest engine.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"grid-backtest/internal/analysis"
	"grid-backtest/internal/backtest"
	"grid-backtest/internal/data"
	"grid-backtest/internal/grid"
	"grid-backtest/internal/logging"
	"grid-backtest/internal/model"
)

// ErrEmptyPriceSeries is returned when a data source yields no prices.
// The engine is not invoked in that case.
var ErrEmptyPriceSeries = backtest.ErrEmptyPriceSeries

// BaseName names the unmodified params in a comparison.
const BaseName = "base"

// OfflineLoader reads prices from a local path.
type OfflineLoader interface {
	Load(path string) ([]float64, error)
}

type Runner struct {
	Fetcher data.PriceFetcher
	Loader  OfflineLoader
	Engine  *backtest.Engine
	Logger  *zap.Logger
}

func New(fetcher data.PriceFetcher, loader OfflineLoader, logger *zap.Logger) *Runner {
	return &Runner{
		Fetcher: fetcher,
		Loader:  loader,
		Engine:  backtest.New(),
		Logger:  logging.OrNop(logger),
	}
}

// Report is the outcome of a single run along with the series it ran on.
type Report struct {
	analysis.Outcome
	Prices []float64
	Stats  analysis.SeriesStats
}

// BuildGrid builds the grid described by p.
func BuildGrid(p model.Params) (grid.Levels, error) {
	return grid.Build(p.Lower, p.Upper, p.GridCount, grid.ParseMode(p.GridMode))
}

// LoadPrices reads p.OfflinePath when set, otherwise fetches remotely.
func (r *Runner) LoadPrices(ctx context.Context, p model.Params) ([]float64, error) {
	log := r.log()
	var (
		prices []float64
		err    error
	)
	if p.OfflinePath != "" {
		if r.Loader == nil {
			return nil, errors.New("no offline loader configured")
		}
		log.Info("loading offline prices", zap.String("path", p.OfflinePath))
		prices, err = r.Loader.Load(p.OfflinePath)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", p.OfflinePath, err)
		}
	} else {
		if r.Fetcher == nil {
			return nil, errors.New("no price fetcher configured")
		}
		log.Info("fetching prices",
			zap.String("provider", r.Fetcher.Name()),
			zap.String("coin", p.Coin),
			zap.String("start", p.StartDate),
			zap.String("end", p.EndDate))
		prices, err = r.Fetcher.FetchCloses(ctx, p.Coin, p.StartDate, p.EndDate)
		if err != nil {
			return nil, fmt.Errorf("fetch %s prices: %w", p.Coin, err)
		}
	}
	if len(prices) == 0 {
		return nil, ErrEmptyPriceSeries
	}
	log.Info("prices ready", zap.Int("points", len(prices)))
	return prices, nil
}

// Run builds the grid, obtains prices and runs one backtest.
// The grid is built first so a bad config never costs a network call.
func (r *Runner) Run(ctx context.Context, p model.Params) (*Report, error) {
	levels, err := BuildGrid(p)
	if err != nil {
		return nil, err
	}
	prices, err := r.LoadPrices(ctx, p)
	if err != nil {
		return nil, err
	}
	return r.RunPrices(BaseName, p, levels, prices)
}

// RunPrices runs one backtest over an already loaded series.
func (r *Runner) RunPrices(name string, p model.Params, levels grid.Levels, prices []float64) (*Report, error) {
	if len(prices) == 0 {
		return nil, ErrEmptyPriceSeries
	}
	engine := r.Engine
	if engine == nil {
		engine = backtest.New()
	}
	started := time.Now()
	res, err := engine.Run(prices, levels)
	if err != nil {
		return nil, err
	}
	r.log().Info("backtest finished",
		zap.String("name", name),
		zap.Int("levels", len(levels)),
		zap.Int("buys", res.Buys),
		zap.Int("sells", res.Sells),
		zap.Float64("final_value", res.FinalValue),
		zap.Duration("duration", time.Since(started)))

	return &Report{
		Outcome: analysis.Outcome{Name: name, Params: p, Levels: levels, Result: res},
		Prices:  prices,
		Stats:   analysis.Summarize(prices, levels),
	}, nil
}

// Compare runs base and every variation over one shared series, in parallel,
// and ranks them by final value. Variations only change the grid shape.
func (r *Runner) Compare(ctx context.Context, base model.Params, variations []model.Variation) ([]analysis.RankedOutcome, error) {
	named, grids, err := BuildGrids(base, variations)
	if err != nil {
		return nil, err
	}
	prices, err := r.LoadPrices(ctx, base)
	if err != nil {
		return nil, err
	}
	return r.ComparePrices(ctx, base, named, grids, prices)
}

// BuildGrids prepends the base entry to variations and builds every grid.
// It fails on the first invalid variation.
func BuildGrids(base model.Params, variations []model.Variation) ([]model.Variation, []grid.Levels, error) {
	named := make([]model.Variation, 0, len(variations)+1)
	named = append(named, model.Variation{Name: BaseName})
	named = append(named, variations...)

	grids := make([]grid.Levels, len(named))
	for i, v := range named {
		levels, err := BuildGrid(v.Apply(base))
		if err != nil {
			return nil, nil, fmt.Errorf("variation %q: %w", v.Name, err)
		}
		grids[i] = levels
	}
	return named, grids, nil
}

// ComparePrices runs prebuilt grids over prices. Each goroutine owns its own
// portfolio; prices and levels are only read.
func (r *Runner) ComparePrices(ctx context.Context, base model.Params, named []model.Variation, grids []grid.Levels, prices []float64) ([]analysis.RankedOutcome, error) {
	if len(named) != len(grids) {
		return nil, fmt.Errorf("%d variations but %d grids", len(named), len(grids))
	}
	outcomes := make([]analysis.Outcome, len(named))
	g, ctx := errgroup.WithContext(ctx)
	for i := range named {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rep, err := r.RunPrices(named[i].Name, named[i].Apply(base), grids[i], prices)
			if err != nil {
				return fmt.Errorf("variation %q: %w", named[i].Name, err)
			}
			outcomes[i] = rep.Outcome
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return analysis.RankByFinalValue(outcomes), nil
}

func (r *Runner) log() *zap.Logger { return logging.OrNop(r.Logger) }
