package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grid-backtest/internal/grid"
	"grid-backtest/internal/model"
)

func mustGrid(t *testing.T, lower, upper float64, count int, mode grid.Mode) grid.Levels {
	t.Helper()
	levels, err := grid.Build(lower, upper, count, mode)
	require.NoError(t, err)
	return levels
}

func TestRunBuysOnDownCross(t *testing.T) {
	levels := mustGrid(t, 90, 160, 2, grid.Arithmetic)
	require.Equal(t, grid.Levels{90, 125, 160}, levels)

	res, err := New().Run([]float64{100, 150, 100}, levels)
	require.NoError(t, err)
	assert.Equal(t, 975.0, res.FinalValue)
	assert.Equal(t, 875.0, res.Cash)
	assert.Equal(t, 1.0, res.Position)
	assert.Equal(t, 1, res.Buys)
	assert.Equal(t, 0, res.Sells)
	require.Len(t, res.Trades, 1)
	assert.Equal(t, Trade{Step: 2, Side: model.SideBuy, Level: 125, Close: 100, Units: 1, Cash: 875, Position: 1}, res.Trades[0])
}

func TestRunSellsOnUpCrossWithPosition(t *testing.T) {
	levels := grid.Levels{90, 125, 160}
	res, err := New().Run([]float64{100, 150, 100, 150}, levels)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, res.Cash)
	assert.Zero(t, res.Position)
	assert.Equal(t, 1000.0, res.FinalValue)
	assert.Equal(t, 1, res.Buys)
	assert.Equal(t, 1, res.Sells)
}

func TestRunSingleStepCrossesSeveralLevels(t *testing.T) {
	levels := mustGrid(t, 40, 200, 4, grid.Arithmetic)
	res, err := New().Run([]float64{200, 50}, levels)
	require.NoError(t, err)

	// 80, 120 and 160 are crossed downward; 40 is not reached and 200 never triggers.
	assert.Equal(t, 3, res.Buys)
	assert.Equal(t, 640.0, res.Cash)
	assert.Equal(t, 3.0, res.Position)
	assert.Equal(t, 790.0, res.FinalValue)
	require.Len(t, res.Trades, 3)
	assert.Equal(t, []float64{80, 120, 160}, []float64{res.Trades[0].Level, res.Trades[1].Level, res.Trades[2].Level})
}

func TestRunTopmostLevelNeverTriggers(t *testing.T) {
	res, err := New().Run([]float64{150, 170, 150}, grid.Levels{90, 125, 160})
	require.NoError(t, err)
	assert.Equal(t, model.InitialCash, res.FinalValue)
	assert.Empty(t, res.Trades)
}

func TestRunSkipsBuyWithoutCash(t *testing.T) {
	res, err := New().Run([]float64{1000, 400}, grid.Levels{500, 700, 900, 1100})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Buys)
	assert.Equal(t, 500.0, res.Cash)
	assert.Equal(t, 900.0, res.FinalValue)
}

func TestRunNoTradeWhenStartingOnLevel(t *testing.T) {
	res, err := New().Run([]float64{125, 100}, grid.Levels{90, 125, 160})
	require.NoError(t, err)
	assert.Empty(t, res.Trades)
	assert.Equal(t, model.InitialCash, res.FinalValue)
}

func TestRunSinglePriceReturnsInitialCash(t *testing.T) {
	for _, levels := range []grid.Levels{{90, 125, 160}, {1, 2}, nil} {
		res, err := New().Run([]float64{123.45}, levels)
		require.NoError(t, err)
		assert.Equal(t, model.InitialCash, res.FinalValue)
		assert.Zero(t, res.Steps)
	}
}

func TestRunConstantSeriesReturnsInitialCash(t *testing.T) {
	levels := mustGrid(t, 50, 150, 10, grid.Geometric)
	prices := []float64{100, 100, 100, 100, 100, 100}
	assert.Equal(t, model.InitialCash, FinalValue(prices, levels))
}

func TestRunDependsOnlyOnCrossings(t *testing.T) {
	levels := grid.Levels{90, 125, 160}
	direct := FinalValue([]float64{100, 150, 100}, levels)
	// Extra observations that stay on the same side of every level change nothing.
	detour := FinalValue([]float64{100, 110, 150, 140, 130, 100, 95}, levels)
	assert.Equal(t, 975.0, direct)
	assert.Equal(t, direct-100+95, detour)

	a, err := New().Run([]float64{100, 150, 100}, levels)
	require.NoError(t, err)
	b, err := New().Run([]float64{100, 130, 150, 126, 100}, levels)
	require.NoError(t, err)
	assert.Equal(t, a.Cash, b.Cash)
	assert.Equal(t, a.Position, b.Position)
	assert.Equal(t, a.FinalValue, b.FinalValue)
}

func TestRunEmptySeries(t *testing.T) {
	res, err := New().Run(nil, grid.Levels{1, 2})
	assert.ErrorIs(t, err, ErrEmptyPriceSeries)
	assert.Nil(t, res)
	assert.Equal(t, model.InitialCash, FinalValue(nil, grid.Levels{1, 2}))
}

func TestResultReturn(t *testing.T) {
	assert.InDelta(t, -0.025, (&Result{FinalValue: 975}).Return(), 1e-12)
	assert.Zero(t, (*Result)(nil).Return())
}
