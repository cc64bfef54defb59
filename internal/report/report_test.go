package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grid-backtest/internal/analysis"
	"grid-backtest/internal/backtest"
	"grid-backtest/internal/grid"
	"grid-backtest/internal/model"
)

func TestResult(t *testing.T) {
	levels, err := grid.Build(100, 200, 2, grid.Geometric)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).Result(975, levels))
	assert.Equal(t, "Final portfolio value: 975.00\nGrid levels: [100 141.42 200]\n", buf.String())
}

func TestFormatValue(t *testing.T) {
	cases := map[float64]string{
		1000:    "1000.00",
		975:     "975.00",
		-2.5:    "-2.50",
		875.005: "875.00",
		1.005:   "1.00",
		0.125:   "0.12",
		2.675:   "2.67",
		0.375:   "0.38",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatValue(in), "FormatValue(%v)", in)
	}
}

func TestRoundLevels(t *testing.T) {
	assert.Equal(t, []float64{100, 141.42, 200}, RoundLevels(grid.Levels{100, 141.4213562, 200}))
	// Levels are scaled by 100 before rounding, so 2.675 lands on the tie and goes to 2.68.
	assert.Equal(t, []float64{875, 1, 0.12, 2.68}, RoundLevels(grid.Levels{875.005, 1.005, 0.125, 2.675}))
}

func TestFormatLevels(t *testing.T) {
	assert.Equal(t, "[0.12 1 2.68 141.42]", FormatLevels(grid.Levels{0.125, 1.005, 2.675, 141.4213562}))
}

func TestRanking(t *testing.T) {
	ranked := analysis.RankByFinalValue([]analysis.Outcome{
		{Name: "base", Params: model.Params{GridMode: "arith", GridCount: 2, Lower: 90, Upper: 160}, Result: &backtest.Result{FinalValue: 975, Buys: 1}},
		{Name: "geom", Params: model.Params{GridMode: "geom", GridCount: 4, Lower: 90, Upper: 160}, Result: &backtest.Result{FinalValue: 1010, Buys: 2, Sells: 2}},
	})
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).Ranking(ranked))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "1"))
	assert.Contains(t, lines[1], "geom")
	assert.Contains(t, lines[1], "1010.00")
	assert.Contains(t, lines[2], "975.00")
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	o := analysis.Outcome{Result: &backtest.Result{Buys: 1, Cash: 875, Position: 1}}
	s := analysis.Summarize([]float64{100, 150, 100}, grid.Levels{90, 125, 160})
	require.NoError(t, NewWriter(&buf).Summary(o, s))
	assert.Contains(t, buf.String(), "1 buys, 0 sells")
	assert.Contains(t, buf.String(), "2 crossings")
	assert.Contains(t, buf.String(), "p05-p95 spread")
}
