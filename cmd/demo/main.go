package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"grid-backtest/internal/analysis"
	"grid-backtest/internal/backtest"
	"grid-backtest/internal/grid"
	"grid-backtest/internal/model"
	"grid-backtest/internal/report"
)

// Demo:
// - Generate a synthetic close series oscillating around a mid price
// - Build arithmetic and geometric grids over the same bounds
// - Run both and print the results side by side
func main() {
	mid := flag.Float64("mid", 100, "Center of the oscillation")
	amp := flag.Float64("amp", 20, "Oscillation amplitude")
	days := flag.Int("days", 90, "Number of daily closes")
	period := flag.Float64("period", 14, "Oscillation period in days")
	drift := flag.Float64("drift", 0, "Per-day drift added to the mid price")
	count := flag.Int("count", 8, "Grid count")
	flag.Parse()

	prices := syntheticSeries(*mid, *amp, *period, *drift, *days)
	lower, upper := *mid-*amp, *mid+*amp

	var outcomes []analysis.Outcome
	engine := backtest.New()
	w := report.NewWriter(os.Stdout)
	for _, mode := range []grid.Mode{grid.Arithmetic, grid.Geometric} {
		levels, err := grid.Build(lower, upper, *count, mode)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		res, err := engine.Run(prices, levels)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		p := model.Params{Lower: lower, Upper: upper, GridCount: *count, GridMode: string(mode)}
		o := analysis.Outcome{Name: string(mode), Params: p, Levels: levels, Result: res}
		outcomes = append(outcomes, o)

		fmt.Printf("== %s ==\n", mode)
		_ = w.Result(res.FinalValue, levels)
		_ = w.Summary(o, analysis.Summarize(prices, levels))
		fmt.Println()
	}
	_ = w.Ranking(analysis.RankByFinalValue(outcomes))
}

// syntheticSeries samples a sine wave so that every level is crossed repeatedly.
func syntheticSeries(mid, amp, period, drift float64, days int) []float64 {
	out := make([]float64, days)
	for i := range out {
		center := mid + drift*float64(i)
		out[i] = center + amp*0.95*math.Sin(2*math.Pi*float64(i)/period)
	}
	return out
}
