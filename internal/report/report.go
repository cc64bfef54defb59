// Package report renders backtest results for a terminal.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"grid-backtest/internal/analysis"
	"grid-backtest/internal/grid"
)

// RoundLevels rounds each level to two decimals, half to even on the
// scaled binary value.
func RoundLevels(levels grid.Levels) []float64 {
	out := make([]float64, len(levels))
	for i, l := range levels {
		out[i] = roundCents(l)
	}
	return out
}

func roundCents(v float64) float64 { return math.RoundToEven(v*100) / 100 }

// FormatValue renders v with exactly two decimals, rounding the exact binary
// value (875.005 is stored below the half cent and prints 875.00).
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatLevels renders levels as "[90 125 141.42]".
func FormatLevels(levels grid.Levels) string {
	parts := make([]string, len(levels))
	for i, l := range levels {
		parts[i] = decimal.NewFromFloat(roundCents(l)).String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

type Writer struct {
	out io.Writer
}

func NewWriter(out io.Writer) *Writer { return &Writer{out: out} }

// Result prints the final value and the grid levels, one line each.
func (w *Writer) Result(finalValue float64, levels grid.Levels) error {
	_, err := fmt.Fprintf(w.out, "Final portfolio value: %s\nGrid levels: %s\n", FormatValue(finalValue), FormatLevels(levels))
	return err
}

// Summary prints trade counts and series statistics.
func (w *Writer) Summary(o analysis.Outcome, s analysis.SeriesStats) error {
	r := o.Result
	_, err := fmt.Fprintf(w.out,
		"Trades: %d buys, %d sells; cash %s, position %s\n"+
			"Series: %d closes, min %s, max %s, p05-p95 spread %s, %.0f%% inside grid, %d crossings\n"+
			"Buy and hold value: %s\n",
		r.Buys, r.Sells, FormatValue(r.Cash), decimal.NewFromFloat(r.Position).String(),
		s.Count, FormatValue(s.Min), FormatValue(s.Max), FormatValue(s.Spread()), s.InRangeShare*100, s.Crossings(),
		FormatValue(s.BuyAndHoldValue),
	)
	return err
}

// Ranking prints a comparison table.
func (w *Writer) Ranking(ranked []analysis.RankedOutcome) error {
	tw := tabwriter.NewWriter(w.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "rank\tname\tmode\tcount\tlower\tupper\tbuys\tsells\tfinal")
	for _, r := range ranked {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\t%d\t%d\t%s\n",
			r.Rank,
			r.Name,
			grid.ParseMode(r.Params.GridMode),
			r.Params.GridCount,
			FormatValue(r.Params.Lower),
			FormatValue(r.Params.Upper),
			r.Result.Buys,
			r.Result.Sells,
			FormatValue(r.Result.FinalValue),
		)
	}
	return tw.Flush()
}
