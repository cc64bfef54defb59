package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"grid-backtest/internal/grid"
	"grid-backtest/internal/model"
)

// SeriesStats summarizes a price series against a grid.
// It does not depend on cash constraints; Crossings counts every level crossing
// whether or not the engine could fill it.
type SeriesStats struct {
	Count int

	First float64
	Last  float64
	Min   float64
	Max   float64
	Mean  float64
	P05   float64
	P95   float64

	// BuyAndHoldValue is InitialCash invested at the first close, marked at the last.
	BuyAndHoldValue float64

	// InRangeShare is the fraction of closes within [lower, upper].
	InRangeShare float64

	UpCrossings   int
	DownCrossings int
}

func (s SeriesStats) Crossings() int { return s.UpCrossings + s.DownCrossings }

func Summarize(prices []float64, levels grid.Levels) SeriesStats {
	s := SeriesStats{}
	if len(prices) == 0 {
		return s
	}
	s.Count = len(prices)
	s.First = prices[0]
	s.Last = prices[len(prices)-1]
	s.Min = floats.Min(prices)
	s.Max = floats.Max(prices)
	s.Mean = stat.Mean(prices, nil)

	sorted := make([]float64, len(prices))
	copy(sorted, prices)
	sort.Float64s(sorted)
	s.P05 = stat.Quantile(0.05, stat.Empirical, sorted, nil)
	s.P95 = stat.Quantile(0.95, stat.Empirical, sorted, nil)

	if s.First > 0 {
		s.BuyAndHoldValue = model.InitialCash / s.First * s.Last
	}

	if len(levels) > 0 {
		lo, hi := levels.Lower(), levels.Upper()
		in := 0
		for _, p := range prices {
			if p >= lo && p <= hi {
				in++
			}
		}
		s.InRangeShare = float64(in) / float64(len(prices))
	}

	triggers := levels.Triggers()
	for i := 1; i < len(prices); i++ {
		last, price := prices[i-1], prices[i]
		for _, level := range triggers {
			switch {
			case last < level && level <= price:
				s.UpCrossings++
			case last > level && level >= price:
				s.DownCrossings++
			}
		}
	}
	return s
}

// Spread is P95 - P05, NaN for an empty summary.
func (s SeriesStats) Spread() float64 {
	if s.Count == 0 {
		return math.NaN()
	}
	return s.P95 - s.P05
}
