package analysis

import (
	"sort"

	"grid-backtest/internal/backtest"
	"grid-backtest/internal/grid"
	"grid-backtest/internal/model"
)

// Outcome is one finished backtest of a named parameter set.
type Outcome struct {
	Name   string
	Params model.Params
	Levels grid.Levels
	Result *backtest.Result
}

type RankedOutcome struct {
	Rank int
	Outcome
}

// RankByFinalValue sorts outcomes descending by final value.
// Ties keep their input order.
func RankByFinalValue(outcomes []Outcome) []RankedOutcome {
	out := make([]RankedOutcome, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Result == nil {
			continue
		}
		out = append(out, RankedOutcome{Outcome: o})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Result.FinalValue > out[j].Result.FinalValue
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
