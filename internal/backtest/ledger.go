package backtest

import "grid-backtest/internal/model"

// Trade is one simulated fill. Trades live only in memory for the duration of a run.
type Trade struct {
	// Step is the index into the price series of the close that triggered the fill.
	Step int

	Side  model.Side
	Level float64
	Close float64
	Units float64

	// Portfolio balances right after the fill.
	Cash     float64
	Position float64
}

type Result struct {
	FinalValue float64
	Cash       float64
	Position   float64
	LastPrice  float64

	Steps int
	Buys  int
	Sells int

	Trades []Trade
}

// Return is the fractional change of the final value versus the initial cash.
func (r *Result) Return() float64 {
	if r == nil {
		return 0
	}
	return r.FinalValue/model.InitialCash - 1
}
