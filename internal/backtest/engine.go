package backtest

import (
	"errors"

	"grid-backtest/internal/grid"
	"grid-backtest/internal/model"
)

// UnitsPerCrossing is the fixed fill size for every level crossing.
const UnitsPerCrossing = 1.0

// ErrEmptyPriceSeries is returned when there is no price to start from.
var ErrEmptyPriceSeries = errors.New("empty price series")

type Engine struct{}

func New() *Engine { return &Engine{} }

// Run replays prices step by step against the grid.
//
// For every step, each level except the topmost is checked against the move
// from the previous close to the current one, in ascending order:
// - crossed upward (last < level <= price) with a position held: sell one unit at the level
// - crossed downward (last > level >= price) with enough cash: buy one unit at the level
//
// The final value marks any remaining position to the last close.
func (e *Engine) Run(prices []float64, levels grid.Levels) (*Result, error) {
	if len(prices) == 0 {
		return nil, ErrEmptyPriceSeries
	}

	pf := model.NewPortfolio()
	triggers := levels.Triggers()
	res := &Result{Steps: len(prices) - 1}

	last := prices[0]
	for step := 1; step < len(prices); step++ {
		price := prices[step]
		for _, level := range triggers {
			var side model.Side
			switch {
			case last < level && level <= price:
				if !pf.Sell(level, UnitsPerCrossing) {
					continue
				}
				side = model.SideSell
				res.Sells++
			case last > level && level >= price:
				if !pf.Buy(level, UnitsPerCrossing) {
					continue
				}
				side = model.SideBuy
				res.Buys++
			default:
				continue
			}
			res.Trades = append(res.Trades, Trade{
				Step:     step,
				Side:     side,
				Level:    level,
				Close:    price,
				Units:    UnitsPerCrossing,
				Cash:     pf.Cash,
				Position: pf.Position,
			})
		}
		last = price
	}

	res.LastPrice = prices[len(prices)-1]
	res.Cash = pf.Cash
	res.Position = pf.Position
	res.FinalValue = pf.Value(res.LastPrice)
	return res, nil
}

// FinalValue runs a backtest and returns only the final portfolio value.
// An empty series is worth the initial cash.
func FinalValue(prices []float64, levels grid.Levels) float64 {
	res, err := New().Run(prices, levels)
	if err != nil {
		return model.InitialCash
	}
	return res.FinalValue
}
