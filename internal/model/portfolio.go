package model

// InitialCash is the starting cash of every backtest run.
const InitialCash = 1000.0

// Portfolio captures the mutable state of one backtest run.
// Units:
// - Cash: quote currency
// - Position: units of the asset held
type Portfolio struct {
	Cash     float64
	Position float64
}

func NewPortfolio() *Portfolio {
	return &Portfolio{Cash: InitialCash}
}

// Buy fills units at price if cash covers the full cost.
func (p *Portfolio) Buy(price, units float64) bool {
	cost := price * units
	if p.Cash < cost {
		return false
	}
	p.Cash -= cost
	p.Position += units
	return true
}

// Sell fills units at price while any position is held.
// Position only ever moves in whole units, so it cannot go negative.
func (p *Portfolio) Sell(price, units float64) bool {
	if p.Position <= 0 {
		return false
	}
	p.Position -= units
	p.Cash += price * units
	return true
}

// Value marks the position to price.
func (p *Portfolio) Value(price float64) float64 {
	return p.Cash + p.Position*price
}
