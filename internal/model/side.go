package model

// Side is the direction of a simulated fill.
// Keep these values stable; they are intended for API output.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)
