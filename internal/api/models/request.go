package models

// BacktestRequest represents the request body for running a backtest.
// Prices, when present, are used instead of fetching from the source.
type BacktestRequest struct {
	Params  ParamsConfig    `json:"params" binding:"required"`
	Source  SourceConfig    `json:"source,omitempty"`
	Prices  []float64       `json:"prices,omitempty"`
	Options BacktestOptions `json:"options,omitempty"`
}

// ParamsConfig defines one grid run. Dates are YYYY-MM-DD.
type ParamsConfig struct {
	Coin      string  `json:"coin,omitempty"`
	StartDate string  `json:"start_date,omitempty"`
	EndDate   string  `json:"end_date,omitempty"`
	Lower     float64 `json:"lower" binding:"required"`
	Upper     float64 `json:"upper" binding:"required"`
	GridCount int     `json:"grid_count" binding:"required"`
	GridMode  string  `json:"grid_mode,omitempty"` // "arith" (default) or "geom"
}

// SourceConfig selects the remote price provider.
type SourceConfig struct {
	Provider string `json:"provider,omitempty"` // "coingecko" (default) or "binance"
	Symbol   string `json:"symbol,omitempty"`   // binance only
}

// BacktestOptions contains optional backtest parameters
type BacktestOptions struct {
	IncludeTrades bool `json:"include_trades,omitempty"` // default: false
	IncludeStats  bool `json:"include_stats,omitempty"`  // default: false
}

// CompareBacktestRequest represents a request to compare grid variations
type CompareBacktestRequest struct {
	Params     ParamsConfig        `json:"params" binding:"required"`
	Source     SourceConfig        `json:"source,omitempty"`
	Prices     []float64           `json:"prices,omitempty"`
	Variations []BacktestVariation `json:"variations" binding:"required,min=1,dive"`
}

// BacktestVariation defines a variation to test. Zero fields keep the base value.
type BacktestVariation struct {
	Name      string  `json:"name" binding:"required"`
	Lower     float64 `json:"lower,omitempty"`
	Upper     float64 `json:"upper,omitempty"`
	GridCount int     `json:"grid_count,omitempty"`
	GridMode  string  `json:"grid_mode,omitempty"`
}

// GridRequest represents the query for previewing grid levels
type GridRequest struct {
	Lower float64 `form:"lower" binding:"required"`
	Upper float64 `form:"upper" binding:"required"`
	Count int     `form:"count" binding:"required"`
	Mode  string  `form:"mode"`
}
