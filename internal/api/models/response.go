package models

// BacktestResponse represents the response from a backtest run
type BacktestResponse struct {
	Status  string          `json:"status"`
	Summary BacktestSummary `json:"summary"`
	Levels  []float64       `json:"levels"`
	Stats   *SeriesStats    `json:"stats,omitempty"`
	Trades  []Trade         `json:"trades,omitempty"`
}

// BacktestSummary contains aggregated backtest results
type BacktestSummary struct {
	FinalValue  float64 `json:"final_value"`
	InitialCash float64 `json:"initial_cash"`
	Return      float64 `json:"return"`
	Cash        float64 `json:"cash"`
	Position    float64 `json:"position"`
	LastPrice   float64 `json:"last_price"`
	Steps       int     `json:"steps"`
	Buys        int     `json:"buys"`
	Sells       int     `json:"sells"`
	GridMode    string  `json:"grid_mode"`
}

// SeriesStats summarizes the price series the backtest ran over
type SeriesStats struct {
	Count           int     `json:"count"`
	First           float64 `json:"first"`
	Last            float64 `json:"last"`
	Min             float64 `json:"min"`
	Max             float64 `json:"max"`
	Mean            float64 `json:"mean"`
	P05             float64 `json:"p05"`
	P95             float64 `json:"p95"`
	BuyAndHoldValue float64 `json:"buy_and_hold_value"`
	InRangeShare    float64 `json:"in_range_share"`
	UpCrossings     int     `json:"up_crossings"`
	DownCrossings   int     `json:"down_crossings"`
}

// Trade represents one simulated fill
type Trade struct {
	Step     int     `json:"step"`
	Side     string  `json:"side"` // "BUY" or "SELL"
	Level    float64 `json:"level"`
	Close    float64 `json:"close"`
	Units    float64 `json:"units"`
	Cash     float64 `json:"cash"`
	Position float64 `json:"position"`
}

// CompareBacktestResponse represents the response from a comparison
type CompareBacktestResponse struct {
	Comparison []ComparisonResult `json:"comparison"`
}

// ComparisonResult contains results for one variation
type ComparisonResult struct {
	Rank      int             `json:"rank"`
	Name      string          `json:"name"`
	Lower     float64         `json:"lower"`
	Upper     float64         `json:"upper"`
	GridCount int             `json:"grid_count"`
	Summary   BacktestSummary `json:"summary"`
}

// GridResponse lists grid levels rounded to two decimals
type GridResponse struct {
	Mode   string    `json:"mode"`
	Levels []float64 `json:"levels"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
