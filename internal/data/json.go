package data

import (
	"encoding/json"
	"os"

	"grid-backtest/internal/model"
)

// LoadMarketChartJSON reads a saved CoinGecko market_chart response.
func LoadMarketChartJSON(path string) (*model.MarketChartResponse, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var resp model.MarketChartResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
