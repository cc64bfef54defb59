package model

import (
	"sort"
	"time"
)

// MarketChartResponse matches the JSON shape of the CoinGecko
// /coins/{id}/market_chart/range endpoint.
//
// Example:
//
//	{
//	  "prices": [[1704067200000, 42261.04], ...],
//	  "market_caps": [...],
//	  "total_volumes": [...]
//	}
type MarketChartResponse struct {
	Prices       []ChartPoint `json:"prices"`
	MarketCaps   []ChartPoint `json:"market_caps,omitempty"`
	TotalVolumes []ChartPoint `json:"total_volumes,omitempty"`
}

// ChartPoint is a [unix_ms, value] pair.
type ChartPoint [2]float64

func (p ChartPoint) TimestampMs() int64 { return int64(p[0]) }
func (p ChartPoint) Value() float64     { return p[1] }

// DailyCloses keeps the last observation of each UTC calendar day.
// CoinGecko returns hourly points for ranges under 90 days; this collapses them to daily closes.
func (r *MarketChartResponse) DailyCloses() []float64 {
	if r == nil || len(r.Prices) == 0 {
		return nil
	}
	pts := make([]ChartPoint, len(r.Prices))
	copy(pts, r.Prices)
	sort.SliceStable(pts, func(i, j int) bool { return pts[i][0] < pts[j][0] })

	out := make([]float64, 0, len(pts))
	lastDay := ""
	for _, p := range pts {
		day := time.UnixMilli(p.TimestampMs()).UTC().Format(DateLayout)
		if day == lastDay {
			out[len(out)-1] = p.Value()
			continue
		}
		out = append(out, p.Value())
		lastDay = day
	}
	return out
}
