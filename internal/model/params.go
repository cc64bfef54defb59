package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO-8601 calendar date format used for run windows.
const DateLayout = "2006-01-02"

// Defaults applied when a parameter is left blank.
const (
	DefaultCoin      = "bitcoin"
	DefaultStartDate = "2024-01-01"
	DefaultEndDate   = "2024-02-01"
	DefaultGridMode  = "arith"
)

// Params is everything needed to run one backtest.
// OfflinePath, if set, replaces the remote fetch with a local file.
type Params struct {
	Coin      string
	StartDate string
	EndDate   string

	Lower     float64
	Upper     float64
	GridCount int
	GridMode  string

	OfflinePath string
}

// WithDefaults fills blank string fields.
func (p Params) WithDefaults() Params {
	if strings.TrimSpace(p.Coin) == "" {
		p.Coin = DefaultCoin
	}
	if strings.TrimSpace(p.StartDate) == "" {
		p.StartDate = DefaultStartDate
	}
	if strings.TrimSpace(p.EndDate) == "" {
		p.EndDate = DefaultEndDate
	}
	if strings.TrimSpace(p.GridMode) == "" {
		p.GridMode = DefaultGridMode
	}
	return p
}

// Window parses the start and end dates as UTC midnights.
func (p Params) Window() (time.Time, time.Time, error) {
	start, err := time.Parse(DateLayout, strings.TrimSpace(p.StartDate))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date %q (expected YYYY-MM-DD): %w", p.StartDate, err)
	}
	end, err := time.Parse(DateLayout, strings.TrimSpace(p.EndDate))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date %q (expected YYYY-MM-DD): %w", p.EndDate, err)
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("start_date %s is after end_date %s", p.StartDate, p.EndDate)
	}
	return start, end, nil
}

// Variation overrides the grid shape of a base run.
// Zero fields keep the base value.
type Variation struct {
	Name      string
	Lower     float64
	Upper     float64
	GridCount int
	GridMode  string
}

func (v Variation) Apply(base Params) Params {
	out := base
	if v.Lower != 0 {
		out.Lower = v.Lower
	}
	if v.Upper != 0 {
		out.Upper = v.Upper
	}
	if v.GridCount != 0 {
		out.GridCount = v.GridCount
	}
	if v.GridMode != "" {
		out.GridMode = v.GridMode
	}
	return out
}
