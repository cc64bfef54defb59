package data

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// PriceFetcher returns chronologically ordered closes for a coin between two
// YYYY-MM-DD dates, inclusive. Failures are *FetchError.
type PriceFetcher interface {
	Name() string
	FetchCloses(ctx context.Context, coin, startDate, endDate string) ([]float64, error)
}

// SourceOptions selects and configures a remote price provider.
type SourceOptions struct {
	Provider string // coingecko (default) or binance
	BaseURL  string
	Symbol   string // binance only
	Timeout  time.Duration

	CoinGeckoAPIKey  string
	BinanceAPIKey    string
	BinanceSecretKey string
}

func NewFetcher(opts SourceOptions, logger *zap.Logger) (PriceFetcher, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case "", ProviderCoinGecko:
		return NewCoinGeckoClient(opts.CoinGeckoAPIKey, opts.BaseURL, opts.Timeout, logger), nil
	case ProviderBinance:
		return NewBinanceFetcher(opts.BinanceAPIKey, opts.BinanceSecretKey, opts.BaseURL, opts.Symbol, opts.Timeout, logger), nil
	default:
		return nil, fmt.Errorf("unsupported price provider: %q", opts.Provider)
	}
}
