package data

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"go.uber.org/zap"

	"grid-backtest/internal/logging"
)

const (
	ProviderBinance = "binance"

	binanceDailyInterval = "1d"
	binanceKlineLimit    = 1000
)

// coinSymbols maps common CoinGecko ids onto Binance base assets.
var coinSymbols = map[string]string{
	"bitcoin":     "BTC",
	"ethereum":    "ETH",
	"binancecoin": "BNB",
	"solana":      "SOL",
	"ripple":      "XRP",
	"cardano":     "ADA",
	"dogecoin":    "DOGE",
	"litecoin":    "LTC",
	"polkadot":    "DOT",
	"tron":        "TRX",
}

// BinanceFetcher reads daily klines from the Binance spot API.
type BinanceFetcher struct {
	Client *binance.Client
	// Symbol overrides the symbol derived from the coin id, e.g. "BTCUSDT".
	Symbol string
	Logger *zap.Logger
}

func NewBinanceFetcher(apiKey, secretKey, baseURL, symbol string, timeout time.Duration, logger *zap.Logger) *BinanceFetcher {
	c := binance.NewClient(apiKey, secretKey)
	if baseURL != "" {
		c.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c.HTTPClient = &http.Client{Timeout: timeout}
	return &BinanceFetcher{Client: c, Symbol: symbol, Logger: logging.OrNop(logger)}
}

func (f *BinanceFetcher) Name() string { return ProviderBinance }

// SymbolFor resolves the trading pair for a coin id.
func (f *BinanceFetcher) SymbolFor(coin string) string {
	if f.Symbol != "" {
		return strings.ToUpper(f.Symbol)
	}
	c := strings.ToLower(strings.TrimSpace(coin))
	if base, ok := coinSymbols[c]; ok {
		return base + "USDT"
	}
	return strings.ToUpper(c) + "USDT"
}

// FetchCloses pages through daily klines covering both dates.
func (f *BinanceFetcher) FetchCloses(ctx context.Context, coin, startDate, endDate string) ([]float64, error) {
	from, to, err := inclusiveWindow(startDate, endDate)
	if err != nil {
		return nil, f.fail(0, "INVALID_PARAMS", "invalid date range", err)
	}
	symbol := f.SymbolFor(coin)
	log := f.Logger.With(zap.String("symbol", symbol))

	var closes []float64
	cursor := from.UnixMilli()
	end := to.UnixMilli()
	for cursor <= end {
		started := time.Now()
		klines, err := f.Client.NewKlinesService().
			Symbol(symbol).
			Interval(binanceDailyInterval).
			StartTime(cursor).
			EndTime(end).
			Limit(binanceKlineLimit).
			Do(ctx)
		if err != nil {
			log.Warn("binance klines failed", zap.Error(err), zap.Duration("duration", time.Since(started)))
			return nil, f.wrap(err)
		}
		log.Info("binance klines", zap.Int("count", len(klines)), zap.Duration("duration", time.Since(started)))

		for _, k := range klines {
			v, err := strconv.ParseFloat(k.Close, 64)
			if err != nil {
				return nil, f.fail(0, "DECODE_ERROR", fmt.Sprintf("invalid close %q", k.Close), err)
			}
			closes = append(closes, v)
		}
		if len(klines) < binanceKlineLimit {
			break
		}
		cursor = klines[len(klines)-1].OpenTime + 1
	}
	return closes, nil
}

func (f *BinanceFetcher) wrap(err error) *FetchError {
	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		return f.fail(0, "API_ERROR", fmt.Sprintf("binance error %d: %s", apiErr.Code, apiErr.Message), err)
	}
	return f.fail(0, "NETWORK_ERROR", "failed to execute request", err)
}

func (f *BinanceFetcher) fail(status int, code, msg string, err error) *FetchError {
	return &FetchError{Provider: ProviderBinance, StatusCode: status, Code: code, Message: msg, Err: err}
}
