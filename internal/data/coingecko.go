package data

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"grid-backtest/internal/logging"
	"grid-backtest/internal/model"
)

const (
	ProviderCoinGecko       = "coingecko"
	DefaultCoinGeckoBaseURL = "https://api.coingecko.com"
)

// CoinGeckoClient fetches historical prices from the public CoinGecko API.
type CoinGeckoClient struct {
	APIKey  string // optional demo key, sent as x-cg-demo-api-key
	BaseURL string
	Client  *http.Client
	Logger  *zap.Logger
}

// NewCoinGeckoClient creates a new CoinGecko client.
// If baseURL is empty, defaults to DefaultCoinGeckoBaseURL.
func NewCoinGeckoClient(apiKey, baseURL string, timeout time.Duration, logger *zap.Logger) *CoinGeckoClient {
	if baseURL == "" {
		baseURL = DefaultCoinGeckoBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CoinGeckoClient{
		APIKey:  apiKey,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
		Logger:  logging.OrNop(logger),
	}
}

func (c *CoinGeckoClient) Name() string { return ProviderCoinGecko }

// MarketChartParams defines a market_chart/range query.
type MarketChartParams struct {
	CoinID     string    // e.g. "bitcoin"
	VsCurrency string    // default "usd"
	From       time.Time // inclusive
	To         time.Time // inclusive
}

// QueryMarketChart fetches /api/v3/coins/{id}/market_chart/range.
// Every failure is returned as a *FetchError.
func (c *CoinGeckoClient) QueryMarketChart(ctx context.Context, params MarketChartParams) (*model.MarketChartResponse, error) {
	if params.CoinID == "" {
		return nil, c.fail(0, "INVALID_PARAMS", "coin id is required", nil)
	}
	if params.From.IsZero() || params.To.IsZero() {
		return nil, c.fail(0, "INVALID_PARAMS", "from and to are required", nil)
	}
	if params.From.After(params.To) {
		return nil, c.fail(0, "INVALID_PARAMS", "from must be before to", nil)
	}
	vs := params.VsCurrency
	if vs == "" {
		vs = "usd"
	}

	u, err := url.Parse(c.BaseURL + "/api/v3/coins/" + url.PathEscape(params.CoinID) + "/market_chart/range")
	if err != nil {
		return nil, c.fail(0, "INVALID_BASE_URL", "invalid base URL", err)
	}
	q := u.Query()
	q.Set("vs_currency", vs)
	q.Set("from", strconv.FormatInt(params.From.Unix(), 10))
	q.Set("to", strconv.FormatInt(params.To.Unix(), 10))
	u.RawQuery = q.Encode()

	log := c.Logger.With(
		zap.String("coin", params.CoinID),
		zap.Int64("from", params.From.Unix()),
		zap.Int64("to", params.To.Unix()),
	)
	log.Info("coingecko request", zap.String("path", u.Path))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, c.fail(0, "REQUEST_ERROR", "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.APIKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.APIKey)
	}

	started := time.Now()
	resp, err := c.Client.Do(req)
	duration := time.Since(started)
	if err != nil {
		log.Warn("coingecko request failed", zap.Error(err), zap.Duration("duration", duration))
		return nil, c.fail(0, "NETWORK_ERROR", "failed to execute request", err)
	}
	defer resp.Body.Close()

	log.Info("coingecko response", zap.Int("status", resp.StatusCode), zap.Duration("duration", duration))

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		retryAfter := resp.Header.Get("Retry-After")
		e := c.fail(resp.StatusCode, "RATE_LIMIT_EXCEEDED", fmt.Sprintf("rate limit exceeded, retry after %q", retryAfter), nil)
		e.RetryAfter = retryAfter
		return nil, e
	case http.StatusNotFound:
		return nil, c.fail(resp.StatusCode, "COIN_NOT_FOUND", fmt.Sprintf("coin %q not found", params.CoinID), nil)
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, c.fail(resp.StatusCode, "UNAUTHORIZED", "request rejected, check the API key", nil)
	default:
		return nil, c.fail(resp.StatusCode, "HTTP_ERROR", fmt.Sprintf("API returned status %d: %s", resp.StatusCode, resp.Status), nil)
	}

	var result model.MarketChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Warn("coingecko decode failed", zap.Error(err))
		return nil, c.fail(resp.StatusCode, "DECODE_ERROR", "failed to decode response", err)
	}

	log.Info("coingecko success", zap.Int("points", len(result.Prices)))
	return &result, nil
}

// FetchCloses returns daily closes between startDate and endDate inclusive (YYYY-MM-DD, UTC).
func (c *CoinGeckoClient) FetchCloses(ctx context.Context, coin, startDate, endDate string) ([]float64, error) {
	from, to, err := inclusiveWindow(startDate, endDate)
	if err != nil {
		return nil, c.fail(0, "INVALID_PARAMS", "invalid date range", err)
	}
	resp, err := c.QueryMarketChart(ctx, MarketChartParams{CoinID: coin, From: from, To: to})
	if err != nil {
		return nil, err
	}
	return resp.DailyCloses(), nil
}

func (c *CoinGeckoClient) fail(status int, code, msg string, err error) *FetchError {
	return &FetchError{Provider: ProviderCoinGecko, StatusCode: status, Code: code, Message: msg, Err: err}
}

// inclusiveWindow turns two calendar dates into [start 00:00:00, end 23:59:59.999] UTC.
func inclusiveWindow(startDate, endDate string) (time.Time, time.Time, error) {
	start, end, err := model.Params{StartDate: startDate, EndDate: endDate}.Window()
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end.Add(24*time.Hour - time.Millisecond), nil
}
