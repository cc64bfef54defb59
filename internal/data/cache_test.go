package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingFetcher struct {
	calls  int
	closes []float64
	err    error
}

func (f *countingFetcher) Name() string { return "stub" }

func (f *countingFetcher) FetchCloses(ctx context.Context, coin, startDate, endDate string) ([]float64, error) {
	f.calls++
	return f.closes, f.err
}

func TestResponseCacheExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewResponseCache(time.Minute)
	c.now = func() time.Time { return now }

	c.Set("k", []float64{1, 2})
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2}, got)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok)

	c.Set("other", []float64{3})
	assert.Equal(t, 1, c.Len())
}

func TestNilCacheIsSafe(t *testing.T) {
	var c *ResponseCache
	c.Set("k", []float64{1})
	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestCachedFetcher(t *testing.T) {
	inner := &countingFetcher{closes: []float64{100, 150, 100}}
	f := WithCache(inner, NewResponseCache(time.Hour), nil)

	for i := 0; i < 3; i++ {
		got, err := f.FetchCloses(context.Background(), "bitcoin", "2024-01-01", "2024-02-01")
		require.NoError(t, err)
		assert.Equal(t, inner.closes, got)
	}
	assert.Equal(t, 1, inner.calls)

	_, err := f.FetchCloses(context.Background(), "ethereum", "2024-01-01", "2024-02-01")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, "stub", f.Name())
}

func TestWithNilCacheReturnsFetcher(t *testing.T) {
	inner := &countingFetcher{}
	assert.Same(t, inner, WithCache(inner, nil, nil))
}

func TestCacheFromEnv(t *testing.T) {
	t.Setenv("GRID_CACHE_ENABLED", "")
	assert.Nil(t, CacheFromEnv())

	t.Setenv("GRID_CACHE_ENABLED", "true")
	t.Setenv("API_ENV", "production")
	assert.Nil(t, CacheFromEnv())

	t.Setenv("API_ENV", "development")
	t.Setenv("GRID_CACHE_TTL", "5m")
	c := CacheFromEnv()
	require.NotNil(t, c)
	assert.Equal(t, 5*time.Minute, c.ttl)
}

func TestGenerateCacheKeyDeterministic(t *testing.T) {
	a := GenerateCacheKey("coingecko", "bitcoin", "2024-01-01", "2024-02-01")
	assert.Equal(t, a, GenerateCacheKey("coingecko", "bitcoin", "2024-01-01", "2024-02-01"))
	assert.NotEqual(t, a, GenerateCacheKey("binance", "bitcoin", "2024-01-01", "2024-02-01"))
}
