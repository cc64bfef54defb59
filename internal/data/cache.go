package data

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"grid-backtest/internal/logging"
)

const defaultCacheTTL = time.Hour

// CacheEntry represents cached closes for one query.
type CacheEntry struct {
	Closes    []float64
	ExpiresAt time.Time
}

// ResponseCache is an in-memory TTL cache of fetched price series.
// It is meant for the API server, where the same window is often requested
// with different grid shapes. It is disabled when API_ENV=production.
type ResponseCache struct {
	mu    sync.RWMutex
	store map[string]*CacheEntry
	ttl   time.Duration
	now   func() time.Time
}

func NewResponseCache(ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &ResponseCache{
		store: make(map[string]*CacheEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// CacheFromEnv returns a cache if GRID_CACHE_ENABLED=true and API_ENV is not production.
// Returns nil if caching is disabled. GRID_CACHE_TTL accepts a Go duration.
func CacheFromEnv() *ResponseCache {
	if os.Getenv("GRID_CACHE_ENABLED") != "true" {
		return nil
	}
	if os.Getenv("API_ENV") == "production" {
		return nil
	}
	ttl := defaultCacheTTL
	if s := os.Getenv("GRID_CACHE_TTL"); s != "" {
		if parsed, err := time.ParseDuration(s); err == nil {
			ttl = parsed
		}
	}
	return NewResponseCache(ttl)
}

// Get retrieves cached closes if available and not expired.
func (c *ResponseCache) Get(key string) ([]float64, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.store[key]
	if !ok || c.now().After(entry.ExpiresAt) {
		return nil, false
	}
	return entry.Closes, true
}

// Set stores closes in the cache and drops expired entries.
func (c *ResponseCache) Set(key string, closes []float64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, e := range c.store {
		if now.After(e.ExpiresAt) {
			delete(c.store, k)
		}
	}
	c.store[key] = &CacheEntry{Closes: closes, ExpiresAt: now.Add(c.ttl)}
}

// Len reports the number of stored entries, expired or not.
func (c *ResponseCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// GenerateCacheKey creates a deterministic key from query parameters.
func GenerateCacheKey(provider, coin, startDate, endDate string) string {
	keyStr := fmt.Sprintf("%s:%s:%s:%s", provider, coin, startDate, endDate)
	hash := sha256.Sum256([]byte(keyStr))
	return hex.EncodeToString(hash[:])
}

// CachedFetcher serves repeated queries from a ResponseCache.
type CachedFetcher struct {
	Fetcher PriceFetcher
	Cache   *ResponseCache
	Logger  *zap.Logger
}

// WithCache wraps f; a nil cache returns f unchanged.
func WithCache(f PriceFetcher, c *ResponseCache, logger *zap.Logger) PriceFetcher {
	if c == nil {
		return f
	}
	return &CachedFetcher{Fetcher: f, Cache: c, Logger: logging.OrNop(logger)}
}

func (c *CachedFetcher) Name() string { return c.Fetcher.Name() }

func (c *CachedFetcher) FetchCloses(ctx context.Context, coin, startDate, endDate string) ([]float64, error) {
	key := GenerateCacheKey(c.Fetcher.Name(), coin, startDate, endDate)
	if closes, ok := c.Cache.Get(key); ok {
		c.Logger.Debug("price cache hit",
			zap.String("provider", c.Fetcher.Name()),
			zap.String("coin", coin),
			zap.Int("points", len(closes)))
		return closes, nil
	}
	closes, err := c.Fetcher.FetchCloses(ctx, coin, startDate, endDate)
	if err != nil {
		return nil, err
	}
	c.Cache.Set(key, closes)
	return closes, nil
}
