package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFetcher(t *testing.T) {
	f, err := NewFetcher(SourceOptions{}, nil)
	require.NoError(t, err)
	assert.Equal(t, ProviderCoinGecko, f.Name())
	assert.Equal(t, DefaultCoinGeckoBaseURL, f.(*CoinGeckoClient).BaseURL)

	f, err = NewFetcher(SourceOptions{Provider: "Binance", Symbol: "BTCUSDT"}, nil)
	require.NoError(t, err)
	assert.Equal(t, ProviderBinance, f.Name())

	_, err = NewFetcher(SourceOptions{Provider: "kraken"}, nil)
	assert.Error(t, err)
}
