package data

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePricesCSVSkipsMalformedRows(t *testing.T) {
	in := strings.Join([]string{
		"date,price",
		"2024-01-01,42000.5",
		"",
		"2024-01-02",
		"2024-01-03, 43000 ",
		"2024-01-04,abc",
		"2024-01-05,-1",
		"2024-01-06,NaN",
		`2024-01-07,"44000",extra`,
	}, "\n")

	prices, skipped, err := ParsePricesCSV(strings.NewReader(in), nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{42000.5, 43000, 44000}, prices)
	assert.Equal(t, 5, skipped)
}

func TestParsePricesCSVEmpty(t *testing.T) {
	prices, skipped, err := ParsePricesCSV(strings.NewReader(""), nil)
	require.NoError(t, err)
	assert.Empty(t, prices)
	assert.Zero(t, skipped)
}

func TestOfflineLoaderCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.csv")
	require.NoError(t, os.WriteFile(path, []byte("2024-01-01,100\n2024-01-02,150\n2024-01-03,100\n"), 0o644))

	prices, err := NewOfflineLoader(nil).Load(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 150, 100}, prices)
}

func TestOfflineLoaderJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.JSON")
	raw := `{"prices":[[1704067200000,100],[1704153600000,150],[1704240000000,100]]}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	prices, err := NewOfflineLoader(nil).Load(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 150, 100}, prices)
}

func TestOfflineLoaderMissingFile(t *testing.T) {
	_, err := NewOfflineLoader(nil).Load(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
