package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"grid-backtest/internal/logging"
)

var errMalformedRow = errors.New("malformed row")

// OfflineLoader reads a price series from a local file instead of the network.
type OfflineLoader struct {
	Logger *zap.Logger
}

func NewOfflineLoader(logger *zap.Logger) *OfflineLoader {
	return &OfflineLoader{Logger: logging.OrNop(logger)}
}

// Load dispatches on extension: .json is a saved market_chart response,
// anything else is a date,price CSV.
func (l *OfflineLoader) Load(path string) ([]float64, error) {
	log := logging.OrNop(l.Logger).With(zap.String("path", path))

	if strings.EqualFold(filepath.Ext(path), ".json") {
		resp, err := LoadMarketChartJSON(path)
		if err != nil {
			return nil, fmt.Errorf("read market chart json: %w", err)
		}
		closes := resp.DailyCloses()
		log.Info("loaded offline json", zap.Int("points", len(closes)))
		return closes, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	prices, skipped, err := ParsePricesCSV(f, log)
	if err != nil {
		return nil, fmt.Errorf("read price csv: %w", err)
	}
	log.Info("loaded offline csv", zap.Int("points", len(prices)), zap.Int("skipped", skipped))
	return prices, nil
}

// ParsePricesCSV returns the second column of a date,price file.
// Blank, short and unparseable rows (a header included) are skipped and counted.
func ParsePricesCSV(r io.Reader, logger *zap.Logger) (prices []float64, skipped int, err error) {
	log := logging.OrNop(logger)

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				skipped++
				log.Debug("skipping csv row", zap.Int("line", line), zap.Error(err))
				continue
			}
			return nil, skipped, err
		}
		v, err := parseRow(rec)
		if err != nil {
			skipped++
			log.Debug("skipping csv row", zap.Int("line", line), zap.Error(err))
			continue
		}
		prices = append(prices, v)
	}
	return prices, skipped, nil
}

func parseRow(rec []string) (float64, error) {
	if len(rec) < 2 {
		return 0, fmt.Errorf("%w: expected date,price, got %d field(s)", errMalformedRow, len(rec))
	}
	raw := strings.TrimSpace(rec[1])
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: price %q: %v", errMalformedRow, raw, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, fmt.Errorf("%w: price %q is not a positive number", errMalformedRow, raw)
	}
	return v, nil
}
