package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"grid-backtest/internal/data"
	"grid-backtest/internal/grid"
	"grid-backtest/internal/logging"
	"grid-backtest/internal/model"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	// Optional: load base parameters from a separate YAML.
	// If both ParamsFile and Params are provided, Params overrides ParamsFile.
	ParamsFile string            `yaml:"params_file"`
	Params     ParamsConfig      `yaml:"params"`
	Source     SourceConfig      `yaml:"source"`
	Log        logging.Config    `yaml:"log"`
	Variations []VariationConfig `yaml:"variations"`
}

type ParamsConfig struct {
	Coin        string  `yaml:"coin"`
	StartDate   string  `yaml:"start_date"`
	EndDate     string  `yaml:"end_date"`
	Lower       float64 `yaml:"lower"`
	Upper       float64 `yaml:"upper"`
	GridCount   int     `yaml:"grid_count"`
	GridMode    string  `yaml:"grid_mode"`
	OfflinePath string  `yaml:"offline_path"`
}

type SourceConfig struct {
	Provider string        `yaml:"provider"` // coingecko | binance
	BaseURL  string        `yaml:"base_url"`
	Symbol   string        `yaml:"symbol"`
	Timeout  time.Duration `yaml:"timeout"`
}

// VariationConfig overrides the grid shape of the base params for compare runs.
type VariationConfig struct {
	Name      string  `yaml:"name"`
	Lower     float64 `yaml:"lower"`
	Upper     float64 `yaml:"upper"`
	GridCount int     `yaml:"grid_count"`
	GridMode  string  `yaml:"grid_mode"`
}

const defaultTimeout = 10 * time.Second

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if c.ParamsFile != "" {
		paramsPath := c.ParamsFile
		if !filepath.IsAbs(paramsPath) {
			// Prefer interpreting relative paths as relative to the config file directory,
			// but fall back to the provided path (relative to cwd) if that doesn't exist.
			cand := filepath.Join(filepath.Dir(path), paramsPath)
			if _, err := os.Stat(cand); err == nil {
				paramsPath = cand
			}
		}
		loaded, err := loadParamsFile(paramsPath)
		if err != nil {
			return nil, err
		}
		c.Params = MergeParams(loaded, c.Params)
	}
	return &c, nil
}

// ApplyDefaults fills blank params and source fields.
func (c *Config) ApplyDefaults() {
	p := c.Params.ToModelParams().WithDefaults()
	c.Params = FromModelParams(p)
	if c.Source.Provider == "" {
		c.Source.Provider = data.ProviderCoinGecko
	}
	if c.Source.Timeout <= 0 {
		c.Source.Timeout = defaultTimeout
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if err := ValidateParams(c.Params.ToModelParams()); err != nil {
		return fmt.Errorf("params invalid: %w", err)
	}
	switch strings.ToLower(c.Source.Provider) {
	case "", data.ProviderCoinGecko, data.ProviderBinance:
	default:
		return fmt.Errorf("source.provider %q is not supported", c.Source.Provider)
	}
	base := c.Params.ToModelParams()
	seen := map[string]bool{}
	for i, v := range c.Variations {
		if v.Name == "" {
			return fmt.Errorf("variations[%d].name is required", i)
		}
		if seen[v.Name] {
			return fmt.Errorf("variations[%d]: duplicate name %q", i, v.Name)
		}
		seen[v.Name] = true
		if err := ValidateParams(v.ToModel().Apply(base)); err != nil {
			return fmt.Errorf("variation %q invalid: %w", v.Name, err)
		}
	}
	return nil
}

// ValidateParams checks the grid by building it, and the date window when
// prices come from the network.
func ValidateParams(p model.Params) error {
	if _, err := grid.Build(p.Lower, p.Upper, p.GridCount, grid.ParseMode(p.GridMode)); err != nil {
		return err
	}
	if p.OfflinePath != "" {
		return nil
	}
	if strings.TrimSpace(p.Coin) == "" {
		return errors.New("coin is required")
	}
	if _, _, err := p.Window(); err != nil {
		return err
	}
	return nil
}

// SourceOptions combines the source section with secrets from the environment.
func (c *Config) SourceOptions(s Secrets) data.SourceOptions {
	return data.SourceOptions{
		Provider:         c.Source.Provider,
		BaseURL:          c.Source.BaseURL,
		Symbol:           c.Source.Symbol,
		Timeout:          c.Source.Timeout,
		CoinGeckoAPIKey:  s.CoinGeckoAPIKey,
		BinanceAPIKey:    s.BinanceAPIKey,
		BinanceSecretKey: s.BinanceSecretKey,
	}
}

func (c *Config) ModelVariations() []model.Variation {
	out := make([]model.Variation, 0, len(c.Variations))
	for _, v := range c.Variations {
		out = append(out, v.ToModel())
	}
	return out
}

func (p ParamsConfig) ToModelParams() model.Params {
	return model.Params{
		Coin:        p.Coin,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Lower:       p.Lower,
		Upper:       p.Upper,
		GridCount:   p.GridCount,
		GridMode:    p.GridMode,
		OfflinePath: p.OfflinePath,
	}
}

func FromModelParams(p model.Params) ParamsConfig {
	return ParamsConfig{
		Coin:        p.Coin,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Lower:       p.Lower,
		Upper:       p.Upper,
		GridCount:   p.GridCount,
		GridMode:    p.GridMode,
		OfflinePath: p.OfflinePath,
	}
}

func (v VariationConfig) ToModel() model.Variation {
	return model.Variation{
		Name:      v.Name,
		Lower:     v.Lower,
		Upper:     v.Upper,
		GridCount: v.GridCount,
		GridMode:  v.GridMode,
	}
}

type paramsFileWrapper struct {
	Params ParamsConfig `yaml:"params"`
}

func loadParamsFile(path string) (ParamsConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ParamsConfig{}, err
	}
	var w paramsFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return ParamsConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return w.Params, nil
}

// MergeParams overlays non-zero fields from override onto base.
func MergeParams(base, override ParamsConfig) ParamsConfig {
	out := base
	if override.Coin != "" {
		out.Coin = override.Coin
	}
	if override.StartDate != "" {
		out.StartDate = override.StartDate
	}
	if override.EndDate != "" {
		out.EndDate = override.EndDate
	}
	if override.Lower != 0 {
		out.Lower = override.Lower
	}
	if override.Upper != 0 {
		out.Upper = override.Upper
	}
	if override.GridCount != 0 {
		out.GridCount = override.GridCount
	}
	if override.GridMode != "" {
		out.GridMode = override.GridMode
	}
	if override.OfflinePath != "" {
		out.OfflinePath = override.OfflinePath
	}
	return out
}
