package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Secrets are read from the environment only, never from YAML.
type Secrets struct {
	CoinGeckoAPIKey  string
	BinanceAPIKey    string
	BinanceSecretKey string
}

// LoadEnv loads .env-style files into the process environment.
// Missing files are ignored; variables already set are not overridden.
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

func SecretsFromEnv() Secrets {
	return Secrets{
		CoinGeckoAPIKey:  os.Getenv("COINGECKO_API_KEY"),
		BinanceAPIKey:    os.Getenv("BINANCE_API_KEY"),
		BinanceSecretKey: os.Getenv("BINANCE_SECRET_KEY"),
	}
}
