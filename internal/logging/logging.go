// Package logging builds the zap loggers used by the CLI and the API server.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is the on-disk logging configuration (YAML).
type Config struct {
	Level      string   `yaml:"level"`       // debug, info, warn, error
	Format     string   `yaml:"format"`      // json or console
	Outputs    []string `yaml:"outputs"`     // stdout, stderr, file
	OutputFile string   `yaml:"output_file"` // used when outputs contains "file"
}

// DefaultCLIConfig keeps stdout free for results.
func DefaultCLIConfig() Config {
	return Config{
		Level:   "warn",
		Format:  "console",
		Outputs: []string{"stderr"},
	}
}

func DefaultServerConfig() Config {
	return Config{
		Level:   "info",
		Format:  "json",
		Outputs: []string{"stdout"},
	}
}

// Merge overlays non-empty fields from override onto base.
func Merge(base, override Config) Config {
	out := base
	if override.Level != "" {
		out.Level = override.Level
	}
	if override.Format != "" {
		out.Format = override.Format
	}
	if len(override.Outputs) > 0 {
		out.Outputs = override.Outputs
	}
	if override.OutputFile != "" {
		out.OutputFile = override.OutputFile
	}
	return out
}

func New(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %s: %w", cfg.Level, err)
	}

	var encoder zapcore.Encoder
	if cfg.Format == "console" {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(ec)
	} else {
		ec := zap.NewProductionEncoderConfig()
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(ec)
	}

	var cores []zapcore.Core
	for _, out := range cfg.Outputs {
		switch out {
		case "stdout":
			cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level))
		case "stderr":
			cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level))
		case "file":
			if cfg.OutputFile == "" {
				return nil, fmt.Errorf("log output %q requires output_file", out)
			}
			f, err := os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				return nil, fmt.Errorf("open log file failed: %w", err)
			}
			cores = append(cores, zapcore.NewCore(encoder.Clone(), zapcore.AddSync(f), level))
		default:
			return nil, fmt.Errorf("unknown log output %q", out)
		}
	}
	if len(cores) == 0 {
		return zap.NewNop(), nil
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
