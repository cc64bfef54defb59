package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"go.uber.org/zap"

	"grid-backtest/internal/config"
	"grid-backtest/internal/data"
	"grid-backtest/internal/logging"
	"grid-backtest/internal/model"
	"grid-backtest/internal/prompt"
	"grid-backtest/internal/report"
	"grid-backtest/internal/runner"
)

func main() {
	args := os.Args[1:]
	cmd := "backtest"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch cmd {
	case "backtest":
		err = cmdBacktest(ctx, args, os.Stdin, os.Stdout)
	case "compare":
		err = cmdCompare(ctx, args, os.Stdout)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli [backtest]                          prompt for parameters")
	fmt.Println("  cli backtest --config examples/run.yaml [--summary]")
	fmt.Println("  cli compare --config examples/compare.yaml")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - secrets (COINGECKO_API_KEY, BINANCE_API_KEY, BINANCE_SECRET_KEY) come from the environment or --env")
	fmt.Println("  - set params.offline_path to run on a local CSV or market chart JSON")
}

type commonFlags struct {
	cfgPath  *string
	envPath  *string
	logLevel *string
}

func registerCommon(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		cfgPath:  fs.String("config", "", "Path to YAML config"),
		envPath:  fs.String("env", ".env", "Optional .env file with API keys"),
		logLevel: fs.String("log-level", "", "Override log level (debug, info, warn, error)"),
	}
}

// setup loads secrets, the optional config file and the logger.
func (f commonFlags) setup() (*config.Config, *zap.Logger, error) {
	if err := config.LoadEnv(*f.envPath); err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", *f.envPath, err)
	}
	var cfg *config.Config
	if *f.cfgPath != "" {
		var err error
		if cfg, err = config.Load(*f.cfgPath); err != nil {
			return nil, nil, err
		}
	}

	logCfg := logging.DefaultCLIConfig()
	if cfg != nil {
		logCfg = logging.Merge(logCfg, cfg.Log)
	}
	if *f.logLevel != "" {
		logCfg.Level = *f.logLevel
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func newRunner(cfg *config.Config, logger *zap.Logger) (*runner.Runner, error) {
	if cfg == nil {
		cfg = &config.Config{}
		cfg.ApplyDefaults()
	}
	fetcher, err := data.NewFetcher(cfg.SourceOptions(config.SecretsFromEnv()), logger)
	if err != nil {
		return nil, err
	}
	fetcher = data.WithCache(fetcher, data.CacheFromEnv(), logger)
	return runner.New(fetcher, data.NewOfflineLoader(logger), logger), nil
}

func cmdBacktest(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("backtest", flag.ExitOnError)
	common := registerCommon(fs)
	summary := fs.Bool("summary", false, "Also print trade counts and series statistics")
	_ = fs.Parse(args)

	cfg, logger, err := common.setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var p model.Params
	if cfg != nil {
		p = cfg.Params.ToModelParams()
	} else {
		if p, err = prompt.New(in, out).Params(); err != nil {
			return err
		}
		p = p.WithDefaults()
	}

	r, err := newRunner(cfg, logger)
	if err != nil {
		return err
	}
	rep, err := r.Run(ctx, p)
	if err != nil {
		return err
	}

	w := report.NewWriter(out)
	if err := w.Result(rep.Result.FinalValue, rep.Levels); err != nil {
		return err
	}
	if *summary {
		return w.Summary(rep.Outcome, rep.Stats)
	}
	return nil
}

func cmdCompare(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	common := registerCommon(fs)
	_ = fs.Parse(args)

	if *common.cfgPath == "" {
		return fmt.Errorf("--config is required")
	}
	cfg, logger, err := common.setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	if len(cfg.Variations) == 0 {
		return fmt.Errorf("%s has no variations", *common.cfgPath)
	}

	r, err := newRunner(cfg, logger)
	if err != nil {
		return err
	}
	ranked, err := r.Compare(ctx, cfg.Params.ToModelParams(), cfg.ModelVariations())
	if err != nil {
		return err
	}
	return report.NewWriter(out).Ranking(ranked)
}
