package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"stockcsv/internal/config"
	"stockcsv/internal/export"
	"stockcsv/internal/httpx"
	"stockcsv/internal/provider"
)

func main() {
	var (
		configPath string
		mode       string
		symbolsCSV string
		outPath    string
		function   string
		outputSize string
		interval   string
		timeout    int
		logLevel   string
	)
	flag.StringVar(&configPath, "config", getenv("CONFIG_FILE", ""), "path to config.json or config.yaml (optional)")
	flag.StringVar(&mode, "mode", "", "timeseries or quote (overrides config)")
	flag.StringVar(&symbolsCSV, "symbols", "", "comma-separated ticker symbols (overrides config)")
	flag.StringVar(&outPath, "out", "", "output CSV path (overrides config)")
	flag.StringVar(&function, "function", "", "Alpha Vantage function, e.g. TIME_SERIES_DAILY_ADJUSTED")
	flag.StringVar(&outputSize, "outputsize", "", "Alpha Vantage outputsize: compact or full")
	flag.StringVar(&interval, "interval", "", "Alpha Vantage interval for intraday functions, e.g. 5min")
	flag.IntVar(&timeout, "timeout", 0, "per-request timeout seconds (overrides config)")
	flag.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil { log.Fatalf("config: %v", err) }
	// Flags win over file and env
	if mode != "" { cfg.Mode = mode }
	if symbolsCSV != "" { cfg.Symbols = config.SplitCSV(symbolsCSV) }
	if flag.NArg() > 0 { cfg.Symbols = append(cfg.Symbols, flag.Args()...) }
	if outPath != "" { cfg.Output.Path = outPath }
	if function != "" { cfg.AlphaVantage.Function = function }
	if outputSize != "" { cfg.AlphaVantage.OutputSize = outputSize }
	if interval != "" { cfg.AlphaVantage.Interval = interval }
	if timeout > 0 {
		cfg.AlphaVantage.TimeoutSec = timeout
		cfg.Yahoo.TimeoutSec = timeout
	}
	if logLevel != "" { cfg.Log.Level = logLevel }

	logger := newLogger(cfg.Log).With("run_id", uuid.NewString())
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	m, _ := provider.ParseMode(cfg.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Per-request timeouts are applied by the providers; the client timeout is a backstop.
	maxTimeout := max(cfg.AlphaVantage.TimeoutSec, cfg.Yahoo.TimeoutSec)
	client := httpx.New(time.Duration(maxTimeout+5) * time.Second)

	path, err := export.FetchAndSave(ctx, export.Request{
		Mode:              m,
		Symbols:           cfg.Symbols,
		OutputPath:        cfg.Output.Path,
		APIKey:            cfg.AlphaVantage.APIKey,
		Function:          cfg.AlphaVantage.Function,
		OutputSize:        cfg.AlphaVantage.OutputSize,
		Interval:          cfg.AlphaVantage.Interval,
		TimeSeriesURL:     cfg.AlphaVantage.Endpoint,
		QuoteURL:          cfg.Yahoo.Endpoint,
		TimeSeriesTimeout: time.Duration(cfg.AlphaVantage.TimeoutSec) * time.Second,
		QuoteTimeout:      time.Duration(cfg.Yahoo.TimeoutSec) * time.Second,
	}, client, export.WithLogger(logger))
	if err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}
	fmt.Println(path)
}

func newLogger(cfg config.Log) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func getenv(key, def string) string { if v := os.Getenv(key); v != "" { return v }; return def }
