// Package export fetches prices for a set of symbols and saves them as CSV.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"stockcsv/internal/pricefile"
	"stockcsv/internal/provider"
	"stockcsv/internal/provider/alphavantage"
	"stockcsv/internal/provider/yahoo"
)

// Request describes one export run.
type Request struct {
	Mode       provider.Mode
	Symbols    []string
	OutputPath string

	// APIKey authenticates time-series requests.
	APIKey string
	// Function, OutputSize and Interval are passed through to the
	// time-series provider. Empty values use its defaults.
	Function   string
	OutputSize string
	Interval   string

	// Endpoint overrides and per-request timeouts; zero values use the
	// provider defaults.
	TimeSeriesURL     string
	QuoteURL          string
	TimeSeriesTimeout time.Duration
	QuoteTimeout      time.Duration
}

type options struct {
	logger *slog.Logger
}

// Option configures FetchAndSave.
type Option func(*options)

// WithLogger sets the logger for the run and its providers.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// FetchAndSave fetches req.Symbols with the provider selected by req.Mode and
// writes them to req.OutputPath, returning the cleaned path. Nothing is
// written unless every symbol was fetched and normalized.
func FetchAndSave(ctx context.Context, req Request, t provider.Transport, opts ...Option) (string, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	symbols, err := provider.NormalizeSymbols(req.Symbols)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return "", fmt.Errorf("%w: output path is required", provider.ErrInput)
	}
	if t == nil {
		return "", fmt.Errorf("%w: transport is required", provider.ErrInput)
	}
	path := filepath.Clean(req.OutputPath)
	logger := o.logger.With("mode", req.Mode.String())

	var rows int
	switch req.Mode {
	case provider.ModeTimeSeries:
		p := alphavantage.New(alphavantage.Config{
			APIKey:     req.APIKey,
			URL:        req.TimeSeriesURL,
			Function:   req.Function,
			OutputSize: req.OutputSize,
			Interval:   req.Interval,
			Timeout:    req.TimeSeriesTimeout,
		}, t, alphavantage.WithLogger(logger))
		rows, err = save[provider.Bar](ctx, p, symbols, path)
	case provider.ModeQuote:
		p := yahoo.New(yahoo.Config{
			URL:     req.QuoteURL,
			Timeout: req.QuoteTimeout,
		}, t, yahoo.WithLogger(logger))
		rows, err = save[provider.Quote](ctx, p, symbols, path)
	default:
		return "", fmt.Errorf("%w: unsupported mode %s", provider.ErrInput, req.Mode)
	}
	if err != nil {
		return "", err
	}

	logger.InfoContext(ctx, "wrote price file", "path", path, "symbols", len(symbols), "rows", rows)
	return path, nil
}

// fetcher is the shape shared by the providers; R fixes the file schema.
type fetcher[R pricefile.Row[R]] interface {
	Name() string
	Fetch(ctx context.Context, symbols []string) ([]R, error)
}

func save[R pricefile.Row[R]](ctx context.Context, f fetcher[R], symbols []string, path string) (int, error) {
	records, err := f.Fetch(ctx, symbols)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", f.Name(), err)
	}
	if err := pricefile.Write(path, records); err != nil {
		return 0, err
	}
	return len(records), nil
}
