// Package alphavantage fetches OHLCV time series from the Alpha Vantage query API.
package alphavantage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"stockcsv/internal/provider"
)

const (
	// DefaultURL is the Alpha Vantage query endpoint.
	DefaultURL = "https://www.alphavantage.co/query"
	// DefaultFunction returns daily bars with the adjusted-volume field layout.
	DefaultFunction = "TIME_SERIES_DAILY_ADJUSTED"
	DefaultTimeout  = 30 * time.Second
)

// Config controls the Alpha Vantage provider.
type Config struct {
	APIKey   string
	URL      string
	Function string
	// OutputSize is "compact" or "full"; empty leaves the provider default.
	OutputSize string
	// Interval is required by the intraday functions, e.g. "5min".
	Interval string
	Timeout  time.Duration
}

// Provider fetches one series per symbol, sequentially.
type Provider struct {
	cfg       Config
	transport provider.Transport
	logger    *slog.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the logger used for per-request debug output.
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) { p.logger = l }
}

func New(cfg Config, t provider.Transport, opts ...Option) *Provider {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Function == "" {
		cfg.Function = DefaultFunction
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	p := &Provider{cfg: cfg, transport: t, logger: slog.Default()}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Provider) Name() string { return "AlphaVantage" }

// Fetch returns every bar of every symbol. symbols must already be normalized.
// The first failing symbol aborts the whole fetch.
func (p *Provider) Fetch(ctx context.Context, symbols []string) ([]provider.Bar, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: no symbols", provider.ErrInput)
	}
	var out []provider.Bar
	for _, symbol := range symbols {
		bars, err := p.fetchSymbol(ctx, symbol)
		if err != nil {
			return nil, err
		}
		out = append(out, bars...)
	}
	return out, nil
}

func (p *Provider) fetchSymbol(ctx context.Context, symbol string) ([]provider.Bar, error) {
	params := map[string]string{
		"function": p.cfg.Function,
		"symbol":   symbol,
		"apikey":   p.cfg.APIKey,
	}
	if p.cfg.OutputSize != "" {
		params["outputsize"] = p.cfg.OutputSize
	}
	if p.cfg.Interval != "" {
		params["interval"] = p.cfg.Interval
	}

	p.logger.DebugContext(ctx, "fetching time series", "symbol", symbol, "function", p.cfg.Function)
	res, err := p.transport.Get(ctx, p.cfg.URL, params, p.cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", provider.ErrTransport, symbol, err)
	}
	if err := res.RaiseOnError(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", provider.ErrProvider, symbol, err)
	}

	bars, err := ExtractSeries(symbol, res.Body)
	if err != nil {
		return nil, err
	}
	p.logger.DebugContext(ctx, "parsed time series", "symbol", symbol, "bars", len(bars))
	return bars, nil
}
