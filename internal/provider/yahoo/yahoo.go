// Package yahoo fetches price snapshots from the Yahoo Finance v7 quote API.
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"stockcsv/internal/provider"
)

const (
	DefaultURL     = "https://query1.finance.yahoo.com/v7/finance/quote"
	DefaultTimeout = 10 * time.Second
)

// Config controls the Yahoo provider.
type Config struct {
	URL     string
	Timeout time.Duration
}

// Provider fetches all symbols in one batched request.
type Provider struct {
	cfg       Config
	transport provider.Transport
	logger    *slog.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the logger used for request debug output.
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) { p.logger = l }
}

func New(cfg Config, t provider.Transport, opts ...Option) *Provider {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
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

func (p *Provider) Name() string { return "Yahoo" }

// Fetch returns exactly one Quote per requested symbol, in request order.
// symbols must already be normalized.
func (p *Provider) Fetch(ctx context.Context, symbols []string) ([]provider.Quote, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: no symbols", provider.ErrInput)
	}
	joined := strings.Join(symbols, ",")

	p.logger.DebugContext(ctx, "fetching quotes", "symbols", joined)
	res, err := p.transport.Get(ctx, p.cfg.URL, map[string]string{"symbols": joined}, p.cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", provider.ErrTransport, joined, err)
	}
	if err := res.RaiseOnError(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", provider.ErrProvider, joined, err)
	}
	return ExtractQuotes(symbols, res.Body)
}

// quoteResponse is the subset of the v7 payload used here. Pointers and
// json.Number distinguish "absent" from zero.
type quoteResponse struct {
	QuoteResponse *struct {
		Result []quote `json:"result"`
	} `json:"quoteResponse"`
}

type quote struct {
	Symbol             string       `json:"symbol"`
	RegularMarketPrice *json.Number `json:"regularMarketPrice"`
	RegularMarketTime  *json.Number `json:"regularMarketTime"`
	Currency           *string      `json:"currency"`
}

// ExtractQuotes builds one Quote per symbol from a v7 quote payload. Symbols
// the provider did not answer for get a Quote with only Symbol set.
func ExtractQuotes(symbols []string, body []byte) ([]provider.Quote, error) {
	batch := strings.Join(symbols, ",")

	var payload quoteResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, provider.NewPayloadShapeError(batch, "", body, fmt.Errorf("decode response: %w", err))
	}

	lookup := make(map[string]quote)
	if payload.QuoteResponse != nil {
		for _, q := range payload.QuoteResponse.Result {
			lookup[strings.ToUpper(q.Symbol)] = q
		}
	}

	out := make([]provider.Quote, 0, len(symbols))
	for _, symbol := range symbols {
		q, ok := lookup[symbol]
		if !ok {
			out = append(out, provider.Quote{Symbol: symbol})
			continue
		}
		marketTime, err := parseMarketTime(q.RegularMarketTime)
		if err != nil {
			return nil, provider.NewPayloadShapeError(symbol, "", body, err)
		}
		row := provider.Quote{Symbol: symbol, MarketTime: marketTime}
		if q.RegularMarketPrice != nil {
			row.Price = q.RegularMarketPrice.String()
		}
		if q.Currency != nil {
			row.Currency = *q.Currency
		}
		out = append(out, row)
	}
	return out, nil
}

// parseMarketTime converts epoch seconds to UTC. Absent or zero means unknown.
func parseMarketTime(n *json.Number) (time.Time, error) {
	if n == nil {
		return time.Time{}, nil
	}
	secs, err := strconv.ParseFloat(n.String(), 64)
	if err != nil || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return time.Time{}, errors.New("regularMarketTime is not a number")
	}
	if secs == 0 {
		return time.Time{}, nil
	}
	return time.Unix(int64(secs), 0).UTC(), nil
}
