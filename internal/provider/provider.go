package provider

import (
	"cmp"
	"context"
	"fmt"
	"strings"
	"time"

	"stockcsv/internal/httpx"
)

// Transport issues GET requests on behalf of a provider. *httpx.Client
// satisfies it; tests substitute a mock.
//
//go:generate mockgen -destination=providermock/transport.go -package=providermock . Transport
type Transport interface {
	Get(ctx context.Context, rawURL string, params map[string]string, timeout time.Duration) (*httpx.Response, error)
}

// Mode selects the provider shape and, with it, the record schema of the output.
type Mode int

const (
	// ModeTimeSeries fetches one OHLCV series per symbol.
	ModeTimeSeries Mode = iota + 1
	// ModeQuote fetches one batched price snapshot for all symbols.
	ModeQuote
)

func (m Mode) String() string {
	switch m {
	case ModeTimeSeries:
		return "timeseries"
	case ModeQuote:
		return "quote"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts the names printed by Mode.String, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "timeseries", "time-series", "series":
		return ModeTimeSeries, nil
	case "quote", "snapshot":
		return ModeQuote, nil
	}
	return 0, fmt.Errorf("%w: unknown mode %q", ErrInput, s)
}

// Bar is one OHLCV observation for one symbol.
type Bar struct {
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// Compare orders bars by symbol, then time.
func (b Bar) Compare(o Bar) int {
	if c := cmp.Compare(b.Symbol, o.Symbol); c != 0 {
		return c
	}
	return b.Timestamp.Compare(o.Timestamp)
}

// Quote is the snapshot shape returned by quote providers.
// Price is kept as the provider's number text to avoid float rounding.
// Empty Price/Currency and a zero MarketTime mean the provider had no entry.
type Quote struct {
	Symbol     string    `json:"symbol"`
	Price      string    `json:"price"`
	Currency   string    `json:"currency"`
	MarketTime time.Time `json:"market_time"`
}

// Compare orders quotes by symbol, then market time.
func (q Quote) Compare(o Quote) int {
	if c := cmp.Compare(q.Symbol, o.Symbol); c != 0 {
		return c
	}
	return q.MarketTime.Compare(o.MarketTime)
}

// NormalizeSymbols trims and upper-cases symbols, dropping blanks.
// Order and duplicates are preserved. An empty result is an ErrInput.
func NormalizeSymbols(symbols []string) ([]string, error) {
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: at least one non-blank symbol is required", ErrInput)
	}
	return out, nil
}
