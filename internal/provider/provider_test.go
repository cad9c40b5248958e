package provider

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNormalizeSymbols(t *testing.T) {
	got, err := NormalizeSymbols([]string{" msft", "", "aapl ", "  ", "msft"})
	require.NoError(t, err)
	require.Equal(t, []string{"MSFT", "AAPL", "MSFT"}, got)
}

func TestNormalizeSymbols_EmptyOrBlank(t *testing.T) {
	for _, in := range [][]string{nil, {}, {"", "  ", "\t"}} {
		_, err := NormalizeSymbols(in)
		require.ErrorIs(t, err, ErrInput, "input %q", in)
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("TimeSeries")
	require.NoError(t, err)
	require.Equal(t, ModeTimeSeries, m)

	m, err = ParseMode(" quote ")
	require.NoError(t, err)
	require.Equal(t, ModeQuote, m)
	require.Equal(t, "quote", m.String())

	_, err = ParseMode("crypto")
	require.ErrorIs(t, err, ErrInput)
}

func TestBarCompare_SymbolThenTime(t *testing.T) {
	t1 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	t2 := t1.AddDate(0, 0, 1)

	require.Negative(t, Bar{Symbol: "AAPL", Timestamp: t2}.Compare(Bar{Symbol: "MSFT", Timestamp: t1}))
	require.Negative(t, Bar{Symbol: "AAPL", Timestamp: t1}.Compare(Bar{Symbol: "AAPL", Timestamp: t2}))
	require.Zero(t, Bar{Symbol: "AAPL", Timestamp: t1}.Compare(Bar{Symbol: "AAPL", Timestamp: t1}))
}

func TestQuoteCompare_MissingTimeSortsFirst(t *testing.T) {
	known := Quote{Symbol: "IBM", MarketTime: time.Unix(1700000000, 0).UTC()}
	missing := Quote{Symbol: "IBM"}
	require.Positive(t, known.Compare(missing))
}

func TestPayloadShapeError(t *testing.T) {
	payload := []byte("{\n  \"Information\": \"rate limit\"\n}")
	err := NewPayloadShapeError("IBM", "2024-01-02", payload, errors.New("bad open"))

	require.ErrorIs(t, err, ErrPayloadShape)
	msg := err.Error()
	require.Contains(t, msg, "IBM")
	require.Contains(t, msg, "2024-01-02")
	require.Contains(t, msg, "bad open")
	require.Contains(t, msg, `{ "Information": "rate limit" }`)
}

func TestSnippet_Truncates(t *testing.T) {
	s := Snippet([]byte(strings.Repeat("a", 2000)))
	require.Len(t, s, snippetLen+len("..."))
}
