package pricefile_test

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"stockcsv/internal/pricefile"
	"stockcsv/internal/provider"
)

func TestFormatDecimal(t *testing.T) {
	t.Parallel()

	cases := map[float64]string{
		0:             "0.0000",
		1:             "1.0000",
		187.15:        "187.1500",
		0.00001:       "0.0000",
		12345678.9:    "12345678.9000",
		1e-7:          "0.0000",
		3.14159265358: "3.1416",
		-2.5:          "-2.5000",
		1e21:          "1000000000000000000000.0000",
	}
	for in, want := range cases {
		require.Equal(t, want, pricefile.FormatDecimal(in), "input %v", in)
	}
}

func TestFormatDecimal_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, v := range []float64{0, 0.1, 99.99995, 123.456789, 187.1523, 4321.00049, 1e6 + 0.12345} {
		got, err := strconv.ParseFloat(pricefile.FormatDecimal(v), 64)
		require.NoError(t, err)
		require.InDelta(t, v, got, 1e-4, "value %v", v)
	}
}

func TestWrite_SortsAndFormatsBars(t *testing.T) {
	t.Parallel()

	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	rows := []provider.Bar{
		{Symbol: "MSFT", Timestamp: day(3), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10},
		{Symbol: "AAPL", Timestamp: day(3), Open: 185.64, High: 186.95, Low: 184.5, Close: 186.19, Volume: 1200},
		{Symbol: "AAPL", Timestamp: day(2), Open: 187.15, High: 188.44, Low: 183.885, Close: 185.64, Volume: 82488674},
	}
	path := filepath.Join(t.TempDir(), "nested", "dir", "prices.csv")

	require.NoError(t, pricefile.Write(path, rows))

	got := readCSV(t, path)
	require.Equal(t, [][]string{
		{"symbol", "timestamp", "open", "high", "low", "close", "volume"},
		{"AAPL", "2024-01-02T00:00:00", "187.1500", "188.4400", "183.8850", "185.6400", "82488674"},
		{"AAPL", "2024-01-03T00:00:00", "185.6400", "186.9500", "184.5000", "186.1900", "1200"},
		{"MSFT", "2024-01-03T00:00:00", "1.0000", "2.0000", "0.5000", "1.5000", "10"},
	}, got)
}

func TestWrite_QuotesKeepEmptyFields(t *testing.T) {
	t.Parallel()

	rows := []provider.Quote{
		{Symbol: "TSLA", Price: "251.05", Currency: "USD", MarketTime: time.Unix(1700000000, 0)},
		{Symbol: "NOPE"},
	}
	path := filepath.Join(t.TempDir(), "quotes.csv")

	require.NoError(t, pricefile.Write(path, rows))

	got := readCSV(t, path)
	require.Equal(t, [][]string{
		{"symbol", "price", "currency", "timestamp"},
		{"NOPE", "", "", ""},
		{"TSLA", "251.05", "USD", "2023-11-14T22:13:20+00:00"},
	}, got)
}

func TestWrite_HeaderOnlyForNoRows(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, pricefile.Write[provider.Bar](path, nil))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "symbol,timestamp,open,high,low,close,volume\n", string(b))
}

func TestWrite_ReplacesExistingFileAndLeavesNoTemp(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	require.NoError(t, pricefile.Write(path, []provider.Quote{{Symbol: "IBM"}}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "out.csv", entries[0].Name())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "symbol,price,currency,timestamp\nIBM,,,\n", string(b))
}

func TestWrite_ParentIsAFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	path := filepath.Join(blocker, "out.csv")

	err := pricefile.Write(path, []provider.Quote{{Symbol: "IBM"}})

	var writeErr *pricefile.WriteError
	require.ErrorAs(t, err, &writeErr)
	require.Equal(t, "mkdir", writeErr.Op)
	require.NoFileExists(t, path)
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}
