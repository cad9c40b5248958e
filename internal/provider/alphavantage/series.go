package alphavantage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"stockcsv/internal/provider"
)

// seriesPrefixes are the top-level keys the series is nested under, e.g.
// "Time Series (Daily)", "Time Series (5min)", "Monthly Adjusted Time Series".
var seriesPrefixes = []string{
	"Time Series",
	"Monthly Adjusted Time Series",
	"Monthly Time Series",
	"Weekly Adjusted Time Series",
	"Weekly Time Series",
}

// noticeKeys carry the provider's explanation when it answers 200 without data.
var noticeKeys = []string{"Error Message", "Information", "Note"}

const (
	keyOpen  = "1. open"
	keyHigh  = "2. high"
	keyLow   = "3. low"
	keyClose = "4. close"
	// Adjusted series put volume at 6 (5 is the adjusted close); the rest at 5.
	keyAdjustedVolume = "6. volume"
	keyVolume         = "5. volume"
)

var timestampLayouts = []string{
	time.DateOnly,
	time.DateTime,
	"2006-01-02T15:04:05",
}

type member struct {
	key string
	raw json.RawMessage
}

// ExtractSeries locates the time series in an Alpha Vantage payload and
// normalizes every entry into a Bar for symbol. Any malformed entry fails the
// whole payload with a *provider.PayloadShapeError.
func ExtractSeries(symbol string, body []byte) ([]provider.Bar, error) {
	members, err := objectMembers(body)
	if err != nil {
		return nil, provider.NewPayloadShapeError(symbol, "", body, fmt.Errorf("decode response: %w", err))
	}

	idx := slices.IndexFunc(members, func(m member) bool { return isSeriesKey(m.key) })
	if idx < 0 {
		return nil, provider.NewPayloadShapeError(symbol, "", body, missingSeriesError(members))
	}
	seriesKey, seriesRaw := members[idx].key, members[idx].raw

	var series map[string]json.RawMessage
	if err := json.Unmarshal(seriesRaw, &series); err != nil || series == nil {
		return nil, provider.NewPayloadShapeError(symbol, "", seriesRaw,
			fmt.Errorf("time series %q is not a mapping", seriesKey))
	}

	// Sorted so the same bad payload always reports the same entry.
	timestamps := slices.Sorted(maps.Keys(series))
	bars := make([]provider.Bar, 0, len(series))
	for _, ts := range timestamps {
		bar, err := parseEntry(symbol, ts, series[ts])
		if err != nil {
			return nil, err
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func parseEntry(symbol, ts string, raw json.RawMessage) (provider.Bar, error) {
	fail := func(err error) (provider.Bar, error) {
		return provider.Bar{}, provider.NewPayloadShapeError(symbol, ts, raw, err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return fail(errors.New("time series entry is not a mapping"))
	}

	at, err := parseTimestamp(ts)
	if err != nil {
		return fail(err)
	}

	bar := provider.Bar{Symbol: symbol, Timestamp: at}
	for _, f := range []struct {
		key string
		dst *float64
	}{
		{keyOpen, &bar.Open},
		{keyHigh, &bar.High},
		{keyLow, &bar.Low},
		{keyClose, &bar.Close},
	} {
		fv, ok := fields[f.key]
		if !ok {
			return fail(fmt.Errorf("missing field %q", f.key))
		}
		v, err := parseNumber(fv)
		if err != nil {
			return fail(fmt.Errorf("field %q: %w", f.key, err))
		}
		*f.dst = v
	}

	bar.Volume, err = parseVolume(fields)
	if err != nil {
		return fail(err)
	}
	return bar, nil
}

// parseVolume prefers the adjusted-series key, falls back to the plain one
// and defaults to 0 when neither is present.
func parseVolume(fields map[string]json.RawMessage) (int64, error) {
	key := keyAdjustedVolume
	raw, ok := fields[key]
	if !ok {
		key = keyVolume
		raw, ok = fields[key]
	}
	if !ok {
		return 0, nil
	}
	v, err := parseNumber(raw)
	if err != nil {
		return 0, fmt.Errorf("field %q: %w", key, err)
	}
	v = math.Trunc(v)
	if v < 0 || v >= math.MaxInt64 {
		return 0, fmt.Errorf("field %q: volume %v out of range", key, v)
	}
	return int64(v), nil
}

// parseNumber accepts a JSON number or a string holding one. The provider
// sends strings; numbers show up in hand-built and proxied payloads.
func parseNumber(raw json.RawMessage) (float64, error) {
	text := string(bytes.TrimSpace(raw))
	if strings.HasPrefix(text, `"`) {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, err
		}
		text = strings.TrimSpace(text)
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %s", raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %s", raw)
	}
	return v, nil
}

// parseTimestamp reads the series keys, which carry no offset, as UTC wall
// time. RFC 3339 keys are converted to UTC.
func parseTimestamp(ts string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, ts, time.UTC); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid ISO-8601 timestamp %q", ts)
}

func isSeriesKey(key string) bool {
	for _, prefix := range seriesPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

func missingSeriesError(members []member) error {
	for _, m := range members {
		if !slices.Contains(noticeKeys, m.key) {
			continue
		}
		var msg string
		if err := json.Unmarshal(m.raw, &msg); err == nil && msg != "" {
			return fmt.Errorf("no time series in response: %s: %s", m.key, msg)
		}
	}
	return errors.New("no time series in response")
}

// objectMembers returns the members of the top-level JSON object in document
// order, so that "first matching key" is well defined.
func objectMembers(body []byte) ([]member, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("response is not a JSON object")
	}
	var members []member
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		members = append(members, member{key: key, raw: raw})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return members, nil
}
