// Package pricefile writes price records as CSV.
//
// A file holds rows of exactly one type, sorted with the type's Compare, under
// the type's header. The file is assembled in memory and moved into place with
// a rename, so a failed write never leaves a partial file at the destination.
package pricefile

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Row is a record that knows its own CSV schema and ordering.
type Row[R any] interface {
	// Header returns the column names. It must not depend on the receiver's fields.
	Header() []string
	Fields() []string
	Compare(R) int
}

const (
	// NaiveTimeLayout is ISO-8601 without an offset.
	NaiveTimeLayout = "2006-01-02T15:04:05"
	// ZonedTimeLayout is ISO-8601 with a numeric offset, "+00:00" for UTC.
	ZonedTimeLayout = "2006-01-02T15:04:05-07:00"
)

// FormatDecimal renders v fixed-point with exactly four decimals.
func FormatDecimal(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(4)
}

// FormatTime renders t with layout, or "" for the zero time.
func FormatTime(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(layout)
}

// WriteError reports a failure to create or write the destination.
type WriteError struct {
	Path string
	Op   string
	Err  error
}

func (e *WriteError) Error() string { return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err) }

func (e *WriteError) Unwrap() error { return e.Err }

// Encode sorts rows and renders them, header first. rows is sorted in place.
func Encode[R Row[R]](rows []R) ([]byte, error) {
	slices.SortStableFunc(rows, func(a, b R) int { return a.Compare(b) })

	var zero R
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(zero.Header()); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := w.Write(r.Fields()); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes rows and atomically replaces path with the result, creating
// parent directories as needed.
func Write[R Row[R]](path string, rows []R) error {
	data, err := Encode(rows)
	if err != nil {
		return &WriteError{Path: path, Op: "encode", Err: err}
	}
	return writeAtomic(path, data)
}

func writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &WriteError{Path: dir, Op: "mkdir", Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &WriteError{Path: path, Op: "create", Err: err}
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return &WriteError{Path: tmpName, Op: "write", Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return &WriteError{Path: tmpName, Op: "sync", Err: err}
	}
	if err := tmp.Chmod(0o644); err != nil {
		return &WriteError{Path: tmpName, Op: "chmod", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &WriteError{Path: tmpName, Op: "close", Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		return &WriteError{Path: path, Op: "rename", Err: err}
	}
	return nil
}
