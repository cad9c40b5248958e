package provider

import (
	"errors"
	"fmt"
	"strings"
)

// Standard errors. Providers wrap the underlying cause with one of these so
// callers can branch with errors.Is.
var (
	ErrInput        = errors.New("invalid input")
	ErrTransport    = errors.New("transport failure")
	ErrProvider     = errors.New("provider returned an error status")
	ErrPayloadShape = errors.New("unexpected payload shape")
)

// snippetLen caps how much raw payload is carried in a PayloadShapeError.
const snippetLen = 512

// PayloadShapeError reports a response that could not be normalized.
// Timestamp is empty when the failure is not tied to a single series entry.
type PayloadShapeError struct {
	Symbol    string
	Timestamp string
	Snippet   string
	Err       error
}

// NewPayloadShapeError builds a PayloadShapeError carrying a snippet of payload.
func NewPayloadShapeError(symbol, timestamp string, payload []byte, err error) *PayloadShapeError {
	return &PayloadShapeError{
		Symbol:    symbol,
		Timestamp: timestamp,
		Snippet:   Snippet(payload),
		Err:       err,
	}
}

func (e *PayloadShapeError) Error() string {
	var sb strings.Builder
	sb.WriteString("payload for ")
	sb.WriteString(e.Symbol)
	if e.Timestamp != "" {
		sb.WriteString(" at ")
		sb.WriteString(e.Timestamp)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	if e.Snippet != "" {
		fmt.Fprintf(&sb, " (payload: %s)", e.Snippet)
	}
	return sb.String()
}

func (e *PayloadShapeError) Unwrap() error { return e.Err }

// Is makes every PayloadShapeError match ErrPayloadShape.
func (e *PayloadShapeError) Is(target error) bool { return target == ErrPayloadShape }

// Snippet returns payload collapsed to one line and truncated for error messages.
func Snippet(payload []byte) string {
	s := strings.Join(strings.Fields(string(payload)), " ")
	if len(s) > snippetLen {
		return s[:snippetLen] + "..."
	}
	return s
}
