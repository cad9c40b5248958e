package httpx

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// maxErrorBody caps how much of a failed response ends up in an error string.
const maxErrorBody = 2 << 10

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Status     string
	// URL is the request URL with credentials redacted.
	URL  string
	Body []byte
}

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Status     string
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("GET %s -> %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("GET %s -> %d: %s", e.URL, e.StatusCode, e.Body)
}

// RaiseOnError returns a *StatusError unless the status is 2xx.
func (r *Response) RaiseOnError() error {
	if r.StatusCode >= 200 && r.StatusCode < 300 {
		return nil
	}
	body := r.Body
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return &StatusError{
		StatusCode: r.StatusCode,
		Status:     r.Status,
		URL:        r.URL,
		Body:       string(bytes.TrimSpace(body)),
	}
}

// JSON decodes the body into v. Numbers are kept as json.Number when v is
// an interface or map so that provider number text survives untouched.
func (r *Response) JSON(v any) error {
	dec := json.NewDecoder(bytes.NewReader(r.Body))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
