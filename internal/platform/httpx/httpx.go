package httpx

import (
	"errors"
	"fmt"
	"io"
)

type HTTPStatusCoder interface {
	HTTPStatusCode() int
}

// StatusError is returned by collaborator clients for non-2xx responses.
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s http %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s http %d: %s", e.Service, e.StatusCode, e.Body)
}

func (e *StatusError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func IsSuccess(code int) bool {
	return code >= 200 && code <= 299
}

// StatusCode reports the upstream status carried by err, or 0.
func StatusCode(err error) int {
	var sc HTTPStatusCoder
	if errors.As(err, &sc) {
		return sc.HTTPStatusCode()
	}
	return 0
}

// ReadLimited reads at most max bytes; a body larger than max is an error.
func ReadLimited(r io.Reader, max int64) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > max {
		return nil, fmt.Errorf("response body exceeds %d bytes", max)
	}
	return raw, nil
}

// Truncate shortens upstream error bodies before they reach logs or error strings.
func Truncate(body []byte, n int) string {
	if len(body) <= n {
		return string(body)
	}
	return string(body[:n]) + "..."
}

var _ HTTPStatusCoder = (*StatusError)(nil)
