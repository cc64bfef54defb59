package data

import (
	"errors"
	"fmt"
)

// ErrDataFetch matches every *FetchError via errors.Is.
var ErrDataFetch = errors.New("data fetch failed")

// FetchError represents a failed remote price fetch: transport, HTTP status or decode.
type FetchError struct {
	Provider   string
	StatusCode int    // 0 when no response was received
	Code       string // e.g. "HTTP_ERROR", "RATE_LIMIT_EXCEEDED", "DECODE_ERROR"
	Message    string
	RetryAfter string // for rate limit errors
	Err        error
}

func (e *FetchError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Provider != "" {
		return e.Provider + ": " + msg
	}
	return msg
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrDataFetch }
