package httpclient

import "errors"

// Transport errors.
// Callers can match them with errors.Is; the wrapped cause is kept.
var (
	// ErrRequestFailed is returned when the request could not be completed
	// (DNS, connection refused, TLS, timeout, cancelled context).
	ErrRequestFailed = errors.New("request failed")

	// ErrBodyTooLarge is returned when a response body exceeds the
	// configured maximum size.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrReadBody is returned when the response body could not be read.
	ErrReadBody = errors.New("failed to read response body")
)
