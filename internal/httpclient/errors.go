package httpclient

import (
	"errors"
	"fmt"
)

// ErrNonSuccessStatus is the cause recorded when every attempt got a non-2xx
// response and no transport error occurred.
var ErrNonSuccessStatus = errors.New("non-success status")

// InvalidRequestError reports a malformed request. It is raised before any
// network activity and is never retried.
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return "invalid request: " + e.Reason
}

// UpstreamError is returned once the retry budget is spent, or when the
// upstream rejects the request with a client error.
type UpstreamError struct {
	Venue    string
	Endpoint string
	Attempts int
	Status   int // last HTTP status seen; 0 if none
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s failed after %d attempts (last status %d): %v",
			e.Venue, e.Endpoint, e.Attempts, e.Status, e.Err)
	}
	return fmt.Sprintf("%s %s failed after %d attempts: %v", e.Venue, e.Endpoint, e.Attempts, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
