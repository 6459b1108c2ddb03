package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// APIError is a non-2xx response from a backend.
type APIError struct {
	Provider string
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.Status, e.Body)
}

// Retryable reports whether the status indicates a transient condition.
func (e *APIError) Retryable() bool {
	switch e.Status {
	case http.StatusTooManyRequests, http.StatusRequestTimeout:
		return true
	default:
		return e.Status >= 500
	}
}

// ErrBadResponseShape marks responses that parsed as JSON but do not
// contain a usable items array. Retrying with identical input will not
// change a structural problem, so these are never retried.
var ErrBadResponseShape = errors.New("unexpected response structure")

// IsRetryable classifies an error from a Chat call. Timeouts, transport
// errors and rate-limit/server statuses are transient; everything else
// (including caller cancellation and shape errors) is not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, ErrBadResponseShape) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return false
}
