package common

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryConfig controls retry behavior
type RetryConfig struct {
	MaxRetries  int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64

	// OnRetry, when set, is called before each wait with the 1-based retry number
	OnRetry func(attempt int, wait time.Duration, err error)
}

// DefaultRetryConfig is suitable for most HTTP calls
var DefaultRetryConfig = RetryConfig{
	MaxRetries:  3,
	InitialWait: 500 * time.Millisecond,
	MaxWait:     10 * time.Second,
	Multiplier:  2.0,
}

// RetryDo retries fn up to MaxRetries times with exponential backoff.
// Only retryable errors are retried; context cancellation returns immediately.
func RetryDo[T any](ctx context.Context, rc RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	operation := func() (T, error) {
		result, err := fn()
		if err != nil && !IsRetryable(err) {
			return zero, backoff.Permanent(err)
		}
		return result, err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = rc.InitialWait
	bo.MaxInterval = rc.MaxWait
	bo.Multiplier = rc.Multiplier
	bo.RandomizationFactor = 0

	attempt := 0
	opts := []backoff.RetryOption{
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(rc.MaxRetries) + 1),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, wait time.Duration) {
			attempt++
			if rc.OnRetry != nil {
				rc.OnRetry(attempt, wait, err)
			}
		}),
	}

	result, err := backoff.Retry(ctx, operation, opts...)
	if err != nil {
		// The last try returns its error as is, permanent wrapper included
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			err = permanent.Unwrap()
		}
		return zero, err
	}
	return result, nil
}

// RetryHTTP executes an HTTP request function with retry logic on 429 and 5xx responses
func RetryHTTP(ctx context.Context, rc RetryConfig, fn func() (*http.Response, error)) (*http.Response, error) {
	return RetryDo(ctx, rc, func() (*http.Response, error) {
		resp, err := fn()
		if err != nil {
			return nil, err
		}
		if isRetryableStatus(resp.StatusCode) {
			resp.Body.Close()
			return nil, &HTTPStatusError{StatusCode: resp.StatusCode}
		}
		return resp, nil
	})
}

// HTTPStatusError reports a retryable HTTP status code
type HTTPStatusError struct {
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return "http status " + http.StatusText(e.StatusCode)
}

// IsRetryable returns true for transient errors worth retrying
func IsRetryable(err error) bool {
	var httpErr *HTTPStatusError
	if errors.As(err, &httpErr) {
		return isRetryableStatus(httpErr.StatusCode)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	// net.Error includes OpError, so check after OpError
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
