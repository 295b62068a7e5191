package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"time"

	apperrors "github.com/Taichi-iskw/pod-digest/internal/errors"
)

// TimeoutError reports an external call that did not finish in time
type TimeoutError struct {
	Operation string
	Timeout   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Operation, formatTimeout(e.Timeout))
}

// ErrorCode implements apperrors.Coder
func (e *TimeoutError) ErrorCode() string {
	return apperrors.CodeTimeout
}

// WithTimeout runs fn and stops waiting for it once d has elapsed.
// On expiry fn's context is cancelled and its eventual result is discarded.
// Callers whose work must not be interrupted should not rely on the ctx handed to fn.
// A non-positive d waits indefinitely.
func WithTimeout[T any](ctx context.Context, d time.Duration, operation string, fn func(context.Context) (T, error)) (T, error) {
	if d <= 0 {
		return fn(ctx)
	}

	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := fn(callCtx)
		done <- outcome{value: v, err: err}
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()

	var zero T
	select {
	case o := <-done:
		return o.value, o.err
	case <-timer.C:
		return zero, &TimeoutError{Operation: operation, Timeout: d}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// formatTimeout renders whole seconds as "60s" and anything finer with time.Duration's notation
func formatTimeout(d time.Duration) string {
	if d%time.Second == 0 {
		return strconv.FormatInt(int64(d/time.Second), 10) + "s"
	}
	return d.String()
}
