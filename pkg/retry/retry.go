// Package retry repeats calls to the Sheets API and object storage while
// their failures look transient.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/botivate/sheetsync/pkg/logger"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Policy controls how often an upstream call is attempted
type Policy struct {
	Attempts  int // total calls, including the first
	BaseDelay time.Duration
	MaxDelay  time.Duration
	// Retryable decides whether a failed call is worth repeating. Nil means Transient.
	Retryable func(error) bool
}

// SheetsAPI is sized for the per-minute read quota of the Sheets API
func SheetsAPI() Policy {
	return Policy{Attempts: 4, BaseDelay: 500 * time.Millisecond, MaxDelay: 10 * time.Second}
}

// ObjectStorage is used for snapshot uploads
func ObjectStorage() Policy {
	return Policy{Attempts: 3, BaseDelay: 200 * time.Millisecond, MaxDelay: 3 * time.Second}
}

// Do calls fn until it succeeds, the policy gives up or ctx ends
func Do(ctx context.Context, p Policy, operation string, fn func() error) error {
	_, err := DoWithResult(ctx, p, operation, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// DoWithResult is Do for calls that return a value
func DoWithResult[T any](ctx context.Context, p Policy, operation string, fn func() (T, error)) (T, error) {
	var zero T
	retryable := p.Retryable
	if retryable == nil {
		retryable = Transient
	}
	attempts := max(p.Attempts, 1)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		res, err := fn()
		if err == nil {
			if attempt > 1 {
				logger.Info("Upstream call recovered",
					zap.String("operation", operation),
					zap.Int("attempt", attempt))
			}
			return res, nil
		}
		lastErr = err

		if !retryable(err) {
			return zero, err
		}
		if attempt == attempts {
			break
		}

		delay := p.backoff(attempt)
		logger.Warn("Upstream call failed, retrying",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Int("attempts", attempts),
			zap.Duration("delay", delay),
			zap.Error(err))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	logger.Error("Upstream call gave up",
		zap.String("operation", operation),
		zap.Int("attempts", attempts),
		zap.Error(lastErr))

	return zero, fmt.Errorf("gave up after %d attempts: %w", attempts, lastErr)
}

// backoff doubles BaseDelay per attempt up to MaxDelay and waits a random
// amount between half and all of it.
func (p Policy) backoff(attempt int) time.Duration {
	d := p.BaseDelay << (attempt - 1)
	if d <= 0 || d > p.MaxDelay {
		d = p.MaxDelay
	}
	if d <= 1 {
		return d
	}
	half := d / 2
	//nolint:gosec // G404: jitter does not need crypto/rand
	return half + rand.N(d-half)
}

// statusCoder is implemented by the AWS SDK's HTTP response errors
type statusCoder interface {
	HTTPStatusCode() int
}

// sheetsAPIStatus matches the error text the Sheets client builds from an API error body
var sheetsAPIStatus = regexp.MustCompile(`error status: \S*, code:(\d{3})`)

// HTTPStatus extracts the upstream HTTP status carried by err, if any
func HTTPStatus(err error) (int, bool) {
	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.HTTPStatusCode(), true
	}
	if m := sheetsAPIStatus.FindStringSubmatch(err.Error()); m != nil {
		code, _ := strconv.Atoi(m[1])
		return code, true
	}
	return 0, false
}

// Transient reports whether repeating the failed call could succeed. The
// caller giving up and an open circuit are final. Upstream replies are
// retried for 408, 429 and 5xx only; a rejected credential or a missing
// spreadsheet will not fix itself. Errors without a status (network
// failures) are retried.
func Transient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}

	status, ok := HTTPStatus(err)
	if !ok {
		return true
	}
	return status == http.StatusRequestTimeout || status == http.StatusTooManyRequests || status >= 500
}
