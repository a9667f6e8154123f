// Package circuitbreaker short-circuits calls to an upstream that keeps failing
// so a burst of edits does not spend the Sheets API quota on a dead backend.
package circuitbreaker

import (
	"errors"
	"fmt"
	"time"

	"github.com/botivate/sheetsync/pkg/logger"
	"github.com/botivate/sheetsync/pkg/metrics"
	"github.com/botivate/sheetsync/pkg/retry"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Breaker guards calls to one named upstream
type Breaker struct {
	upstream string
	cb       *gobreaker.CircuitBreaker
}

// New returns a breaker that opens once at least 3 calls in a minute have
// mostly failed, and lets a trial call through after cooldown. Failures the
// upstream reports as the caller's fault (bad credentials, unknown
// spreadsheet) do not count against it.
func New(upstream string, cooldown time.Duration) *Breaker {
	metrics.UpstreamCircuitOpen.WithLabelValues(upstream).Set(0)

	return &Breaker{
		upstream: upstream,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        upstream,
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     cooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.Requests >= 3 && float64(counts.TotalFailures) >= 0.6*float64(counts.Requests)
			},
			IsSuccessful: func(err error) bool {
				return err == nil || !retry.Transient(err)
			},
			OnStateChange: onStateChange,
		}),
	}
}

func onStateChange(upstream string, from, to gobreaker.State) {
	open := 0.0
	if to == gobreaker.StateOpen {
		open = 1
	}
	metrics.UpstreamCircuitOpen.WithLabelValues(upstream).Set(open)

	logger.Warn("Upstream circuit changed state",
		zap.String("upstream", upstream),
		zap.String("from", from.String()),
		zap.String("to", to.String()))
}

// Open reports whether calls are currently being short-circuited
func (b *Breaker) Open() bool {
	return b.cb.State() == gobreaker.StateOpen
}

// Execute runs fn unless the circuit is open. A short-circuited call returns
// an error wrapping gobreaker.ErrOpenState or gobreaker.ErrTooManyRequests.
func Execute[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var result T

	_, err := b.cb.Execute(func() (any, error) {
		var err error
		result, err = fn()
		return nil, err
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%s unavailable: %w", b.upstream, err)
		}
		return zero, err
	}

	return result, nil
}
