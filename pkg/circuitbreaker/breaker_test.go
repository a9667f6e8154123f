package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/botivate/sheetsync/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
)

func TestExecute_PassesResultThrough(t *testing.T) {
	b := New("test-pass", time.Minute)

	got, err := Execute(b, func() ([]string, error) {
		return []string{"Checklist"}, nil
	})

	assert.NoError(t, err)
	assert.Equal(t, []string{"Checklist"}, got)
}

func TestExecute_OpensAfterRepeatedOutages(t *testing.T) {
	b := New("test-outage", time.Minute)
	boom := errors.New("error status: UNAVAILABLE, code:503, message: backend")

	for i := 0; i < 3; i++ {
		_, err := Execute(b, func() (int, error) { return 0, boom })
		assert.ErrorIs(t, err, boom)
	}

	assert.True(t, b.Open())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.UpstreamCircuitOpen.WithLabelValues("test-outage")))

	called := false
	_, err := Execute(b, func() (int, error) { called = true; return 1, nil })
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Contains(t, err.Error(), "test-outage unavailable")
	assert.False(t, called)
}

func TestExecute_CallerFaultsDoNotTrip(t *testing.T) {
	b := New("test-denied", time.Minute)
	denied := errors.New("error status: PERMISSION_DENIED, code:403, message: denied")

	for i := 0; i < 5; i++ {
		_, err := Execute(b, func() (int, error) { return 0, denied })
		assert.ErrorIs(t, err, denied)
	}

	assert.False(t, b.Open())
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.UpstreamCircuitOpen.WithLabelValues("test-denied")))
}

func TestExecute_ClosesAfterCooldown(t *testing.T) {
	b := New("test-cooldown", 10*time.Millisecond)
	boom := errors.New("connection refused")

	for i := 0; i < 3; i++ {
		_, _ = Execute(b, func() (int, error) { return 0, boom })
	}
	assert.True(t, b.Open())

	time.Sleep(20 * time.Millisecond)

	got, err := Execute(b, func() (int, error) { return 7, nil })
	assert.NoError(t, err)
	assert.Equal(t, 7, got)
	assert.False(t, b.Open())
}
