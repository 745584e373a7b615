package circuitbreaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_BasicFunctionality(t *testing.T) {
	cb := New(Thresholds{FailureThreshold: 3})
	assert.Equal(t, StateClosed, cb.GetState(), "Circuit breaker should start closed")

	assert.NoError(t, cb.Allow())
	cb.RecordFailure("timeout")
	cb.RecordFailure("timeout")
	assert.Equal(t, StateClosed, cb.GetState(), "Two failures should not trip a threshold of three")

	cb.RecordSuccess()
	cb.RecordFailure("timeout")
	cb.RecordFailure("timeout")
	assert.Equal(t, StateClosed, cb.GetState(), "A success should reset the failure count")
}

func TestCircuitBreaker_Trips(t *testing.T) {
	cb := New(Thresholds{FailureThreshold: 2})

	cb.RecordFailure("status 500")
	cb.RecordFailure("status 502")
	assert.Equal(t, StateOpen, cb.GetState(), "Circuit should be open after trip")

	err := cb.Allow()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOpen)
	assert.Contains(t, err.Error(), "status 502", "Error should mention the last failure")
}

func TestCircuitBreaker_Recovery(t *testing.T) {
	cb := New(Thresholds{FailureThreshold: 1}).
		WithResetDelay(50 * time.Millisecond).
		WithSuccessThreshold(2)

	cb.RecordFailure("connection refused")
	require.Equal(t, StateOpen, cb.GetState())

	time.Sleep(60 * time.Millisecond)

	require.NoError(t, cb.Allow(), "Allow should probe after the reset delay")
	assert.Equal(t, StateHalfOpen, cb.GetState())

	cb.RecordSuccess()
	assert.Equal(t, StateHalfOpen, cb.GetState(), "One success is below the threshold of two")
	cb.RecordSuccess()
	assert.Equal(t, StateClosed, cb.GetState(), "Circuit should close after enough successes")
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := New(Thresholds{FailureThreshold: 5}).WithResetDelay(10 * time.Millisecond)
	for i := 0; i < 5; i++ {
		cb.RecordFailure("down")
	}
	require.Equal(t, StateOpen, cb.GetState())

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, cb.Allow())
	cb.RecordFailure("still down")
	assert.Equal(t, StateOpen, cb.GetState(), "A failed probe should re-open immediately")
	assert.ErrorIs(t, cb.Allow(), ErrOpen)
}

func TestCircuitBreaker_TripCallback(t *testing.T) {
	tripped := make(chan string, 1)
	cb := New(Thresholds{FailureThreshold: 1}).WithTripCallback(func(reason string) {
		tripped <- reason
	})

	cb.RecordFailure("webhook 503")

	select {
	case reason := <-tripped:
		assert.Contains(t, reason, "webhook 503")
	case <-time.After(time.Second):
		t.Fatal("trip callback not invoked")
	}
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb := New(Thresholds{FailureThreshold: 1})
	cb.RecordFailure("down")
	require.Equal(t, StateOpen, cb.GetState())

	cb.Reset()
	assert.Equal(t, StateClosed, cb.GetState())
	assert.NoError(t, cb.Allow())

	status := cb.Status()
	assert.Equal(t, 0, status.ConsecutiveFailures)
	assert.Equal(t, "down", status.LastFailure)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())

	text, err := StateHalfOpen.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "half-open", string(text))
}
