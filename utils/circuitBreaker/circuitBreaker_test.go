package circuitBreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoTripsAfterConsecutiveFailures(t *testing.T) {
	var transitions []gobreaker.State
	cb := NewCircuitBreaker(
		WithName("test"),
		WithTimeout(time.Minute),
		WithReadyToTrip(func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 2 }),
		WithOnStateChange(func(_ string, _, to gobreaker.State) { transitions = append(transitions, to) }),
	)

	boom := errors.New("boom")
	assert.ErrorIs(t, Do(cb, func() error { return boom }), boom)
	assert.ErrorIs(t, Do(cb, func() error { return boom }), boom)

	called := false
	err := Do(cb, func() error { called = true; return nil })
	require.Error(t, err)
	assert.True(t, IsOpen(err))
	assert.False(t, called)
	assert.Equal(t, []gobreaker.State{gobreaker.StateOpen}, transitions)
}

func TestDoWithoutBreaker(t *testing.T) {
	called := false
	require.NoError(t, Do(nil, func() error { called = true; return nil }))
	assert.True(t, called)
	assert.False(t, IsOpen(errors.New("other")))
}

func TestIsSuccessfulIgnoresErrors(t *testing.T) {
	ignored := errors.New("not a failure")
	cb := NewCircuitBreaker(
		WithReadyToTrip(func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 1 }),
		WithIsSuccessful(func(err error) bool { return err == nil || errors.Is(err, ignored) }),
	)
	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, Do(cb, func() error { return ignored }), ignored)
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}
