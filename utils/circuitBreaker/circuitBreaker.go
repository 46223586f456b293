package circuitBreaker

import (
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

// CircuitBreakerOption is a functional option for configuring the circuit breaker.
type CircuitBreakerOption func(*gobreaker.Settings)

// WithName sets the name of the circuit breaker.
func WithName(name string) CircuitBreakerOption {
	return func(s *gobreaker.Settings) {
		s.Name = name
	}
}

// WithTimeout sets how long the breaker stays open before probing again.
func WithTimeout(timeout time.Duration) CircuitBreakerOption {
	return func(s *gobreaker.Settings) {
		s.Timeout = timeout
	}
}

// WithMaxRequests sets the number of probes allowed while half-open.
func WithMaxRequests(maxRequests uint32) CircuitBreakerOption {
	return func(s *gobreaker.Settings) {
		s.MaxRequests = maxRequests
	}
}

// WithInterval sets the cyclic period after which closed-state counts reset.
func WithInterval(interval time.Duration) CircuitBreakerOption {
	return func(s *gobreaker.Settings) {
		s.Interval = interval
	}
}

// WithReadyToTrip sets the ReadyToTrip function for the circuit breaker.
func WithReadyToTrip(readyToTrip func(gobreaker.Counts) bool) CircuitBreakerOption {
	return func(s *gobreaker.Settings) {
		s.ReadyToTrip = readyToTrip
	}
}

// WithOnStateChange registers a callback fired on every state transition.
func WithOnStateChange(fn func(name string, from, to gobreaker.State)) CircuitBreakerOption {
	return func(s *gobreaker.Settings) {
		s.OnStateChange = fn
	}
}

// WithIsSuccessful decides which errors count as failures.
func WithIsSuccessful(fn func(err error) bool) CircuitBreakerOption {
	return func(s *gobreaker.Settings) {
		s.IsSuccessful = fn
	}
}

// NewCircuitBreaker creates a new circuit breaker with the given options.
func NewCircuitBreaker(options ...CircuitBreakerOption) *gobreaker.CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        DefaultCircuitBreakerName,
		Timeout:     DefaultBreakerTimeout,
		MaxRequests: DefaultBreakerMaxRequests,
		Interval:    DefaultBreakerInterval,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > ((DefaultBreakerMaxRequests / 2) + 1)
		},
	}

	for _, option := range options {
		option(&settings)
	}

	return gobreaker.NewCircuitBreaker(settings)
}

// Do runs fn through cb. A nil breaker runs fn directly.
func Do(cb *gobreaker.CircuitBreaker, fn func() error) error {
	if cb == nil {
		return fn()
	}
	_, err := cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	return err
}

// IsOpen reports whether err was produced by a breaker refusing the call.
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
