package nats

import (
	"time"

	"github.com/abhissng/synapse/adapters/log"
	"github.com/abhissng/synapse/utils/circuitBreaker"
	"github.com/nats-io/nats.go"
	"github.com/sony/gobreaker"
)

// Option defines a functional option for configuring NATSManager.
type Option func(*NATSManager)

// WithLogger sets the logger  for the manager.
func WithLogger(log *log.Log) Option {
	return func(w *NATSManager) {
		w.logger = log
	}
}

// WithCircuitBreaker guards publishing with a circuit breaker.
func WithCircuitBreaker(options ...circuitBreaker.CircuitBreakerOption) Option {
	return func(w *NATSManager) {
		options = append([]circuitBreaker.CircuitBreakerOption{
			circuitBreaker.WithName(BreakerName),
			circuitBreaker.WithOnStateChange(func(name string, from, to gobreaker.State) {
				w.logger.Warn("Circuit breaker state changed",
					log.String("breaker", name), log.String("from", from.String()), log.String("to", to.String()))
			}),
		}, options...)
		w.breaker = circuitBreaker.NewCircuitBreaker(options...)
	}
}

// WithConnectionName sets the client name shown by the server.
func WithConnectionName(name string) Option {
	return func(w *NATSManager) {
		w.natsOpts = append(w.natsOpts, nats.Name(name))
	}
}

// WithReconnect tunes reconnection. maxReconnects < 0 retries forever.
func WithReconnect(maxReconnects int, wait time.Duration) Option {
	return func(w *NATSManager) {
		w.natsOpts = append(w.natsOpts, nats.MaxReconnects(maxReconnects), nats.ReconnectWait(wait))
	}
}

// WithCredentials authenticates with a NATS credentials file.
func WithCredentials(file string) Option {
	return func(w *NATSManager) {
		if file != "" {
			w.natsOpts = append(w.natsOpts, nats.UserCredentials(file))
		}
	}
}

// WithToken authenticates with a bearer token.
func WithToken(token string) Option {
	return func(w *NATSManager) {
		if token != "" {
			w.natsOpts = append(w.natsOpts, nats.Token(token))
		}
	}
}

// WithMonitorInterval sets how often subscriptions are checked for validity.
// Zero disables the monitor.
func WithMonitorInterval(interval time.Duration) Option {
	return func(w *NATSManager) {
		w.monitorInterval = interval
	}
}

// WithNATSOptions passes raw client options through.
func WithNATSOptions(opts ...nats.Option) Option {
	return func(w *NATSManager) {
		w.natsOpts = append(w.natsOpts, opts...)
	}
}
