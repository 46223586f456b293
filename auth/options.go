package auth

import (
	"time"

	"github.com/abhissng/synapse/adapters/log"
)

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithLogger sets the logger
func WithLogger(logger *log.Log) Option {
	return func(a *Authenticator) {
		a.log = logger
	}
}

// WithTokenTTL sets how long issued tokens stay valid.
func WithTokenTTL(ttl time.Duration) Option {
	return func(a *Authenticator) {
		a.ttl = ttl
	}
}

// WithLeeway sets the tolerated clock skew when checking expiry.
func WithLeeway(leeway time.Duration) Option {
	return func(a *Authenticator) {
		a.leeway = leeway
	}
}

// WithPrivateKeyEnv names the environment variable holding the PEM private
// key used to provision the store on first boot.
func WithPrivateKeyEnv(name string) Option {
	return func(a *Authenticator) {
		a.privateKeyEnv = name
	}
}

// WithRequireToken makes Verify reject messages that carry no token.
func WithRequireToken(require bool) Option {
	return func(a *Authenticator) {
		a.requireToken = require
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) {
		a.now = now
	}
}
