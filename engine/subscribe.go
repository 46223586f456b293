package engine

import (
	"github.com/abhissng/synapse/adapters/log"
	"github.com/abhissng/synapse/utils/constant"
	"github.com/abhissng/synapse/utils/helpers"
)

// SubEntry is one registration in a Subscriptions set. Exactly one of
// Handler and Stream is set.
type SubEntry struct {
	Subject string
	Handler Handler
	Stream  StreamHandler
	Options []HandlerOption
}

// Subscriptions is a versioned list of handler registrations. Build it with
// NewSubscriptions, Handle and Stream, then pass it to Endpoint.RegisterAll.
type Subscriptions struct {
	version  string
	defaults []HandlerOption
	entries  []SubEntry
}

// SubscriptionsOption configures the whole subscription set.
type SubscriptionsOption func(s *Subscriptions)

// WithDefaultHandlerOptions applies opts to every entry before its own options.
func WithDefaultHandlerOptions(opts ...HandlerOption) SubscriptionsOption {
	return func(s *Subscriptions) { s.defaults = append(s.defaults, opts...) }
}

// NewSubscriptions starts a new subscription set. Version is optional (e.g.
// "v1") and is prefixed to every subject.
func NewSubscriptions(version string, options ...SubscriptionsOption) *Subscriptions {
	s := &Subscriptions{version: version, entries: make([]SubEntry, 0)}
	for _, apply := range options {
		apply(s)
	}
	return s
}

// Handle adds a request handler and returns the same Subscriptions for chaining.
func (s *Subscriptions) Handle(subject string, h Handler, options ...HandlerOption) *Subscriptions {
	s.entries = append(s.entries, SubEntry{Subject: s.subject(subject), Handler: h, Options: options})
	return s
}

// Stream adds a stream handler and returns the same Subscriptions for chaining.
func (s *Subscriptions) Stream(subject string, h StreamHandler, options ...HandlerOption) *Subscriptions {
	s.entries = append(s.entries, SubEntry{Subject: s.subject(subject), Stream: h, Options: options})
	return s
}

// Subjects lists the full subjects in registration order.
func (s *Subscriptions) Subjects() []string {
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.Subject)
	}
	return out
}

func (s *Subscriptions) subject(name string) string {
	return helpers.JoinSubject(s.version, name)
}

// RegisterAll registers every entry of subs. It stops at the first failure;
// entries registered before it stay registered until Close.
func (e *Endpoint) RegisterAll(subs *Subscriptions) error {
	for _, entry := range subs.entries {
		opts := append(append([]HandlerOption{}, subs.defaults...), entry.Options...)

		var err error
		if entry.Stream != nil {
			err = e.RegisterStreamHandler(entry.Subject, entry.Stream, opts...)
		} else {
			err = e.RegisterHandler(entry.Subject, entry.Handler, opts...)
		}
		if err != nil {
			e.log.Error(constant.StartServiceFailed, log.String("subscriber", entry.Subject), log.Err(err))
			return err
		}
		e.log.Info(constant.StartServiceSuccessful, log.String("subscriber", entry.Subject))
	}
	return nil
}
