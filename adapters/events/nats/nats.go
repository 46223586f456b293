// Package nats is an events.Transport over a core NATS connection.
package nats

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/abhissng/synapse/adapters/events"
	"github.com/abhissng/synapse/adapters/log"
	"github.com/abhissng/synapse/blame"
	"github.com/abhissng/synapse/utils/circuitBreaker"
	"github.com/abhissng/synapse/utils/constant"
	"github.com/abhissng/synapse/utils/helpers"
	"github.com/nats-io/nats.go"
	"github.com/sony/gobreaker"
)

// NATSManager encapsulates the NATS connection, its subscriptions and an
// optional circuit breaker on the publish path.
type NATSManager struct {
	ctx             context.Context
	cancel          context.CancelFunc
	nc              *nats.Conn
	mu              sync.Mutex
	logger          *log.Log
	breaker         *gobreaker.CircuitBreaker
	natsOpts        []nats.Option
	subjects        map[subscriptionKey]*subscription
	monitorInterval time.Duration
	done            chan struct{}
	closed          bool
}

var _ events.Transport = (*NATSManager)(nil)

type subscriptionKey struct {
	subject string
	queue   string
}

/*
foo.*: Matches subjects like foo.bar, foo.baz, but not foo.bar.baz.
foo.>: Matches subjects like foo.bar, foo.bar.baz, foo.baz.qux, etc.
*/

// NewNATSManager connects to url and returns a ready transport.
func NewNATSManager(url string, options ...Option) (*NATSManager, error) {
	ctx, cancel := context.WithCancel(context.Background())
	manager := &NATSManager{
		ctx:             ctx,
		cancel:          cancel,
		subjects:        make(map[subscriptionKey]*subscription),
		monitorInterval: DefaultMonitorInterval,
		done:            make(chan struct{}),
	}
	for _, opt := range options {
		opt(manager)
	}
	if manager.logger == nil {
		manager.logger = log.NewBasicLogger(helpers.IsProdEnvironment())
	}

	opts := append([]nats.Option{
		nats.MaxReconnects(DefaultMaxReconnects),
		nats.ReconnectWait(DefaultReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			manager.logger.Error("NATS disconnected", log.Err(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			manager.logger.Info("NATS reconnected", log.String("url", nc.ConnectedUrl()))
		}),
	}, manager.natsOpts...)

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	manager.nc = nc
	return manager, nil
}

// Conn exposes the underlying connection.
func (w *NATSManager) Conn() *nats.Conn {
	return w.nc
}

// Ping checks the health of the NATS connection.
func (w *NATSManager) Ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.nc != nil && w.nc.IsConnected() {
		return nil
	}
	return errors.New(ConnectionFailedMessage)
}

// IsClosed reports whether the underlying NATS connection has been closed.
func (w *NATSManager) IsClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.nc == nil || w.nc.IsClosed()
}

// Publish sends msg, through the circuit breaker when one is configured.
func (w *NATSManager) Publish(ctx context.Context, msg *events.Message) error {
	if err := ctx.Err(); err != nil {
		return blame.PublishMessageError(msg.Subject, err)
	}
	if w.IsClosed() {
		return blame.TransportClosedError()
	}

	err := circuitBreaker.Do(w.breaker, func() error {
		return w.nc.PublishMsg(toNatsMsg(msg))
	})
	if err != nil {
		w.logger.Error(constant.EventPublishedFailed, log.String("subject", msg.Subject), log.Err(err))
		return blame.PublishMessageError(msg.Subject, err)
	}
	return nil
}

// Close gracefully shuts down the NATS manager.
// It unsubscribes from all subjects, waiting for running handlers, then
// drains the connection and stops the monitors.
func (w *NATSManager) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.done)
	subs := make(map[*subscription]*nats.Subscription, len(w.subjects))
	for _, s := range w.subjects {
		subs[s] = s.sub
	}
	w.subjects = make(map[subscriptionKey]*subscription)
	w.mu.Unlock()

	var errs []error
	for s, sub := range subs {
		if err := s.stop(sub); err != nil {
			w.logger.Error(constant.SubjectUnsubscribed, log.Err(err))
			errs = append(errs, err)
		}
	}

	if w.nc != nil && !w.nc.IsClosed() {
		w.logger.Info(constant.ConnectionClosing)
		if err := w.nc.Drain(); err != nil {
			errs = append(errs, err)
		}
	}
	w.cancel()
	w.logger.Info(constant.ConnectionClosed)
	return errors.Join(errs...)
}

// RunSafely executes a function with panic recovery.
func (w *NATSManager) RunSafely(fn func()) {
	defer func() {
		if err := helpers.RecoverException(recover()); err != nil {
			w.logger.Error("Panic recovered",
				log.Err(err), log.String("stack", string(debug.Stack())))
		}
	}()
	fn()
}

func toNatsMsg(msg *events.Message) *nats.Msg {
	out := nats.NewMsg(msg.Subject)
	out.Reply = msg.Reply
	out.Data = msg.Data
	for k, v := range msg.Header {
		out.Header.Set(k, v)
	}
	return out
}

func fromNatsMsg(msg *nats.Msg) *events.Message {
	out := &events.Message{
		Subject: msg.Subject,
		Reply:   msg.Reply,
		Header:  make(events.Header, len(msg.Header)),
		Data:    msg.Data,
	}
	for k := range msg.Header {
		out.Header[k] = msg.Header.Get(k)
	}
	return out
}
