// Package engine composes the codec, token authenticator, access list and
// correlation table into a request/reply endpoint over a pub/sub transport.
package engine

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/abhissng/synapse/acl"
	"github.com/abhissng/synapse/adapters/events"
	"github.com/abhissng/synapse/adapters/log"
	"github.com/abhissng/synapse/adapters/prometheus"
	"github.com/abhissng/synapse/auth"
	"github.com/abhissng/synapse/blame"
	"github.com/abhissng/synapse/correlation"
	"github.com/abhissng/synapse/utils/codec"
	"github.com/abhissng/synapse/utils/constant"
	"github.com/abhissng/synapse/utils/helpers"
	"github.com/abhissng/synapse/utils/idempotency"
	"github.com/abhissng/synapse/utils/random"
)

// Endpoint is one service instance on the bus.
type Endpoint struct {
	name          string
	transport     events.Transport
	ownsTransport bool
	closers       []func() error
	codec         codec.Codec
	auth          *auth.Authenticator
	acl           *acl.AccessList
	table         *correlation.Table
	metrics       *prometheus.MetricsCollector
	log           *log.Log
	middlewares   []events.MiddlewareFunc

	replyPrefix    string
	replySubject   string
	requestTimeout time.Duration

	dedupeSize   int
	dedupeWindow time.Duration
	dedupe       *idempotency.IdempotencyManager[string]

	mu       sync.Mutex
	subs     []events.Subscription
	replySub events.Subscription
	closed   atomic.Bool
}

// replyBody is the wire shape of every reply. An empty Error means success.
type replyBody struct {
	Body  any    `json:"body" yaml:"body"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
	Code  int    `json:"code,omitempty" yaml:"code,omitempty"`
}

// NewEndpoint subscribes to a reply subject unique to this process and
// returns a ready endpoint.
func NewEndpoint(name string, transport events.Transport, opts ...Option) (*Endpoint, error) {
	if name == "" {
		return nil, blame.ConfigValidationError(map[string]string{"name": "name is required"})
	}
	if transport == nil {
		return nil, blame.ConfigValidationError(map[string]string{"transport": "transport is required"})
	}

	e := &Endpoint{
		name:           name,
		transport:      transport,
		replyPrefix:    constant.DefaultReplyPrefix,
		requestTimeout: constant.DefaultRequestTimeout,
		dedupeSize:     constant.DefaultDedupeSize,
		dedupeWindow:   constant.DefaultDedupeWindow,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.log == nil {
		e.log = log.NewBasicLogger(helpers.IsProdEnvironment())
	}
	e.log = e.log.With(log.String("endpoint", name))
	if e.codec == nil {
		e.codec = codec.Default()
	}
	if e.acl == nil {
		e.acl = acl.New()
	}
	if e.auth == nil {
		a, err := auth.New(name, nil, auth.WithLogger(e.log))
		if err != nil {
			return nil, err
		}
		e.auth = a
	}
	if e.dedupeSize > 0 {
		e.dedupe = idempotency.NewIdempotencyManager[string](e.dedupeSize, e.dedupeWindow)
	}
	e.table = correlation.NewTable(correlation.WithLogger(e.log), correlation.WithOnSettle(e.onSettle))
	e.replySubject = helpers.JoinSubject(e.replyPrefix, name, random.GenerateUUIDString())

	listener := events.Chain(e.onReply, events.RecoveryMiddleware(e.log), events.LogMiddleware(e.log))
	sub, err := transport.Subscribe(e.replySubject, "", events.ToHandler(listener, e.log))
	if err != nil {
		if e.dedupe != nil {
			e.dedupe.Close()
		}
		return nil, err
	}
	e.replySub = sub

	e.log.Info(constant.SystemReady,
		log.String("reply_subject", e.replySubject),
		log.String("codec", e.codec.Name().String()),
		log.Bool("auth_enabled", e.auth.Enabled()),
		log.Bool("restricted", e.acl.Restricted()))
	return e, nil
}

// Name returns the service name.
func (e *Endpoint) Name() string { return e.name }

// ReplySubject returns the subject replies to this endpoint arrive on.
func (e *Endpoint) ReplySubject() string { return e.replySubject }

// Codec returns the payload codec.
func (e *Endpoint) Codec() codec.Codec { return e.codec }

// AccessList returns the endpoint's access list for startup configuration.
func (e *Endpoint) AccessList() *acl.AccessList { return e.acl }

// Authenticator returns the token authenticator.
func (e *Endpoint) Authenticator() *auth.Authenticator { return e.auth }

// Logger is the endpoint's logger.
func (e *Endpoint) Logger() *log.Log { return e.log }

// Pending returns the number of requests awaiting a reply.
func (e *Endpoint) Pending() int { return e.table.Len() }

// Close rejects every pending request with a cancellation error and tears
// down subscriptions, newest first, then the reply subscription. It returns
// once handlers already running have finished; their replies are dropped.
// ctx bounds how long Close waits for the teardown.
func (e *Endpoint) Close(ctx context.Context) error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	rejected := e.table.Close(nil)

	done := make(chan error, 1)
	go func() { done <- e.teardown() }()

	select {
	case err := <-done:
		e.log.Info(constant.ConnectionClosed, log.Int("rejected", rejected))
		return err
	case <-ctx.Done():
		return blame.RequestCancelledError(e.replySubject, ctx.Err())
	}
}

// Shutdown is Close, for graceful shutdown helpers.
func (e *Endpoint) Shutdown(ctx context.Context) error {
	return e.Close(ctx)
}

func (e *Endpoint) teardown() error {
	e.mu.Lock()
	subs := e.subs
	e.subs = nil
	e.mu.Unlock()

	var errs []error
	for i := len(subs) - 1; i >= 0; i-- {
		if err := subs[i].Unsubscribe(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := e.replySub.Unsubscribe(); err != nil {
		errs = append(errs, err)
	}
	if e.dedupe != nil {
		e.dedupe.Close()
	}
	if e.ownsTransport {
		if err := e.transport.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, closeFn := range e.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// onReply settles the pending request a reply belongs to. It never fails:
// an unusable reply rejects its request and the listener moves on.
func (e *Endpoint) onReply(ctx context.Context, msg *events.Message) error {
	id := msg.MessageID()
	if id == "" {
		e.log.Warn("Reply without message id dropped", log.String("subject", msg.Subject))
		return nil
	}
	if !e.table.Has(id) {
		// late, duplicate or not ours
		e.log.Debug("Reply for unknown request ignored", log.String("message_id", id))
		return nil
	}

	sender, err := e.auth.Verify(ctx, msg.Header.Get(constant.ServiceTokenHeader))
	if err != nil {
		e.metrics.ObserveAuthFailure("reply")
		e.log.Warn("Reply failed token verification", log.String("message_id", id), log.Err(err))
		e.table.Reject(id, blame.InvalidServiceTokenError())
		return nil
	}

	var body replyBody
	if err := e.codec.Unmarshal(msg.Data, &body); err != nil {
		e.log.Warn("Undecodable reply", log.String("message_id", id), log.Err(err))
		e.table.Reject(id, err)
		return nil
	}

	code := body.Code
	if code == 0 && body.Error != "" {
		code, _ = strconv.Atoi(msg.Header.Get(constant.CodeHeader))
	}
	e.table.Resolve(id, correlation.Reply{
		MessageID: id,
		Body:      body.Body,
		Error:     body.Error,
		Code:      code,
		Sender:    sender,
		Header:    msg.Header.Clone(),
	})
	return nil
}

func (e *Endpoint) onSettle(f *correlation.Future, failed bool) {
	outcome := prometheus.OutcomeOK
	if failed {
		outcome = prometheus.OutcomeError
	}
	e.metrics.ObserveRequest(f.Subject(), outcome, f.Elapsed())
	e.metrics.SetPending(e.table.Len())
}
