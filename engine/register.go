package engine

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/abhissng/synapse/adapters/events"
	"github.com/abhissng/synapse/adapters/log"
	"github.com/abhissng/synapse/adapters/prometheus"
	"github.com/abhissng/synapse/blame"
	"github.com/abhissng/synapse/utils/constant"
)

var errNilHandler = errors.New("handler is nil")

// RegisterHandler answers requests on subject with h. By default replicas
// share the subject's queue group and every request gets a reply.
//
// A registration that responds may be made for a subject outside the access
// list; its callers then get a 403 reply. Without WithRespond it is refused.
func (e *Endpoint) RegisterHandler(subject string, h Handler, opts ...HandlerOption) error {
	if h == nil {
		return blame.SubjectHandlerError(subject, errNilHandler)
	}
	o := newHandlerOptions(true, opts)
	if !o.respond {
		if err := e.acl.Check(subject); err != nil {
			return err
		}
	}
	return e.subscribe(subject, o.queueFor(subject), func(ctx context.Context, msg *events.Message) error {
		return e.handleRequest(ctx, subject, msg, h, o.respond)
	})
}

// RegisterStreamHandler hands every message on subject to h without
// replying. Handler failures are logged and delivery continues.
func (e *Endpoint) RegisterStreamHandler(subject string, h StreamHandler, opts ...HandlerOption) error {
	if h == nil {
		return blame.SubjectHandlerError(subject, errNilHandler)
	}
	o := newHandlerOptions(false, opts)
	if err := e.acl.Check(subject); err != nil {
		return err
	}
	return e.subscribe(subject, o.queueFor(subject), func(ctx context.Context, msg *events.Message) error {
		return e.handleStream(ctx, subject, msg, h)
	})
}

func (e *Endpoint) subscribe(subject, queue string, process events.Processor) error {
	if e.closed.Load() {
		return blame.EndpointClosedError(e.name)
	}

	middlewares := append([]events.MiddlewareFunc{events.RecoveryMiddleware(e.log), events.LogMiddleware(e.log)}, e.middlewares...)

	sub, err := e.transport.Subscribe(subject, queue, events.ToHandler(events.Chain(process, middlewares...), e.log))
	if err != nil {
		return err
	}

	e.mu.Lock()
	if e.closed.Load() {
		e.mu.Unlock()
		_ = sub.Unsubscribe()
		return blame.EndpointClosedError(e.name)
	}
	e.subs = append(e.subs, sub)
	e.mu.Unlock()

	e.log.Info(constant.SubjectSubscribed, log.String("subject", subject), log.String("queue", queue))
	return nil
}

func (e *Endpoint) handleRequest(ctx context.Context, pattern string, msg *events.Message, h Handler, respond bool) error {
	start := time.Now()

	if !e.acl.IsAllowed(msg.Subject) {
		e.metrics.ObserveHandler(pattern, prometheus.OutcomeForbidden, time.Since(start))
		err := blame.ForbiddenSubjectError(msg.Subject)
		if !respond {
			return err
		}
		e.log.Warn("Request on forbidden subject rejected",
			log.String("subject", msg.Subject), log.String("message_id", msg.MessageID()))
		return e.respond(ctx, msg, nil, err)
	}

	sender, err := e.auth.Verify(ctx, msg.Header.Get(constant.ServiceTokenHeader))
	if err != nil {
		e.metrics.ObserveAuthFailure("request")
		e.metrics.ObserveHandler(pattern, prometheus.OutcomeAuth, time.Since(start))
		if respond {
			if rerr := e.respond(ctx, msg, nil, err); rerr != nil {
				return rerr
			}
		}
		return err
	}
	if e.redelivered(msg) {
		return nil
	}

	out, err := invoke(ctx, h, e.newRequest(msg, sender))
	e.metrics.ObserveHandler(pattern, outcomeOf(err), time.Since(start))
	if !respond {
		return err
	}
	if rerr := e.respond(ctx, msg, out, err); rerr != nil {
		return rerr
	}
	return err
}

func (e *Endpoint) handleStream(ctx context.Context, pattern string, msg *events.Message, h StreamHandler) error {
	start := time.Now()

	if err := e.acl.Check(msg.Subject); err != nil {
		e.metrics.ObserveHandler(pattern, prometheus.OutcomeForbidden, time.Since(start))
		return err
	}
	sender, err := e.auth.Verify(ctx, msg.Header.Get(constant.ServiceTokenHeader))
	if err != nil {
		e.metrics.ObserveAuthFailure("request")
		e.metrics.ObserveHandler(pattern, prometheus.OutcomeAuth, time.Since(start))
		return err
	}
	if e.redelivered(msg) {
		return nil
	}

	err = invokeStream(ctx, h, e.newRequest(msg, sender))
	e.metrics.ObserveHandler(pattern, outcomeOf(err), time.Since(start))
	return err
}

// redelivered marks an authenticated message as seen and reports whether
// its id was already marked on this subject. Only verified messages are
// marked so a forged copy cannot consume a genuine request's id.
func (e *Endpoint) redelivered(msg *events.Message) bool {
	id := msg.MessageID()
	if e.dedupe == nil || id == "" {
		return false
	}
	if !e.dedupe.CheckAndMark(msg.Subject + "|" + id) {
		return false
	}
	e.log.Debug(constant.MessageAlreadyProcessed,
		log.String("subject", msg.Subject), log.String("message_id", id))
	return true
}

// respond sends the reply for req, correlated by its messageId. Requests
// without a reply subject were fire-and-forget and get nothing, and nothing
// is sent once the endpoint is closing.
func (e *Endpoint) respond(ctx context.Context, req *events.Message, out any, cause error) error {
	if req.Reply == "" {
		return nil
	}
	if e.closed.Load() {
		e.log.Debug("Reply dropped, endpoint closing",
			log.String("subject", req.Reply), log.String("message_id", req.MessageID()))
		return nil
	}

	body := replyBody{Body: out}
	var header events.Header
	if cause != nil {
		body = replyBody{Error: blame.Message(cause), Code: blame.StatusCode(cause)}
		if body.Error == "" {
			body.Error = cause.Error()
		}
		header = events.Header{constant.CodeHeader: strconv.Itoa(body.Code)}
	}

	msg, err := e.envelope(ctx, req.Reply, body, req.MessageID(), header)
	if err != nil {
		return err
	}
	if err := e.transport.Publish(ctx, msg); err != nil {
		e.log.Error(constant.EventPublishedFailed,
			log.String("subject", req.Reply), log.String("message_id", req.MessageID()), log.Err(err))
		return err
	}
	return nil
}

func (e *Endpoint) newRequest(msg *events.Message, sender string) *Request {
	return &Request{
		Subject:   msg.Subject,
		MessageID: msg.MessageID(),
		Reply:     msg.Reply,
		Sender:    sender,
		Header:    msg.Header,
		Data:      msg.Data,
		codec:     e.codec,
	}
}

func outcomeOf(err error) string {
	if err != nil {
		return prometheus.OutcomeError
	}
	return prometheus.OutcomeOK
}
