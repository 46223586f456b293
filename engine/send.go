package engine

import (
	"context"
	"time"

	"github.com/abhissng/synapse/adapters/events"
	"github.com/abhissng/synapse/adapters/log"
	"github.com/abhissng/synapse/adapters/prometheus"
	"github.com/abhissng/synapse/blame"
	"github.com/abhissng/synapse/correlation"
	"github.com/abhissng/synapse/result"
	"github.com/abhissng/synapse/utils/constant"
	"github.com/abhissng/synapse/utils/random"
)

func (e *Endpoint) messageOptions(opts []MessageOption) messageOptions {
	o := messageOptions{expectReply: true, timeout: e.requestTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.messageID == "" {
		o.messageID = random.GenerateMessageID()
	}
	return o
}

// Publish signs, encodes and publishes data to subject without waiting for
// anything back.
func (e *Endpoint) Publish(ctx context.Context, subject string, data any, opts ...MessageOption) error {
	o := e.messageOptions(opts)
	return e.publish(ctx, subject, data, o.messageID, o.replyTo, o.header)
}

// Send publishes data to subject and returns a future for the reply. The
// endpoint's request timeout applies unless WithTimeout overrides it.
// Failures, including publish failures, reject the future.
func (e *Endpoint) Send(ctx context.Context, subject string, data any, opts ...MessageOption) *correlation.Future {
	o := e.messageOptions(opts)
	id := o.messageID

	if !o.expectReply {
		if err := e.publish(ctx, subject, data, id, o.replyTo, o.header); err != nil {
			return correlation.Failed(id, subject, err)
		}
		return correlation.Resolved(id, subject, correlation.Reply{MessageID: id})
	}

	if e.closed.Load() {
		return correlation.Failed(id, subject, blame.EndpointClosedError(e.name))
	}
	future, err := e.table.Register(id, subject, o.timeout)
	if err != nil {
		return correlation.Failed(id, subject, err)
	}
	e.metrics.SetPending(e.table.Len())

	if err := e.publish(ctx, subject, data, id, e.replySubject, o.header); err != nil {
		e.table.Reject(id, err)
	}
	return future
}

// SendWithTimeout is Send bounded by timeout. On expiry the future rejects
// with a timeout error naming subject and a later reply is dropped.
func (e *Endpoint) SendWithTimeout(ctx context.Context, subject string, timeout time.Duration, data any, opts ...MessageOption) *correlation.Future {
	return e.Send(ctx, subject, data, append(opts, WithTimeout(timeout))...)
}

// Call sends data to subject, waits for the reply and decodes its body into T.
func Call[T any](ctx context.Context, e *Endpoint, subject string, data any, opts ...MessageOption) result.Result[T] {
	res := e.Send(ctx, subject, data, opts...).Wait(ctx)
	return result.Map(res, func(reply *correlation.Reply) (*T, blame.Blame) {
		var out T
		if err := reply.DecodeWith(e.codec, &out); err != nil {
			return nil, blame.FromError(err)
		}
		return &out, nil
	})
}

func (e *Endpoint) publish(ctx context.Context, subject string, data any, id, replyTo string, header events.Header) error {
	if e.closed.Load() {
		return blame.EndpointClosedError(e.name)
	}
	if err := e.acl.Check(subject); err != nil {
		e.metrics.ObserveMessage(prometheus.Outbound, subject, prometheus.OutcomeForbidden)
		return err
	}

	msg, err := e.envelope(ctx, subject, data, id, header)
	if err != nil {
		return err
	}
	msg.Reply = replyTo

	if err := e.transport.Publish(ctx, msg); err != nil {
		e.metrics.ObserveMessage(prometheus.Outbound, subject, prometheus.OutcomeError)
		e.log.Error(constant.EventPublishedFailed,
			log.String("subject", subject), log.String("message_id", id), log.Err(err))
		return err
	}
	e.metrics.ObserveMessage(prometheus.Outbound, subject, prometheus.OutcomeOK)
	return nil
}

// envelope encodes data and signs it with this service's token.
func (e *Endpoint) envelope(ctx context.Context, subject string, data any, id string, header events.Header) (*events.Message, error) {
	payload, err := e.codec.Marshal(data)
	if err != nil {
		return nil, err
	}
	token, err := e.auth.Sign(ctx)
	if err != nil {
		return nil, err
	}

	msg := events.NewMessage(subject, payload)
	for k, v := range header {
		msg.Header.Set(k, v)
	}
	msg.Header.Set(constant.MessageIDHeader, id)
	msg.Header.Set(constant.SenderHeader, e.name)
	if token != "" {
		msg.Header.Set(constant.ServiceTokenHeader, token)
	}
	return msg, nil
}
