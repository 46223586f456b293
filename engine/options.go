package engine

import (
	"time"

	"github.com/abhissng/synapse/acl"
	"github.com/abhissng/synapse/adapters/events"
	"github.com/abhissng/synapse/adapters/log"
	"github.com/abhissng/synapse/adapters/prometheus"
	"github.com/abhissng/synapse/auth"
	"github.com/abhissng/synapse/utils/codec"
)

// Option configures an Endpoint.
type Option func(*Endpoint)

// WithLogger sets the endpoint logger.
func WithLogger(logger *log.Log) Option {
	return func(e *Endpoint) {
		e.log = logger
	}
}

// WithCodec sets the payload codec. Both sides of a conversation must agree.
func WithCodec(c codec.Codec) Option {
	return func(e *Endpoint) {
		e.codec = c
	}
}

// WithAuthenticator signs outbound and verifies inbound messages. Without it
// the endpoint runs with authentication disabled.
func WithAuthenticator(a *auth.Authenticator) Option {
	return func(e *Endpoint) {
		e.auth = a
	}
}

// WithAccessList restricts the subjects the endpoint may use.
func WithAccessList(list *acl.AccessList) Option {
	return func(e *Endpoint) {
		e.acl = list
	}
}

// WithMetrics records endpoint metrics into m.
func WithMetrics(m *prometheus.MetricsCollector) Option {
	return func(e *Endpoint) {
		e.metrics = m
	}
}

// WithReplyPrefix sets the first token of the reply subject.
func WithReplyPrefix(prefix string) Option {
	return func(e *Endpoint) {
		if prefix != "" {
			e.replyPrefix = prefix
		}
	}
}

// WithRequestTimeout bounds Send. Zero leaves requests unbounded.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(e *Endpoint) {
		e.requestTimeout = timeout
	}
}

// WithDedupe drops inbound requests whose messageId was seen within window.
// A size of zero disables de-duplication.
func WithDedupe(size int, window time.Duration) Option {
	return func(e *Endpoint) {
		e.dedupeSize = size
		e.dedupeWindow = window
	}
}

// WithMiddleware appends middlewares run around every inbound handler.
func WithMiddleware(middlewares ...events.MiddlewareFunc) Option {
	return func(e *Endpoint) {
		e.middlewares = append(e.middlewares, middlewares...)
	}
}

// withOwnedTransport makes Close also close the transport.
func withOwnedTransport() Option {
	return func(e *Endpoint) {
		e.ownsTransport = true
	}
}

type messageOptions struct {
	replyTo     string
	messageID   string
	header      events.Header
	expectReply bool
	timeout     time.Duration
}

// MessageOption configures a single Publish or Send.
type MessageOption func(*messageOptions)

// WithReplyTo sets the reply subject of a published message.
func WithReplyTo(subject string) MessageOption {
	return func(o *messageOptions) {
		o.replyTo = subject
	}
}

// WithMessageID uses id instead of a generated one.
func WithMessageID(id string) MessageOption {
	return func(o *messageOptions) {
		o.messageID = id
	}
}

// WithoutReply sends without registering for a reply. The returned future
// settles as soon as the message is published.
func WithoutReply() MessageOption {
	return func(o *messageOptions) {
		o.expectReply = false
	}
}

// WithHeader adds an application header. The messageId, serviceToken and
// sender headers are always set by the endpoint.
func WithHeader(key, value string) MessageOption {
	return func(o *messageOptions) {
		if o.header == nil {
			o.header = events.Header{}
		}
		o.header.Set(key, value)
	}
}

// WithTimeout overrides the endpoint's request timeout for one Send.
func WithTimeout(timeout time.Duration) MessageOption {
	return func(o *messageOptions) {
		o.timeout = timeout
	}
}

type handlerOptions struct {
	loadBalanced bool
	respond      bool
	queue        string
}

// HandlerOption configures a handler registration.
type HandlerOption func(*handlerOptions)

// WithLoadBalancing joins a queue group so replicas compete for messages.
// It defaults to true.
func WithLoadBalancing(enabled bool) HandlerOption {
	return func(o *handlerOptions) {
		o.loadBalanced = enabled
	}
}

// WithRespond controls whether the handler's result is sent back. It
// defaults to true for RegisterHandler.
func WithRespond(respond bool) HandlerOption {
	return func(o *handlerOptions) {
		o.respond = respond
	}
}

// WithQueueGroup names the queue group. It implies load balancing; the
// default group is the subject itself.
func WithQueueGroup(queue string) HandlerOption {
	return func(o *handlerOptions) {
		o.loadBalanced = true
		o.queue = queue
	}
}

func newHandlerOptions(respond bool, opts []HandlerOption) handlerOptions {
	o := handlerOptions{loadBalanced: true, respond: respond}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o handlerOptions) queueFor(subject string) string {
	if !o.loadBalanced {
		return ""
	}
	if o.queue != "" {
		return o.queue
	}
	return subject
}
