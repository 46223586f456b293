// Package events defines the publish/subscribe contract the endpoint runs
// on. Implementations live in the nats and memory subpackages.
package events

import (
	"context"
	"maps"

	"github.com/abhissng/synapse/utils/constant"
)

// Header carries string metadata alongside a message.
type Header map[string]string

// Get returns the value for key, or "".
func (h Header) Get(key string) string {
	if h == nil {
		return ""
	}
	return h[key]
}

// Set stores value under key.
func (h Header) Set(key, value string) {
	h[key] = value
}

// Clone returns an independent copy.
func (h Header) Clone() Header {
	if h == nil {
		return Header{}
	}
	return maps.Clone(h)
}

// Message is one envelope on the bus.
type Message struct {
	Subject string
	Reply   string
	Header  Header
	Data    []byte
}

// NewMessage returns a message with an empty header.
func NewMessage(subject string, data []byte) *Message {
	return &Message{Subject: subject, Header: Header{}, Data: data}
}

// MessageID returns the messageId header.
func (m *Message) MessageID() string {
	return m.Header.Get(constant.MessageIDHeader)
}

// Clone deep-copies the message so a subscriber cannot affect another.
func (m *Message) Clone() *Message {
	data := make([]byte, len(m.Data))
	copy(data, m.Data)
	return &Message{
		Subject: m.Subject,
		Reply:   m.Reply,
		Header:  m.Header.Clone(),
		Data:    data,
	}
}

// Handler consumes messages delivered to a subscription. Deliveries for one
// subscription are handled one at a time.
type Handler func(ctx context.Context, msg *Message)

// Subscription is a live interest in a subject.
type Subscription interface {
	// Subject returns the subscribed subject pattern.
	Subject() string

	// Queue returns the competing-consumer group, or "" for fan-out.
	Queue() string

	// Unsubscribe stops delivery. Calling it twice is harmless.
	Unsubscribe() error
}

// Transport is the pub/sub bus.
type Transport interface {
	// Publish sends msg to every matching subscription, or to one member of
	// each matching queue group.
	Publish(ctx context.Context, msg *Message) error

	// Subscribe registers handler for subject. A non-empty queue joins the
	// competing-consumer group of that name.
	Subscribe(subject, queue string, handler Handler) (Subscription, error)

	// Close tears down every subscription and the connection.
	Close() error
}
