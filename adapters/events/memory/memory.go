// Package memory is an in-process events.Transport with NATS-style subject
// wildcards and queue groups. Publish never blocks on a slow subscriber:
// every subscription owns an unbounded mailbox drained by one goroutine.
package memory

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/abhissng/synapse/adapters/events"
	"github.com/abhissng/synapse/adapters/log"
	"github.com/abhissng/synapse/blame"
	"github.com/abhissng/synapse/utils/constant"
)

// Option configures a Transport.
type Option func(*Transport)

// WithLogger sets the logger
func WithLogger(logger *log.Log) Option {
	return func(t *Transport) {
		t.log = logger
	}
}

// Transport is the in-process bus.
type Transport struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    *log.Log

	mu     sync.RWMutex
	subs   map[*subscription]struct{}
	cursor map[string]*atomic.Uint64
	closed bool
	wg     sync.WaitGroup
}

var _ events.Transport = (*Transport)(nil)

// New returns an empty bus.
func New(opts ...Option) *Transport {
	ctx, cancel := context.WithCancel(context.Background())
	t := &Transport{
		ctx:    ctx,
		cancel: cancel,
		subs:   make(map[*subscription]struct{}),
		cursor: make(map[string]*atomic.Uint64),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.log == nil {
		t.log = log.NewNopLogger()
	}
	return t
}

// Publish fans msg out to matching subscriptions. Within each queue group a
// single member receives it, chosen round robin. As on NATS a group is
// scoped to the subscribed subject, so overlapping patterns sharing a queue
// name each get a copy.
func (t *Transport) Publish(ctx context.Context, msg *events.Message) error {
	if err := ctx.Err(); err != nil {
		return blame.PublishMessageError(msg.Subject, err)
	}
	if err := events.ValidateSubject(msg.Subject, false); err != nil {
		return blame.PublishMessageError(msg.Subject, err)
	}

	t.mu.RLock()
	if t.closed {
		t.mu.RUnlock()
		return blame.TransportClosedError()
	}
	var targets []*subscription
	groups := map[string][]*subscription{}
	for s := range t.subs {
		if !events.MatchSubject(s.subject, msg.Subject) {
			continue
		}
		if s.queue == "" {
			targets = append(targets, s)
		} else {
			groups[s.groupKey()] = append(groups[s.groupKey()], s)
		}
	}
	for key, members := range groups {
		sortByOrder(members)
		n := t.cursor[key].Add(1) - 1
		targets = append(targets, members[n%uint64(len(members))])
	}
	t.mu.RUnlock()

	for _, s := range targets {
		s.enqueue(msg.Clone())
	}
	return nil
}

// Subscribe starts a delivery goroutine for handler.
func (t *Transport) Subscribe(subject, queue string, handler events.Handler) (events.Subscription, error) {
	if err := events.ValidateSubject(subject, true); err != nil {
		return nil, blame.SubscribeToSubjectError(subject, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, blame.TransportClosedError()
	}

	s := &subscription{
		transport: t,
		subject:   subject,
		queue:     queue,
		handler:   handler,
		order:     nextOrder.Add(1),
		signal:    make(chan struct{}, 1),
		done:      make(chan struct{}),
		exited:    make(chan struct{}),
	}
	t.subs[s] = struct{}{}
	if queue != "" && t.cursor[s.groupKey()] == nil {
		t.cursor[s.groupKey()] = &atomic.Uint64{}
	}

	t.wg.Add(1)
	go s.run()

	t.log.Debug(constant.SubjectSubscribed, log.String("subject", subject), log.String("queue", queue))
	return s, nil
}

// Close stops every subscription and waits for in-flight handlers. It must
// not be called from inside a handler.
func (t *Transport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	subs := t.subs
	t.subs = make(map[*subscription]struct{})
	t.mu.Unlock()

	for s := range subs {
		s.stop()
	}
	t.cancel()
	t.wg.Wait()
	t.log.Debug(constant.ConnectionClosed)
	return nil
}

// SubscriptionCount is the number of live subscriptions.
func (t *Transport) SubscriptionCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.subs)
}

func (t *Transport) remove(s *subscription) {
	t.mu.Lock()
	delete(t.subs, s)
	t.mu.Unlock()
}
