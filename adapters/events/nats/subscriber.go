package nats

import (
	"errors"
	"sync"
	"time"

	"github.com/abhissng/synapse/adapters/events"
	"github.com/abhissng/synapse/adapters/log"
	"github.com/abhissng/synapse/blame"
	"github.com/abhissng/synapse/utils/constant"
	"github.com/nats-io/nats.go"
)

type subscription struct {
	manager *NATSManager
	key     subscriptionKey
	handler events.Handler
	// sub is replaced by resubscribe; guarded by manager.mu.
	sub *nats.Subscription

	// gate is held for reading while the handler runs.
	gate    sync.RWMutex
	stopped bool
}

func (s *subscription) Subject() string { return s.key.subject }
func (s *subscription) Queue() string   { return s.key.queue }

// Unsubscribe removes the subscription from the manager and the server and
// waits for a handler call in progress to return. It must not be called
// from inside the subscription's own handler.
func (s *subscription) Unsubscribe() error {
	m := s.manager
	m.mu.Lock()
	current, ok := m.subjects[s.key]
	if !ok || current != s {
		m.mu.Unlock()
		return nil
	}
	delete(m.subjects, s.key)
	sub := s.sub
	m.mu.Unlock()

	return s.stop(sub)
}

// stop unsubscribes sub from the server, then blocks until no handler call
// is running and marks the subscription so late callbacks are dropped.
func (s *subscription) stop(sub *nats.Subscription) error {
	var err error
	if uerr := sub.Unsubscribe(); uerr != nil && !errors.Is(uerr, nats.ErrConnectionClosed) && !errors.Is(uerr, nats.ErrBadSubscription) {
		err = blame.UnsubscribeError(s.key.subject, uerr)
	}
	s.gate.Lock()
	s.stopped = true
	s.gate.Unlock()
	return err
}

func (s *subscription) deliver(msg *nats.Msg) {
	s.gate.RLock()
	defer s.gate.RUnlock()
	if s.stopped {
		return
	}
	s.handler(s.manager.ctx, fromNatsMsg(msg))
}

// Subscribe registers handler on subject, joining queue when it is set.
// Core NATS delivers one subscription's messages sequentially.
func (w *NATSManager) Subscribe(subject, queue string, handler events.Handler) (events.Subscription, error) {
	if err := events.ValidateSubject(subject, true); err != nil {
		return nil, blame.SubscribeToSubjectError(subject, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, blame.TransportClosedError()
	}

	key := subscriptionKey{subject: subject, queue: queue}
	if _, exists := w.subjects[key]; exists {
		return nil, blame.AlreadySubscribedError(subject)
	}

	s := &subscription{manager: w, key: key, handler: handler}
	sub, err := w.natsSubscribe(s)
	if err != nil {
		w.logger.Error(constant.SubjectSubscribeFailed, log.String("subject", subject), log.Err(err))
		return nil, blame.SubscribeToSubjectError(subject, err)
	}
	s.sub = sub
	w.subjects[key] = s

	if queue == "" {
		w.logger.Info(constant.SubjectSubscribed, log.String("subject", subject))
	} else {
		w.logger.Info(constant.SubjectWithQueueSubscribed, log.String("subject", subject), log.String("queue", queue))
	}

	if w.monitorInterval > 0 {
		go w.monitorSubscription(key)
	}
	return s, nil
}

// natsSubscribe must be called with w.mu held.
func (w *NATSManager) natsSubscribe(s *subscription) (*nats.Subscription, error) {
	cb := func(msg *nats.Msg) {
		w.RunSafely(func() {
			s.deliver(msg)
		})
	}

	var sub *nats.Subscription
	var err error
	if s.key.queue != "" {
		sub, err = w.nc.QueueSubscribe(s.key.subject, s.key.queue, cb)
	} else {
		sub, err = w.nc.Subscribe(s.key.subject, cb)
	}
	if err != nil {
		return nil, err
	}

	// Ensure subscription is active before continuing
	if err := w.nc.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return nil, err
	}
	return sub, nil
}

// monitorSubscription periodically checks a subscription and resubscribes
// when the server has invalidated it.
func (w *NATSManager) monitorSubscription(key subscriptionKey) {
	ticker := time.NewTicker(w.monitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.mu.Lock()
			current := w.subjects[key]
			valid := current != nil && current.sub.IsValid()
			w.mu.Unlock()
			if current == nil {
				return
			}
			if !valid {
				w.logger.Warn("Subscription invalid, attempting to resubscribe",
					log.String("subject", key.subject))
				w.resubscribe(key)
			}
		}
	}
}

func (w *NATSManager) resubscribe(key subscriptionKey) {
	w.mu.Lock()
	defer w.mu.Unlock()

	s, ok := w.subjects[key]
	if !ok || w.closed {
		return
	}
	_ = s.sub.Unsubscribe()

	sub, err := w.natsSubscribe(s)
	if err != nil {
		w.logger.Error("Failed to resubscribe", log.String("subject", key.subject), log.Err(err))
		return
	}
	s.sub = sub
}
