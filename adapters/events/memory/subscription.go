package memory

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/abhissng/synapse/adapters/events"
	"github.com/abhissng/synapse/adapters/log"
	"github.com/abhissng/synapse/utils/constant"
)

var nextOrder atomic.Uint64

type subscription struct {
	transport *Transport
	subject   string
	queue     string
	handler   events.Handler
	order     uint64

	mu      sync.Mutex
	mailbox []*events.Message
	stopped bool
	signal  chan struct{}
	done    chan struct{}
	exited  chan struct{}
}

func (s *subscription) Subject() string { return s.subject }
func (s *subscription) Queue() string   { return s.queue }

func (s *subscription) groupKey() string { return s.subject + "|" + s.queue }

// Unsubscribe stops delivery and waits for a handler call in progress to
// return. Queued messages are dropped. It must not be called from inside
// the subscription's own handler.
func (s *subscription) Unsubscribe() error {
	s.transport.remove(s)
	s.stop()
	<-s.exited
	return nil
}

func (s *subscription) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	s.mailbox = nil
	close(s.done)
}

func (s *subscription) enqueue(msg *events.Message) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.mailbox = append(s.mailbox, msg)
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *subscription) next() (*events.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || len(s.mailbox) == 0 {
		return nil, false
	}
	msg := s.mailbox[0]
	s.mailbox[0] = nil
	s.mailbox = s.mailbox[1:]
	return msg, true
}

func (s *subscription) run() {
	defer s.transport.wg.Done()
	defer close(s.exited)
	for {
		select {
		case <-s.done:
			return
		case <-s.signal:
		}
		for {
			msg, ok := s.next()
			if !ok {
				break
			}
			s.deliver(msg)
		}
	}
}

func (s *subscription) deliver(msg *events.Message) {
	defer func() {
		if r := recover(); r != nil {
			s.transport.log.Error(constant.HandlerFailed,
				log.String("subject", msg.Subject), log.Any("panic", r))
		}
	}()
	s.handler(s.transport.ctx, msg)
}

// sortByOrder keeps round robin stable regardless of map iteration order.
func sortByOrder(subs []*subscription) {
	slices.SortFunc(subs, func(a, b *subscription) int {
		switch {
		case a.order < b.order:
			return -1
		case a.order > b.order:
			return 1
		}
		return 0
	})
}
