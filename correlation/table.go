// Package correlation matches asynchronous replies to outstanding requests
// and races each request against its timeout.
package correlation

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/abhissng/synapse/adapters/log"
	"github.com/abhissng/synapse/blame"
	"github.com/abhissng/synapse/result"
	"github.com/abhissng/synapse/utils/concurrent/concurrentMap"
)

var errTableClosed = errors.New("correlation table closed")

type entry struct {
	future *Future

	mu    sync.Mutex
	timer *time.Timer
}

func (e *entry) stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.timer != nil {
		e.timer.Stop()
	}
}

// Table holds pending requests by message id. Whoever removes an entry
// first settles its future; every other settlement attempt is a no-op.
type Table struct {
	entries  *concurrentMap.ConcurrentMap[string, *entry]
	closed   atomic.Bool
	log      *log.Log
	onSettle func(*Future, bool)
}

// NewTable returns an empty table.
func NewTable(opts ...Option) *Table {
	t := &Table{entries: concurrentMap.NewConcurrentMap[string, *entry]()}
	for _, opt := range opts {
		opt(t)
	}
	if t.log == nil {
		t.log = log.NewNopLogger()
	}
	return t
}

// Register adds a pending request. A positive timeout rejects it with a
// timeout error naming subject once it elapses.
func (t *Table) Register(id, subject string, timeout time.Duration) (*Future, error) {
	if t.closed.Load() {
		return nil, blame.RequestCancelledError(subject, errTableClosed)
	}

	e := &entry{future: newFuture(id, subject, t)}
	if !t.entries.SetIfAbsent(id, e) {
		return nil, blame.DuplicateMessageIDError(id)
	}

	if timeout > 0 {
		e.mu.Lock()
		e.timer = time.AfterFunc(timeout, func() { t.expire(id, e, timeout) })
		e.mu.Unlock()
	}

	// lost a race with Close
	if t.closed.Load() {
		t.Reject(id, blame.RequestCancelledError(subject, errTableClosed))
	}
	return e.future, nil
}

func (t *Table) expire(id string, e *entry, timeout time.Duration) {
	if _, ok := t.entries.PopIf(id, func(cur *entry) bool { return cur == e }); !ok {
		return
	}
	t.log.Debug("Request timed out",
		log.String("message_id", id),
		log.String("subject", e.future.subject),
		log.Duration("timeout", timeout))
	t.settle(e.future, result.NewFailure[Reply](blame.RequestTimeoutError(e.future.subject, timeout)))
}

// Resolve settles id with reply. A reply carrying an error rejects the
// future with a remote error. Unknown or already settled ids return false.
func (t *Table) Resolve(id string, reply Reply) bool {
	e, ok := t.entries.Pop(id)
	if !ok {
		return false
	}
	e.stop()

	if reply.Failed() {
		return t.settle(e.future, result.NewFailureWithValue(&reply, blame.RemoteError(reply.Error, reply.Code)))
	}
	return t.settle(e.future, result.NewSuccess(&reply))
}

// Reject settles id with err. Unknown or already settled ids return false.
func (t *Table) Reject(id string, err error) bool {
	e, ok := t.entries.Pop(id)
	if !ok {
		return false
	}
	e.stop()
	cause := blame.FromError(err)
	if cause == nil {
		cause = blame.RequestCancelledError(e.future.subject, nil)
	}
	return t.settle(e.future, result.NewFailure[Reply](cause))
}

// Close rejects every pending request and refuses new ones. A nil err uses
// a cancellation error per request. It returns how many were rejected.
func (t *Table) Close(err error) int {
	t.closed.Store(true)

	n := 0
	for _, e := range t.entries.Drain() {
		e.stop()
		cause := blame.FromError(err)
		if cause == nil {
			cause = blame.RequestCancelledError(e.future.subject, errTableClosed)
		}
		if t.settle(e.future, result.NewFailure[Reply](cause)) {
			n++
		}
	}
	return n
}

// Len is the number of pending requests.
func (t *Table) Len() int { return t.entries.Len() }

// Has reports whether id is pending.
func (t *Table) Has(id string) bool { return t.entries.Has(id) }

// Closed reports whether Close has been called.
func (t *Table) Closed() bool { return t.closed.Load() }

func (t *Table) settle(f *Future, r result.Result[Reply]) bool {
	if !f.settle(r) {
		return false
	}
	if t.onSettle != nil {
		t.onSettle(f, r.IsError())
	}
	return true
}
