package correlation

import (
	"context"
	"sync"
	"time"

	"github.com/abhissng/synapse/blame"
	"github.com/abhissng/synapse/result"
)

// Future is the pending outcome of one request. It settles exactly once.
type Future struct {
	id      string
	subject string
	started time.Time
	table   *Table

	once sync.Once
	done chan struct{}
	res  result.Result[Reply]
}

func newFuture(id, subject string, table *Table) *Future {
	return &Future{
		id:      id,
		subject: subject,
		started: time.Now(),
		table:   table,
		done:    make(chan struct{}),
	}
}

// Resolved returns a future already settled with reply.
func Resolved(id, subject string, reply Reply) *Future {
	f := newFuture(id, subject, nil)
	f.settle(result.NewSuccess(&reply))
	return f
}

// Failed returns a future already settled with err.
func Failed(id, subject string, err error) *Future {
	f := newFuture(id, subject, nil)
	f.settle(result.NewFailure[Reply](blame.FromError(err)))
	return f
}

func (f *Future) settle(r result.Result[Reply]) bool {
	settled := false
	f.once.Do(func() {
		f.res = r
		close(f.done)
		settled = true
	})
	return settled
}

// MessageID is the correlation id of the request.
func (f *Future) MessageID() string { return f.id }

// Subject the request was sent to.
func (f *Future) Subject() string { return f.subject }

// Elapsed since the request was registered.
func (f *Future) Elapsed() time.Duration { return time.Since(f.started) }

// Done is closed once the future settles.
func (f *Future) Done() <-chan struct{} { return f.done }

// Result returns the outcome, or nil while still pending.
func (f *Future) Result() result.Result[Reply] {
	select {
	case <-f.done:
		return f.res
	default:
		return nil
	}
}

// Wait blocks until the future settles or ctx ends. Giving up through ctx
// rejects the request and drops it from the table, so a late reply is ignored.
func (f *Future) Wait(ctx context.Context) result.Result[Reply] {
	select {
	case <-f.done:
		return f.res
	case <-ctx.Done():
	}

	if f.table != nil {
		f.table.Reject(f.id, blame.RequestCancelledError(f.subject, ctx.Err()))
	} else {
		f.settle(result.NewFailure[Reply](blame.RequestCancelledError(f.subject, ctx.Err())))
	}
	// whoever won the removal settles right after it
	<-f.done
	return f.res
}
