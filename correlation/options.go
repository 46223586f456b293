package correlation

import "github.com/abhissng/synapse/adapters/log"

// Option configures a Table.
type Option func(*Table)

// WithLogger sets the logger
func WithLogger(logger *log.Log) Option {
	return func(t *Table) {
		t.log = logger
	}
}

// WithOnSettle registers a callback run after every settlement, with the
// future and whether it failed. It must not block.
func WithOnSettle(fn func(f *Future, failed bool)) Option {
	return func(t *Table) {
		t.onSettle = fn
	}
}
