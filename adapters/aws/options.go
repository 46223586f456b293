package aws

import (
	"strings"

	"github.com/abhissng/synapse/adapters/log"
	"github.com/abhissng/synapse/adapters/secrets"
	"github.com/abhissng/synapse/utils/types"
)

type storeOptions struct {
	prefix string
	kmsKey string
	log    *log.Log
}

// StoreOption configures a secret store.
type StoreOption func(*storeOptions)

// WithPrefix namespaces every path, e.g. "synapse/prod".
func WithPrefix(prefix string) StoreOption {
	return func(o *storeOptions) {
		o.prefix = strings.Trim(prefix, "/")
	}
}

// WithKMSKey encrypts written values with a customer managed key.
func WithKMSKey(keyID string) StoreOption {
	return func(o *storeOptions) {
		o.kmsKey = keyID
	}
}

// WithLogger sets the logger
func WithLogger(logger *log.Log) StoreOption {
	return func(o *storeOptions) {
		o.log = logger
	}
}

func newStoreOptions(opts []StoreOption) storeOptions {
	o := storeOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = log.NewNopLogger()
	}
	return o
}

func (o storeOptions) name(path types.SecretPath) string {
	p := secrets.Normalize(path).String()
	if o.prefix == "" {
		return p
	}
	return o.prefix + "/" + p
}
