package correlation

import (
	"github.com/abhissng/synapse/utils/codec"
)

// Reply is what a remote handler sent back for a request.
type Reply struct {
	MessageID string            `json:"messageId"`
	Body      any               `json:"body"`
	Error     string            `json:"error,omitempty"`
	Code      int               `json:"code,omitempty"`
	Sender    string            `json:"sender,omitempty"`
	Header    map[string]string `json:"-"`
}

// Failed reports whether the remote side answered with an error body.
func (r Reply) Failed() bool {
	return r.Error != ""
}

// Decode converts the body into target using the default codec.
func (r Reply) Decode(target any) error {
	return r.DecodeWith(nil, target)
}

// DecodeWith converts the body into target using c.
func (r Reply) DecodeWith(c codec.Codec, target any) error {
	if r.Body == nil {
		return nil
	}
	return codec.Convert(c, r.Body, target)
}
