package engine

import (
	"context"
	"fmt"

	"github.com/abhissng/synapse/adapters/events"
	"github.com/abhissng/synapse/blame"
	"github.com/abhissng/synapse/utils/codec"
	"github.com/abhissng/synapse/utils/helpers"
)

// Request is an inbound message after access control and token checks.
type Request struct {
	Subject   string
	MessageID string
	Reply     string
	// Sender is the verified signer, empty when authentication is disabled.
	Sender string
	Header events.Header
	Data   []byte

	codec codec.Codec
}

// Decode unmarshals the payload into target.
func (r *Request) Decode(target any) error {
	return r.codec.Unmarshal(r.Data, target)
}

// Handler answers requests. The returned value becomes the reply body; an
// error becomes an error body carrying its message and status code.
type Handler interface {
	Handle(ctx context.Context, req *Request) (any, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, req *Request) (any, error)

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, req *Request) (any, error) {
	return f(ctx, req)
}

// StreamHandler consumes messages without replying.
type StreamHandler interface {
	HandleStream(ctx context.Context, req *Request) error
}

// StreamHandlerFunc adapts a function to StreamHandler.
type StreamHandlerFunc func(ctx context.Context, req *Request) error

// HandleStream calls f.
func (f StreamHandlerFunc) HandleStream(ctx context.Context, req *Request) error {
	return f(ctx, req)
}

// Typed adapts fn to a Handler that decodes the payload into In.
func Typed[In, Out any](fn func(ctx context.Context, in In) (Out, error)) Handler {
	return HandlerFunc(func(ctx context.Context, req *Request) (any, error) {
		var in In
		if err := req.Decode(&in); err != nil {
			return nil, err
		}
		return fn(ctx, in)
	})
}

// TypedStream adapts fn to a StreamHandler that decodes the payload into In.
func TypedStream[In any](fn func(ctx context.Context, in In) error) StreamHandler {
	return StreamHandlerFunc(func(ctx context.Context, req *Request) error {
		var in In
		if err := req.Decode(&in); err != nil {
			return err
		}
		return fn(ctx, in)
	})
}

func invoke(ctx context.Context, h Handler, req *Request) (out any, err error) {
	defer func() {
		if perr := helpers.RecoverException(recover()); perr != nil {
			out, err = nil, blame.InternalServerError(fmt.Errorf("handler for %s: %w", req.Subject, perr))
		}
	}()
	return h.Handle(ctx, req)
}

func invokeStream(ctx context.Context, h StreamHandler, req *Request) (err error) {
	defer func() {
		if perr := helpers.RecoverException(recover()); perr != nil {
			err = blame.InternalServerError(fmt.Errorf("stream handler for %s: %w", req.Subject, perr))
		}
	}()
	return h.HandleStream(ctx, req)
}
