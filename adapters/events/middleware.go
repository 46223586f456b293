package events

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/abhissng/synapse/adapters/log"
	"github.com/abhissng/synapse/blame"
	"github.com/abhissng/synapse/utils/constant"
)

// Processor handles a message and reports failure.
type Processor func(ctx context.Context, msg *Message) error

// MiddlewareFunc decorates a Processor.
type MiddlewareFunc func(Processor) Processor

// Chain wraps p so the first middleware runs outermost.
func Chain(p Processor, middlewares ...MiddlewareFunc) Processor {
	for i := len(middlewares) - 1; i >= 0; i-- {
		p = middlewares[i](p)
	}
	return p
}

// ToHandler adapts a Processor to a transport Handler, logging failures.
func ToHandler(p Processor, logger *log.Log) Handler {
	return func(ctx context.Context, msg *Message) {
		if err := p(ctx, msg); err != nil {
			logger.Error(constant.HandlerFailed,
				log.String("subject", msg.Subject),
				log.String("message_id", msg.MessageID()),
				log.Err(err))
		}
	}
}

// RecoveryMiddleware turns a panic into an internal server error.
func RecoveryMiddleware(logger *log.Log) MiddlewareFunc {
	return func(next Processor) Processor {
		return func(ctx context.Context, msg *Message) (err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("Panic in message handler",
						log.String("subject", msg.Subject),
						log.Any("panic", r),
						log.String("stack", string(debug.Stack())))
					err = blame.InternalServerError(fmt.Errorf("panic: %v", r))
				}
			}()
			return next(ctx, msg)
		}
	}
}

// LogMiddleware logs receipt and outcome of each message at debug level.
func LogMiddleware(logger *log.Log) MiddlewareFunc {
	return func(next Processor) Processor {
		return func(ctx context.Context, msg *Message) error {
			start := time.Now()
			logger.Debug(constant.EventReceived,
				log.String("subject", msg.Subject),
				log.String("message_id", msg.MessageID()))
			err := next(ctx, msg)
			if err == nil {
				logger.Debug(constant.MessageProcessed,
					log.String("subject", msg.Subject),
					log.String("message_id", msg.MessageID()),
					log.Duration("elapsed", time.Since(start)))
			}
			return err
		}
	}
}
