package graceful

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abhissng/synapse/utils/constant"
	"github.com/abhissng/synapse/utils/helpers"
)

// Shutdowner is an interface that defines a Shutdown method.
type Shutdowner interface {
	Shutdown(ctx context.Context) error
}

// ShutdownFunc is a function type that matches the Shutdown method signature.
type ShutdownFunc func(ctx context.Context) error

// Shutdown implements the Shutdowner interface for ShutdownFunc.
func (f ShutdownFunc) Shutdown(ctx context.Context) error {
	return f(ctx)
}

// Sequence shuts services down in order within one deadline, joining errors.
func Sequence(services ...Shutdowner) Shutdowner {
	return ShutdownFunc(func(ctx context.Context) error {
		var errs []error
		for _, s := range services {
			if err := s.Shutdown(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}

// GracefulShutdown blocks until SIGINT or SIGTERM, then shuts service down.
// timeout specifies the duration to wait before forcefully shutting down.
func GracefulShutdown(service Shutdowner, timeout time.Duration) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return ShutdownOnDone(ctx, service, timeout)
}

// ShutdownOnDone waits for ctx to end, then shuts service down with a fresh
// deadline of timeout.
func ShutdownOnDone(ctx context.Context, service Shutdowner, timeout time.Duration) error {
	<-ctx.Done()

	if timeout <= 0 {
		timeout = constant.ServiceDefaultGracefulTime
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := service.Shutdown(shutdownCtx); err != nil {
		helpers.Println(constant.ERROR, "Error during shutdown: "+err.Error())
		return err
	}
	helpers.Println(constant.INFO, "Service stopped")
	return nil
}
