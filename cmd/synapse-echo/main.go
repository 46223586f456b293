// Command synapse-echo runs one endpoint that answers on
// <version>.echo and logs every message published to <version>.audit.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/abhissng/synapse/adapters/log"
	"github.com/abhissng/synapse/engine"
	"github.com/abhissng/synapse/utils/constant"
	"github.com/abhissng/synapse/utils/graceful"
	"github.com/abhissng/synapse/utils/helpers"
)

type echo struct {
	Text string `json:"text" msgpack:"text" yaml:"text"`
}

func main() {
	configFile := flag.String("config", "config/synapse-echo.yaml", "path to the endpoint configuration")
	version := flag.String("version", "v1", "subject version prefix")
	flag.Parse()

	if err := run(*configFile, *version); err != nil {
		helpers.Println(constant.ERROR, "synapse-echo: "+err.Error())
		os.Exit(1)
	}
}

func run(configFile, version string) error {
	cfg, err := engine.LoadConfig(configFile)
	if err != nil {
		return err
	}

	ctx := context.Background()
	endpoint, err := engine.NewEndpointFromConfig(ctx, cfg)
	if err != nil {
		return err
	}
	logger := endpoint.Logger()

	subs := engine.NewSubscriptions(version).
		Handle("echo", engine.Typed(func(ctx context.Context, in echo) (echo, error) {
			return in, nil
		})).
		Stream("audit", engine.StreamHandlerFunc(func(ctx context.Context, req *engine.Request) error {
			logger.Info(constant.EventReceived,
				log.String("subject", req.Subject),
				log.String("sender", req.Sender),
				log.String("message_id", req.MessageID))
			return nil
		}))
	if err := endpoint.RegisterAll(subs); err != nil {
		_ = endpoint.Close(ctx)
		return err
	}

	services := []graceful.Shutdowner{endpoint}
	if metrics := endpoint.Metrics(); metrics != nil && cfg.Metrics.Address != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		server := &http.Server{Addr: cfg.Metrics.Address, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server stopped", log.Err(err))
			}
		}()
		services = append([]graceful.Shutdowner{server}, services...)
	}

	logger.Info(constant.StartServiceSuccessful,
		log.String("service", endpoint.Name()),
		log.Any("subjects", subs.Subjects()),
		log.String("reply_subject", endpoint.ReplySubject()))
	return graceful.GracefulShutdown(graceful.Sequence(services...), constant.ServiceDefaultGracefulTime)
}
