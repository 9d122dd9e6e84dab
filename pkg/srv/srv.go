package srv

import (
	"context"
	"fmt"

	"github.com/mindstash/mindstash/pkg/log"
)

type Service interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// StartServices launches every service in its own goroutine and returns
// a channel carrying start failures. Failures are reported instead of
// aborting the process, so deferred cleanup (log flush, database close)
// still runs on the way out.
func StartServices(ctx context.Context, services []Service) <-chan error {
	errs := make(chan error, len(services))
	for _, service := range services {
		go func(service Service) {
			if err := service.Start(ctx); err != nil {
				errs <- fmt.Errorf("%T failed to start: %w", service, err)
			}
		}(service)
	}
	return errs
}

// ShutdownServices blocks until the context is cancelled or a service
// fails to start, then shuts every service down in order. It returns
// the start failure, if any; shutdown errors are logged but do not mask
// it.
func ShutdownServices(ctx context.Context, services []Service, errs <-chan error) error {
	var startErr error
	select {
	case <-ctx.Done():
	case startErr = <-errs:
		log.FromCtx(ctx).Error().Err(startErr).Msg("service failed, shutting down")
	}

	for _, service := range services {
		if err := service.Shutdown(ctx); err != nil {
			log.FromCtx(ctx).Error().Err(err).Msgf("%T failed to shutdown", service)
		}
	}
	return startErr
}
