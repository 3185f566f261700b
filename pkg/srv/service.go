package srv

import (
	"context"
	"errors"
	"fmt"

	"github.com/bokjirang/policybot/pkg/log"
)

// Service is a long-running component. Start may block until the service
// stops; Shutdown must return promptly.
type Service interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// StartServices launches every service in its own goroutine. A start
// failure is fatal.
func StartServices(ctx context.Context, services []Service) {
	logger := log.FromCtx(ctx)
	for _, service := range services {
		go func(service Service) {
			if err := service.Start(ctx); err != nil {
				logger.Fatal().Err(err).Msgf("%T failed to start", service)
			}
		}(service)
	}
}

// ShutdownServices waits for ctx to end, then stops services in reverse
// order so cleanups registered first run last.
func ShutdownServices(ctx context.Context, services []Service) error {
	<-ctx.Done()

	var errs []error
	for i := len(services) - 1; i >= 0; i-- {
		if err := services[i].Shutdown(ctx); err != nil {
			log.FromCtx(ctx).Error().Err(err).Msgf("%T failed to shutdown", services[i])
			errs = append(errs, fmt.Errorf("%T: %w", services[i], err))
		}
	}
	return errors.Join(errs...)
}
