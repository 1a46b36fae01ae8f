package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/ledclock/internal/config"
)

// App is the main application container that manages all services and their lifecycle.
type App struct {
	cfg      *config.Config
	services *Services
	ctx      context.Context
	cancel   context.CancelFunc
}

// New creates a new App instance with all services initialized but not started.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	services, err := NewServices(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:      cfg,
		services: services,
	}, nil
}

// Services exposes the service container.
func (a *App) Services() *Services {
	return a.services
}

// Start starts all services.
// The provided context is used for cancellation.
func (a *App) Start(ctx context.Context) error {
	a.ctx, a.cancel = context.WithCancel(ctx)

	if err := a.services.Start(a.ctx); err != nil {
		a.cancel()
		return err
	}

	log.Info().Str("run_id", a.services.RunID).Msg("LED clock started")
	return nil
}

// Stop gracefully shuts down all services.
func (a *App) Stop() error {
	log.Info().Msg("Shutting down...")

	if a.cancel != nil {
		a.cancel()
	}

	if a.services == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout.Duration())
	defer cancel()
	return a.services.Stop(ctx)
}

// Wait blocks until the application context is cancelled.
func (a *App) Wait() {
	if a.ctx != nil {
		<-a.ctx.Done()
	}
}

// SignalContext creates a context that is cancelled when SIGINT or SIGTERM is received.
func SignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Warn().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	return ctx
}
