// Package bootstrap runs long-lived processes and shuts them down gracefully.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

const defaultShutdownTimeout = 10 * time.Second

type shutdownHook struct {
	name string
	fn   func(ctx context.Context) error
}

// App runs a process until it returns or the process is interrupted.
type App struct {
	mu              sync.Mutex
	hooks           []shutdownHook
	shutdownTimeout time.Duration
}

type Option func(*App)

// WithShutdownTimeout bounds how long shutdown hooks and the run function may take after a signal.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(a *App) {
		a.shutdownTimeout = timeout
	}
}

func New(opts ...Option) *App {
	a := &App{shutdownTimeout: defaultShutdownTimeout}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// OnShutdown registers fn to be called on shutdown.
// Hooks run in reverse order of registration. It is safe to call from the run function.
func (a *App) OnShutdown(name string, fn func(ctx context.Context) error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hooks = append(a.hooks, shutdownHook{name: name, fn: fn})
}

// CloseOnShutdown registers c.Close as a shutdown hook.
func (a *App) CloseOnShutdown(name string, c io.Closer) {
	a.OnShutdown(name, func(context.Context) error {
		return c.Close()
	})
}

// Run calls run with a context that is canceled on SIGINT or SIGTERM.
// If run returns first, its error is returned and no hooks are called.
// Otherwise the hooks are called and Run waits for run to return.
func (a *App) Run(ctx context.Context, run func(ctx context.Context) error) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx)
	}()

	var runErr error
	stopped := false
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		// run may return right after the signal, before ctx.Done is selected.
		if ctx.Err() == nil {
			return runErr
		}
		stopped = true
	}

	slog.Default().Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer shutdownCancel()

	errs := []error{a.shutdown(shutdownCtx)}
	if stopped {
		return errors.Join(append(errs, runErr)...)
	}
	select {
	case err := <-errCh:
		errs = append(errs, err)
	case <-shutdownCtx.Done():
		errs = append(errs, fmt.Errorf("wait for the process to stop: %w", shutdownCtx.Err()))
	}
	return errors.Join(errs...)
}

func (a *App) shutdown(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	for i := len(a.hooks) - 1; i >= 0; i-- {
		hook := a.hooks[i]
		if err := hook.fn(ctx); err != nil {
			slog.Default().Error("shutdown hook failed", "hook", hook.name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", hook.name, err))
			continue
		}
		slog.Default().Debug("shutdown hook finished", "hook", hook.name)
	}
	return errors.Join(errs...)
}
