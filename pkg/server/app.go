package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	applogger "LoadCast/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// Runner is a blocking server. Start returns nil after a graceful Stop.
type Runner interface {
	Start() error
	Stop(ctx context.Context) error
}

type closer struct {
	name string
	fn   func() error
}

// App encapsulates the application lifecycle: one server plus the resources it depends on.
type App struct {
	server  Runner
	log     *applogger.Logger
	closers []closer
	signals []os.Signal
}

type Option func(*App)

func WithLogger(l *applogger.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.log = l
		}
	}
}

// WithCloser registers fn to run after the server stops. Closers run in reverse order.
func WithCloser(name string, fn func() error) Option {
	return func(a *App) { a.closers = append(a.closers, closer{name: name, fn: fn}) }
}

// WithSignals overrides the signals that trigger shutdown.
func WithSignals(sigs ...os.Signal) Option {
	return func(a *App) { a.signals = sigs }
}

// New creates a new App around server.
func New(server Runner, opts ...Option) *App {
	a := &App{
		server:  server,
		log:     applogger.Nop(),
		signals: []os.Signal{os.Interrupt, syscall.SIGTERM},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run starts the server and blocks until ctx is done, a shutdown signal arrives
// or the server fails. Resources are closed before it returns.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, a.signals...)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(a.server.Start)
	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("shutting down...")
		return a.server.Stop(context.WithoutCancel(gctx))
	})

	err := g.Wait()
	a.shutdown()
	if err != nil {
		a.log.Error("server exited with error", applogger.Error(err))
		return err
	}
	a.log.Info("shutdown complete")
	return nil
}

func (a *App) shutdown() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.fn(); err != nil {
			a.log.Warn("close error", applogger.String("resource", c.name), applogger.Error(err))
		}
	}
}
