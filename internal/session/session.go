// Package session wires configuration, logging, the driver and an
// hsa.Context into an fx application. The context is opened when the
// application starts and torn down when it stops.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fxnlabs/hsa-runtime/internal/config"
	"github.com/fxnlabs/hsa-runtime/internal/gpu"
	"github.com/fxnlabs/hsa-runtime/internal/hsa"
	"github.com/fxnlabs/hsa-runtime/internal/logger"
	"github.com/fxnlabs/hsa-runtime/internal/metrics"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Module expects a *config.Config in the graph and provides the logger, the
// driver and the *Session.
var Module = fx.Module("session",
	fx.Provide(
		NewLogger,
		NewDriver,
		New,
	),
)

// NewLogger builds the process logger from the configured verbosity.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(cfg.Logger.Verbosity)
}

// NewDriver selects the driver named in the configuration.
func NewDriver(cfg *config.Config, log *zap.Logger) (hsa.Driver, error) {
	return gpu.NewDriver(cfg, log)
}

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Driver    hsa.Driver
	Log       *zap.Logger
}

// Session owns the process-wide hsa.Context and, when configured, the
// metrics exporter.
type Session struct {
	cfg *config.Config
	drv hsa.Driver
	log *zap.Logger

	mu      sync.Mutex
	ctx     *hsa.Context
	metrics *metrics.Server
}

// New registers the session's start and stop hooks on the lifecycle.
func New(p Params) *Session {
	s := &Session{cfg: p.Config, drv: p.Driver, log: p.Log.Named("session")}
	p.Lifecycle.Append(fx.Hook{OnStart: s.Start, OnStop: s.Stop})
	return s
}

// Start opens the runtime and creates the context's queue, then starts the
// metrics exporter if an address is configured.
func (s *Session) Start(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx != nil {
		return nil
	}
	ctx, err := hsa.NewContext(s.drv, s.log, s.cfg.Queue.Size)
	if err != nil {
		return fmt.Errorf("open %s context: %w", gpu.DriverName(s.drv), err)
	}
	s.ctx = ctx
	if addr := s.cfg.Metrics.ListenAddress; addr != "" {
		s.metrics = metrics.NewServer(addr, s.log)
		s.metrics.Start()
	}
	s.log.Info("Session started",
		zap.String("driver", gpu.DriverName(s.drv)),
		zap.Uint32("queueSize", s.cfg.Queue.Size))
	return nil
}

// Stop shuts the exporter down and closes the context. Both are attempted;
// failures are joined.
func (s *Session) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	if s.metrics != nil {
		if err := s.metrics.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
		s.metrics = nil
	}
	if s.ctx != nil {
		if err := s.ctx.Close(); err != nil {
			errs = append(errs, err)
		}
		s.ctx = nil
	}
	err := errors.Join(errs...)
	if err != nil {
		s.log.Error("Session stopped with errors", zap.Error(err))
	} else {
		s.log.Info("Session stopped")
	}
	return err
}

// Context returns the open context, or nil outside Start and Stop.
func (s *Session) Context() *hsa.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

// Logger returns the session's logger.
func (s *Session) Logger() *zap.Logger {
	return s.log
}

// WaitTimeout is the configured bound for completion signal waits.
func (s *Session) WaitTimeout() time.Duration {
	return s.cfg.Signal.WaitTimeout
}

// Run starts an application around cfg, calls fn with the started session
// and stops the application again. fn's error takes precedence over a stop
// failure.
func Run(cfg *config.Config, fn func(*Session) error) error {
	var s *Session
	app := fx.New(
		fx.Supply(cfg),
		Module,
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			l := &fxevent.ZapLogger{Logger: log.Named("fx")}
			l.UseLogLevel(zap.DebugLevel)
			return l
		}),
		fx.Populate(&s),
	)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(context.Background(), app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	runErr := fn(s)

	stopCtx, cancelStop := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancelStop()
	if err := app.Stop(stopCtx); err != nil && runErr == nil {
		return err
	}
	return runErr
}
