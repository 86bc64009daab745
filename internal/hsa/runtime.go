package hsa

import (
	"sync"

	"go.uber.org/zap"
)

// Runtime brackets all use of a Driver: Open initializes it, Close shuts it
// down. Agents, regions, queues, signals and memory obtained through a
// Runtime must be released before Close.
type Runtime struct {
	drv Driver
	log *zap.Logger

	closeOnce sync.Once
	closeErr  error
}

// Open initializes the driver. A nil logger is replaced with a no-op one.
func Open(drv Driver, log *zap.Logger) (*Runtime, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if drv == nil {
		return nil, newError(KindInvalidArgument, "nil driver")
	}
	if status := drv.Init(); status != StatusSuccess {
		err := wrapAs(KindInitialization, fromStatus(drv, status, "initialize runtime"))
		log.Error("Runtime initialization failed", zap.Error(err))
		return nil, err
	}
	log.Debug("Runtime initialized")
	return &Runtime{drv: drv, log: log}, nil
}

// Driver returns the driver the runtime was opened with.
func (rt *Runtime) Driver() Driver {
	return rt.drv
}

// Logger returns the runtime's logger.
func (rt *Runtime) Logger() *zap.Logger {
	return rt.log
}

// Close shuts the driver down. Calling it more than once returns the first
// result.
func (rt *Runtime) Close() error {
	rt.closeOnce.Do(func() {
		if status := rt.drv.ShutDown(); status != StatusSuccess {
			rt.closeErr = wrapAs(KindShutdown, fromStatus(rt.drv, status, "shut down runtime"))
			rt.log.Error("Runtime shutdown failed", zap.Error(rt.closeErr))
			return
		}
		rt.log.Debug("Runtime shut down")
	})
	return rt.closeErr
}
