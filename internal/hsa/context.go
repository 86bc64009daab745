package hsa

import (
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Context is everything a kernel launch needs: an initialized runtime, the
// first GPU agent, its kernarg, fine-grained and coarse-grained regions, and
// a queue on that agent. Build one per process; Close releases it all.
type Context struct {
	Runtime       *Runtime
	Agent         Agent
	KernargRegion MemoryRegion
	FineRegion    MemoryRegion
	CoarseRegion  MemoryRegion
	Queue         *Queue

	log       *zap.Logger
	closeOnce sync.Once
	closeErr  error
}

// NewContext opens drv, picks the GPU agent and its regions and creates a
// queue of queueSize packets. On failure everything created so far is
// released again.
func NewContext(drv Driver, log *zap.Logger, queueSize uint32) (*Context, error) {
	rt, err := Open(drv, log)
	if err != nil {
		return nil, err
	}
	ctx := &Context{Runtime: rt, log: rt.log.Named("context")}
	if err := ctx.init(queueSize); err != nil {
		if cerr := ctx.Close(); cerr != nil {
			ctx.log.Warn("Teardown after failed initialization", zap.Error(cerr))
		}
		return nil, err
	}
	ctx.log.Info("Context ready",
		zap.Stringer("agent", ctx.Agent),
		zap.Stringer("kernarg", ctx.KernargRegion),
		zap.Stringer("fine", ctx.FineRegion),
		zap.Stringer("coarse", ctx.CoarseRegion),
		zap.Uint64("queue", ctx.Queue.ID()))
	return ctx, nil
}

func (ctx *Context) init(queueSize uint32) error {
	agent, err := ctx.Runtime.FindGPU()
	if err != nil {
		return err
	}
	ctx.Agent = agent
	if err := ctx.selectRegions(); err != nil {
		return err
	}
	ctx.Queue, err = ctx.Runtime.CreateQueue(agent, queueSize)
	return err
}

// selectRegions takes the first region of each class. Without a dedicated
// kernarg region, kernel arguments go to fine-grained memory.
func (ctx *Context) selectRegions() error {
	for region, err := range ctx.Agent.Regions() {
		if err != nil {
			return err
		}
		class, err := region.Classify()
		if err != nil {
			return err
		}
		if class.Kernarg() && !ctx.KernargRegion.Valid() {
			ctx.KernargRegion = region
		}
		if class.FineGrained() && !ctx.FineRegion.Valid() {
			ctx.FineRegion = region
		}
		if class.CoarseGrained() && !ctx.CoarseRegion.Valid() {
			ctx.CoarseRegion = region
		}
	}
	if !ctx.FineRegion.Valid() {
		return newError(KindMemoryRegionNotFound, "no fine-grained global region on %s", ctx.Agent)
	}
	if !ctx.CoarseRegion.Valid() {
		return newError(KindMemoryRegionNotFound, "no coarse-grained global region on %s", ctx.Agent)
	}
	if !ctx.KernargRegion.Valid() {
		ctx.log.Debug("No kernarg region, using fine-grained region for kernel arguments")
		ctx.KernargRegion = ctx.FineRegion
	}
	return nil
}

// AllocateKernarg allocates a kernel argument block and grants the context's
// agent access to it.
func (ctx *Context) AllocateKernarg(size uint64) (*Memory, error) {
	return ctx.allocate(ctx.KernargRegion, size)
}

// AllocateFine allocates host-visible fine-grained memory accessible to the
// context's agent.
func (ctx *Context) AllocateFine(size uint64) (*Memory, error) {
	return ctx.allocate(ctx.FineRegion, size)
}

// AllocateCoarse allocates device-local coarse-grained memory accessible to
// the context's agent.
func (ctx *Context) AllocateCoarse(size uint64) (*Memory, error) {
	return ctx.allocate(ctx.CoarseRegion, size)
}

func (ctx *Context) allocate(region MemoryRegion, size uint64) (*Memory, error) {
	mem, err := region.Allocate(size)
	if err != nil {
		return nil, err
	}
	if err := mem.AllowAccess(ctx.Agent); err != nil {
		if ferr := mem.Free(); ferr != nil {
			ctx.log.Warn("Failed to free memory after access grant failure", zap.Error(ferr))
		}
		return nil, err
	}
	return mem, nil
}

// Close destroys the queue, then shuts the runtime down. Both are attempted
// even if the first fails; the joined error is returned. Later calls return
// the first result.
func (ctx *Context) Close() error {
	ctx.closeOnce.Do(func() {
		var errs []error
		if ctx.Queue != nil {
			if err := ctx.Queue.Destroy(); err != nil {
				errs = append(errs, err)
			}
		}
		if err := ctx.Runtime.Close(); err != nil {
			errs = append(errs, err)
		}
		ctx.closeErr = errors.Join(errs...)
		if ctx.closeErr != nil {
			ctx.log.Error("Context teardown finished with errors", zap.Error(ctx.closeErr))
		} else {
			ctx.log.Debug("Context closed")
		}
	})
	return ctx.closeErr
}
