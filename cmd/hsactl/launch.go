package main

import (
	"fmt"
	"time"

	"github.com/fxnlabs/hsa-runtime/internal/hsa"
	"go.uber.org/zap"
)

// launcher dispatches built-in kernels on a session context.
type launcher struct {
	ctx     *hsa.Context
	exe     *hsa.Executable
	timeout time.Duration
	log     *zap.Logger
}

func newLauncher(ctx *hsa.Context, codeObject []byte, timeout time.Duration, log *zap.Logger) (*launcher, error) {
	exe, err := ctx.Runtime.LoadExecutable(ctx.Agent, codeObject)
	if err != nil {
		return nil, err
	}
	return &launcher{ctx: ctx, exe: exe, timeout: timeout, log: log}, nil
}

func (l *launcher) Close() error {
	return l.exe.Destroy()
}

// launch copies args into a fresh kernarg block, dispatches symbol over a
// one-dimensional grid of n work-items and waits for completion.
func (l *launcher) launch(symbol string, args *hsa.Kernarg, n uint32, workgroup uint16) error {
	sym, err := l.exe.KernelSymbol(symbol, l.ctx.Agent)
	if err != nil {
		return err
	}
	size, err := sym.KernargSegmentSize()
	if err != nil {
		return err
	}
	if args.Len() > int(size) {
		return fmt.Errorf("%s takes %d bytes of arguments, got %d", symbol, size, args.Len())
	}

	kernarg, err := l.ctx.AllocateKernarg(uint64(size))
	if err != nil {
		return err
	}
	defer kernarg.Free()
	if err := args.CopyTo(kernarg); err != nil {
		return err
	}

	d, err := sym.Dispatch(kernarg.Address(), [3]uint16{workgroup, 1, 1}, [3]uint32{n, 1, 1})
	if err != nil {
		return err
	}
	done, err := l.ctx.Runtime.NewSignal(1)
	if err != nil {
		return err
	}
	defer done.Destroy()

	start := time.Now()
	index, err := l.ctx.Queue.Dispatch(d, done)
	if err != nil {
		return err
	}
	if v := done.WaitEq(0, l.timeout); v != 0 {
		if qerr := l.ctx.Queue.Err(); qerr != nil {
			return fmt.Errorf("%s failed: %w", symbol, qerr)
		}
		return fmt.Errorf("%s did not complete within %s (signal %d)", symbol, l.timeout, v)
	}
	l.log.Info("Kernel completed",
		zap.String("symbol", symbol),
		zap.Uint64("index", index),
		zap.Uint32("workItems", n),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}
