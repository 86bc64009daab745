package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fxnlabs/hsa-runtime/fixtures"
	"github.com/fxnlabs/hsa-runtime/internal/gpu"
	"github.com/fxnlabs/hsa-runtime/internal/hsa"
	"github.com/fxnlabs/hsa-runtime/internal/session"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func stressCommand() *cli.Command {
	return &cli.Command{
		Name:  "stress",
		Usage: "Dispatch from many producers at once to exercise the shared queue",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "producers", Value: 8, Usage: "concurrent producers"},
			&cli.IntFlag{Name: "dispatches", Value: 256, Usage: "dispatches per producer"},
			&cli.UintFlag{Name: "n", Value: 256, Usage: "work-items per dispatch"},
		},
		Action: func(c *cli.Context) error {
			st := stress{
				producers:  c.Int("producers"),
				dispatches: c.Int("dispatches"),
				n:          uint32(c.Uint("n")),
				log:        loggerFrom(c),
			}
			if st.producers <= 0 || st.dispatches <= 0 || st.n == 0 {
				return fmt.Errorf("--producers, --dispatches and --n must be positive")
			}
			return session.Run(configFrom(c), func(s *session.Session) error {
				l, err := newLauncher(s.Context(), fixtures.BuiltinKernels, s.WaitTimeout(), st.log)
				if err != nil {
					return err
				}
				defer l.Close()

				before := s.Context().Queue.LoadWriteIndex()
				start := time.Now()
				if err := st.run(l); err != nil {
					return err
				}
				elapsed := time.Since(start)

				total := uint64(st.producers * st.dispatches)
				info := s.Context().Queue.Info()
				if published := info.WriteIndex - before; published != total {
					return fmt.Errorf("write index advanced by %d, dispatched %d", published, total)
				}
				fmt.Fprintf(c.App.Writer, "%s dispatches from %d producers in %s (%s/s), queue read index %d\n",
					humanize.Comma(int64(total)), st.producers, elapsed.Round(time.Millisecond),
					humanize.Commaf(float64(total)/elapsed.Seconds()), info.ReadIndex)
				return nil
			})
		},
	}
}

type stress struct {
	producers  int
	dispatches int
	n          uint32
	log        *zap.Logger
}

func (st stress) run(l *launcher) error {
	sym, err := l.exe.KernelSymbol("fill_u32.kd", l.ctx.Agent)
	if err != nil {
		return err
	}
	var g errgroup.Group
	for p := range st.producers {
		g.Go(func() error {
			return st.produce(l, sym, uint32(p))
		})
	}
	return g.Wait()
}

// produce submits every dispatch of one producer before waiting, so the
// queue fills up and producers contend for slots. Each dispatch fills its
// own stripe of the output buffer with the producer id.
func (st stress) produce(l *launcher, sym hsa.KernelSymbol, id uint32) error {
	ctx := l.ctx
	stripe := uint64(st.n) * 4
	out, err := ctx.AllocateFine(stripe * uint64(st.dispatches))
	if err != nil {
		return err
	}
	defer out.Free()

	done, err := ctx.Runtime.NewSignal(int64(st.dispatches))
	if err != nil {
		return err
	}
	defer done.Destroy()

	kernargs := make([]*hsa.Memory, 0, st.dispatches)
	defer func() {
		for _, k := range kernargs {
			k.Free()
		}
	}()

	for i := range st.dispatches {
		kernarg, err := ctx.AllocateKernarg(16)
		if err != nil {
			return err
		}
		kernargs = append(kernargs, kernarg)
		dst := out.Address() + hsa.Address(uint64(i)*stripe)
		if err := hsa.NewKernarg().Pointer(dst).Uint32(id).Uint32(st.n).CopyTo(kernarg); err != nil {
			return err
		}
		d, err := sym.Dispatch(kernarg.Address(), [3]uint16{64, 1, 1}, [3]uint32{st.n, 1, 1})
		if err != nil {
			return err
		}
		if _, err := ctx.Queue.Dispatch(d, done); err != nil {
			return err
		}
	}

	if v := done.WaitEq(0, l.timeout); v != 0 {
		if qerr := ctx.Queue.Err(); qerr != nil {
			return fmt.Errorf("producer %d: %w", id, qerr)
		}
		return fmt.Errorf("producer %d: %d dispatches still pending after %s", id, v, l.timeout)
	}

	got, err := gpu.BytesToUint32(out.Bytes())
	if err != nil {
		return err
	}
	for i, v := range got {
		if v != id {
			return fmt.Errorf("producer %d: element %d holds %d", id, i, v)
		}
	}
	st.log.Debug("Producer finished", zap.Uint32("producer", id), zap.Int("dispatches", st.dispatches))
	return nil
}
