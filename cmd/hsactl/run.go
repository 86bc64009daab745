package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/fxnlabs/hsa-runtime/fixtures"
	"github.com/fxnlabs/hsa-runtime/internal/gpu"
	"github.com/fxnlabs/hsa-runtime/internal/hsa"
	"github.com/fxnlabs/hsa-runtime/internal/session"
	"github.com/urfave/cli/v2"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

// tolerance for comparing device float32 results against float64 references.
const tolerance = 1e-5

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Dispatch a built-in kernel and verify its output",
		ArgsUsage: "fill_u32 | vector_add_f32 | scale_f32",
		Flags: []cli.Flag{
			&cli.UintFlag{Name: "n", Value: 1024, Usage: "number of work-items"},
			&cli.UintFlag{Name: "workgroup", Value: 64, Usage: "work-items per workgroup"},
			&cli.UintFlag{Name: "value", Value: 0xdeadbeef, Usage: "fill value for fill_u32"},
			&cli.Float64Flag{Name: "factor", Value: 2.5, Usage: "scale factor for scale_f32"},
		},
		Action: func(c *cli.Context) error {
			kernel := c.Args().First()
			if kernel == "" {
				return cli.ShowSubcommandHelp(c)
			}
			job := runJob{
				n:         uint32(c.Uint("n")),
				workgroup: uint16(c.Uint("workgroup")),
				value:     uint32(c.Uint("value")),
				factor:    float32(c.Float64("factor")),
			}
			if job.n == 0 || job.workgroup == 0 {
				return fmt.Errorf("--n and --workgroup must be positive")
			}
			cfg := configFrom(c)
			return session.Run(cfg, func(s *session.Session) error {
				l, err := newLauncher(s.Context(), fixtures.BuiltinKernels, s.WaitTimeout(), loggerFrom(c))
				if err != nil {
					return err
				}
				defer l.Close()
				if err := job.run(l, kernel); err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "%s: %d work-items verified\n", kernel, job.n)
				return nil
			})
		},
	}
}

type runJob struct {
	n         uint32
	workgroup uint16
	value     uint32
	factor    float32
}

func (j runJob) run(l *launcher, kernel string) error {
	switch kernel {
	case "fill_u32":
		return j.fill(l)
	case "vector_add_f32":
		return j.vectorAdd(l)
	case "scale_f32":
		return j.scale(l)
	}
	return fmt.Errorf("unknown kernel %q", kernel)
}

// buffer allocates fine-grained memory the host can read back.
func (j runJob) buffer(l *launcher, init []byte) (*hsa.Memory, error) {
	mem, err := l.ctx.AllocateFine(uint64(j.n) * 4)
	if err != nil {
		return nil, err
	}
	copy(mem.Bytes(), init)
	return mem, nil
}

func (j runJob) fill(l *launcher) error {
	out, err := j.buffer(l, nil)
	if err != nil {
		return err
	}
	defer out.Free()

	args := hsa.NewKernarg().Pointer(out.Address()).Uint32(j.value).Uint32(j.n)
	if err := l.launch("fill_u32.kd", args, j.n, j.workgroup); err != nil {
		return err
	}
	got, err := gpu.BytesToUint32(out.Bytes())
	if err != nil {
		return err
	}
	for i, v := range got {
		if v != j.value {
			return fmt.Errorf("element %d: got 0x%x, want 0x%x", i, v, j.value)
		}
	}
	return nil
}

func (j runJob) vectorAdd(l *launcher) error {
	a, b := randomVector(j.n), randomVector(j.n)
	ma, err := j.buffer(l, gpu.Float32ToBytes(a))
	if err != nil {
		return err
	}
	defer ma.Free()
	mb, err := j.buffer(l, gpu.Float32ToBytes(b))
	if err != nil {
		return err
	}
	defer mb.Free()
	out, err := j.buffer(l, nil)
	if err != nil {
		return err
	}
	defer out.Free()

	args := hsa.NewKernarg().Pointer(ma.Address()).Pointer(mb.Address()).Pointer(out.Address()).Uint32(j.n)
	if err := l.launch("vector_add_f32.kd", args, j.n, j.workgroup); err != nil {
		return err
	}

	want := make([]float64, j.n)
	floats.AddTo(want, gpu.Float32ToFloat64(a), gpu.Float32ToFloat64(b))
	return compare(out, want)
}

func (j runJob) scale(l *launcher) error {
	in := randomVector(j.n)
	src, err := j.buffer(l, gpu.Float32ToBytes(in))
	if err != nil {
		return err
	}
	defer src.Free()
	out, err := j.buffer(l, nil)
	if err != nil {
		return err
	}
	defer out.Free()

	args := hsa.NewKernarg().Pointer(src.Address()).Pointer(out.Address()).Float32(j.factor).Uint32(j.n)
	if err := l.launch("scale_f32.kd", args, j.n, j.workgroup); err != nil {
		return err
	}

	want := make([]float64, j.n)
	floats.ScaleTo(want, float64(j.factor), gpu.Float32ToFloat64(in))
	return compare(out, want)
}

func compare(out *hsa.Memory, want []float64) error {
	got32, err := gpu.BytesToFloat32(out.Bytes())
	if err != nil {
		return err
	}
	got := gpu.Float32ToFloat64(got32)
	if floats.EqualApprox(got, want, tolerance) {
		return nil
	}
	for i := range got {
		if !scalar.EqualWithinAbsOrRel(got[i], want[i], tolerance, tolerance) {
			return fmt.Errorf("element %d: got %g, want %g", i, got[i], want[i])
		}
	}
	return fmt.Errorf("result differs from reference")
}

func randomVector(n uint32) []float32 {
	v := make([]float32, n)
	for i := range v {
		v[i] = rand.Float32()*2 - 1
	}
	return v
}
