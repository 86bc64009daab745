package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/fxnlabs/hsa-runtime/internal/hsa"
)

// SoftKernel runs one workgroup of a dispatch on the software device.
// Workgroups of the same dispatch run concurrently; a kernel must only write
// memory owned by its own work-items.
type SoftKernel func(l *Launch, wg Workgroup) error

// Launch is what a running kernel sees of its dispatch.
type Launch struct {
	Grid          [3]uint32
	WorkgroupSize [3]uint16
	Kernarg       []byte

	agent hsa.AgentHandle
	mem   *addressSpace
}

// Args reads the kernel argument block in declaration order.
func (l *Launch) Args() *hsa.KernargReader {
	return hsa.NewKernargReader(l.Kernarg)
}

// Memory returns size bytes at addr. It fails if the range is not allocated
// or the dispatching agent was never granted access to it.
func (l *Launch) Memory(addr hsa.Address, size uint64) ([]byte, error) {
	b, ok := l.mem.view(l.agent, addr, size)
	if !ok {
		return nil, fmt.Errorf("agent 0x%x cannot access %d bytes at 0x%x", uint64(l.agent), size, uint64(addr))
	}
	return b, nil
}

// Workgroup is one block of work-items. Size is clipped at the grid edge.
type Workgroup struct {
	ID     [3]uint32
	Origin [3]uint32
	Size   [3]uint32
}

// ForEach calls f with the global id of every work-item in the group.
func (wg Workgroup) ForEach(f func(x, y, z uint32)) {
	for z := wg.Origin[2]; z < wg.Origin[2]+wg.Size[2]; z++ {
		for y := wg.Origin[1]; y < wg.Origin[1]+wg.Size[1]; y++ {
			for x := wg.Origin[0]; x < wg.Origin[0]+wg.Size[0]; x++ {
				f(x, y, z)
			}
		}
	}
}

func ceilDiv(a, b uint32) uint32 {
	return (a + b - 1) / b
}

// workgroups splits the grid into workgroups in x-fastest order.
func workgroups(grid [3]uint32, size [3]uint16) []Workgroup {
	var counts [3]uint32
	for i := range counts {
		counts[i] = ceilDiv(grid[i], uint32(size[i]))
	}
	groups := make([]Workgroup, 0, counts[0]*counts[1]*counts[2])
	for z := uint32(0); z < counts[2]; z++ {
		for y := uint32(0); y < counts[1]; y++ {
			for x := uint32(0); x < counts[0]; x++ {
				wg := Workgroup{ID: [3]uint32{x, y, z}}
				for i := range wg.Origin {
					wg.Origin[i] = wg.ID[i] * uint32(size[i])
					wg.Size[i] = min(uint32(size[i]), grid[i]-wg.Origin[i])
				}
				groups = append(groups, wg)
			}
		}
	}
	return groups
}

var builtinKernels = map[string]SoftKernel{
	"fill_u32":       fillU32,
	"vector_add_f32": vectorAddF32,
	"scale_f32":      scaleF32,
}

// fillU32(dst *u32, value u32, count u32)
func fillU32(l *Launch, wg Workgroup) error {
	args := l.Args()
	dst, value, count := args.Pointer(), args.Uint32(), args.Uint32()
	if err := args.Err(); err != nil {
		return err
	}
	out, err := l.Memory(dst, uint64(count)*4)
	if err != nil {
		return err
	}
	wg.ForEach(func(x, _, _ uint32) {
		if x < count {
			binary.LittleEndian.PutUint32(out[x*4:], value)
		}
	})
	return nil
}

// vectorAddF32(a *f32, b *f32, out *f32, n u32)
func vectorAddF32(l *Launch, wg Workgroup) error {
	args := l.Args()
	pa, pb, pout, n := args.Pointer(), args.Pointer(), args.Pointer(), args.Uint32()
	if err := args.Err(); err != nil {
		return err
	}
	size := uint64(n) * 4
	a, err := l.Memory(pa, size)
	if err != nil {
		return err
	}
	b, err := l.Memory(pb, size)
	if err != nil {
		return err
	}
	out, err := l.Memory(pout, size)
	if err != nil {
		return err
	}
	wg.ForEach(func(x, _, _ uint32) {
		if x < n {
			putFloat32(out, x, float32At(a, x)+float32At(b, x))
		}
	})
	return nil
}

// scaleF32(in *f32, out *f32, factor f32, n u32)
func scaleF32(l *Launch, wg Workgroup) error {
	args := l.Args()
	pin, pout, factor, n := args.Pointer(), args.Pointer(), args.Float32(), args.Uint32()
	if err := args.Err(); err != nil {
		return err
	}
	size := uint64(n) * 4
	in, err := l.Memory(pin, size)
	if err != nil {
		return err
	}
	out, err := l.Memory(pout, size)
	if err != nil {
		return err
	}
	wg.ForEach(func(x, _, _ uint32) {
		if x < n {
			putFloat32(out, x, float32At(in, x)*factor)
		}
	})
	return nil
}

func float32At(b []byte, i uint32) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
}

func putFloat32(b []byte, i uint32, v float32) {
	binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
}
