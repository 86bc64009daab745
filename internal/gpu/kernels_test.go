package gpu

import (
	"testing"

	"github.com/fxnlabs/hsa-runtime/internal/hsa"
	"github.com/stretchr/testify/assert"
)

func TestWorkgroups(t *testing.T) {
	t.Run("exact fit", func(t *testing.T) {
		groups := workgroups([3]uint32{8, 1, 1}, [3]uint16{4, 1, 1})
		assert.Len(t, groups, 2)
		assert.Equal(t, [3]uint32{4, 0, 0}, groups[1].Origin)
		assert.Equal(t, [3]uint32{4, 1, 1}, groups[1].Size)
	})

	t.Run("partial edge group", func(t *testing.T) {
		groups := workgroups([3]uint32{10, 1, 1}, [3]uint16{4, 1, 1})
		assert.Len(t, groups, 3)
		assert.Equal(t, [3]uint32{2, 0, 0}, groups[2].ID)
		assert.Equal(t, [3]uint32{2, 1, 1}, groups[2].Size)
	})

	t.Run("workgroup larger than grid", func(t *testing.T) {
		groups := workgroups([3]uint32{3, 1, 1}, [3]uint16{64, 1, 1})
		assert.Len(t, groups, 1)
		assert.Equal(t, [3]uint32{3, 1, 1}, groups[0].Size)
	})

	t.Run("three dimensions in x-fastest order", func(t *testing.T) {
		groups := workgroups([3]uint32{4, 4, 2}, [3]uint16{2, 2, 1})
		assert.Len(t, groups, 8)
		assert.Equal(t, [3]uint32{1, 0, 0}, groups[1].ID)
		assert.Equal(t, [3]uint32{0, 1, 0}, groups[2].ID)
		assert.Equal(t, [3]uint32{0, 0, 1}, groups[4].ID)
	})
}

func TestWorkgroup_ForEachCoversGrid(t *testing.T) {
	grid := [3]uint32{5, 3, 2}
	seen := make(map[[3]uint32]int)
	for _, wg := range workgroups(grid, [3]uint16{2, 2, 2}) {
		wg.ForEach(func(x, y, z uint32) {
			seen[[3]uint32{x, y, z}]++
		})
	}
	assert.Len(t, seen, 5*3*2)
	for id, n := range seen {
		assert.Equal(t, 1, n, "work-item %v", id)
		assert.Less(t, id[0], grid[0])
		assert.Less(t, id[1], grid[1])
		assert.Less(t, id[2], grid[2])
	}
}

func TestScaleF32(t *testing.T) {
	_, ctx := newTestContext(t, 64)
	exe := loadBuiltins(t, ctx)
	sym, err := exe.KernelSymbol("scale_f32.kd", ctx.Agent)
	if !assert.NoError(t, err) {
		return
	}

	in := []float32{1, -2, 0.5, 4}
	src, err := ctx.AllocateFine(16)
	assert.NoError(t, err)
	defer src.Free()
	dst, err := ctx.AllocateFine(16)
	assert.NoError(t, err)
	defer dst.Free()
	copy(src.Bytes(), Float32ToBytes(in))

	kernarg, err := ctx.AllocateKernarg(24)
	assert.NoError(t, err)
	defer kernarg.Free()
	args := hsa.NewKernarg().Pointer(src.Address()).Pointer(dst.Address()).Float32(2.5).Uint32(uint32(len(in)))
	assert.Equal(t, 24, args.Len())
	assert.NoError(t, args.CopyTo(kernarg))

	d, err := sym.Dispatch(kernarg.Address(), [3]uint16{4, 1, 1}, [3]uint32{4, 1, 1})
	assert.NoError(t, err)
	done, err := ctx.Runtime.NewSignal(1)
	assert.NoError(t, err)
	defer done.Destroy()
	_, err = ctx.Queue.Dispatch(d, done)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), done.WaitEq(0, waitTimeout))

	out, err := BytesToFloat32(dst.Bytes())
	assert.NoError(t, err)
	assert.Equal(t, []float32{2.5, -5, 1.25, 10}, out)
}
