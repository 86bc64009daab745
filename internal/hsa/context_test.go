package hsa_test

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/fxnlabs/hsa-runtime/fixtures"
	"github.com/fxnlabs/hsa-runtime/internal/config"
	"github.com/fxnlabs/hsa-runtime/internal/gpu"
	"github.com/fxnlabs/hsa-runtime/internal/hsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newContext(t *testing.T, profile config.DeviceProfile, queueSize uint32) *hsa.Context {
	t.Helper()
	drv, err := gpu.NewSoftDriver(profile, zap.NewNop())
	require.NoError(t, err)
	ctx, err := hsa.NewContext(drv, zap.NewNop(), queueSize)
	require.NoError(t, err)
	t.Cleanup(func() { ctx.Close() })
	return ctx
}

func TestNewContext_DefaultProfile(t *testing.T) {
	ctx := newContext(t, config.Default().Device, 64)

	kind, err := ctx.Agent.DeviceType()
	require.NoError(t, err)
	assert.Equal(t, hsa.DeviceTypeGPU, kind)
	assert.Equal(t, uint32(64), ctx.Queue.Size())

	for _, tc := range []struct {
		name   string
		region hsa.MemoryRegion
		want   func(hsa.RegionClass) bool
	}{
		{"kernarg", ctx.KernargRegion, hsa.RegionClass.Kernarg},
		{"fine", ctx.FineRegion, hsa.RegionClass.FineGrained},
		{"coarse", ctx.CoarseRegion, hsa.RegionClass.CoarseGrained},
	} {
		t.Run(tc.name, func(t *testing.T) {
			require.True(t, tc.region.Valid())
			class, err := tc.region.Classify()
			require.NoError(t, err)
			assert.True(t, tc.want(class))
		})
	}
}

func TestNewContext_RegionSelection(t *testing.T) {
	t.Run("dedicated kernarg segment", func(t *testing.T) {
		ctx := newContext(t, testProfile(), 64)
		class, err := ctx.KernargRegion.Classify()
		require.NoError(t, err)
		assert.Equal(t, hsa.SegmentKernarg, class.Segment)
	})

	t.Run("kernarg falls back to fine", func(t *testing.T) {
		profile := testProfile()
		profile.Agents[0].Regions = profile.Agents[0].Regions[:2]
		ctx := newContext(t, profile, 64)
		assert.Equal(t, ctx.FineRegion, ctx.KernargRegion)
	})

	t.Run("missing coarse region", func(t *testing.T) {
		profile := testProfile()
		profile.Agents[0].Regions = profile.Agents[0].Regions[1:]
		drv, err := gpu.NewSoftDriver(profile, zap.NewNop())
		require.NoError(t, err)
		_, err = hsa.NewContext(drv, zap.NewNop(), 64)
		assert.ErrorIs(t, err, hsa.ErrMemoryRegionNotFound)

		// The runtime was shut down again on the failure path.
		assert.Equal(t, hsa.StatusErrorNotInitialized, drv.ShutDown())
	})

	t.Run("queue size out of bounds", func(t *testing.T) {
		drv, err := gpu.NewSoftDriver(testProfile(), zap.NewNop())
		require.NoError(t, err)
		_, err = hsa.NewContext(drv, zap.NewNop(), 4096)
		assert.ErrorIs(t, err, hsa.ErrQueueCreation)
	})

	t.Run("no gpu", func(t *testing.T) {
		profile := hostAndGPUProfile()
		profile.Agents = profile.Agents[:1]
		drv, err := gpu.NewSoftDriver(profile, zap.NewNop())
		require.NoError(t, err)
		_, err = hsa.NewContext(drv, zap.NewNop(), 64)
		assert.ErrorIs(t, err, hsa.ErrAgentNotFound)
	})
}

func TestContext_FillDispatch(t *testing.T) {
	ctx := newContext(t, testProfile(), 64)
	exe, err := ctx.Runtime.LoadExecutable(ctx.Agent, fixtures.BuiltinKernels)
	require.NoError(t, err)
	defer exe.Destroy()

	const n = 256
	out, err := ctx.AllocateFine(n * 4)
	require.NoError(t, err)
	defer out.Free()
	assert.Equal(t, []hsa.Agent{ctx.Agent}, out.Agents())

	kernarg, err := ctx.AllocateKernarg(16)
	require.NoError(t, err)
	defer kernarg.Free()
	require.NoError(t, hsa.NewKernarg().Pointer(out.Address()).Uint32(0xabcd).Uint32(n).CopyTo(kernarg))

	sym, err := exe.KernelSymbol("fill_u32.kd", ctx.Agent)
	require.NoError(t, err)
	d, err := sym.Dispatch(kernarg.Address(), [3]uint16{64, 1, 1}, [3]uint32{n, 1, 1})
	require.NoError(t, err)

	done, err := ctx.Runtime.NewSignal(1)
	require.NoError(t, err)
	defer done.Destroy()

	index, err := ctx.Queue.Dispatch(d, done)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), index)
	require.Equal(t, int64(0), done.WaitEq(0, 5*time.Second))
	require.NoError(t, ctx.Queue.Err())

	data := out.Bytes()
	for i := 0; i < n; i++ {
		require.Equal(t, uint32(0xabcd), binary.LittleEndian.Uint32(data[i*4:]), "element %d", i)
	}
}

func TestContext_AllocateRespectsRegionLimits(t *testing.T) {
	ctx := newContext(t, testProfile(), 64)
	_, err := ctx.AllocateCoarse(2048)
	assert.ErrorIs(t, err, hsa.ErrMemoryAllocation)
	mem, err := ctx.AllocateCoarse(1024)
	require.NoError(t, err)
	assert.NoError(t, mem.Free())
}

func TestContext_CloseTwice(t *testing.T) {
	drv, err := gpu.NewSoftDriver(testProfile(), zap.NewNop())
	require.NoError(t, err)
	ctx, err := hsa.NewContext(drv, zap.NewNop(), 64)
	require.NoError(t, err)
	require.NoError(t, ctx.Close())
	assert.NoError(t, ctx.Close())
	assert.Equal(t, hsa.StatusErrorNotInitialized, drv.ShutDown())
}
