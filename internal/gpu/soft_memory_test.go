package gpu

import (
	"testing"

	"github.com/fxnlabs/hsa-runtime/internal/config"
	"github.com/fxnlabs/hsa-runtime/internal/hsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// smallDriver exposes a single GPU agent with one fine-grained region.
func smallDriver(t *testing.T, size, allocMax uint64) *SoftDriver {
	t.Helper()
	profile := config.DeviceProfile{Agents: []config.AgentProfile{{
		Name:           "small",
		Type:           "gpu",
		KernelDispatch: true,
		QueueMinSize:   1,
		QueueMaxSize:   1024,
		Regions: []config.RegionProfile{
			{Segment: "global", Flags: []string{"fine_grained", "kernarg"}, Size: size, AllocMaxSize: allocMax, RuntimeAlloc: true},
		},
	}}}
	drv, err := NewSoftDriver(profile, nil)
	require.NoError(t, err)
	require.Equal(t, hsa.StatusSuccess, drv.Init())
	t.Cleanup(func() { drv.ShutDown() })
	return drv
}

func TestSoftDriver_MemoryAllocate(t *testing.T) {
	drv := newTestDriver(t)
	gpu := agentHandles(t, drv)[1]
	regions := regionHandles(t, drv, gpu)
	fine, group := regions[1], regions[2]

	t.Run("allocations are aligned and disjoint", func(t *testing.T) {
		a, status := drv.MemoryAllocate(fine, 100)
		require.Equal(t, hsa.StatusSuccess, status)
		b, status := drv.MemoryAllocate(fine, 100)
		require.Equal(t, hsa.StatusSuccess, status)
		assert.Zero(t, uint64(a)%allocGranule)
		assert.Zero(t, uint64(b)%allocGranule)
		assert.Greater(t, uint64(b), uint64(a)+100)

		copy(drv.MemoryBytes(a, 4), []byte{1, 2, 3, 4})
		assert.Equal(t, []byte{0, 0, 0, 0}, drv.MemoryBytes(b, 4))
		assert.Equal(t, []byte{1, 2, 3, 4}, drv.MemoryBytes(a, 4))

		assert.Equal(t, hsa.StatusSuccess, drv.MemoryFree(a))
		assert.Equal(t, hsa.StatusSuccess, drv.MemoryFree(b))
	})

	t.Run("size limits", func(t *testing.T) {
		_, status := drv.MemoryAllocate(fine, 0)
		assert.Equal(t, hsa.StatusErrorInvalidAllocation, status)
		_, status = drv.MemoryAllocate(fine, 1<<26+1)
		assert.Equal(t, hsa.StatusErrorInvalidAllocation, status)
		addr, status := drv.MemoryAllocate(fine, 1<<26)
		require.Equal(t, hsa.StatusSuccess, status)
		assert.Equal(t, hsa.StatusSuccess, drv.MemoryFree(addr))
	})

	t.Run("region capacity", func(t *testing.T) {
		small := smallDriver(t, 4096, 1024)
		region := regionHandles(t, small, agentHandles(t, small)[0])[0]
		var addrs []hsa.Address
		for range 4 {
			addr, status := small.MemoryAllocate(region, 1024)
			require.Equal(t, hsa.StatusSuccess, status)
			addrs = append(addrs, addr)
		}
		_, status := small.MemoryAllocate(region, 1)
		assert.Equal(t, hsa.StatusErrorOutOfResources, status)

		require.Equal(t, hsa.StatusSuccess, small.MemoryFree(addrs[0]))
		addr, status := small.MemoryAllocate(region, 1)
		require.Equal(t, hsa.StatusSuccess, status)
		addrs = append(addrs[1:], addr)
		for _, a := range addrs {
			require.Equal(t, hsa.StatusSuccess, small.MemoryFree(a))
		}
	})

	t.Run("runtime allocation not allowed", func(t *testing.T) {
		_, status := drv.MemoryAllocate(group, 16)
		assert.Equal(t, hsa.StatusErrorInvalidAllocation, status)
	})

	t.Run("unknown region", func(t *testing.T) {
		_, status := drv.MemoryAllocate(hsa.RegionHandle(1), 16)
		assert.Equal(t, hsa.StatusErrorInvalidRegion, status)
	})

	t.Run("double free", func(t *testing.T) {
		addr, status := drv.MemoryAllocate(fine, 16)
		require.Equal(t, hsa.StatusSuccess, status)
		require.Equal(t, hsa.StatusSuccess, drv.MemoryFree(addr))
		assert.Equal(t, hsa.StatusErrorInvalidAllocation, drv.MemoryFree(addr))
		assert.Nil(t, drv.MemoryBytes(addr, 16))
	})
}

func TestSoftDriver_MemoryBytesBounds(t *testing.T) {
	drv := newTestDriver(t)
	fine := regionHandles(t, drv, agentHandles(t, drv)[1])[1]

	addr, status := drv.MemoryAllocate(fine, 64)
	require.Equal(t, hsa.StatusSuccess, status)
	defer drv.MemoryFree(addr)

	assert.Len(t, drv.MemoryBytes(addr+32, 32), 32)
	assert.Nil(t, drv.MemoryBytes(addr+32, 33))
	assert.Nil(t, drv.MemoryBytes(addr-1, 1))
}

func TestSoftDriver_AgentsAllowAccess(t *testing.T) {
	drv := newTestDriver(t)
	agents := agentHandles(t, drv)
	host, gpu := agents[0], agents[1]
	hostRegion := regionHandles(t, drv, host)[0]

	addr, status := drv.MemoryAllocate(hostRegion, 64)
	require.Equal(t, hsa.StatusSuccess, status)
	defer drv.MemoryFree(addr)

	mem := drv.space()
	_, ok := mem.view(host, addr, 64)
	assert.True(t, ok, "region owner always has access")
	_, ok = mem.view(gpu, addr, 64)
	assert.False(t, ok, "other agents need a grant")

	require.Equal(t, hsa.StatusSuccess, drv.AgentsAllowAccess([]hsa.AgentHandle{gpu}, addr))
	_, ok = mem.view(gpu, addr, 64)
	assert.True(t, ok)

	assert.Equal(t, hsa.StatusErrorInvalidArgument, drv.AgentsAllowAccess(nil, addr))
	assert.Equal(t, hsa.StatusErrorInvalidAgent, drv.AgentsAllowAccess([]hsa.AgentHandle{1}, addr))
	assert.Equal(t, hsa.StatusErrorInvalidAllocation, drv.AgentsAllowAccess([]hsa.AgentHandle{gpu}, addr+8))
}
