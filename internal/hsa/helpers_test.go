package hsa_test

import (
	"testing"

	"github.com/fxnlabs/hsa-runtime/internal/config"
	"github.com/fxnlabs/hsa-runtime/internal/gpu"
	"github.com/fxnlabs/hsa-runtime/internal/hsa"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testProfile is a single GPU agent with queue bounds [1, 1024] and one region
// of each class, each capped at 1024-byte allocations.
func testProfile() config.DeviceProfile {
	region := func(flags ...string) config.RegionProfile {
		return config.RegionProfile{Segment: "global", Flags: flags, Size: 1 << 20, AllocMaxSize: 1024, RuntimeAlloc: true}
	}
	return config.DeviceProfile{Agents: []config.AgentProfile{{
		Name:           "test-gpu",
		Vendor:         "Test",
		Type:           "gpu",
		KernelDispatch: true,
		QueueMinSize:   1,
		QueueMaxSize:   1024,
		Regions: []config.RegionProfile{
			region("coarse_grained"),
			region("fine_grained"),
			{Segment: "kernarg", Size: 1 << 16, AllocMaxSize: 1024, RuntimeAlloc: true},
		},
	}}}
}

func openSoft(t *testing.T, profile config.DeviceProfile) (*gpu.SoftDriver, *hsa.Runtime) {
	t.Helper()
	drv, err := gpu.NewSoftDriver(profile, zap.NewNop())
	require.NoError(t, err)
	rt, err := hsa.Open(drv, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { rt.Close() })
	return drv, rt
}

func findGPU(t *testing.T, rt *hsa.Runtime) hsa.Agent {
	t.Helper()
	agent, err := rt.FindGPU()
	require.NoError(t, err)
	return agent
}

// regionOf returns the first region of agent matching pick.
func regionOf(t *testing.T, agent hsa.Agent, pick func(hsa.RegionClass) bool) hsa.MemoryRegion {
	t.Helper()
	for region, err := range agent.Regions() {
		require.NoError(t, err)
		class, err := region.Classify()
		require.NoError(t, err)
		if pick(class) {
			return region
		}
	}
	t.Fatal("no matching region")
	return hsa.MemoryRegion{}
}

// hostAndGPUProfile puts a CPU agent without kernel dispatch ahead of the
// test GPU.
func hostAndGPUProfile() config.DeviceProfile {
	profile := testProfile()
	host := config.AgentProfile{
		Name:         "host",
		Type:         "cpu",
		QueueMinSize: 1,
		QueueMaxSize: 1024,
		Regions: []config.RegionProfile{
			{Segment: "global", Flags: []string{"fine_grained", "kernarg"}, Size: 1 << 20, AllocMaxSize: 1024, RuntimeAlloc: true},
		},
	}
	profile.Agents = append([]config.AgentProfile{host}, profile.Agents...)
	return profile
}
