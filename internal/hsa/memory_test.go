package hsa_test

import (
	"testing"

	"github.com/fxnlabs/hsa-runtime/internal/config"
	"github.com/fxnlabs/hsa-runtime/internal/hsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRegion_AllocateLimits(t *testing.T) {
	_, rt := openSoft(t, testProfile())
	fine := regionOf(t, findGPU(t, rt), hsa.RegionClass.FineGrained)

	mem, err := fine.Allocate(1024)
	require.NoError(t, err)
	assert.NotZero(t, mem.Address())
	assert.Equal(t, uint64(1024), mem.Size())
	assert.Equal(t, fine, mem.Region())
	require.NoError(t, mem.Free())

	_, err = fine.Allocate(1025)
	assert.ErrorIs(t, err, hsa.ErrMemoryAllocation)
	assert.ErrorContains(t, err, "exceeds maximum allocation size 1024")

	_, err = fine.Allocate(0)
	assert.ErrorIs(t, err, hsa.ErrMemoryAllocation)
}

func TestMemoryRegion_AllocateNotAllowed(t *testing.T) {
	_, rt := openSoft(t, config.Default().Device)
	group := regionOf(t, findGPU(t, rt), func(c hsa.RegionClass) bool { return c.Segment == hsa.SegmentGroup })
	_, err := group.Allocate(16)
	assert.ErrorIs(t, err, hsa.ErrMemoryAllocation)
	assert.ErrorContains(t, err, "not allowed")
}

func TestMemoryRegion_ZeroValue(t *testing.T) {
	var region hsa.MemoryRegion
	assert.False(t, region.Valid())
	_, err := region.Allocate(16)
	assert.ErrorIs(t, err, &hsa.Error{Kind: hsa.KindInvalidRegion})
}

// Every segment class stores and returns what was written.
func TestMemory_RoundTripPerClass(t *testing.T) {
	_, rt := openSoft(t, testProfile())
	agent := findGPU(t, rt)
	for name, pick := range map[string]func(hsa.RegionClass) bool{
		"coarse":  hsa.RegionClass.CoarseGrained,
		"fine":    hsa.RegionClass.FineGrained,
		"kernarg": hsa.RegionClass.Kernarg,
	} {
		t.Run(name, func(t *testing.T) {
			mem, err := regionOf(t, agent, pick).Allocate(256)
			require.NoError(t, err)
			defer mem.Free()
			require.NoError(t, mem.AllowAccess(agent))

			b := mem.Bytes()
			require.Len(t, b, 256)
			for i := range b {
				b[i] = byte(i)
			}
			again := mem.Bytes()
			for i := range again {
				require.Equal(t, byte(i), again[i])
			}
		})
	}
}

func TestMemory_AllowAccess(t *testing.T) {
	_, rt := openSoft(t, config.Default().Device)
	agents, err := rt.FindAll()
	require.NoError(t, err)
	host, gpu := agents[0], agents[1]
	region := regionOf(t, host, hsa.RegionClass.FineGrained)

	mem, err := region.Allocate(64)
	require.NoError(t, err)
	defer mem.Free()

	require.NoError(t, mem.AllowAccess())
	assert.Empty(t, mem.Agents())

	require.NoError(t, mem.AllowAccess(gpu, gpu))
	require.NoError(t, mem.AllowAccess(host, gpu))
	assert.Equal(t, []hsa.Agent{gpu, host}, mem.Agents())
}

func TestMemory_FreeTwice(t *testing.T) {
	_, rt := openSoft(t, testProfile())
	agent := findGPU(t, rt)
	mem, err := regionOf(t, agent, hsa.RegionClass.CoarseGrained).Allocate(64)
	require.NoError(t, err)

	require.NoError(t, mem.Free())
	assert.NoError(t, mem.Free())
	assert.Zero(t, mem.Address())
	assert.Nil(t, mem.Bytes())
	assert.ErrorIs(t, mem.AllowAccess(agent), &hsa.Error{Kind: hsa.KindInvalidAllocation})
}
