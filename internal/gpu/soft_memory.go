package gpu

import (
	"sort"
	"sync"

	"github.com/fxnlabs/hsa-runtime/internal/hsa"
	"go.uber.org/zap"
)

const (
	allocGranule = 4096
	addressBase  = 0x7f00_0000_0000
)

type allocation struct {
	base   hsa.Address
	data   []byte
	region *softRegion
	access map[hsa.AgentHandle]struct{}
}

func (a *allocation) end() hsa.Address {
	return a.base + hsa.Address(len(a.data))
}

// accessible reports whether agent may touch the allocation: the owner of
// its region always can, anyone else only after a grant.
func (a *allocation) accessible(agent hsa.AgentHandle) bool {
	if a.region.owner.handle == agent {
		return true
	}
	_, ok := a.access[agent]
	return ok
}

// addressSpace hands out granule-aligned, never reused addresses and maps
// them back to their backing slices.
type addressSpace struct {
	mu     sync.RWMutex
	next   hsa.Address
	allocs []*allocation // sorted by base
	used   map[*softRegion]uint64
}

func newAddressSpace() *addressSpace {
	return &addressSpace{next: addressBase, used: make(map[*softRegion]uint64)}
}

func alignUp(v, align uint64) uint64 {
	return (v + align - 1) &^ (align - 1)
}

func (s *addressSpace) allocate(region *softRegion, size uint64) (*allocation, hsa.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.used[region]+size > region.spec.profile.Size {
		return nil, hsa.StatusErrorOutOfResources
	}
	a := &allocation{
		base:   s.next,
		data:   make([]byte, size),
		region: region,
		access: make(map[hsa.AgentHandle]struct{}),
	}
	// One spare granule between allocations so overruns never land in a
	// neighbour.
	s.next += hsa.Address(alignUp(size, allocGranule) + allocGranule)
	s.used[region] += size
	s.allocs = append(s.allocs, a)
	return a, hsa.StatusSuccess
}

// find returns the allocation containing [addr, addr+size).
func (s *addressSpace) find(addr hsa.Address, size uint64) *allocation {
	i := sort.Search(len(s.allocs), func(i int) bool { return s.allocs[i].end() > addr })
	if i == len(s.allocs) {
		return nil
	}
	a := s.allocs[i]
	if addr < a.base || uint64(a.end()-addr) < size {
		return nil
	}
	return a
}

func (s *addressSpace) lookup(addr hsa.Address, size uint64) *allocation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.find(addr, size)
}

func (s *addressSpace) free(addr hsa.Address) hsa.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := sort.Search(len(s.allocs), func(i int) bool { return s.allocs[i].base >= addr })
	if i == len(s.allocs) || s.allocs[i].base != addr {
		return hsa.StatusErrorInvalidAllocation
	}
	a := s.allocs[i]
	s.used[a.region] -= uint64(len(a.data))
	s.allocs = append(s.allocs[:i], s.allocs[i+1:]...)
	return hsa.StatusSuccess
}

func (s *addressSpace) grant(agents []hsa.AgentHandle, addr hsa.Address) hsa.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.find(addr, 1)
	if a == nil || a.base != addr {
		return hsa.StatusErrorInvalidAllocation
	}
	for _, h := range agents {
		a.access[h] = struct{}{}
	}
	return hsa.StatusSuccess
}

// view returns the bytes at [addr, addr+size) if agent may access them.
func (s *addressSpace) view(agent hsa.AgentHandle, addr hsa.Address, size uint64) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a := s.find(addr, size)
	if a == nil || !a.accessible(agent) {
		return nil, false
	}
	off := uint64(addr - a.base)
	return a.data[off : off+size], true
}

func (d *SoftDriver) space() *addressSpace {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.memory
}

func (d *SoftDriver) MemoryAllocate(h hsa.RegionHandle, size uint64) (hsa.Address, hsa.Status) {
	r, ok := d.region(h)
	if !ok {
		return 0, hsa.StatusErrorInvalidRegion
	}
	if !r.spec.profile.RuntimeAlloc {
		return 0, hsa.StatusErrorInvalidAllocation
	}
	if size == 0 || size > r.spec.profile.AllocMaxSize {
		return 0, hsa.StatusErrorInvalidAllocation
	}
	mem := d.space()
	if mem == nil {
		return 0, hsa.StatusErrorNotInitialized
	}
	a, status := mem.allocate(r, size)
	if status != hsa.StatusSuccess {
		return 0, status
	}
	d.log.Debug("Allocated",
		zap.Uint64("address", uint64(a.base)),
		zap.Uint64("size", size),
		zap.Stringer("segment", r.spec.segment))
	return a.base, hsa.StatusSuccess
}

func (d *SoftDriver) MemoryFree(addr hsa.Address) hsa.Status {
	mem := d.space()
	if mem == nil {
		return hsa.StatusErrorNotInitialized
	}
	return mem.free(addr)
}

func (d *SoftDriver) MemoryBytes(addr hsa.Address, size uint64) []byte {
	mem := d.space()
	if mem == nil {
		return nil
	}
	a := mem.lookup(addr, size)
	if a == nil {
		return nil
	}
	off := uint64(addr - a.base)
	return a.data[off : off+size]
}

func (d *SoftDriver) AgentsAllowAccess(agents []hsa.AgentHandle, addr hsa.Address) hsa.Status {
	if len(agents) == 0 {
		return hsa.StatusErrorInvalidArgument
	}
	for _, h := range agents {
		if _, ok := d.agent(h); !ok {
			return hsa.StatusErrorInvalidAgent
		}
	}
	mem := d.space()
	if mem == nil {
		return hsa.StatusErrorNotInitialized
	}
	return mem.grant(agents, addr)
}
