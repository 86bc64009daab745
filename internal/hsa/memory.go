package hsa

import (
	"fmt"
	"sync"

	"github.com/fxnlabs/hsa-runtime/internal/metrics"
	"go.uber.org/zap"
)

// Memory owns one allocation drawn from a MemoryRegion. The holder must call
// Free exactly once when done; later calls are no-ops.
//
// Memory is not meant for concurrent mutation of its access list. Grant
// access before handing the address to other agents or goroutines.
type Memory struct {
	rt     *Runtime
	region MemoryRegion
	log    *zap.Logger

	mu     sync.Mutex
	addr   Address
	size   uint64
	agents []Agent
}

// Address returns the base address, or 0 after Free.
func (m *Memory) Address() Address {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addr
}

// Size returns the allocation length in bytes.
func (m *Memory) Size() uint64 {
	return m.size
}

// Region returns the region the allocation was drawn from.
func (m *Memory) Region() MemoryRegion {
	return m.region
}

// Bytes views the allocation as a byte slice. The view is only valid until
// Free; it is nil after Free.
func (m *Memory) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addr == 0 {
		return nil
	}
	return m.rt.drv.MemoryBytes(m.addr, m.size)
}

// Agents returns the agents granted access so far.
func (m *Memory) Agents() []Agent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Agent(nil), m.agents...)
}

// AllowAccess grants agents read/write access to the allocation. With no
// agents it succeeds without calling the driver.
//
// Touching the memory from an agent that was never granted access is
// undefined behavior on the device side; this call is a precondition, not a
// runtime check.
func (m *Memory) AllowAccess(agents ...Agent) error {
	if len(agents) == 0 {
		m.log.Debug("No agents specified for memory access")
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addr == 0 {
		return newError(KindInvalidAllocation, "allow access on freed memory")
	}
	handles := make([]AgentHandle, len(agents))
	for i, a := range agents {
		handles[i] = a.handle
	}
	m.log.Debug("Allowing memory access",
		zap.Int("agents", len(handles)),
		zap.Uint64("address", uint64(m.addr)))
	if status := m.rt.drv.AgentsAllowAccess(handles, m.addr); status != StatusSuccess {
		err := fromStatus(m.rt.drv, status,
			fmt.Sprintf("allow %d agents to access 0x%x", len(handles), uint64(m.addr)))
		m.log.Error("Memory access permission failed", zap.Error(err))
		return err
	}
	for _, a := range agents {
		if !containsAgent(m.agents, a) {
			m.agents = append(m.agents, a)
		}
	}
	return nil
}

func containsAgent(agents []Agent, a Agent) bool {
	for _, x := range agents {
		if x.handle == a.handle {
			return true
		}
	}
	return false
}

// Free returns the allocation to its region. Only the first call reaches
// the driver.
func (m *Memory) Free() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addr == 0 {
		return nil
	}
	addr := m.addr
	m.addr = 0
	m.agents = nil
	m.log.Debug("Freeing memory", zap.Uint64("address", uint64(addr)), zap.Uint64("size", m.size))
	metrics.MemoryAllocatedBytes.Sub(float64(m.size))
	if status := m.rt.drv.MemoryFree(addr); status != StatusSuccess {
		err := fromStatus(m.rt.drv, status, fmt.Sprintf("free memory at 0x%x", uint64(addr)))
		m.log.Error("Failed to free memory", zap.Error(err))
		return err
	}
	return nil
}
