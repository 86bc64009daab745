//go:build hsa
// +build hsa

package gpu

/*
#cgo CFLAGS: -I/opt/rocm/include
#cgo LDFLAGS: -L/opt/rocm/lib -lhsa-runtime64
#include <hsa/hsa.h>
#include <hsa/hsa_ext_amd.h>
#include <stdint.h>
#include <stdlib.h>

extern hsa_status_t goVisitAgent(hsa_agent_t agent, uintptr_t data);
extern hsa_status_t goVisitRegion(hsa_region_t region, uintptr_t data);
extern hsa_status_t goVisitSymbol(hsa_executable_symbol_t symbol, uintptr_t data);

static hsa_status_t agent_trampoline(hsa_agent_t agent, void *data) {
	return goVisitAgent(agent, (uintptr_t)data);
}

static hsa_status_t region_trampoline(hsa_region_t region, void *data) {
	return goVisitRegion(region, (uintptr_t)data);
}

static hsa_status_t symbol_trampoline(hsa_executable_t exe, hsa_agent_t agent, hsa_executable_symbol_t symbol, void *data) {
	return goVisitSymbol(symbol, (uintptr_t)data);
}

static hsa_status_t iterate_agents(uintptr_t data) {
	return hsa_iterate_agents(agent_trampoline, (void *)data);
}

static hsa_status_t iterate_regions(hsa_agent_t agent, uintptr_t data) {
	return hsa_agent_iterate_regions(agent, region_trampoline, (void *)data);
}

static hsa_status_t iterate_symbols(hsa_executable_t exe, hsa_agent_t agent, uintptr_t data) {
	return hsa_executable_iterate_agent_symbols(exe, agent, symbol_trampoline, (void *)data);
}

static void *address_of(uint64_t addr) {
	return (void *)(uintptr_t)addr;
}
*/
import "C"

import (
	"runtime/cgo"
	"sync"
	"time"
	"unsafe"

	"github.com/fxnlabs/hsa-runtime/internal/hsa"
	"go.uber.org/zap"
)

// HSADriver binds hsa.Driver to libhsa-runtime64.
type HSADriver struct {
	log *zap.Logger

	mu       sync.RWMutex
	queues   map[hsa.QueueHandle]*C.hsa_queue_t
	readers  map[hsa.ExecutableHandle][]C.hsa_code_object_reader_t
	tickRate uint64
}

// NewHSADriver returns a driver for the vendor runtime. Nothing is called
// until Init.
func NewHSADriver(log *zap.Logger) *HSADriver {
	return &HSADriver{
		log:     log.Named("hsa"),
		queues:  make(map[hsa.QueueHandle]*C.hsa_queue_t),
		readers: make(map[hsa.ExecutableHandle][]C.hsa_code_object_reader_t),
	}
}

func status(s C.hsa_status_t) hsa.Status {
	return hsa.Status(s)
}

func (d *HSADriver) Init() hsa.Status {
	if s := status(C.hsa_init()); s != hsa.StatusSuccess {
		return s
	}
	var freq C.uint64_t
	if s := status(C.hsa_system_get_info(C.HSA_SYSTEM_INFO_TIMESTAMP_FREQUENCY, unsafe.Pointer(&freq))); s != hsa.StatusSuccess {
		return s
	}
	d.mu.Lock()
	d.tickRate = uint64(freq)
	d.mu.Unlock()
	d.log.Debug("HSA runtime initialized", zap.Uint64("timestampFrequency", uint64(freq)))
	return hsa.StatusSuccess
}

func (d *HSADriver) ShutDown() hsa.Status {
	return status(C.hsa_shut_down())
}

func (d *HSADriver) StatusString(s hsa.Status) string {
	var str *C.char
	if C.hsa_status_string(C.hsa_status_t(s), &str) != C.HSA_STATUS_SUCCESS || str == nil {
		return ""
	}
	return C.GoString(str)
}

type agentVisitor func(hsa.AgentHandle) hsa.Status
type regionVisitor func(hsa.RegionHandle) hsa.Status
type symbolVisitor func(hsa.SymbolHandle) hsa.Status

func (d *HSADriver) IterateAgents(visit func(hsa.AgentHandle) hsa.Status) hsa.Status {
	h := cgo.NewHandle(agentVisitor(visit))
	defer h.Delete()
	return status(C.iterate_agents(C.uintptr_t(h)))
}

func agentT(h hsa.AgentHandle) C.hsa_agent_t {
	return C.hsa_agent_t{handle: C.uint64_t(h)}
}

func (d *HSADriver) AgentUint32(agent hsa.AgentHandle, attr hsa.AgentAttribute) (uint32, hsa.Status) {
	var v C.uint32_t
	s := status(C.hsa_agent_get_info(agentT(agent), C.hsa_agent_info_t(attr), unsafe.Pointer(&v)))
	return uint32(v), s
}

func (d *HSADriver) AgentString(agent hsa.AgentHandle, attr hsa.AgentAttribute) (string, hsa.Status) {
	var buf [64]C.char
	s := status(C.hsa_agent_get_info(agentT(agent), C.hsa_agent_info_t(attr), unsafe.Pointer(&buf[0])))
	if s != hsa.StatusSuccess {
		return "", s
	}
	return C.GoStringN(&buf[0], C.int(cStringLen(buf[:]))), s
}

func cStringLen(buf []C.char) int {
	for i, c := range buf {
		if c == 0 {
			return i
		}
	}
	return len(buf)
}

func (d *HSADriver) IterateRegions(agent hsa.AgentHandle, visit func(hsa.RegionHandle) hsa.Status) hsa.Status {
	h := cgo.NewHandle(regionVisitor(visit))
	defer h.Delete()
	return status(C.iterate_regions(agentT(agent), C.uintptr_t(h)))
}

func regionT(h hsa.RegionHandle) C.hsa_region_t {
	return C.hsa_region_t{handle: C.uint64_t(h)}
}

func (d *HSADriver) RegionUint32(region hsa.RegionHandle, attr hsa.RegionAttribute) (uint32, hsa.Status) {
	var v C.uint32_t
	s := status(C.hsa_region_get_info(regionT(region), C.hsa_region_info_t(attr), unsafe.Pointer(&v)))
	return uint32(v), s
}

func (d *HSADriver) RegionUint64(region hsa.RegionHandle, attr hsa.RegionAttribute) (uint64, hsa.Status) {
	var v C.size_t
	s := status(C.hsa_region_get_info(regionT(region), C.hsa_region_info_t(attr), unsafe.Pointer(&v)))
	return uint64(v), s
}

func (d *HSADriver) RegionBool(region hsa.RegionHandle, attr hsa.RegionAttribute) (bool, hsa.Status) {
	var v C.bool
	s := status(C.hsa_region_get_info(regionT(region), C.hsa_region_info_t(attr), unsafe.Pointer(&v)))
	return bool(v), s
}

func (d *HSADriver) MemoryAllocate(region hsa.RegionHandle, size uint64) (hsa.Address, hsa.Status) {
	var ptr unsafe.Pointer
	s := status(C.hsa_memory_allocate(regionT(region), C.size_t(size), &ptr))
	return hsa.Address(uintptr(ptr)), s
}

func (d *HSADriver) MemoryFree(addr hsa.Address) hsa.Status {
	return status(C.hsa_memory_free(C.address_of(C.uint64_t(addr))))
}

func (d *HSADriver) MemoryBytes(addr hsa.Address, size uint64) []byte {
	if addr == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(C.address_of(C.uint64_t(addr))), size)
}

func (d *HSADriver) AgentsAllowAccess(agents []hsa.AgentHandle, addr hsa.Address) hsa.Status {
	if len(agents) == 0 {
		return hsa.StatusErrorInvalidArgument
	}
	list := (*C.hsa_agent_t)(C.malloc(C.size_t(len(agents)) * C.size_t(unsafe.Sizeof(C.hsa_agent_t{}))))
	defer C.free(unsafe.Pointer(list))
	for i, a := range agents {
		unsafe.Slice(list, len(agents))[i] = agentT(a)
	}
	return status(C.hsa_amd_agents_allow_access(C.uint32_t(len(agents)), list, nil, C.address_of(C.uint64_t(addr))))
}

func (d *HSADriver) queue(h hsa.QueueHandle) *C.hsa_queue_t {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.queues[h]
}

func (d *HSADriver) QueueCreate(agent hsa.AgentHandle, size uint32, typ hsa.QueueType) (hsa.QueueDescriptor, hsa.Status) {
	var q *C.hsa_queue_t
	s := status(C.hsa_queue_create(agentT(agent), C.uint32_t(size), C.hsa_queue_type32_t(typ),
		nil, nil, C.UINT32_MAX, C.UINT32_MAX, &q))
	if s != hsa.StatusSuccess {
		return hsa.QueueDescriptor{}, s
	}
	h := hsa.QueueHandle(uintptr(unsafe.Pointer(q)))
	d.mu.Lock()
	d.queues[h] = q
	d.mu.Unlock()
	words := unsafe.Slice((*uint32)(q.base_address), int(q.size)*hsa.PacketSize/4)
	return hsa.QueueDescriptor{
		Handle:   h,
		ID:       uint64(q.id),
		Type:     hsa.QueueType(q._type),
		Size:     uint32(q.size),
		Ring:     words,
		Doorbell: hsa.SignalHandle(q.doorbell_signal.handle),
	}, hsa.StatusSuccess
}

func (d *HSADriver) QueueDestroy(h hsa.QueueHandle) hsa.Status {
	d.mu.Lock()
	q := d.queues[h]
	delete(d.queues, h)
	d.mu.Unlock()
	if q == nil {
		return hsa.StatusErrorInvalidQueue
	}
	return status(C.hsa_queue_destroy(q))
}

func (d *HSADriver) QueueInactivate(h hsa.QueueHandle) hsa.Status {
	q := d.queue(h)
	if q == nil {
		return hsa.StatusErrorInvalidQueue
	}
	return status(C.hsa_queue_inactivate(q))
}

func (d *HSADriver) QueueAddWriteIndex(h hsa.QueueHandle, n uint64) uint64 {
	return uint64(C.hsa_queue_add_write_index_relaxed(d.queue(h), C.uint64_t(n)))
}

func (d *HSADriver) QueueCASWriteIndex(h hsa.QueueHandle, expected, value uint64) uint64 {
	return uint64(C.hsa_queue_cas_write_index_screlease(d.queue(h), C.uint64_t(expected), C.uint64_t(value)))
}

func (d *HSADriver) QueueStoreWriteIndex(h hsa.QueueHandle, value uint64) {
	C.hsa_queue_store_write_index_screlease(d.queue(h), C.uint64_t(value))
}

func (d *HSADriver) QueueLoadWriteIndex(h hsa.QueueHandle) uint64 {
	return uint64(C.hsa_queue_load_write_index_relaxed(d.queue(h)))
}

func (d *HSADriver) QueueLoadReadIndex(h hsa.QueueHandle) uint64 {
	return uint64(C.hsa_queue_load_read_index_scacquire(d.queue(h)))
}

func signalT(h hsa.SignalHandle) C.hsa_signal_t {
	return C.hsa_signal_t{handle: C.uint64_t(h)}
}

func (d *HSADriver) SignalCreate(initial int64) (hsa.SignalHandle, hsa.Status) {
	var sig C.hsa_signal_t
	s := status(C.hsa_signal_create(C.hsa_signal_value_t(initial), 0, nil, &sig))
	return hsa.SignalHandle(sig.handle), s
}

func (d *HSADriver) SignalDestroy(h hsa.SignalHandle) hsa.Status {
	return status(C.hsa_signal_destroy(signalT(h)))
}

func (d *HSADriver) SignalLoad(h hsa.SignalHandle) int64 {
	return int64(C.hsa_signal_load_scacquire(signalT(h)))
}

func (d *HSADriver) SignalStore(h hsa.SignalHandle, value int64) {
	C.hsa_signal_store_relaxed(signalT(h), C.hsa_signal_value_t(value))
}

func (d *HSADriver) SignalAdd(h hsa.SignalHandle, value int64) {
	C.hsa_signal_add_relaxed(signalT(h), C.hsa_signal_value_t(value))
}

func (d *HSADriver) SignalSubtract(h hsa.SignalHandle, value int64) {
	C.hsa_signal_subtract_relaxed(signalT(h), C.hsa_signal_value_t(value))
}

func (d *HSADriver) SignalExchange(h hsa.SignalHandle, value int64) int64 {
	return int64(C.hsa_signal_exchange_relaxed(signalT(h), C.hsa_signal_value_t(value)))
}

func (d *HSADriver) SignalCAS(h hsa.SignalHandle, expected, value int64) int64 {
	return int64(C.hsa_signal_cas_relaxed(signalT(h), C.hsa_signal_value_t(expected), C.hsa_signal_value_t(value)))
}

func (d *HSADriver) SignalAnd(h hsa.SignalHandle, value int64) {
	C.hsa_signal_and_relaxed(signalT(h), C.hsa_signal_value_t(value))
}

func (d *HSADriver) SignalOr(h hsa.SignalHandle, value int64) {
	C.hsa_signal_or_relaxed(signalT(h), C.hsa_signal_value_t(value))
}

func (d *HSADriver) SignalXor(h hsa.SignalHandle, value int64) {
	C.hsa_signal_xor_relaxed(signalT(h), C.hsa_signal_value_t(value))
}

// ticks converts a timeout to system timestamp ticks, the unit of the
// runtime's timeout hint.
func (d *HSADriver) ticks(timeout time.Duration) C.uint64_t {
	if timeout >= hsa.WaitForever {
		return C.UINT64_MAX
	}
	d.mu.RLock()
	rate := d.tickRate
	d.mu.RUnlock()
	secs := uint64(timeout / time.Second)
	frac := uint64(timeout % time.Second)
	return C.uint64_t(secs*rate + frac*rate/uint64(time.Second))
}

func (d *HSADriver) SignalWait(h hsa.SignalHandle, cond hsa.SignalCondition, value int64, timeout time.Duration) int64 {
	return int64(C.hsa_signal_wait_scacquire(signalT(h), C.hsa_signal_condition_t(cond),
		C.hsa_signal_value_t(value), d.ticks(timeout), C.HSA_WAIT_STATE_BLOCKED))
}

func executableT(h hsa.ExecutableHandle) C.hsa_executable_t {
	return C.hsa_executable_t{handle: C.uint64_t(h)}
}

func (d *HSADriver) ExecutableCreate() (hsa.ExecutableHandle, hsa.Status) {
	var exe C.hsa_executable_t
	s := status(C.hsa_executable_create_alt(C.HSA_PROFILE_FULL, C.HSA_DEFAULT_FLOAT_ROUNDING_MODE_NEAR, nil, &exe))
	return hsa.ExecutableHandle(exe.handle), s
}

func (d *HSADriver) ExecutableDestroy(h hsa.ExecutableHandle) hsa.Status {
	d.mu.Lock()
	readers := d.readers[h]
	delete(d.readers, h)
	d.mu.Unlock()
	s := status(C.hsa_executable_destroy(executableT(h)))
	for _, r := range readers {
		C.hsa_code_object_reader_destroy(r)
	}
	return s
}

// ExecutableLoadCodeObject copies codeObject to C memory for the reader,
// which must outlive the executable.
func (d *HSADriver) ExecutableLoadCodeObject(h hsa.ExecutableHandle, agent hsa.AgentHandle, codeObject []byte) hsa.Status {
	blob := C.CBytes(codeObject)
	var reader C.hsa_code_object_reader_t
	if s := status(C.hsa_code_object_reader_create_from_memory(blob, C.size_t(len(codeObject)), &reader)); s != hsa.StatusSuccess {
		C.free(blob)
		return s
	}
	var loaded C.hsa_loaded_code_object_t
	s := status(C.hsa_executable_load_agent_code_object(executableT(h), agentT(agent), reader, nil, &loaded))
	if s != hsa.StatusSuccess {
		C.hsa_code_object_reader_destroy(reader)
		C.free(blob)
		return s
	}
	d.mu.Lock()
	d.readers[h] = append(d.readers[h], reader)
	d.mu.Unlock()
	return hsa.StatusSuccess
}

func (d *HSADriver) ExecutableFreeze(h hsa.ExecutableHandle) hsa.Status {
	return status(C.hsa_executable_freeze(executableT(h), nil))
}

func (d *HSADriver) ExecutableSymbolByName(h hsa.ExecutableHandle, agent hsa.AgentHandle, name string) (hsa.SymbolHandle, hsa.Status) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	a := agentT(agent)
	var sym C.hsa_executable_symbol_t
	s := status(C.hsa_executable_get_symbol_by_name(executableT(h), cname, &a, &sym))
	return hsa.SymbolHandle(sym.handle), s
}

func (d *HSADriver) IterateSymbols(h hsa.ExecutableHandle, agent hsa.AgentHandle, visit func(hsa.SymbolHandle) hsa.Status) hsa.Status {
	handle := cgo.NewHandle(symbolVisitor(visit))
	defer handle.Delete()
	return status(C.iterate_symbols(executableT(h), agentT(agent), C.uintptr_t(handle)))
}

func symbolT(h hsa.SymbolHandle) C.hsa_executable_symbol_t {
	return C.hsa_executable_symbol_t{handle: C.uint64_t(h)}
}

// SymbolString reads the name, which the runtime returns without a
// terminator after its length.
func (d *HSADriver) SymbolString(h hsa.SymbolHandle, attr hsa.SymbolAttribute) (string, hsa.Status) {
	var n C.uint32_t
	if s := status(C.hsa_executable_symbol_get_info(symbolT(h), C.HSA_EXECUTABLE_SYMBOL_INFO_NAME_LENGTH, unsafe.Pointer(&n))); s != hsa.StatusSuccess {
		return "", s
	}
	buf := C.malloc(C.size_t(n) + 1)
	defer C.free(buf)
	if s := status(C.hsa_executable_symbol_get_info(symbolT(h), C.hsa_executable_symbol_info_t(attr), buf)); s != hsa.StatusSuccess {
		return "", s
	}
	return C.GoStringN((*C.char)(buf), C.int(n)), hsa.StatusSuccess
}

func (d *HSADriver) SymbolUint64(h hsa.SymbolHandle, attr hsa.SymbolAttribute) (uint64, hsa.Status) {
	var v C.uint64_t
	s := status(C.hsa_executable_symbol_get_info(symbolT(h), C.hsa_executable_symbol_info_t(attr), unsafe.Pointer(&v)))
	return uint64(v), s
}

func (d *HSADriver) SymbolUint32(h hsa.SymbolHandle, attr hsa.SymbolAttribute) (uint32, hsa.Status) {
	var v C.uint32_t
	s := status(C.hsa_executable_symbol_get_info(symbolT(h), C.hsa_executable_symbol_info_t(attr), unsafe.Pointer(&v)))
	return uint32(v), s
}

var _ hsa.Driver = (*HSADriver)(nil)
