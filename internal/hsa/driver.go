package hsa

import "time"

// AgentAttribute selects an agent query.
type AgentAttribute uint32

const (
	AgentInfoName         AgentAttribute = 0
	AgentInfoVendorName   AgentAttribute = 1
	AgentInfoFeature      AgentAttribute = 2
	AgentInfoQueueMinSize AgentAttribute = 13
	AgentInfoQueueMaxSize AgentAttribute = 14
	AgentInfoDevice       AgentAttribute = 17
)

// RegionAttribute selects a memory region query.
type RegionAttribute uint32

const (
	RegionInfoSegment             RegionAttribute = 0
	RegionInfoGlobalFlags         RegionAttribute = 1
	RegionInfoSize                RegionAttribute = 2
	RegionInfoAllocMaxSize        RegionAttribute = 4
	RegionInfoRuntimeAllocAllowed RegionAttribute = 5
	RegionInfoAllocGranule        RegionAttribute = 6
	RegionInfoAllocAlignment      RegionAttribute = 7
)

// SymbolAttribute selects an executable symbol query.
type SymbolAttribute uint32

const (
	SymbolInfoName                     SymbolAttribute = 2
	SymbolInfoKernelObject             SymbolAttribute = 22
	SymbolInfoKernelKernargSegmentSize SymbolAttribute = 11
	SymbolInfoKernelGroupSegmentSize   SymbolAttribute = 13
	SymbolInfoKernelPrivateSegmentSize SymbolAttribute = 14
)

// QueueDescriptor is what the driver hands back from QueueCreate. Ring is the
// packet ring viewed as 32-bit words, 16 words per slot.
type QueueDescriptor struct {
	Handle   QueueHandle
	ID       uint64
	Type     QueueType
	Size     uint32
	Ring     []uint32
	Doorbell SignalHandle
}

// Driver is the underlying runtime this package drives: the cgo binding to
// the vendor library or the in-process software device. Methods report raw
// statuses; translation into *Error happens in this package.
//
// Iteration methods call visit once per item and stop as soon as visit
// returns anything but StatusSuccess, returning that status.
type Driver interface {
	Init() Status
	ShutDown() Status
	StatusString(status Status) string

	IterateAgents(visit func(AgentHandle) Status) Status
	AgentUint32(agent AgentHandle, attr AgentAttribute) (uint32, Status)
	AgentString(agent AgentHandle, attr AgentAttribute) (string, Status)

	IterateRegions(agent AgentHandle, visit func(RegionHandle) Status) Status
	RegionUint32(region RegionHandle, attr RegionAttribute) (uint32, Status)
	RegionUint64(region RegionHandle, attr RegionAttribute) (uint64, Status)
	RegionBool(region RegionHandle, attr RegionAttribute) (bool, Status)

	MemoryAllocate(region RegionHandle, size uint64) (Address, Status)
	MemoryFree(addr Address) Status
	// MemoryBytes views size bytes at addr; nil if the range is not mapped.
	MemoryBytes(addr Address, size uint64) []byte
	AgentsAllowAccess(agents []AgentHandle, addr Address) Status

	QueueCreate(agent AgentHandle, size uint32, typ QueueType) (QueueDescriptor, Status)
	QueueDestroy(queue QueueHandle) Status
	QueueInactivate(queue QueueHandle) Status
	QueueAddWriteIndex(queue QueueHandle, n uint64) uint64
	QueueCASWriteIndex(queue QueueHandle, expected, value uint64) uint64
	QueueStoreWriteIndex(queue QueueHandle, value uint64)
	QueueLoadWriteIndex(queue QueueHandle) uint64
	QueueLoadReadIndex(queue QueueHandle) uint64

	SignalCreate(initial int64) (SignalHandle, Status)
	SignalDestroy(signal SignalHandle) Status
	SignalLoad(signal SignalHandle) int64
	SignalStore(signal SignalHandle, value int64)
	SignalAdd(signal SignalHandle, value int64)
	SignalSubtract(signal SignalHandle, value int64)
	SignalExchange(signal SignalHandle, value int64) int64
	SignalCAS(signal SignalHandle, expected, value int64) int64
	SignalAnd(signal SignalHandle, value int64)
	SignalOr(signal SignalHandle, value int64)
	SignalXor(signal SignalHandle, value int64)
	SignalWait(signal SignalHandle, cond SignalCondition, value int64, timeout time.Duration) int64

	ExecutableCreate() (ExecutableHandle, Status)
	ExecutableDestroy(exe ExecutableHandle) Status
	ExecutableLoadCodeObject(exe ExecutableHandle, agent AgentHandle, codeObject []byte) Status
	ExecutableFreeze(exe ExecutableHandle) Status
	ExecutableSymbolByName(exe ExecutableHandle, agent AgentHandle, name string) (SymbolHandle, Status)
	IterateSymbols(exe ExecutableHandle, agent AgentHandle, visit func(SymbolHandle) Status) Status
	SymbolString(symbol SymbolHandle, attr SymbolAttribute) (string, Status)
	SymbolUint64(symbol SymbolHandle, attr SymbolAttribute) (uint64, Status)
	SymbolUint32(symbol SymbolHandle, attr SymbolAttribute) (uint32, Status)
}
