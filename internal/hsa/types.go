package hsa

import (
	"fmt"
	"strings"
)

// Opaque driver handles. They identify runtime objects but own nothing;
// copy and compare them freely.
type (
	AgentHandle      uint64
	RegionHandle     uint64
	SignalHandle     uint64
	QueueHandle      uint64
	ExecutableHandle uint64
	SymbolHandle     uint64
)

// Address is a location in the agent-visible address space.
type Address uint64

// DeviceType is the kind of compute unit behind an agent.
type DeviceType uint32

const (
	DeviceTypeCPU DeviceType = 0
	DeviceTypeGPU DeviceType = 1
	DeviceTypeDSP DeviceType = 2
	DeviceTypeAIE DeviceType = 3
)

func (d DeviceType) String() string {
	switch d {
	case DeviceTypeCPU:
		return "CPU"
	case DeviceTypeGPU:
		return "GPU"
	case DeviceTypeDSP:
		return "DSP"
	case DeviceTypeAIE:
		return "AIE"
	}
	return fmt.Sprintf("DeviceType(%d)", uint32(d))
}

// ParseDeviceType accepts the lower-case names used in configuration files.
func ParseDeviceType(s string) (DeviceType, error) {
	switch strings.ToLower(s) {
	case "cpu":
		return DeviceTypeCPU, nil
	case "gpu":
		return DeviceTypeGPU, nil
	case "dsp":
		return DeviceTypeDSP, nil
	case "aie":
		return DeviceTypeAIE, nil
	}
	return 0, newError(KindInvalidArgument, "unknown device type %q", s)
}

// AgentFeature bits.
const (
	AgentFeatureKernelDispatch uint32 = 1
	AgentFeatureAgentDispatch  uint32 = 2
)

// Segment is the memory segment a region belongs to.
type Segment uint32

const (
	SegmentGlobal   Segment = 0
	SegmentReadonly Segment = 1
	SegmentPrivate  Segment = 2
	SegmentGroup    Segment = 3
	SegmentKernarg  Segment = 4
)

var segmentNames = map[Segment]string{
	SegmentGlobal:   "GLOBAL",
	SegmentReadonly: "READONLY",
	SegmentPrivate:  "PRIVATE",
	SegmentGroup:    "GROUP",
	SegmentKernarg:  "KERNARG",
}

func (s Segment) String() string {
	if name, ok := segmentNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseSegment accepts segment names case-insensitively.
func ParseSegment(s string) (Segment, error) {
	for seg, name := range segmentNames {
		if strings.EqualFold(name, s) {
			return seg, nil
		}
	}
	return 0, newError(KindInvalidArgument, "unknown region segment %q", s)
}

// GlobalFlag is the grain/kernarg flag set of a GLOBAL region.
type GlobalFlag uint32

const (
	GlobalFlagKernarg       GlobalFlag = 1
	GlobalFlagFineGrained   GlobalFlag = 2
	GlobalFlagCoarseGrained GlobalFlag = 4
)

var globalFlagNames = []struct {
	flag GlobalFlag
	name string
}{
	{GlobalFlagKernarg, "KERNARG"},
	{GlobalFlagFineGrained, "FINE_GRAINED"},
	{GlobalFlagCoarseGrained, "COARSE_GRAINED"},
}

func (f GlobalFlag) Has(flag GlobalFlag) bool {
	return f&flag != 0
}

func (f GlobalFlag) String() string {
	var names []string
	for _, n := range globalFlagNames {
		if f.Has(n.flag) {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "NONE"
	}
	return strings.Join(names, "|")
}

// ParseGlobalFlag accepts one flag name, case-insensitively.
func ParseGlobalFlag(s string) (GlobalFlag, error) {
	for _, n := range globalFlagNames {
		if strings.EqualFold(n.name, s) {
			return n.flag, nil
		}
	}
	return 0, newError(KindInvalidArgument, "unknown global region flag %q", s)
}

// QueueType selects single or multiple producers.
type QueueType uint32

const (
	QueueTypeMulti       QueueType = 0
	QueueTypeSingle      QueueType = 1
	QueueTypeCooperative QueueType = 2
)

func (t QueueType) String() string {
	switch t {
	case QueueTypeMulti:
		return "MULTI"
	case QueueTypeSingle:
		return "SINGLE"
	case QueueTypeCooperative:
		return "COOPERATIVE"
	}
	return fmt.Sprintf("QueueType(%d)", uint32(t))
}

// SignalCondition is the comparison a wait blocks on.
type SignalCondition uint32

const (
	ConditionEq  SignalCondition = 0
	ConditionNe  SignalCondition = 1
	ConditionLt  SignalCondition = 2
	ConditionGte SignalCondition = 3
)

func (c SignalCondition) String() string {
	switch c {
	case ConditionEq:
		return "eq"
	case ConditionNe:
		return "ne"
	case ConditionLt:
		return "lt"
	case ConditionGte:
		return "gte"
	}
	return fmt.Sprintf("SignalCondition(%d)", uint32(c))
}

// Holds reports whether observed satisfies the condition against value.
func (c SignalCondition) Holds(observed, value int64) bool {
	switch c {
	case ConditionEq:
		return observed == value
	case ConditionNe:
		return observed != value
	case ConditionLt:
		return observed < value
	case ConditionGte:
		return observed >= value
	}
	return false
}
