package hsa

import (
	"fmt"
	"iter"

	"go.uber.org/zap"
)

// Agent identifies one compute unit. It is a small value: copy it, compare
// it, use it as a map key. Every query goes to the driver; nothing is cached.
type Agent struct {
	rt     *Runtime
	handle AgentHandle
}

// Handle returns the driver handle.
func (a Agent) Handle() AgentHandle {
	return a.handle
}

func (a Agent) String() string {
	return fmt.Sprintf("agent 0x%x", uint64(a.handle))
}

// Agents lazily walks every agent the driver exposes. Breaking out of the
// range loop stops the driver-side walk early. A failed walk yields one
// final zero Agent with the error.
func (rt *Runtime) Agents() iter.Seq2[Agent, error] {
	return func(yield func(Agent, error) bool) {
		stopped := false
		status := rt.drv.IterateAgents(func(h AgentHandle) Status {
			if !yield(Agent{rt: rt, handle: h}, nil) {
				stopped = true
				return StatusInfoBreak
			}
			return StatusSuccess
		})
		if !stopped && !status.OK() {
			err := fromStatus(rt.drv, status, "iterate agents")
			rt.log.Error("Agent iteration failed", zap.Error(err))
			yield(Agent{}, err)
		}
	}
}

// FindGPU returns the first agent whose device type is GPU.
func (rt *Runtime) FindGPU() (Agent, error) {
	rt.log.Debug("Searching for GPU agent")
	for agent, err := range rt.Agents() {
		if err != nil {
			return Agent{}, err
		}
		kind, err := agent.DeviceType()
		if err != nil {
			return Agent{}, err
		}
		if kind == DeviceTypeGPU {
			rt.log.Info("Found GPU agent", zap.Uint64("handle", uint64(agent.handle)))
			return agent, nil
		}
	}
	rt.log.Error("No GPU agent found")
	return Agent{}, ErrAgentNotFound
}

// FindAll returns every agent regardless of kind.
func (rt *Runtime) FindAll() ([]Agent, error) {
	var agents []Agent
	for agent, err := range rt.Agents() {
		if err != nil {
			return nil, err
		}
		agents = append(agents, agent)
	}
	rt.log.Info("Found agents", zap.Int("count", len(agents)))
	return agents, nil
}

func (a Agent) uint32Info(attr AgentAttribute, what string) (uint32, error) {
	if a.rt == nil {
		return 0, newError(KindInvalidAgent, "zero agent")
	}
	v, status := a.rt.drv.AgentUint32(a.handle, attr)
	if status != StatusSuccess {
		return 0, fromStatus(a.rt.drv, status, fmt.Sprintf("get %s of %s", what, a))
	}
	return v, nil
}

func (a Agent) stringInfo(attr AgentAttribute, what string) (string, error) {
	if a.rt == nil {
		return "", newError(KindInvalidAgent, "zero agent")
	}
	v, status := a.rt.drv.AgentString(a.handle, attr)
	if status != StatusSuccess {
		return "", fromStatus(a.rt.drv, status, fmt.Sprintf("get %s of %s", what, a))
	}
	return v, nil
}

// DeviceType queries the kind of the agent.
func (a Agent) DeviceType() (DeviceType, error) {
	v, err := a.uint32Info(AgentInfoDevice, "device type")
	if err != nil {
		return 0, err
	}
	kind := DeviceType(v)
	switch kind {
	case DeviceTypeCPU, DeviceTypeGPU, DeviceTypeDSP, DeviceTypeAIE:
	default:
		return 0, newError(KindInvalidArgument, "unknown device type %d for %s", v, a)
	}
	a.rt.log.Debug("Agent device type", zap.Stringer("agent", a), zap.Stringer("type", kind))
	return kind, nil
}

// Name returns the agent's marketing or ISA name.
func (a Agent) Name() (string, error) {
	return a.stringInfo(AgentInfoName, "name")
}

// VendorName returns the agent's vendor.
func (a Agent) VendorName() (string, error) {
	return a.stringInfo(AgentInfoVendorName, "vendor name")
}

// SupportsKernelDispatch reports whether kernel dispatch packets can be
// submitted to queues of this agent.
func (a Agent) SupportsKernelDispatch() (bool, error) {
	feature, err := a.uint32Info(AgentInfoFeature, "features")
	if err != nil {
		return false, err
	}
	return feature&AgentFeatureKernelDispatch != 0, nil
}

// QueueMinSize is the smallest queue capacity the agent accepts.
func (a Agent) QueueMinSize() (uint32, error) {
	return a.uint32Info(AgentInfoQueueMinSize, "queue min size")
}

// QueueMaxSize is the largest queue capacity the agent accepts.
func (a Agent) QueueMaxSize() (uint32, error) {
	return a.uint32Info(AgentInfoQueueMaxSize, "queue max size")
}

// Regions lazily walks the memory regions associated with the agent.
func (a Agent) Regions() iter.Seq2[MemoryRegion, error] {
	return func(yield func(MemoryRegion, error) bool) {
		if a.rt == nil {
			yield(MemoryRegion{}, newError(KindInvalidAgent, "zero agent"))
			return
		}
		stopped := false
		status := a.rt.drv.IterateRegions(a.handle, func(h RegionHandle) Status {
			if !yield(MemoryRegion{rt: a.rt, handle: h}, nil) {
				stopped = true
				return StatusInfoBreak
			}
			return StatusSuccess
		})
		if !stopped && !status.OK() {
			err := fromStatus(a.rt.drv, status, fmt.Sprintf("iterate memory regions of %s", a))
			a.rt.log.Error("Memory region iteration failed", zap.Error(err))
			yield(MemoryRegion{}, err)
		}
	}
}

// MemoryRegions collects every region of the agent, logging each one's
// classification at debug level.
func (a Agent) MemoryRegions() ([]MemoryRegion, error) {
	var regions []MemoryRegion
	for region, err := range a.Regions() {
		if err != nil {
			return nil, err
		}
		regions = append(regions, region)
	}
	a.rt.log.Debug("Found memory regions", zap.Stringer("agent", a), zap.Int("count", len(regions)))
	for i, region := range regions {
		info, err := region.Classify()
		if err != nil {
			continue
		}
		a.rt.log.Debug("Memory region",
			zap.Int("index", i),
			zap.Stringer("segment", info.Segment),
			zap.Stringer("flags", info.Flags))
	}
	return regions, nil
}

// AgentInfo is a point-in-time snapshot of an agent's capabilities.
type AgentInfo struct {
	Handle         AgentHandle
	DeviceType     DeviceType
	Name           string
	Vendor         string
	KernelDispatch bool
	QueueMinSize   uint32
	QueueMaxSize   uint32
	Regions        []RegionInfo
}

// Info gathers every capability query into one snapshot. The first failing
// query aborts it.
func (a Agent) Info() (AgentInfo, error) {
	info := AgentInfo{Handle: a.handle}
	var err error
	if info.DeviceType, err = a.DeviceType(); err != nil {
		return info, err
	}
	if info.Name, err = a.Name(); err != nil {
		return info, err
	}
	if info.Vendor, err = a.VendorName(); err != nil {
		return info, err
	}
	if info.KernelDispatch, err = a.SupportsKernelDispatch(); err != nil {
		return info, err
	}
	if info.QueueMinSize, err = a.QueueMinSize(); err != nil {
		return info, err
	}
	if info.QueueMaxSize, err = a.QueueMaxSize(); err != nil {
		return info, err
	}
	regions, err := a.MemoryRegions()
	if err != nil {
		return info, err
	}
	for _, region := range regions {
		ri, err := region.Info()
		if err != nil {
			return info, err
		}
		info.Regions = append(info.Regions, ri)
	}
	return info, nil
}
