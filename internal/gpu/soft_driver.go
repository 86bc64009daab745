package gpu

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/fxnlabs/hsa-runtime/internal/config"
	"github.com/fxnlabs/hsa-runtime/internal/hsa"
	"go.uber.org/zap"
)

// SoftDriver implements hsa.Driver with an in-process device. Agents and
// regions come from a config.DeviceProfile; kernels are Go functions
// registered with RegisterKernel and executed by one packet processor
// goroutine per queue.
//
// Init and ShutDown are reference counted like the vendor runtime: state is
// built on the first Init and torn down on the matching last ShutDown.
type SoftDriver struct {
	log   *zap.Logger
	specs []agentSpec

	kernelsMu sync.RWMutex
	kernels   map[string]SoftKernel

	mu          sync.RWMutex
	refs        int
	agents      []*softAgent
	agentIndex  map[hsa.AgentHandle]*softAgent
	regions     map[hsa.RegionHandle]*softRegion
	signals     map[hsa.SignalHandle]*softSignal
	queues      map[hsa.QueueHandle]*softQueue
	executables map[hsa.ExecutableHandle]*softExecutable
	symbols     map[hsa.SymbolHandle]*softSymbol
	objects     map[uint64]*softSymbol
	memory      *addressSpace

	nextHandle  atomic.Uint64
	nextQueueID atomic.Uint64
}

type agentSpec struct {
	profile config.AgentProfile
	kind    hsa.DeviceType
	regions []regionSpec
}

type regionSpec struct {
	profile config.RegionProfile
	segment hsa.Segment
	flags   hsa.GlobalFlag
}

type softAgent struct {
	handle hsa.AgentHandle
	spec   *agentSpec

	regions []*softRegion
}

type softRegion struct {
	handle hsa.RegionHandle
	owner  *softAgent
	spec   *regionSpec
}

// NewSoftDriver parses profile and registers the built-in kernels. The
// device is not usable until Init.
func NewSoftDriver(profile config.DeviceProfile, log *zap.Logger) (*SoftDriver, error) {
	if log == nil {
		log = zap.NewNop()
	}
	d := &SoftDriver{
		log:     log.Named("soft"),
		kernels: make(map[string]SoftKernel),
	}
	for i, ap := range profile.Agents {
		kind, err := ap.DeviceType()
		if err != nil {
			return nil, fmt.Errorf("agent %d (%s): %w", i, ap.Name, err)
		}
		spec := agentSpec{profile: ap, kind: kind}
		for j, rp := range ap.Regions {
			segment, flags, err := rp.Class()
			if err != nil {
				return nil, fmt.Errorf("agent %d (%s) region %d: %w", i, ap.Name, j, err)
			}
			spec.regions = append(spec.regions, regionSpec{profile: rp, segment: segment, flags: flags})
		}
		d.specs = append(d.specs, spec)
	}
	d.nextHandle.Store(0x1000)
	for name, k := range builtinKernels {
		d.RegisterKernel(name, k)
	}
	return d, nil
}

// RegisterKernel binds name to k. Code objects refer to kernels by these
// names. Registering an existing name replaces it for executables frozen
// afterwards.
func (d *SoftDriver) RegisterKernel(name string, k SoftKernel) {
	d.kernelsMu.Lock()
	defer d.kernelsMu.Unlock()
	d.kernels[name] = k
	d.log.Debug("Registered kernel", zap.String("name", name))
}

func (d *SoftDriver) kernel(name string) (SoftKernel, bool) {
	d.kernelsMu.RLock()
	defer d.kernelsMu.RUnlock()
	k, ok := d.kernels[name]
	return k, ok
}

func (d *SoftDriver) handle() uint64 {
	return d.nextHandle.Add(1)
}

func (d *SoftDriver) Init() hsa.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.refs == 0 {
		d.build()
		d.log.Info("Software device initialized", zap.Int("agents", len(d.agents)))
	}
	d.refs++
	return hsa.StatusSuccess
}

// build creates fresh handles for every agent and region in the profile.
func (d *SoftDriver) build() {
	d.agents = nil
	d.agentIndex = make(map[hsa.AgentHandle]*softAgent)
	d.regions = make(map[hsa.RegionHandle]*softRegion)
	d.signals = make(map[hsa.SignalHandle]*softSignal)
	d.queues = make(map[hsa.QueueHandle]*softQueue)
	d.executables = make(map[hsa.ExecutableHandle]*softExecutable)
	d.symbols = make(map[hsa.SymbolHandle]*softSymbol)
	d.objects = make(map[uint64]*softSymbol)
	d.memory = newAddressSpace()
	for i := range d.specs {
		agent := &softAgent{handle: hsa.AgentHandle(d.handle()), spec: &d.specs[i]}
		for j := range agent.spec.regions {
			region := &softRegion{handle: hsa.RegionHandle(d.handle()), owner: agent, spec: &agent.spec.regions[j]}
			agent.regions = append(agent.regions, region)
			d.regions[region.handle] = region
		}
		d.agents = append(d.agents, agent)
		d.agentIndex[agent.handle] = agent
	}
}

func (d *SoftDriver) ShutDown() hsa.Status {
	d.mu.Lock()
	if d.refs == 0 {
		d.mu.Unlock()
		return hsa.StatusErrorNotInitialized
	}
	d.refs--
	if d.refs > 0 {
		d.mu.Unlock()
		return hsa.StatusSuccess
	}
	queues := make([]*softQueue, 0, len(d.queues))
	for _, q := range d.queues {
		queues = append(queues, q)
	}
	d.agents = nil
	d.agentIndex = nil
	d.regions = nil
	d.signals = nil
	d.queues = nil
	d.executables = nil
	d.symbols = nil
	d.objects = nil
	d.memory = nil
	d.mu.Unlock()

	// Processors take the read lock, so they are stopped outside it.
	for _, q := range queues {
		q.halt()
	}
	d.log.Info("Software device shut down", zap.Int("leakedQueues", len(queues)))
	return hsa.StatusSuccess
}

func (d *SoftDriver) StatusString(status hsa.Status) string {
	return status.String()
}

func (d *SoftDriver) IterateAgents(visit func(hsa.AgentHandle) hsa.Status) hsa.Status {
	d.mu.RLock()
	if d.refs == 0 {
		d.mu.RUnlock()
		return hsa.StatusErrorNotInitialized
	}
	agents := append([]*softAgent(nil), d.agents...)
	d.mu.RUnlock()

	for _, a := range agents {
		if status := visit(a.handle); status != hsa.StatusSuccess {
			return status
		}
	}
	return hsa.StatusSuccess
}

func (d *SoftDriver) agent(h hsa.AgentHandle) (*softAgent, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.agentIndex[h]
	return a, ok
}

func (d *SoftDriver) AgentUint32(h hsa.AgentHandle, attr hsa.AgentAttribute) (uint32, hsa.Status) {
	a, ok := d.agent(h)
	if !ok {
		return 0, hsa.StatusErrorInvalidAgent
	}
	switch attr {
	case hsa.AgentInfoDevice:
		return uint32(a.spec.kind), hsa.StatusSuccess
	case hsa.AgentInfoFeature:
		if a.spec.profile.KernelDispatch {
			return hsa.AgentFeatureKernelDispatch, hsa.StatusSuccess
		}
		return 0, hsa.StatusSuccess
	case hsa.AgentInfoQueueMinSize:
		return a.spec.profile.QueueMinSize, hsa.StatusSuccess
	case hsa.AgentInfoQueueMaxSize:
		return a.spec.profile.QueueMaxSize, hsa.StatusSuccess
	}
	return 0, hsa.StatusErrorInvalidArgument
}

func (d *SoftDriver) AgentString(h hsa.AgentHandle, attr hsa.AgentAttribute) (string, hsa.Status) {
	a, ok := d.agent(h)
	if !ok {
		return "", hsa.StatusErrorInvalidAgent
	}
	switch attr {
	case hsa.AgentInfoName:
		return a.spec.profile.Name, hsa.StatusSuccess
	case hsa.AgentInfoVendorName:
		return a.spec.profile.Vendor, hsa.StatusSuccess
	}
	return "", hsa.StatusErrorInvalidArgument
}

func (d *SoftDriver) IterateRegions(h hsa.AgentHandle, visit func(hsa.RegionHandle) hsa.Status) hsa.Status {
	a, ok := d.agent(h)
	if !ok {
		return hsa.StatusErrorInvalidAgent
	}
	for _, r := range a.regions {
		if status := visit(r.handle); status != hsa.StatusSuccess {
			return status
		}
	}
	return hsa.StatusSuccess
}

func (d *SoftDriver) region(h hsa.RegionHandle) (*softRegion, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.regions[h]
	return r, ok
}

func (d *SoftDriver) RegionUint32(h hsa.RegionHandle, attr hsa.RegionAttribute) (uint32, hsa.Status) {
	r, ok := d.region(h)
	if !ok {
		return 0, hsa.StatusErrorInvalidRegion
	}
	switch attr {
	case hsa.RegionInfoSegment:
		return uint32(r.spec.segment), hsa.StatusSuccess
	case hsa.RegionInfoGlobalFlags:
		if r.spec.segment != hsa.SegmentGlobal {
			return 0, hsa.StatusErrorInvalidArgument
		}
		return uint32(r.spec.flags), hsa.StatusSuccess
	}
	return 0, hsa.StatusErrorInvalidArgument
}

func (d *SoftDriver) RegionUint64(h hsa.RegionHandle, attr hsa.RegionAttribute) (uint64, hsa.Status) {
	r, ok := d.region(h)
	if !ok {
		return 0, hsa.StatusErrorInvalidRegion
	}
	switch attr {
	case hsa.RegionInfoSize:
		return r.spec.profile.Size, hsa.StatusSuccess
	case hsa.RegionInfoAllocMaxSize:
		return r.spec.profile.AllocMaxSize, hsa.StatusSuccess
	case hsa.RegionInfoAllocGranule, hsa.RegionInfoAllocAlignment:
		return allocGranule, hsa.StatusSuccess
	}
	return 0, hsa.StatusErrorInvalidArgument
}

func (d *SoftDriver) RegionBool(h hsa.RegionHandle, attr hsa.RegionAttribute) (bool, hsa.Status) {
	r, ok := d.region(h)
	if !ok {
		return false, hsa.StatusErrorInvalidRegion
	}
	if attr == hsa.RegionInfoRuntimeAllocAllowed {
		return r.spec.profile.RuntimeAlloc, hsa.StatusSuccess
	}
	return false, hsa.StatusErrorInvalidArgument
}

var _ hsa.Driver = (*SoftDriver)(nil)
