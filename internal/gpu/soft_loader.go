package gpu

import (
	"github.com/fxnlabs/hsa-runtime/internal/hsa"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// SoftISA is the only ISA the software device accepts in code objects.
const SoftISA = "soft-gfx"

// CodeObject is the software device's code object format: a YAML manifest
// binding symbol names to registered kernels.
type CodeObject struct {
	ISA     string             `yaml:"isa"`
	Kernels []CodeObjectKernel `yaml:"kernels"`
}

type CodeObjectKernel struct {
	Symbol             string `yaml:"symbol"`
	Kernel             string `yaml:"kernel"`
	KernargSegmentSize uint32 `yaml:"kernargSegmentSize"`
	GroupSegmentSize   uint32 `yaml:"groupSegmentSize"`
	PrivateSegmentSize uint32 `yaml:"privateSegmentSize"`
}

// Marshal encodes the code object for ExecutableLoadCodeObject.
func (c CodeObject) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

type softExecutable struct {
	handle  hsa.ExecutableHandle
	frozen  bool
	symbols []*softSymbol
}

type softSymbol struct {
	handle      hsa.SymbolHandle
	agent       hsa.AgentHandle
	name        string
	kernelName  string
	kernel      SoftKernel
	object      uint64
	kernargSize uint32
	groupSize   uint32
	privateSize uint32
}

func defines(symbols []*softSymbol, agent hsa.AgentHandle, name string) bool {
	for _, sym := range symbols {
		if sym.name == name && sym.agent == agent {
			return true
		}
	}
	return false
}

func (e *softExecutable) defines(agent hsa.AgentHandle, name string) bool {
	return defines(e.symbols, agent, name)
}

func (d *SoftDriver) ExecutableCreate() (hsa.ExecutableHandle, hsa.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.refs == 0 {
		return 0, hsa.StatusErrorNotInitialized
	}
	exe := &softExecutable{handle: hsa.ExecutableHandle(d.handle())}
	d.executables[exe.handle] = exe
	return exe.handle, hsa.StatusSuccess
}

func (d *SoftDriver) ExecutableDestroy(h hsa.ExecutableHandle) hsa.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	exe, ok := d.executables[h]
	if !ok {
		return hsa.StatusErrorInvalidExecutable
	}
	for _, sym := range exe.symbols {
		delete(d.symbols, sym.handle)
		delete(d.objects, sym.object)
	}
	delete(d.executables, h)
	return hsa.StatusSuccess
}

func (d *SoftDriver) ExecutableLoadCodeObject(h hsa.ExecutableHandle, agent hsa.AgentHandle, codeObject []byte) hsa.Status {
	var co CodeObject
	if err := yaml.Unmarshal(codeObject, &co); err != nil {
		d.log.Debug("Rejecting code object", zap.Error(err))
		return hsa.StatusErrorInvalidCodeObject
	}
	if co.ISA != SoftISA {
		return hsa.StatusErrorIncompatibleArguments
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	exe, ok := d.executables[h]
	if !ok {
		return hsa.StatusErrorInvalidExecutable
	}
	if exe.frozen {
		return hsa.StatusErrorFrozenExecutable
	}
	a, ok := d.agentIndex[agent]
	if !ok {
		return hsa.StatusErrorInvalidAgent
	}
	if !a.spec.profile.KernelDispatch {
		return hsa.StatusErrorIncompatibleArguments
	}
	loaded := make([]*softSymbol, 0, len(co.Kernels))
	for _, k := range co.Kernels {
		if k.Symbol == "" || k.Kernel == "" {
			return hsa.StatusErrorInvalidCodeObject
		}
		if exe.defines(agent, k.Symbol) || defines(loaded, agent, k.Symbol) {
			return hsa.StatusErrorVariableAlreadyDefined
		}
		loaded = append(loaded, &softSymbol{
			agent:       agent,
			name:        k.Symbol,
			kernelName:  k.Kernel,
			kernargSize: k.KernargSegmentSize,
			groupSize:   k.GroupSegmentSize,
			privateSize: k.PrivateSegmentSize,
		})
	}
	for _, sym := range loaded {
		sym.handle = hsa.SymbolHandle(d.handle())
		d.symbols[sym.handle] = sym
	}
	exe.symbols = append(exe.symbols, loaded...)
	d.log.Debug("Loaded code object", zap.Int("kernels", len(loaded)), zap.Uint64("executable", uint64(h)))
	return hsa.StatusSuccess
}

// ExecutableFreeze resolves every symbol against the registered kernels and
// assigns kernel objects. A symbol naming an unregistered kernel fails the
// freeze.
func (d *SoftDriver) ExecutableFreeze(h hsa.ExecutableHandle) hsa.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	exe, ok := d.executables[h]
	if !ok {
		return hsa.StatusErrorInvalidExecutable
	}
	if exe.frozen {
		return hsa.StatusErrorFrozenExecutable
	}
	kernels := make([]SoftKernel, len(exe.symbols))
	for i, sym := range exe.symbols {
		k, ok := d.kernel(sym.kernelName)
		if !ok {
			d.log.Debug("Undefined kernel", zap.String("symbol", sym.name), zap.String("kernel", sym.kernelName))
			return hsa.StatusErrorVariableUndefined
		}
		kernels[i] = k
	}
	for i, sym := range exe.symbols {
		sym.kernel = kernels[i]
		sym.object = d.handle()
		d.objects[sym.object] = sym
	}
	exe.frozen = true
	return hsa.StatusSuccess
}

func (d *SoftDriver) ExecutableSymbolByName(h hsa.ExecutableHandle, agent hsa.AgentHandle, name string) (hsa.SymbolHandle, hsa.Status) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	exe, ok := d.executables[h]
	if !ok {
		return 0, hsa.StatusErrorInvalidExecutable
	}
	for _, sym := range exe.symbols {
		if sym.name == name && sym.agent == agent {
			return sym.handle, hsa.StatusSuccess
		}
	}
	return 0, hsa.StatusErrorInvalidSymbolName
}

func (d *SoftDriver) IterateSymbols(h hsa.ExecutableHandle, agent hsa.AgentHandle, visit func(hsa.SymbolHandle) hsa.Status) hsa.Status {
	d.mu.RLock()
	exe, ok := d.executables[h]
	var handles []hsa.SymbolHandle
	if ok {
		for _, sym := range exe.symbols {
			if sym.agent == agent {
				handles = append(handles, sym.handle)
			}
		}
	}
	d.mu.RUnlock()
	if !ok {
		return hsa.StatusErrorInvalidExecutable
	}
	for _, s := range handles {
		if status := visit(s); status != hsa.StatusSuccess {
			return status
		}
	}
	return hsa.StatusSuccess
}

func (d *SoftDriver) symbol(h hsa.SymbolHandle) *softSymbol {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.symbols[h]
}

func (d *SoftDriver) SymbolString(h hsa.SymbolHandle, attr hsa.SymbolAttribute) (string, hsa.Status) {
	sym := d.symbol(h)
	if sym == nil {
		return "", hsa.StatusErrorInvalidExecutableSymbol
	}
	if attr == hsa.SymbolInfoName {
		return sym.name, hsa.StatusSuccess
	}
	return "", hsa.StatusErrorInvalidArgument
}

func (d *SoftDriver) SymbolUint64(h hsa.SymbolHandle, attr hsa.SymbolAttribute) (uint64, hsa.Status) {
	sym := d.symbol(h)
	if sym == nil {
		return 0, hsa.StatusErrorInvalidExecutableSymbol
	}
	if attr != hsa.SymbolInfoKernelObject {
		return 0, hsa.StatusErrorInvalidArgument
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if sym.object == 0 {
		// Kernel objects exist only once the executable is frozen.
		return 0, hsa.StatusErrorInvalidExecutable
	}
	return sym.object, hsa.StatusSuccess
}

func (d *SoftDriver) SymbolUint32(h hsa.SymbolHandle, attr hsa.SymbolAttribute) (uint32, hsa.Status) {
	sym := d.symbol(h)
	if sym == nil {
		return 0, hsa.StatusErrorInvalidExecutableSymbol
	}
	switch attr {
	case hsa.SymbolInfoKernelKernargSegmentSize:
		return sym.kernargSize, hsa.StatusSuccess
	case hsa.SymbolInfoKernelGroupSegmentSize:
		return sym.groupSize, hsa.StatusSuccess
	case hsa.SymbolInfoKernelPrivateSegmentSize:
		return sym.privateSize, hsa.StatusSuccess
	}
	return 0, hsa.StatusErrorInvalidArgument
}
