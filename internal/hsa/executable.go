package hsa

import (
	"fmt"
	"iter"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Executable holds loaded code objects. Load code objects, Freeze, then look
// kernels up by symbol name. The binary format is the driver's concern.
type Executable struct {
	rt  *Runtime
	log *zap.Logger

	mu     sync.Mutex
	handle ExecutableHandle
	frozen bool
}

// NewExecutable creates an empty executable.
func (rt *Runtime) NewExecutable() (*Executable, error) {
	log := rt.log.Named("executable")
	h, status := rt.drv.ExecutableCreate()
	if status != StatusSuccess {
		err := wrapAs(KindExecutableCreation, fromStatus(rt.drv, status, "create executable"))
		log.Error("Executable creation failed", zap.Error(err))
		return nil, err
	}
	log.Debug("Created executable", zap.Uint64("handle", uint64(h)))
	return &Executable{rt: rt, log: log, handle: h}, nil
}

// LoadExecutable creates an executable, loads codeObject for agent and
// freezes it.
func (rt *Runtime) LoadExecutable(agent Agent, codeObject []byte) (*Executable, error) {
	exe, err := rt.NewExecutable()
	if err != nil {
		return nil, err
	}
	if err := exe.LoadCodeObject(agent, codeObject); err != nil {
		exe.Destroy()
		return nil, err
	}
	if err := exe.Freeze(); err != nil {
		exe.Destroy()
		return nil, err
	}
	return exe, nil
}

// Handle returns the driver handle, or 0 after Destroy.
func (e *Executable) Handle() ExecutableHandle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.handle
}

func (e *Executable) live() (ExecutableHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.handle == 0 {
		return 0, newError(KindInvalidExecutable, "executable already destroyed")
	}
	return e.handle, nil
}

var loadHints = map[Status]string{
	StatusErrorIncompatibleArguments: "code object ISA, machine model, profile or float mode does not match the agent",
	StatusErrorInvalidCodeObject:     "code object is corrupted or of an unsupported version",
	StatusErrorOutOfResources:        "insufficient device memory or too many loaded code objects",
}

// LoadCodeObject loads codeObject into the executable for agent.
func (e *Executable) LoadCodeObject(agent Agent, codeObject []byte) error {
	h, err := e.live()
	if err != nil {
		return err
	}
	if len(codeObject) == 0 {
		return newError(KindInvalidArgument, "code object is empty")
	}
	e.log.Info("Loading code object", zap.Int("bytes", len(codeObject)), zap.Stringer("agent", agent))
	if status := e.rt.drv.ExecutableLoadCodeObject(h, agent.handle, codeObject); status != StatusSuccess {
		err := wrapAs(KindCodeObjectLoad,
			fromStatus(e.rt.drv, status, fmt.Sprintf("load %d-byte code object for %s", len(codeObject), agent)))
		if hint, ok := loadHints[status]; ok && err.Kind != KindFatal {
			err.Detail += " (" + hint + ")"
		}
		e.log.Error("Code object load failed", zap.Error(err))
		return err
	}
	return nil
}

// Freeze finalizes the executable. Symbols can only be queried afterwards.
func (e *Executable) Freeze() error {
	h, err := e.live()
	if err != nil {
		return err
	}
	if status := e.rt.drv.ExecutableFreeze(h); status != StatusSuccess {
		err := wrapAs(KindExecutableFreeze, fromStatus(e.rt.drv, status, "freeze executable"))
		e.log.Error("Executable freeze failed", zap.Error(err))
		return err
	}
	e.mu.Lock()
	e.frozen = true
	e.mu.Unlock()
	e.log.Info("Executable frozen")
	return nil
}

// Frozen reports whether Freeze succeeded.
func (e *Executable) Frozen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frozen
}

// KernelSymbol looks a kernel up by name. Kernel descriptors are usually
// named with a ".kd" suffix.
func (e *Executable) KernelSymbol(name string, agent Agent) (KernelSymbol, error) {
	h, err := e.live()
	if err != nil {
		return KernelSymbol{}, err
	}
	if name == "" || strings.IndexByte(name, 0) >= 0 {
		return KernelSymbol{}, newError(KindInvalidArgument, "invalid kernel name %q", name)
	}
	sym, status := e.rt.drv.ExecutableSymbolByName(h, agent.handle, name)
	if status != StatusSuccess {
		err := wrapAs(KindKernelNotFound,
			fromStatus(e.rt.drv, status, fmt.Sprintf("find kernel symbol %q", name)))
		e.log.Error("Kernel symbol lookup failed", zap.Error(err))
		return KernelSymbol{}, err
	}
	e.log.Debug("Found kernel symbol", zap.String("name", name), zap.Uint64("handle", uint64(sym)))
	return KernelSymbol{rt: e.rt, handle: sym, name: name}, nil
}

// Symbols lazily walks the symbols loaded for agent.
func (e *Executable) Symbols(agent Agent) iter.Seq2[KernelSymbol, error] {
	return func(yield func(KernelSymbol, error) bool) {
		h, err := e.live()
		if err != nil {
			yield(KernelSymbol{}, err)
			return
		}
		stopped := false
		status := e.rt.drv.IterateSymbols(h, agent.handle, func(s SymbolHandle) Status {
			if !yield(KernelSymbol{rt: e.rt, handle: s}, nil) {
				stopped = true
				return StatusInfoBreak
			}
			return StatusSuccess
		})
		if !stopped && !status.OK() {
			yield(KernelSymbol{}, fromStatus(e.rt.drv, status, "iterate executable symbols"))
		}
	}
}

// SymbolNames lists the names of every symbol loaded for agent. Symbols
// whose name cannot be read are skipped.
func (e *Executable) SymbolNames(agent Agent) ([]string, error) {
	var names []string
	for sym, err := range e.Symbols(agent) {
		if err != nil {
			return nil, err
		}
		name, err := sym.Name()
		if err != nil {
			e.log.Debug("Skipping unnamed symbol", zap.Error(err))
			continue
		}
		names = append(names, name)
	}
	e.log.Info("Listed executable symbols", zap.Int("count", len(names)))
	return names, nil
}

// Destroy releases the executable. Later calls are no-ops.
func (e *Executable) Destroy() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.handle == 0 {
		return nil
	}
	h := e.handle
	e.handle = 0
	if status := e.rt.drv.ExecutableDestroy(h); status != StatusSuccess {
		err := fromStatus(e.rt.drv, status, "destroy executable")
		e.log.Error("Failed to destroy executable", zap.Error(err))
		return err
	}
	e.log.Debug("Destroyed executable", zap.Uint64("handle", uint64(h)))
	return nil
}

// KernelSymbol is a kernel found in a frozen executable. It is only valid
// while the executable is.
type KernelSymbol struct {
	rt     *Runtime
	handle SymbolHandle
	name   string
}

// Handle returns the driver handle.
func (s KernelSymbol) Handle() SymbolHandle {
	return s.handle
}

// Name returns the symbol name.
func (s KernelSymbol) Name() (string, error) {
	if s.name != "" {
		return s.name, nil
	}
	v, status := s.rt.drv.SymbolString(s.handle, SymbolInfoName)
	if status != StatusSuccess {
		return "", fromStatus(s.rt.drv, status, "get symbol name")
	}
	return v, nil
}

// KernelObject is the opaque handle placed in dispatch packets.
func (s KernelSymbol) KernelObject() (uint64, error) {
	v, status := s.rt.drv.SymbolUint64(s.handle, SymbolInfoKernelObject)
	if status != StatusSuccess {
		return 0, fromStatus(s.rt.drv, status, "get kernel object from symbol")
	}
	return v, nil
}

func (s KernelSymbol) uint32Info(attr SymbolAttribute, what string) (uint32, error) {
	v, status := s.rt.drv.SymbolUint32(s.handle, attr)
	if status != StatusSuccess {
		return 0, fromStatus(s.rt.drv, status, "get "+what)
	}
	return v, nil
}

// KernargSegmentSize is the size of the argument block the kernel expects.
func (s KernelSymbol) KernargSegmentSize() (uint32, error) {
	return s.uint32Info(SymbolInfoKernelKernargSegmentSize, "kernarg segment size")
}

// GroupSegmentSize is the static group memory the kernel needs per workgroup.
func (s KernelSymbol) GroupSegmentSize() (uint32, error) {
	return s.uint32Info(SymbolInfoKernelGroupSegmentSize, "group segment size")
}

// PrivateSegmentSize is the static private memory the kernel needs per
// work-item.
func (s KernelSymbol) PrivateSegmentSize() (uint32, error) {
	return s.uint32Info(SymbolInfoKernelPrivateSegmentSize, "private segment size")
}

// Dispatch builds a KernelDispatch for the symbol with its segment sizes
// filled in.
func (s KernelSymbol) Dispatch(kernarg Address, workgroup [3]uint16, grid [3]uint32) (KernelDispatch, error) {
	obj, err := s.KernelObject()
	if err != nil {
		return KernelDispatch{}, err
	}
	private, err := s.PrivateSegmentSize()
	if err != nil {
		return KernelDispatch{}, err
	}
	group, err := s.GroupSegmentSize()
	if err != nil {
		return KernelDispatch{}, err
	}
	return KernelDispatch{
		KernelObject:       obj,
		KernargAddress:     kernarg,
		WorkgroupSize:      workgroup,
		GridSize:           grid,
		PrivateSegmentSize: private,
		GroupSegmentSize:   group,
	}, nil
}
