package hsa

import (
	"fmt"

	"github.com/fxnlabs/hsa-runtime/internal/metrics"
	"go.uber.org/zap"
)

// MemoryRegion identifies one memory pool visible to an agent. Like Agent it
// is a copyable view; regions are never destroyed by this package.
type MemoryRegion struct {
	rt     *Runtime
	handle RegionHandle
}

// Handle returns the driver handle.
func (r MemoryRegion) Handle() RegionHandle {
	return r.handle
}

func (r MemoryRegion) String() string {
	return fmt.Sprintf("region 0x%x", uint64(r.handle))
}

// Valid reports whether r came from a discovery call.
func (r MemoryRegion) Valid() bool {
	return r.rt != nil
}

func (r MemoryRegion) check() error {
	if r.rt == nil {
		return newError(KindInvalidRegion, "zero memory region")
	}
	return nil
}

// Segment queries which segment the region belongs to.
func (r MemoryRegion) Segment() (Segment, error) {
	if err := r.check(); err != nil {
		return 0, err
	}
	v, status := r.rt.drv.RegionUint32(r.handle, RegionInfoSegment)
	if status != StatusSuccess {
		return 0, fromStatus(r.rt.drv, status, "get memory region segment")
	}
	return Segment(v), nil
}

// GlobalFlags queries the grain flags. Only meaningful for GLOBAL regions.
func (r MemoryRegion) GlobalFlags() (GlobalFlag, error) {
	if err := r.check(); err != nil {
		return 0, err
	}
	v, status := r.rt.drv.RegionUint32(r.handle, RegionInfoGlobalFlags)
	if status != StatusSuccess {
		return 0, fromStatus(r.rt.drv, status, "get memory region global flags")
	}
	return GlobalFlag(v), nil
}

// Size is the total size of the region in bytes.
func (r MemoryRegion) Size() (uint64, error) {
	if err := r.check(); err != nil {
		return 0, err
	}
	v, status := r.rt.drv.RegionUint64(r.handle, RegionInfoSize)
	if status != StatusSuccess {
		return 0, fromStatus(r.rt.drv, status, "get memory region size")
	}
	return v, nil
}

// MaxAllocSize is the largest single allocation the region serves.
func (r MemoryRegion) MaxAllocSize() (uint64, error) {
	if err := r.check(); err != nil {
		return 0, err
	}
	v, status := r.rt.drv.RegionUint64(r.handle, RegionInfoAllocMaxSize)
	if status != StatusSuccess {
		return 0, fromStatus(r.rt.drv, status, "get memory region max allocation size")
	}
	return v, nil
}

// RuntimeAllocAllowed reports whether Allocate may be used on the region.
func (r MemoryRegion) RuntimeAllocAllowed() (bool, error) {
	if err := r.check(); err != nil {
		return false, err
	}
	v, status := r.rt.drv.RegionBool(r.handle, RegionInfoRuntimeAllocAllowed)
	if status != StatusSuccess {
		return false, fromStatus(r.rt.drv, status, "get memory region allocation permission")
	}
	return v, nil
}

// RegionClass is the classification used to pick regions for a launch.
type RegionClass struct {
	Segment Segment
	Flags   GlobalFlag // zero unless Segment is GLOBAL
}

// Kernarg reports whether the region can hold kernel argument blocks.
func (c RegionClass) Kernarg() bool {
	return c.Segment == SegmentKernarg || (c.Segment == SegmentGlobal && c.Flags.Has(GlobalFlagKernarg))
}

// FineGrained reports a GLOBAL fine-grained region.
func (c RegionClass) FineGrained() bool {
	return c.Segment == SegmentGlobal && c.Flags.Has(GlobalFlagFineGrained)
}

// CoarseGrained reports a GLOBAL coarse-grained region.
func (c RegionClass) CoarseGrained() bool {
	return c.Segment == SegmentGlobal && c.Flags.Has(GlobalFlagCoarseGrained)
}

// Classify reads the segment and, for GLOBAL regions, the grain flags.
func (r MemoryRegion) Classify() (RegionClass, error) {
	segment, err := r.Segment()
	if err != nil {
		return RegionClass{}, err
	}
	class := RegionClass{Segment: segment}
	if segment == SegmentGlobal {
		if class.Flags, err = r.GlobalFlags(); err != nil {
			return RegionClass{}, err
		}
	}
	return class, nil
}

// RegionInfo is a snapshot of a region's properties.
type RegionInfo struct {
	RegionClass
	Handle       RegionHandle
	Size         uint64
	AllocMaxSize uint64
	AllocAllowed bool
}

// Info snapshots the region.
func (r MemoryRegion) Info() (RegionInfo, error) {
	info := RegionInfo{Handle: r.handle}
	var err error
	if info.RegionClass, err = r.Classify(); err != nil {
		return info, err
	}
	if info.Size, err = r.Size(); err != nil {
		return info, err
	}
	if info.AllocAllowed, err = r.RuntimeAllocAllowed(); err != nil {
		return info, err
	}
	if info.AllocAllowed {
		if info.AllocMaxSize, err = r.MaxAllocSize(); err != nil {
			return info, err
		}
	}
	return info, nil
}

// Allocate draws size bytes from the region. The returned Memory has no
// agents granted access yet; see Memory.AllowAccess.
func (r MemoryRegion) Allocate(size uint64) (*Memory, error) {
	if err := r.check(); err != nil {
		return nil, err
	}
	log := r.rt.log.Named("memory")
	log.Debug("Allocating memory", zap.Uint64("size", size), zap.Stringer("region", r))

	allowed, err := r.RuntimeAllocAllowed()
	if err != nil {
		metrics.MemoryAllocations.WithLabelValues("query").Inc()
		return nil, wrapAs(KindMemoryAllocation, err)
	}
	if !allowed {
		metrics.MemoryAllocations.WithLabelValues("permission").Inc()
		return nil, newError(KindMemoryAllocation, "runtime allocation not allowed for %s", r)
	}

	maxSize, err := r.MaxAllocSize()
	if err != nil {
		metrics.MemoryAllocations.WithLabelValues("query").Inc()
		return nil, wrapAs(KindMemoryAllocation, err)
	}
	if size > maxSize {
		metrics.MemoryAllocations.WithLabelValues("size").Inc()
		return nil, newError(KindMemoryAllocation,
			"requested size %d exceeds maximum allocation size %d for %s", size, maxSize, r)
	}
	if size == 0 {
		metrics.MemoryAllocations.WithLabelValues("size").Inc()
		return nil, newError(KindMemoryAllocation, "requested size is zero")
	}

	addr, status := r.rt.drv.MemoryAllocate(r.handle, size)
	if status != StatusSuccess || addr == 0 {
		metrics.MemoryAllocations.WithLabelValues("driver").Inc()
		if status == StatusSuccess {
			status = StatusErrorInvalidAllocation
		}
		err := wrapAs(KindMemoryAllocation,
			fromStatus(r.rt.drv, status, fmt.Sprintf("allocate %d bytes from %s", size, r)))
		log.Error("Memory allocation failed", zap.Error(err))
		return nil, err
	}

	metrics.MemoryAllocations.WithLabelValues("ok").Inc()
	metrics.MemoryAllocatedBytes.Add(float64(size))
	log.Debug("Allocated memory", zap.Uint64("size", size), zap.Uint64("address", uint64(addr)))
	return &Memory{rt: r.rt, region: r, addr: addr, size: size, log: log}, nil
}
