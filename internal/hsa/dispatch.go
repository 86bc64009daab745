package hsa

import (
	"github.com/fxnlabs/hsa-runtime/internal/metrics"
	"go.uber.org/zap"
)

// KernelDispatch describes one kernel launch. KernelObject and the segment
// sizes come from the loader and are passed through untouched.
type KernelDispatch struct {
	KernelObject       uint64
	KernargAddress     Address
	WorkgroupSize      [3]uint16
	GridSize           [3]uint32
	PrivateSegmentSize uint32
	GroupSegmentSize   uint32
}

// DispatchHeader is the header every kernel dispatch is published with:
// system-scope acquire and release fences.
var DispatchHeader = Header(PacketTypeKernelDispatch, false, FenceScopeSystem, FenceScopeSystem)

func (d KernelDispatch) validate() error {
	if d.KernelObject == 0 {
		return newError(KindInvalidArgument, "kernel object is zero")
	}
	for i := 0; i < 3; i++ {
		if d.WorkgroupSize[i] == 0 {
			return newError(KindInvalidArgument, "workgroup size %v has a zero dimension", d.WorkgroupSize)
		}
		if d.GridSize[i] == 0 {
			return newError(KindInvalidArgument, "grid size %v has a zero dimension", d.GridSize)
		}
	}
	return nil
}

// packet builds the dispatch packet body. Header and setup are left zero.
func (d KernelDispatch) packet(completion SignalHandle) DispatchPacket {
	return DispatchPacket{
		WorkgroupSize:      d.WorkgroupSize,
		GridSize:           d.GridSize,
		PrivateSegmentSize: d.PrivateSegmentSize,
		GroupSegmentSize:   d.GroupSegmentSize,
		KernelObject:       d.KernelObject,
		KernargAddress:     d.KernargAddress,
		CompletionSignal:   completion,
	}
}

// populate clears the slot and writes every field but the header word.
func (d KernelDispatch) populate(slot *PacketSlot, completion SignalHandle) {
	slot.Clear()
	p := d.packet(completion)
	slot.writeBody(&p)
}

// publishHeader makes a populated slot eligible for execution. It is the
// last write to the slot.
func (d KernelDispatch) publishHeader(slot *PacketSlot) {
	slot.StoreHeader(DispatchHeader, Dimensions(d.GridSize)<<SetupDimensionsShift)
}

// Dispatch submits d to q and returns the slot index it occupies. The
// completion signal, if any, is decremented by the device when the kernel
// finishes; pass nil to dispatch without one.
//
// The slot is reserved, cleared, filled, and only then given its header, so
// the device never sees a partially written packet as ready. The write index
// is published after the header and the doorbell is rung last. If the ring
// is full, Dispatch waits for the device to free the slot.
func (q *Queue) Dispatch(d KernelDispatch, completion *Signal) (uint64, error) {
	if err := d.validate(); err != nil {
		return 0, err
	}
	var signal SignalHandle
	if completion != nil {
		if signal = completion.Handle(); signal == 0 {
			return 0, newError(KindSignalOperation, "completion signal already destroyed")
		}
	}

	index := q.AddWriteIndex(1)
	q.WaitForSpace(index)

	slot := q.Slot(index)
	d.populate(slot, signal)
	d.publishHeader(slot)

	q.publish(index + 1)
	q.RingDoorbell(index)

	metrics.PacketsDispatched.Inc()
	q.log.Debug("Dispatched kernel",
		zap.Uint64("index", index),
		zap.Uint64("kernelObject", d.KernelObject),
		zap.Uint32s("grid", d.GridSize[:]),
		zap.Uint16("dimensions", Dimensions(d.GridSize)))
	return index, nil
}
