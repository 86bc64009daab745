package hsa

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/fxnlabs/hsa-runtime/internal/metrics"
	"go.uber.org/zap"
)

// Queue is a multi-producer dispatch ring owned by one agent. Producers
// reserve slots with AddWriteIndex, fill them, publish the write index and
// ring the doorbell; the device advances the read index as it consumes.
//
// All methods are safe for concurrent use except Destroy, which must not
// race with dispatches.
type Queue struct {
	rt    *Runtime
	log   *zap.Logger
	agent Agent
	ring  *Ring
	desc  QueueDescriptor

	mu        sync.Mutex
	destroyed bool
}

// CreateQueue creates a multi-producer queue of size slots on agent. The size
// must be a power of two within the agent's advertised bounds.
func (rt *Runtime) CreateQueue(agent Agent, size uint32) (*Queue, error) {
	log := rt.log.Named("queue")
	log.Debug("Creating queue", zap.Stringer("agent", agent), zap.Uint32("size", size))

	if size == 0 || size&(size-1) != 0 {
		return nil, newError(KindQueueCreation, "queue size %d is not a power of two", size)
	}
	minSize, err := agent.QueueMinSize()
	if err != nil {
		return nil, wrapAs(KindQueueCreation, err)
	}
	maxSize, err := agent.QueueMaxSize()
	if err != nil {
		return nil, wrapAs(KindQueueCreation, err)
	}
	if size < minSize || size > maxSize {
		return nil, newError(KindQueueCreation,
			"queue size %d outside agent bounds [%d, %d]", size, minSize, maxSize)
	}

	desc, status := rt.drv.QueueCreate(agent.handle, size, QueueTypeMulti)
	if status != StatusSuccess {
		err := wrapAs(KindQueueCreation,
			fromStatus(rt.drv, status, fmt.Sprintf("create queue of size %d for %s", size, agent)))
		log.Error("Queue creation failed", zap.Error(err))
		return nil, err
	}
	ring, err := NewRing(desc.Ring)
	if err == nil && ring.Capacity() != uint64(desc.Size) {
		err = newError(KindInvalidArgument, "ring holds %d slots, queue reports %d", ring.Capacity(), desc.Size)
	}
	if err != nil {
		rt.drv.QueueDestroy(desc.Handle)
		return nil, wrapAs(KindQueueCreation, err)
	}

	log.Info("Created queue",
		zap.Uint64("id", desc.ID),
		zap.Uint32("size", desc.Size),
		zap.Stringer("type", desc.Type),
		zap.Stringer("agent", agent))
	return &Queue{rt: rt, log: log, agent: agent, ring: ring, desc: desc}, nil
}

// Agent returns the agent that owns the queue.
func (q *Queue) Agent() Agent {
	return q.agent
}

// Handle returns the driver handle.
func (q *Queue) Handle() QueueHandle {
	return q.desc.Handle
}

// ID is the runtime-assigned queue identifier.
func (q *Queue) ID() uint64 {
	return q.desc.ID
}

// Size is the queue capacity in packets.
func (q *Queue) Size() uint32 {
	return q.desc.Size
}

// Type is the producer model of the queue.
func (q *Queue) Type() QueueType {
	return q.desc.Type
}

// Doorbell returns the handle of the queue's doorbell signal.
func (q *Queue) Doorbell() SignalHandle {
	return q.desc.Doorbell
}

// AddWriteIndex atomically reserves n contiguous slots and returns the first
// reserved index. Concurrent callers receive disjoint ranges.
func (q *Queue) AddWriteIndex(n uint64) uint64 {
	base := q.rt.drv.QueueAddWriteIndex(q.desc.Handle, n)
	metrics.QueueSlotsReserved.Add(float64(n))
	q.log.Debug("Reserved queue slots", zap.Uint64("base", base), zap.Uint64("count", n))
	return base
}

// LoadWriteIndex reads the write index.
func (q *Queue) LoadWriteIndex() uint64 {
	return q.rt.drv.QueueLoadWriteIndex(q.desc.Handle)
}

// StoreWriteIndex overwrites the write index. Only safe on a queue with a
// single producer; Dispatch publishes through a monotonic CAS instead.
func (q *Queue) StoreWriteIndex(value uint64) {
	q.log.Debug("Storing write index", zap.Uint64("value", value))
	q.rt.drv.QueueStoreWriteIndex(q.desc.Handle, value)
}

// publish raises the write index to at least value. With several producers
// finishing out of order, a plain store could move the index backwards.
func (q *Queue) publish(value uint64) {
	current := q.rt.drv.QueueLoadWriteIndex(q.desc.Handle)
	for current < value {
		observed := q.rt.drv.QueueCASWriteIndex(q.desc.Handle, current, value)
		if observed == current {
			break
		}
		current = observed
	}
}

// LoadReadIndex reads the device-advanced read index.
func (q *Queue) LoadReadIndex() uint64 {
	return q.rt.drv.QueueLoadReadIndex(q.desc.Handle)
}

// RingDoorbell notifies the device that packets up to index are ready.
func (q *Queue) RingDoorbell(index uint64) {
	q.rt.drv.SignalStore(q.desc.Doorbell, int64(index))
	metrics.DoorbellRings.Inc()
	q.log.Debug("Rang doorbell", zap.Uint64("index", index))
}

// Slot returns the packet slot for logical index i. The caller must own i
// through a reservation and must not touch a slot the device may still be
// reading; see WaitForSpace.
func (q *Queue) Slot(i uint64) *PacketSlot {
	return q.ring.Slot(i)
}

// Ring exposes the queue's packet ring.
func (q *Queue) Ring() *Ring {
	return q.ring
}

// WaitForSpace blocks until slot index no longer overlaps a packet the
// device has not consumed, that is until index - read < capacity. It spins
// briefly, then backs off with sleeps capped at maxBackoff.
func (q *Queue) WaitForSpace(index uint64) {
	const maxBackoff = time.Millisecond
	capacity := q.ring.Capacity()
	if index-q.LoadReadIndex() < capacity {
		return
	}
	metrics.QueueBackpressureWaits.Inc()
	q.log.Debug("Queue full, waiting for device", zap.Uint64("index", index))
	backoff := time.Microsecond
	for spins := 0; index-q.LoadReadIndex() >= capacity; spins++ {
		if spins < 64 {
			runtime.Gosched()
			continue
		}
		time.Sleep(backoff)
		if backoff < maxBackoff {
			backoff *= 2
		}
	}
}

// Inactivate stops the device from processing further packets. The queue
// still has to be destroyed.
func (q *Queue) Inactivate() error {
	if status := q.rt.drv.QueueInactivate(q.desc.Handle); status != StatusSuccess {
		return fromStatus(q.rt.drv, status, fmt.Sprintf("inactivate queue %d", q.desc.ID))
	}
	q.log.Info("Inactivated queue", zap.Uint64("id", q.desc.ID))
	return nil
}

// queueErrorReporter is implemented by drivers that record packet failures.
type queueErrorReporter interface {
	QueueError(queue QueueHandle) error
}

// Err returns the last packet failure the device reported for this queue.
// A failed dispatch leaves its completion signal untouched, so a waiter that
// times out can use Err to tell a failure from a slow kernel. Drivers that
// deliver errors asynchronously return nil here.
func (q *Queue) Err() error {
	if r, ok := q.rt.drv.(queueErrorReporter); ok {
		return r.QueueError(q.desc.Handle)
	}
	return nil
}

// QueueInfo is a snapshot of a queue's indices.
type QueueInfo struct {
	ID          uint64
	Type        QueueType
	Size        uint32
	WriteIndex  uint64
	ReadIndex   uint64
	Pending     uint64
	Utilization float64
}

// Info snapshots the queue. The two indices are read separately, so Pending
// is approximate while producers are active.
func (q *Queue) Info() QueueInfo {
	read := q.LoadReadIndex()
	write := q.LoadWriteIndex()
	info := QueueInfo{
		ID:         q.desc.ID,
		Type:       q.desc.Type,
		Size:       q.desc.Size,
		WriteIndex: write,
		ReadIndex:  read,
	}
	if write > read {
		info.Pending = write - read
	}
	info.Utilization = float64(info.Pending) / float64(q.desc.Size)
	return info
}

// Destroy releases the queue. Later calls are no-ops.
func (q *Queue) Destroy() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.destroyed || q.desc.Handle == 0 {
		return nil
	}
	q.destroyed = true
	q.log.Debug("Destroying queue", zap.Uint64("id", q.desc.ID))
	if status := q.rt.drv.QueueDestroy(q.desc.Handle); status != StatusSuccess {
		err := fromStatus(q.rt.drv, status, fmt.Sprintf("destroy queue %d", q.desc.ID))
		q.log.Error("Failed to destroy queue", zap.Error(err))
		return err
	}
	return nil
}
