package gpu

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fxnlabs/hsa-runtime/internal/hsa"
	"github.com/fxnlabs/hsa-runtime/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// softQueue is one ring plus the goroutine that consumes it. Slots become
// executable when their header type is set to a packet type; the processor
// resets the header to INVALID once done and then advances the read index.
type softQueue struct {
	handle   hsa.QueueHandle
	id       uint64
	typ      hsa.QueueType
	agent    *softAgent
	words    []uint32
	ring     *hsa.Ring
	doorbell hsa.SignalHandle
	bell     *softSignal

	write atomic.Uint64
	read  atomic.Uint64

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}

	errMu   sync.Mutex
	lastErr error
}

func (q *softQueue) halt() {
	q.stopOnce.Do(func() { close(q.stop) })
	<-q.done
}

func (q *softQueue) fail(err error) {
	q.errMu.Lock()
	q.lastErr = err
	q.errMu.Unlock()
}

func (d *SoftDriver) queue(h hsa.QueueHandle) *softQueue {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.queues[h]
}

func (d *SoftDriver) QueueCreate(h hsa.AgentHandle, size uint32, typ hsa.QueueType) (hsa.QueueDescriptor, hsa.Status) {
	a, ok := d.agent(h)
	if !ok {
		return hsa.QueueDescriptor{}, hsa.StatusErrorInvalidAgent
	}
	p := a.spec.profile
	if !p.KernelDispatch || typ > hsa.QueueTypeSingle {
		return hsa.QueueDescriptor{}, hsa.StatusErrorInvalidQueueCreation
	}
	if size == 0 || size&(size-1) != 0 || size < p.QueueMinSize || size > p.QueueMaxSize {
		return hsa.QueueDescriptor{}, hsa.StatusErrorInvalidArgument
	}

	words := make([]uint32, int(size)*hsa.PacketSize/4)
	ring, err := hsa.NewRing(words)
	if err != nil {
		return hsa.QueueDescriptor{}, hsa.StatusErrorInvalidArgument
	}
	for i := uint64(0); i < ring.Capacity(); i++ {
		ring.Slot(i).StoreHeader(uint16(hsa.PacketTypeInvalid), 0)
	}

	q := &softQueue{
		handle: hsa.QueueHandle(d.handle()),
		id:     d.nextQueueID.Add(1) - 1,
		typ:    typ,
		agent:  a,
		words:  words,
		ring:   ring,
		bell:   newSoftSignal(0),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	q.doorbell = hsa.SignalHandle(d.handle())

	d.mu.Lock()
	if d.refs == 0 {
		d.mu.Unlock()
		return hsa.QueueDescriptor{}, hsa.StatusErrorNotInitialized
	}
	d.queues[q.handle] = q
	d.signals[q.doorbell] = q.bell
	mem := d.memory
	d.mu.Unlock()

	go d.process(q, mem)
	d.log.Debug("Queue created",
		zap.Uint64("id", q.id),
		zap.Uint32("size", size),
		zap.Stringer("type", typ),
		zap.String("agent", p.Name))

	return hsa.QueueDescriptor{
		Handle:   q.handle,
		ID:       q.id,
		Type:     typ,
		Size:     size,
		Ring:     words,
		Doorbell: q.doorbell,
	}, hsa.StatusSuccess
}

func (d *SoftDriver) QueueDestroy(h hsa.QueueHandle) hsa.Status {
	d.mu.Lock()
	q, ok := d.queues[h]
	if ok {
		delete(d.queues, h)
		delete(d.signals, q.doorbell)
	}
	d.mu.Unlock()
	if !ok {
		return hsa.StatusErrorInvalidQueue
	}
	q.halt()
	return hsa.StatusSuccess
}

func (d *SoftDriver) QueueInactivate(h hsa.QueueHandle) hsa.Status {
	q := d.queue(h)
	if q == nil {
		return hsa.StatusErrorInvalidQueue
	}
	q.halt()
	return hsa.StatusSuccess
}

// QueueError returns the last packet failure on the queue, if any.
func (d *SoftDriver) QueueError(h hsa.QueueHandle) error {
	q := d.queue(h)
	if q == nil {
		return nil
	}
	q.errMu.Lock()
	defer q.errMu.Unlock()
	return q.lastErr
}

func (d *SoftDriver) QueueAddWriteIndex(h hsa.QueueHandle, n uint64) uint64 {
	if q := d.queue(h); q != nil {
		return q.write.Add(n) - n
	}
	return 0
}

func (d *SoftDriver) QueueCASWriteIndex(h hsa.QueueHandle, expected, value uint64) uint64 {
	q := d.queue(h)
	if q == nil {
		return 0
	}
	for {
		old := q.write.Load()
		if old != expected {
			return old
		}
		if q.write.CompareAndSwap(expected, value) {
			return expected
		}
	}
}

func (d *SoftDriver) QueueStoreWriteIndex(h hsa.QueueHandle, value uint64) {
	if q := d.queue(h); q != nil {
		q.write.Store(value)
	}
}

func (d *SoftDriver) QueueLoadWriteIndex(h hsa.QueueHandle) uint64 {
	if q := d.queue(h); q != nil {
		return q.write.Load()
	}
	return 0
}

func (d *SoftDriver) QueueLoadReadIndex(h hsa.QueueHandle) uint64 {
	if q := d.queue(h); q != nil {
		return q.read.Load()
	}
	return 0
}

// process consumes packets in index order until the queue is stopped. A
// slot is ready once the write index covers it and its header carries a
// packet type; until then the processor sleeps on the doorbell.
func (d *SoftDriver) process(q *softQueue, mem *addressSpace) {
	defer close(q.done)
	log := d.log.Named("queue").With(zap.Uint64("id", q.id))
	for {
		rang := q.bell.watch()
		read := q.read.Load()
		slot := q.ring.Slot(read)
		header, _ := slot.LoadHeader()
		typ := hsa.HeaderType(header)
		if read >= q.write.Load() || typ == hsa.PacketTypeInvalid || typ == hsa.PacketTypeVendorSpecific {
			select {
			case <-q.stop:
				return
			case <-rang:
			}
			continue
		}
		select {
		case <-q.stop:
			return
		default:
		}

		pkt := slot.Decode()
		err := d.execute(q, mem, pkt)
		slot.StoreHeader(uint16(hsa.PacketTypeInvalid), 0)
		q.read.Store(read + 1)

		if err != nil {
			metrics.SoftDevicePackets.WithLabelValues("error").Inc()
			log.Error("Packet failed", zap.Uint64("index", read), zap.Error(err))
			q.fail(fmt.Errorf("packet %d: %w", read, err))
			// The completion signal is left untouched so waiters observe
			// a dispatch that never finished.
			continue
		}
		metrics.SoftDevicePackets.WithLabelValues("ok").Inc()
		if pkt.CompletionSignal != 0 {
			d.SignalSubtract(pkt.CompletionSignal, 1)
		}
	}
}

var errUnsupportedPacket = errors.New("unsupported packet type")

func (d *SoftDriver) execute(q *softQueue, mem *addressSpace, pkt hsa.DispatchPacket) error {
	switch pkt.Type() {
	case hsa.PacketTypeKernelDispatch:
		return d.dispatch(q, mem, pkt)
	case hsa.PacketTypeBarrierAnd, hsa.PacketTypeBarrierOr:
		// Packets run in order on one processor, so every earlier packet
		// has already completed.
		return nil
	}
	return fmt.Errorf("%w %d", errUnsupportedPacket, pkt.Type())
}

func (d *SoftDriver) dispatch(q *softQueue, mem *addressSpace, pkt hsa.DispatchPacket) error {
	d.mu.RLock()
	sym := d.objects[pkt.KernelObject]
	d.mu.RUnlock()
	if sym == nil || sym.kernel == nil {
		return fmt.Errorf("unknown kernel object 0x%x", pkt.KernelObject)
	}
	if dims := pkt.Dimensions(); dims < 1 || dims > 3 {
		return fmt.Errorf("invalid dimension count %d", dims)
	}
	grid, size := pkt.GridSize, pkt.WorkgroupSize
	for i := uint16(0); i < 3; i++ {
		if i >= pkt.Dimensions() && grid[i] > 1 {
			return fmt.Errorf("dimension %d used by a %d-dimensional dispatch", i, pkt.Dimensions())
		}
		if grid[i] == 0 || size[i] == 0 {
			return fmt.Errorf("zero extent in grid %v or workgroup %v", grid, size)
		}
	}

	launch := &Launch{Grid: grid, WorkgroupSize: size, agent: q.agent.handle, mem: mem}
	if sym.kernargSize > 0 {
		kernarg, ok := mem.view(q.agent.handle, pkt.KernargAddress, uint64(sym.kernargSize))
		if !ok {
			return fmt.Errorf("kernarg block at 0x%x not accessible", uint64(pkt.KernargAddress))
		}
		launch.Kernarg = kernarg
	}

	start := time.Now()
	groups := workgroups(grid, size)
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, wg := range groups {
		g.Go(func() error {
			return sym.kernel(launch, wg)
		})
	}
	err := g.Wait()
	metrics.SoftDeviceWorkgroups.Add(float64(len(groups)))
	metrics.SoftDeviceKernelDuration.Observe(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		return fmt.Errorf("kernel %s: %w", sym.name, err)
	}
	return nil
}
