package gpu

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/fxnlabs/hsa-runtime/internal/hsa"
)

// softSignal is an atomic value plus a broadcast channel that is closed and
// replaced on every mutation, so waiters never miss a change.
type softSignal struct {
	value atomic.Int64

	mu      sync.Mutex
	changed chan struct{}
}

func newSoftSignal(initial int64) *softSignal {
	s := &softSignal{changed: make(chan struct{})}
	s.value.Store(initial)
	return s
}

func (s *softSignal) notify() {
	s.mu.Lock()
	close(s.changed)
	s.changed = make(chan struct{})
	s.mu.Unlock()
}

// watch returns a channel closed by the next mutation. Take it before
// reading the value.
func (s *softSignal) watch() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changed
}

func (s *softSignal) store(v int64) {
	s.value.Store(v)
	s.notify()
}

func (s *softSignal) add(v int64) {
	s.value.Add(v)
	s.notify()
}

// update applies f atomically and returns the previous value.
func (s *softSignal) update(f func(int64) int64) int64 {
	for {
		old := s.value.Load()
		if s.value.CompareAndSwap(old, f(old)) {
			s.notify()
			return old
		}
	}
}

func (s *softSignal) cas(expected, value int64) int64 {
	for {
		old := s.value.Load()
		if old != expected {
			return old
		}
		if s.value.CompareAndSwap(expected, value) {
			s.notify()
			return old
		}
	}
}

func (s *softSignal) wait(cond hsa.SignalCondition, value int64, timeout time.Duration) int64 {
	var expired <-chan time.Time
	if timeout < hsa.WaitForever {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}
	for {
		changed := s.watch()
		v := s.value.Load()
		if cond.Holds(v, value) {
			return v
		}
		select {
		case <-changed:
		case <-expired:
			return s.value.Load()
		}
	}
}

func (d *SoftDriver) signal(h hsa.SignalHandle) *softSignal {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.signals[h]
}

func (d *SoftDriver) SignalCreate(initial int64) (hsa.SignalHandle, hsa.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.refs == 0 {
		return 0, hsa.StatusErrorNotInitialized
	}
	h := hsa.SignalHandle(d.handle())
	d.signals[h] = newSoftSignal(initial)
	return h, hsa.StatusSuccess
}

func (d *SoftDriver) SignalDestroy(h hsa.SignalHandle) hsa.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.signals[h]; !ok {
		return hsa.StatusErrorInvalidSignal
	}
	delete(d.signals, h)
	return hsa.StatusSuccess
}

// Operations on unknown handles are ignored and read as zero, as touching a
// destroyed signal is undefined on hardware.

func (d *SoftDriver) SignalLoad(h hsa.SignalHandle) int64 {
	if s := d.signal(h); s != nil {
		return s.value.Load()
	}
	return 0
}

func (d *SoftDriver) SignalStore(h hsa.SignalHandle, value int64) {
	if s := d.signal(h); s != nil {
		s.store(value)
	}
}

func (d *SoftDriver) SignalAdd(h hsa.SignalHandle, value int64) {
	if s := d.signal(h); s != nil {
		s.add(value)
	}
}

func (d *SoftDriver) SignalSubtract(h hsa.SignalHandle, value int64) {
	if s := d.signal(h); s != nil {
		s.add(-value)
	}
}

func (d *SoftDriver) SignalExchange(h hsa.SignalHandle, value int64) int64 {
	if s := d.signal(h); s != nil {
		return s.update(func(int64) int64 { return value })
	}
	return 0
}

func (d *SoftDriver) SignalCAS(h hsa.SignalHandle, expected, value int64) int64 {
	if s := d.signal(h); s != nil {
		return s.cas(expected, value)
	}
	return 0
}

func (d *SoftDriver) SignalAnd(h hsa.SignalHandle, value int64) {
	if s := d.signal(h); s != nil {
		s.update(func(v int64) int64 { return v & value })
	}
}

func (d *SoftDriver) SignalOr(h hsa.SignalHandle, value int64) {
	if s := d.signal(h); s != nil {
		s.update(func(v int64) int64 { return v | value })
	}
}

func (d *SoftDriver) SignalXor(h hsa.SignalHandle, value int64) {
	if s := d.signal(h); s != nil {
		s.update(func(v int64) int64 { return v ^ value })
	}
}

func (d *SoftDriver) SignalWait(h hsa.SignalHandle, cond hsa.SignalCondition, value int64, timeout time.Duration) int64 {
	if s := d.signal(h); s != nil {
		return s.wait(cond, value, timeout)
	}
	return 0
}
