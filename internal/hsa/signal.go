package hsa

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/fxnlabs/hsa-runtime/internal/metrics"
	"go.uber.org/zap"
)

// WaitForever is the timeout for a wait that only returns once its
// condition holds.
const WaitForever = time.Duration(math.MaxInt64)

// Signal is a device-visible 64-bit counter. Mutations use relaxed
// ordering; Load and the waits acquire.
//
// Waits return the value they last observed and never report a timeout as
// an error. A WaitEq(0, d) that returns non-zero either timed out while the
// value was still pending or the value will never reach zero because the
// producer failed; the two cases are indistinguishable here, and callers
// that need to tell them apart must track the producer's state themselves.
//
// A signal may be reused for another dispatch only after the previous wait
// on it has resolved.
type Signal struct {
	rt  *Runtime
	log *zap.Logger

	mu     sync.Mutex
	handle SignalHandle
}

// NewSignal creates a signal holding initial.
func (rt *Runtime) NewSignal(initial int64) (*Signal, error) {
	log := rt.log.Named("signal")
	h, status := rt.drv.SignalCreate(initial)
	if status != StatusSuccess {
		err := wrapAs(KindSignalOperation,
			fromStatus(rt.drv, status, fmt.Sprintf("create signal with initial value %d", initial)))
		log.Error("Signal creation failed", zap.Error(err))
		return nil, err
	}
	if h == 0 {
		return nil, newError(KindSignalOperation, "signal creation returned invalid handle (0)")
	}
	log.Debug("Signal created", zap.Uint64("handle", uint64(h)), zap.Int64("initial", initial))
	return &Signal{rt: rt, log: log, handle: h}, nil
}

// Handle returns the driver handle, or 0 after Destroy.
func (s *Signal) Handle() SignalHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle
}

func (s *Signal) h() SignalHandle {
	s.mu.Lock()
	h := s.handle
	s.mu.Unlock()
	return h
}

// Load reads the current value with acquire semantics.
func (s *Signal) Load() int64 {
	return s.rt.drv.SignalLoad(s.h())
}

// Store writes value.
func (s *Signal) Store(value int64) {
	s.log.Debug("Signal store", zap.Uint64("handle", uint64(s.h())), zap.Int64("value", value))
	s.rt.drv.SignalStore(s.h(), value)
}

func (s *Signal) Add(value int64) {
	s.rt.drv.SignalAdd(s.h(), value)
}

func (s *Signal) Subtract(value int64) {
	s.rt.drv.SignalSubtract(s.h(), value)
}

// Exchange stores value and returns the previous one.
func (s *Signal) Exchange(value int64) int64 {
	return s.rt.drv.SignalExchange(s.h(), value)
}

// CompareAndSwap stores value if the signal holds expected. It returns the
// value observed before the operation; the swap happened iff that equals
// expected.
func (s *Signal) CompareAndSwap(expected, value int64) int64 {
	old := s.rt.drv.SignalCAS(s.h(), expected, value)
	s.log.Debug("Signal CAS",
		zap.Uint64("handle", uint64(s.h())),
		zap.Int64("expected", expected),
		zap.Int64("old", old),
		zap.Bool("swapped", old == expected))
	return old
}

func (s *Signal) And(value int64) {
	s.rt.drv.SignalAnd(s.h(), value)
}

func (s *Signal) Or(value int64) {
	s.rt.drv.SignalOr(s.h(), value)
}

func (s *Signal) Xor(value int64) {
	s.rt.drv.SignalXor(s.h(), value)
}

// Wait blocks until the condition holds against value or timeout elapses,
// and returns the observed value.
func (s *Signal) Wait(cond SignalCondition, value int64, timeout time.Duration) int64 {
	h := s.h()
	s.log.Debug("Signal wait",
		zap.Uint64("handle", uint64(h)),
		zap.Stringer("condition", cond),
		zap.Int64("value", value),
		zap.Duration("timeout", timeout))
	start := time.Now()
	observed := s.rt.drv.SignalWait(h, cond, value, timeout)
	metrics.SignalWaitDuration.WithLabelValues(cond.String()).Observe(time.Since(start).Seconds())
	if !cond.Holds(observed, value) {
		metrics.SignalWaitUnsatisfied.WithLabelValues(cond.String()).Inc()
	}
	s.log.Debug("Signal wait completed", zap.Uint64("handle", uint64(h)), zap.Int64("observed", observed))
	return observed
}

func (s *Signal) WaitEq(value int64, timeout time.Duration) int64 {
	return s.Wait(ConditionEq, value, timeout)
}

func (s *Signal) WaitNe(value int64, timeout time.Duration) int64 {
	return s.Wait(ConditionNe, value, timeout)
}

func (s *Signal) WaitLt(value int64, timeout time.Duration) int64 {
	return s.Wait(ConditionLt, value, timeout)
}

func (s *Signal) WaitGte(value int64, timeout time.Duration) int64 {
	return s.Wait(ConditionGte, value, timeout)
}

// Destroy releases the handle. A zero handle is never passed to the driver,
// so repeated calls are harmless.
func (s *Signal) Destroy() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle == 0 {
		return nil
	}
	h := s.handle
	s.handle = 0
	s.log.Debug("Destroying signal", zap.Uint64("handle", uint64(h)))
	if status := s.rt.drv.SignalDestroy(h); status != StatusSuccess {
		err := wrapAs(KindSignalOperation,
			fromStatus(s.rt.drv, status, fmt.Sprintf("destroy signal 0x%x", uint64(h))))
		s.log.Error("Failed to destroy signal", zap.Error(err))
		return err
	}
	return nil
}
