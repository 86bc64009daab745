package gpu

import (
	"sync"
	"testing"
	"time"

	"github.com/fxnlabs/hsa-runtime/internal/hsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSoftDriver_SignalOps(t *testing.T) {
	drv := newTestDriver(t)
	h, status := drv.SignalCreate(5)
	require.Equal(t, hsa.StatusSuccess, status)
	defer drv.SignalDestroy(h)

	assert.Equal(t, int64(5), drv.SignalLoad(h))
	drv.SignalAdd(h, 3)
	assert.Equal(t, int64(8), drv.SignalLoad(h))
	drv.SignalSubtract(h, 10)
	assert.Equal(t, int64(-2), drv.SignalLoad(h))
	drv.SignalStore(h, 0b1100)
	drv.SignalAnd(h, 0b0110)
	assert.Equal(t, int64(0b0100), drv.SignalLoad(h))
	drv.SignalOr(h, 0b0001)
	assert.Equal(t, int64(0b0101), drv.SignalLoad(h))
	drv.SignalXor(h, 0b0011)
	assert.Equal(t, int64(0b0110), drv.SignalLoad(h))

	assert.Equal(t, int64(0b0110), drv.SignalExchange(h, 42))
	assert.Equal(t, int64(42), drv.SignalCAS(h, 7, 9), "failed CAS returns the current value")
	assert.Equal(t, int64(42), drv.SignalLoad(h))
	assert.Equal(t, int64(42), drv.SignalCAS(h, 42, 9))
	assert.Equal(t, int64(9), drv.SignalLoad(h))
}

func TestSoftDriver_SignalDestroy(t *testing.T) {
	drv := newTestDriver(t)
	h, status := drv.SignalCreate(1)
	require.Equal(t, hsa.StatusSuccess, status)
	require.Equal(t, hsa.StatusSuccess, drv.SignalDestroy(h))
	assert.Equal(t, hsa.StatusErrorInvalidSignal, drv.SignalDestroy(h))

	// Operations on a destroyed handle are ignored.
	drv.SignalStore(h, 7)
	assert.Zero(t, drv.SignalLoad(h))
}

func TestSoftDriver_SignalWait(t *testing.T) {
	drv := newTestDriver(t)

	t.Run("already satisfied", func(t *testing.T) {
		h, _ := drv.SignalCreate(0)
		defer drv.SignalDestroy(h)
		start := time.Now()
		assert.Equal(t, int64(0), drv.SignalWait(h, hsa.ConditionEq, 0, time.Minute))
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("woken by store", func(t *testing.T) {
		h, _ := drv.SignalCreate(1)
		defer drv.SignalDestroy(h)
		go func() {
			time.Sleep(10 * time.Millisecond)
			drv.SignalStore(h, 0)
		}()
		assert.Equal(t, int64(0), drv.SignalWait(h, hsa.ConditionLt, 1, hsa.WaitForever))
	})

	t.Run("timeout returns the current value", func(t *testing.T) {
		h, _ := drv.SignalCreate(3)
		defer drv.SignalDestroy(h)
		start := time.Now()
		v := drv.SignalWait(h, hsa.ConditionEq, 0, 20*time.Millisecond)
		assert.Equal(t, int64(3), v)
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	})

	t.Run("many decrements", func(t *testing.T) {
		const n = 64
		h, _ := drv.SignalCreate(n)
		defer drv.SignalDestroy(h)
		var wg sync.WaitGroup
		for range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				drv.SignalSubtract(h, 1)
			}()
		}
		assert.Equal(t, int64(0), drv.SignalWait(h, hsa.ConditionEq, 0, 5*time.Second))
		wg.Wait()
	})
}
