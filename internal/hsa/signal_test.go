package hsa_test

import (
	"testing"
	"time"

	"github.com/fxnlabs/hsa-runtime/internal/hsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignal_Ops(t *testing.T) {
	_, rt := openSoft(t, testProfile())
	sig, err := rt.NewSignal(10)
	require.NoError(t, err)
	defer sig.Destroy()

	assert.NotZero(t, sig.Handle())
	assert.Equal(t, int64(10), sig.Load())
	sig.Add(5)
	sig.Subtract(3)
	assert.Equal(t, int64(12), sig.Load())
	assert.Equal(t, int64(12), sig.Exchange(1))
	assert.Equal(t, int64(1), sig.CompareAndSwap(1, 6))
	assert.Equal(t, int64(6), sig.CompareAndSwap(1, 9), "no swap when the value differs")
	sig.And(4)
	sig.Or(1)
	sig.Xor(8)
	assert.Equal(t, int64(13), sig.Load())
	sig.Store(-1)
	assert.Equal(t, int64(-1), sig.Load())
}

func TestSignal_WaitReturnsObservedValue(t *testing.T) {
	_, rt := openSoft(t, testProfile())

	t.Run("satisfied promptly", func(t *testing.T) {
		sig, err := rt.NewSignal(1)
		require.NoError(t, err)
		defer sig.Destroy()
		go func() {
			time.Sleep(5 * time.Millisecond)
			sig.Subtract(1)
		}()
		start := time.Now()
		assert.Equal(t, int64(0), sig.WaitEq(0, 10*time.Second))
		assert.Less(t, time.Since(start), 5*time.Second)
	})

	t.Run("timeout is not an error", func(t *testing.T) {
		sig, err := rt.NewSignal(7)
		require.NoError(t, err)
		defer sig.Destroy()
		start := time.Now()
		observed := sig.WaitLt(1, 30*time.Millisecond)
		assert.Equal(t, int64(7), observed)
		assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	})

	t.Run("conditions", func(t *testing.T) {
		sig, err := rt.NewSignal(3)
		require.NoError(t, err)
		defer sig.Destroy()
		assert.Equal(t, int64(3), sig.WaitNe(0, time.Second))
		assert.Equal(t, int64(3), sig.WaitGte(3, time.Second))
		assert.Equal(t, int64(3), sig.Wait(hsa.ConditionLt, 4, time.Second))
	})
}

func TestSignal_DestroyTwice(t *testing.T) {
	_, rt := openSoft(t, testProfile())
	sig, err := rt.NewSignal(0)
	require.NoError(t, err)
	require.NoError(t, sig.Destroy())
	assert.NoError(t, sig.Destroy())
	assert.Zero(t, sig.Handle())
}
