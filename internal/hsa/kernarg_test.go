package hsa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKernarg_NaturalAlignment(t *testing.T) {
	k := NewKernarg().Uint32(7).Pointer(0x7f0000001000).Float32(1.5).Uint32(9)
	assert.Equal(t, 24, k.Len())
	b := k.Bytes()
	assert.Equal(t, []byte{7, 0, 0, 0, 0, 0, 0, 0}, b[0:8], "pointer padded to 8")
	assert.Equal(t, []byte{0x00, 0x10, 0x00, 0x00, 0x00, 0x7f, 0x00, 0x00}, b[8:16])

	r := NewKernargReader(b)
	assert.Equal(t, uint32(7), r.Uint32())
	assert.Equal(t, Address(0x7f0000001000), r.Pointer())
	assert.Equal(t, float32(1.5), r.Float32())
	assert.Equal(t, uint32(9), r.Uint32())
	require.NoError(t, r.Err())
}

func TestKernargReader_ShortBlock(t *testing.T) {
	r := NewKernargReader(NewKernarg().Uint32(1).Bytes())
	assert.Equal(t, uint32(1), r.Uint32())
	assert.Zero(t, r.Uint64())
	assert.ErrorIs(t, r.Err(), ErrInvalidArgument)

	// The first error sticks.
	first := r.Err()
	assert.Zero(t, r.Uint32())
	assert.Same(t, first, r.Err())
}
