package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloat32Bytes(t *testing.T) {
	in := []float32{0, 1.5, -3.25, 1e-7}
	b := Float32ToBytes(in)
	assert.Len(t, b, 16)
	assert.Equal(t, []byte{0, 0, 0xc0, 0x3f}, b[4:8])

	out, err := BytesToFloat32(b)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = BytesToFloat32(b[:5])
	assert.Error(t, err)
}

func TestUint32Bytes(t *testing.T) {
	b := Uint32ToBytes([]uint32{1, 0xdeadbeef})
	assert.Equal(t, []byte{1, 0, 0, 0, 0xef, 0xbe, 0xad, 0xde}, b)

	out, err := BytesToUint32(b)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 0xdeadbeef}, out)

	_, err = BytesToUint32(b[:3])
	assert.Error(t, err)
}

func TestFloat32ToFloat64(t *testing.T) {
	assert.Equal(t, []float64{1, 0.5, -2}, Float32ToFloat64([]float32{1, 0.5, -2}))
	assert.Empty(t, Float32ToFloat64(nil))
}
