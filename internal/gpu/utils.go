package gpu

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Float32ToBytes encodes a slice of float32 little-endian, the layout kernels
// read from device memory
func Float32ToBytes(input []float32) []byte {
	output := make([]byte, len(input)*4)
	for i, v := range input {
		binary.LittleEndian.PutUint32(output[i*4:], math.Float32bits(v))
	}
	return output
}

// BytesToFloat32 decodes little-endian float32 values
func BytesToFloat32(input []byte) ([]float32, error) {
	if len(input)%4 != 0 {
		return nil, fmt.Errorf("buffer of %d bytes is not a whole number of float32", len(input))
	}
	output := make([]float32, len(input)/4)
	for i := range output {
		output[i] = math.Float32frombits(binary.LittleEndian.Uint32(input[i*4:]))
	}
	return output, nil
}

// Uint32ToBytes encodes a slice of uint32 little-endian
func Uint32ToBytes(input []uint32) []byte {
	output := make([]byte, len(input)*4)
	for i, v := range input {
		binary.LittleEndian.PutUint32(output[i*4:], v)
	}
	return output
}

// BytesToUint32 decodes little-endian uint32 values
func BytesToUint32(input []byte) ([]uint32, error) {
	if len(input)%4 != 0 {
		return nil, fmt.Errorf("buffer of %d bytes is not a whole number of uint32", len(input))
	}
	output := make([]uint32, len(input)/4)
	for i := range output {
		output[i] = binary.LittleEndian.Uint32(input[i*4:])
	}
	return output, nil
}

// Float32ToFloat64 converts a slice of float32 to float64
func Float32ToFloat64(input []float32) []float64 {
	output := make([]float64, len(input))
	for i, v := range input {
		output[i] = float64(v)
	}
	return output
}
