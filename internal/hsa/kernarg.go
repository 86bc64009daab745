package hsa

import (
	"encoding/binary"
	"math"
)

// Kernarg packs a kernel argument block. Each value is placed at the next
// offset aligned to its own size, little-endian, as device ABIs lay out
// struct fields.
type Kernarg struct {
	buf []byte
}

// NewKernarg returns an empty builder.
func NewKernarg() *Kernarg {
	return &Kernarg{}
}

func (k *Kernarg) align(n int) []byte {
	for len(k.buf)%n != 0 {
		k.buf = append(k.buf, 0)
	}
	k.buf = append(k.buf, make([]byte, n)...)
	return k.buf[len(k.buf)-n:]
}

func (k *Kernarg) Uint32(v uint32) *Kernarg {
	binary.LittleEndian.PutUint32(k.align(4), v)
	return k
}

func (k *Kernarg) Uint64(v uint64) *Kernarg {
	binary.LittleEndian.PutUint64(k.align(8), v)
	return k
}

func (k *Kernarg) Float32(v float32) *Kernarg {
	return k.Uint32(math.Float32bits(v))
}

// Pointer appends a device address.
func (k *Kernarg) Pointer(addr Address) *Kernarg {
	return k.Uint64(uint64(addr))
}

// Len returns the packed size so far.
func (k *Kernarg) Len() int {
	return len(k.buf)
}

// Bytes returns the packed block.
func (k *Kernarg) Bytes() []byte {
	return k.buf
}

// CopyTo copies the block into mem. It fails if mem is too small.
func (k *Kernarg) CopyTo(mem *Memory) error {
	dst := mem.Bytes()
	if dst == nil {
		return newError(KindInvalidAllocation, "kernarg memory not mapped")
	}
	if len(dst) < len(k.buf) {
		return newError(KindInvalidArgument, "kernarg block of %d bytes does not fit %d-byte allocation", len(k.buf), len(dst))
	}
	copy(dst, k.buf)
	return nil
}

// KernargReader unpacks a block written by Kernarg. Soft kernels use it to
// read their arguments in declaration order.
type KernargReader struct {
	buf []byte
	off int
	err error
}

// NewKernargReader reads from b.
func NewKernargReader(b []byte) *KernargReader {
	return &KernargReader{buf: b}
}

func (r *KernargReader) next(n int) []byte {
	if r.err != nil {
		return nil
	}
	for r.off%n != 0 {
		r.off++
	}
	if r.off+n > len(r.buf) {
		r.err = newError(KindInvalidArgument, "kernarg block too short: need %d bytes at offset %d, have %d", n, r.off, len(r.buf))
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *KernargReader) Uint32() uint32 {
	if b := r.next(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (r *KernargReader) Uint64() uint64 {
	if b := r.next(8); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

func (r *KernargReader) Float32() float32 {
	return math.Float32frombits(r.Uint32())
}

func (r *KernargReader) Pointer() Address {
	return Address(r.Uint64())
}

// Err returns the first short-read error.
func (r *KernargReader) Err() error {
	return r.err
}
