package hsa

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"
)

// Packet ABI constants (AQL, HSA 1.2 system architecture).
const (
	PacketSize  = 64
	slotWords   = PacketSize / 4
	headerWidth = 16
)

// PacketType occupies the low byte of the header.
type PacketType uint8

const (
	PacketTypeVendorSpecific PacketType = 0
	PacketTypeInvalid        PacketType = 1
	PacketTypeKernelDispatch PacketType = 2
	PacketTypeBarrierAnd     PacketType = 3
	PacketTypeAgentDispatch  PacketType = 4
	PacketTypeBarrierOr      PacketType = 5
)

// FenceScope of the acquire and release fences in the header.
type FenceScope uint8

const (
	FenceScopeNone   FenceScope = 0
	FenceScopeAgent  FenceScope = 1
	FenceScopeSystem FenceScope = 2
)

// Header bit offsets.
const (
	HeaderTypeShift         = 0
	HeaderBarrierShift      = 8
	HeaderAcquireFenceShift = 9
	HeaderReleaseFenceShift = 11
	SetupDimensionsShift    = 0
	headerTypeMask          = 0xff
	headerFenceMask         = 0x3
	setupDimensionsMask     = 0x3
)

// Header builds a packet header word.
func Header(typ PacketType, barrier bool, acquire, release FenceScope) uint16 {
	h := uint16(typ) << HeaderTypeShift
	if barrier {
		h |= 1 << HeaderBarrierShift
	}
	h |= uint16(acquire&headerFenceMask) << HeaderAcquireFenceShift
	h |= uint16(release&headerFenceMask) << HeaderReleaseFenceShift
	return h
}

// HeaderType extracts the packet type from a header.
func HeaderType(header uint16) PacketType {
	return PacketType((header >> HeaderTypeShift) & headerTypeMask)
}

// HeaderFences extracts the acquire and release fence scopes.
func HeaderFences(header uint16) (acquire, release FenceScope) {
	acquire = FenceScope((header >> HeaderAcquireFenceShift) & headerFenceMask)
	release = FenceScope((header >> HeaderReleaseFenceShift) & headerFenceMask)
	return acquire, release
}

// Dimensions is the setup-field dimension count implied by a grid: 3 if any
// depth, else 2 if any height, else 1.
func Dimensions(grid [3]uint32) uint16 {
	switch {
	case grid[2] > 1:
		return 3
	case grid[1] > 1:
		return 2
	default:
		return 1
	}
}

// DispatchPacket is the decoded form of a kernel dispatch packet.
type DispatchPacket struct {
	Header             uint16
	Setup              uint16
	WorkgroupSize      [3]uint16
	GridSize           [3]uint32
	PrivateSegmentSize uint32
	GroupSegmentSize   uint32
	KernelObject       uint64
	KernargAddress     Address
	CompletionSignal   SignalHandle
}

// Type returns the packet type encoded in the header.
func (p DispatchPacket) Type() PacketType {
	return HeaderType(p.Header)
}

// Dimensions returns the dimension count encoded in the setup field.
func (p DispatchPacket) Dimensions() uint16 {
	return (p.Setup >> SetupDimensionsShift) & setupDimensionsMask
}

// MarshalBinary encodes the packet in its 64-byte little-endian wire layout.
func (p DispatchPacket) MarshalBinary() ([]byte, error) {
	b := make([]byte, PacketSize)
	le := binary.LittleEndian
	le.PutUint16(b[0:], p.Header)
	le.PutUint16(b[2:], p.Setup)
	le.PutUint16(b[4:], p.WorkgroupSize[0])
	le.PutUint16(b[6:], p.WorkgroupSize[1])
	le.PutUint16(b[8:], p.WorkgroupSize[2])
	le.PutUint32(b[12:], p.GridSize[0])
	le.PutUint32(b[16:], p.GridSize[1])
	le.PutUint32(b[20:], p.GridSize[2])
	le.PutUint32(b[24:], p.PrivateSegmentSize)
	le.PutUint32(b[28:], p.GroupSegmentSize)
	le.PutUint64(b[32:], p.KernelObject)
	le.PutUint64(b[40:], uint64(p.KernargAddress))
	le.PutUint64(b[56:], uint64(p.CompletionSignal))
	return b, nil
}

// UnmarshalBinary decodes a 64-byte packet.
func (p *DispatchPacket) UnmarshalBinary(b []byte) error {
	if len(b) < PacketSize {
		return fmt.Errorf("dispatch packet needs %d bytes, got %d", PacketSize, len(b))
	}
	le := binary.LittleEndian
	p.Header = le.Uint16(b[0:])
	p.Setup = le.Uint16(b[2:])
	p.WorkgroupSize = [3]uint16{le.Uint16(b[4:]), le.Uint16(b[6:]), le.Uint16(b[8:])}
	p.GridSize = [3]uint32{le.Uint32(b[12:]), le.Uint32(b[16:]), le.Uint32(b[20:])}
	p.PrivateSegmentSize = le.Uint32(b[24:])
	p.GroupSegmentSize = le.Uint32(b[28:])
	p.KernelObject = le.Uint64(b[32:])
	p.KernargAddress = Address(le.Uint64(b[40:]))
	p.CompletionSignal = SignalHandle(le.Uint64(b[56:]))
	return nil
}

// PacketSlot is one 64-byte ring slot viewed as sixteen 32-bit words. Word 0
// carries header (low half) and setup (high half) and is only ever accessed
// atomically, because its packet type is what makes the slot eligible for
// execution.
type PacketSlot [slotWords]uint32

// Word layout within a slot.
const (
	wordHeaderSetup = 0
	wordWorkgroupXY = 1
	wordWorkgroupZ  = 2
	wordGridX       = 3
	wordGridY       = 4
	wordGridZ       = 5
	wordPrivate     = 6
	wordGroup       = 7
	wordKernelLo    = 8
	wordKernelHi    = 9
	wordKernargLo   = 10
	wordKernargHi   = 11
	wordSignalLo    = 14
	wordSignalHi    = 15
)

// Clear zeroes the slot, header first, so a half-cleared slot never looks
// like a published packet.
func (s *PacketSlot) Clear() {
	atomic.StoreUint32(&s[wordHeaderSetup], 0)
	for i := 1; i < slotWords; i++ {
		s[i] = 0
	}
}

// LoadHeader atomically reads the header and setup fields.
func (s *PacketSlot) LoadHeader() (header, setup uint16) {
	w := atomic.LoadUint32(&s[wordHeaderSetup])
	return uint16(w), uint16(w >> headerWidth)
}

// StoreHeader atomically writes the header and setup fields. For a dispatch
// this must be the last write to the slot.
func (s *PacketSlot) StoreHeader(header, setup uint16) {
	atomic.StoreUint32(&s[wordHeaderSetup], uint32(header)|uint32(setup)<<headerWidth)
}

// writeBody writes every field except header and setup.
func (s *PacketSlot) writeBody(p *DispatchPacket) {
	s[wordWorkgroupXY] = uint32(p.WorkgroupSize[0]) | uint32(p.WorkgroupSize[1])<<16
	s[wordWorkgroupZ] = uint32(p.WorkgroupSize[2])
	s[wordGridX] = p.GridSize[0]
	s[wordGridY] = p.GridSize[1]
	s[wordGridZ] = p.GridSize[2]
	s[wordPrivate] = p.PrivateSegmentSize
	s[wordGroup] = p.GroupSegmentSize
	s[wordKernelLo] = uint32(p.KernelObject)
	s[wordKernelHi] = uint32(p.KernelObject >> 32)
	s[wordKernargLo] = uint32(p.KernargAddress)
	s[wordKernargHi] = uint32(uint64(p.KernargAddress) >> 32)
	s[wordSignalLo] = uint32(p.CompletionSignal)
	s[wordSignalHi] = uint32(uint64(p.CompletionSignal) >> 32)
}

// Decode reads the slot as a dispatch packet. The header is loaded first
// and atomically, so fields read afterwards are those published with it.
func (s *PacketSlot) Decode() DispatchPacket {
	var p DispatchPacket
	p.Header, p.Setup = s.LoadHeader()
	p.WorkgroupSize = [3]uint16{
		uint16(s[wordWorkgroupXY]),
		uint16(s[wordWorkgroupXY] >> 16),
		uint16(s[wordWorkgroupZ]),
	}
	p.GridSize = [3]uint32{s[wordGridX], s[wordGridY], s[wordGridZ]}
	p.PrivateSegmentSize = s[wordPrivate]
	p.GroupSegmentSize = s[wordGroup]
	p.KernelObject = uint64(s[wordKernelLo]) | uint64(s[wordKernelHi])<<32
	p.KernargAddress = Address(uint64(s[wordKernargLo]) | uint64(s[wordKernargHi])<<32)
	p.CompletionSignal = SignalHandle(uint64(s[wordSignalLo]) | uint64(s[wordSignalHi])<<32)
	return p
}

// Ring is the packet buffer of a queue: a fixed power-of-two number of
// slots over one contiguous buffer. Logical index i lives in slot i mod C.
type Ring struct {
	words    []uint32
	capacity uint64
	mask     uint64
}

// NewRing wraps words (16 per slot) as a ring. The slot count must be a
// non-zero power of two.
func NewRing(words []uint32) (*Ring, error) {
	if len(words)%slotWords != 0 {
		return nil, newError(KindInvalidArgument, "ring buffer of %d words is not a whole number of packets", len(words))
	}
	n := uint64(len(words) / slotWords)
	if n == 0 || n&(n-1) != 0 {
		return nil, newError(KindInvalidArgument, "ring capacity %d is not a power of two", n)
	}
	return &Ring{words: words, capacity: n, mask: n - 1}, nil
}

// Capacity returns the number of slots.
func (r *Ring) Capacity() uint64 {
	return r.capacity
}

// Slot returns the slot holding logical index i.
func (r *Ring) Slot(i uint64) *PacketSlot {
	off := (i & r.mask) * slotWords
	return (*PacketSlot)(r.words[off : off+slotWords])
}
