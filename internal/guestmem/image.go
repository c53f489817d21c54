// image.go - the ordered set of guest memory segments.
//
// Grounded on memory_bus.go's SystemBus: a mutex-guarded byte store with
// big-endian (there, little-endian) multi-byte access, generalised from a
// single fixed-size block with page-keyed MMIO callbacks into a sorted list
// of independently permissioned, independently backed segments. No
// coalescing of adjacent segments is performed, matching spec.md's stated
// policy.

package guestmem

import (
	"encoding/binary"
	"sort"
	"sync"
)

// Image is the sole custodian of a guest address space: an ordered,
// non-overlapping set of segments plus bookkeeping for locating free ranges.
// For any guest address A and size S, at most one segment contains the
// half-open range [A, A+S); if none does, accesses fail with KindUnmapped.
type Image struct {
	mu       sync.RWMutex
	segments []*Segment // kept sorted by Base
}

// NewImage returns an empty guest address space.
func NewImage() *Image {
	return &Image{}
}

// Segments returns the current segments in base-address order. The slice is
// a snapshot; mutating the Image afterwards does not affect it.
func (img *Image) Segments() []*Segment {
	img.mu.RLock()
	defer img.mu.RUnlock()
	out := make([]*Segment, len(img.segments))
	copy(out, img.segments)
	return out
}

// find returns the segment containing [addr, addr+length), or nil. Caller
// must hold img.mu.
func (img *Image) find(addr, length uint32) *Segment {
	// segments are sorted by Base; binary search for the last segment whose
	// Base <= addr, then check containment.
	i := sort.Search(len(img.segments), func(i int) bool {
		return img.segments[i].Base > addr
	})
	if i == 0 {
		return nil
	}
	seg := img.segments[i-1]
	if seg.Contains(addr, length) {
		return seg
	}
	return nil
}

func overflow(addr, length uint32) bool {
	return addr+length < addr
}

func (img *Image) resolve(op string, addr, length uint32, needRead, needWrite, needExec bool) (*Segment, error) {
	if overflow(addr, length) {
		return nil, newErr(op, addr, length, KindAddressOverflow)
	}
	seg := img.find(addr, length)
	if seg == nil {
		return nil, newErr(op, addr, length, KindUnmapped)
	}
	if needRead && !seg.Perm.Read {
		return nil, newErr(op, addr, length, KindAccessViolation)
	}
	if needWrite && !seg.Perm.Write {
		return nil, newErr(op, addr, length, KindAccessViolation)
	}
	if needExec && !seg.Perm.Execute {
		return nil, newErr(op, addr, length, KindAccessViolation)
	}
	return seg, nil
}

func sliceFor(seg *Segment, addr, length uint32) []byte {
	off := addr - seg.Base
	return seg.Bytes()[off : off+length]
}

// ReadByte returns the byte at addr.
func (img *Image) ReadByte(addr uint32) (uint8, error) {
	img.mu.RLock()
	defer img.mu.RUnlock()
	seg, err := img.resolve("read_byte", addr, 1, true, false, false)
	if err != nil {
		return 0, err
	}
	return sliceFor(seg, addr, 1)[0], nil
}

// ReadWord returns the big-endian 16-bit value at addr.
func (img *Image) ReadWord(addr uint32) (uint16, error) {
	img.mu.RLock()
	defer img.mu.RUnlock()
	seg, err := img.resolve("read_word", addr, 2, true, false, false)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(sliceFor(seg, addr, 2)), nil
}

// ReadLong returns the big-endian 32-bit value at addr.
func (img *Image) ReadLong(addr uint32) (uint32, error) {
	img.mu.RLock()
	defer img.mu.RUnlock()
	seg, err := img.resolve("read_long", addr, 4, true, false, false)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(sliceFor(seg, addr, 4)), nil
}

// WriteByte writes a single byte at addr.
func (img *Image) WriteByte(addr uint32, v uint8) error {
	img.mu.Lock()
	defer img.mu.Unlock()
	seg, err := img.resolve("write_byte", addr, 1, false, true, false)
	if err != nil {
		return err
	}
	sliceFor(seg, addr, 1)[0] = v
	return nil
}

// WriteWord writes a big-endian 16-bit value at addr.
func (img *Image) WriteWord(addr uint32, v uint16) error {
	img.mu.Lock()
	defer img.mu.Unlock()
	seg, err := img.resolve("write_word", addr, 2, false, true, false)
	if err != nil {
		return err
	}
	binary.BigEndian.PutUint16(sliceFor(seg, addr, 2), v)
	return nil
}

// WriteLong writes a big-endian 32-bit value at addr.
func (img *Image) WriteLong(addr uint32, v uint32) error {
	img.mu.Lock()
	defer img.mu.Unlock()
	seg, err := img.resolve("write_long", addr, 4, false, true, false)
	if err != nil {
		return err
	}
	binary.BigEndian.PutUint32(sliceFor(seg, addr, 4), v)
	return nil
}

// ReadData returns a borrow of the backing bytes for [addr, addr+length).
func (img *Image) ReadData(addr, length uint32) ([]byte, error) {
	img.mu.RLock()
	defer img.mu.RUnlock()
	seg, err := img.resolve("read_data", addr, length, true, false, false)
	if err != nil {
		return nil, err
	}
	return sliceFor(seg, addr, length), nil
}

// FetchInstruction returns a borrow of the backing bytes for [addr,
// addr+length), additionally requiring the segment be marked executable.
func (img *Image) FetchInstruction(addr, length uint32) ([]byte, error) {
	img.mu.RLock()
	defer img.mu.RUnlock()
	seg, err := img.resolve("fetch_instruction", addr, length, true, false, true)
	if err != nil {
		return nil, err
	}
	return sliceFor(seg, addr, length), nil
}

// WriteData copies data into the guest range starting at addr.
func (img *Image) WriteData(addr uint32, data []byte) error {
	img.mu.Lock()
	defer img.mu.Unlock()
	seg, err := img.resolve("write_data", addr, uint32(len(data)), false, true, false)
	if err != nil {
		return err
	}
	copy(sliceFor(seg, addr, uint32(len(data))), data)
	return nil
}

// GuestToHost returns a raw host slice into the segment's backing storage
// for read-only use by a host system call. The slice is valid for the life
// of the segment; callers must not keep it across calls that may grow or
// remove segments.
func (img *Image) GuestToHost(addr, length uint32) ([]byte, error) {
	img.mu.RLock()
	defer img.mu.RUnlock()
	seg, err := img.resolve("guest_to_host", addr, length, true, false, false)
	if err != nil {
		return nil, err
	}
	return sliceFor(seg, addr, length), nil
}

// GuestToHostMut is GuestToHost but requires write permission instead of
// read permission, for host syscalls that write into the guest buffer (e.g. read, recvmsg).
func (img *Image) GuestToHostMut(addr, length uint32) ([]byte, error) {
	img.mu.RLock()
	defer img.mu.RUnlock()
	seg, err := img.resolve("guest_to_host_mut", addr, length, false, true, false)
	if err != nil {
		return nil, err
	}
	return sliceFor(seg, addr, length), nil
}

// CoversRange is a boolean probe that never fails.
func (img *Image) CoversRange(addr, length uint32) bool {
	img.mu.RLock()
	defer img.mu.RUnlock()
	if overflow(addr, length) {
		return false
	}
	return img.find(addr, length) != nil
}

// FindFreeRange returns a guest address where a new segment of length bytes
// can be placed without overlapping any existing segment, preferring low
// addresses. The second return is false if no such range exists below the
// top of the 32-bit address space.
func (img *Image) FindFreeRange(length uint32) (uint32, bool) {
	img.mu.RLock()
	defer img.mu.RUnlock()
	return img.findFreeRangeLocked(length, 0)
}

// findFreeRangeLocked searches starting at or after hint. Caller must hold
// at least a read lock.
func (img *Image) findFreeRangeLocked(length, hint uint32) (uint32, bool) {
	candidate := hint
	for _, seg := range img.segments {
		if candidate+length <= seg.Base && candidate+length >= candidate {
			return candidate, true
		}
		if seg.End() > candidate {
			candidate = seg.End()
		}
	}
	if candidate+length < candidate {
		return 0, false // overflow, exhausted the address space
	}
	return candidate, true
}

// AddSegment inserts a new segment, failing if it would overlap an existing one.
func (img *Image) AddSegment(seg *Segment) error {
	img.mu.Lock()
	defer img.mu.Unlock()
	return img.addSegmentLocked(seg)
}

func (img *Image) addSegmentLocked(seg *Segment) error {
	if overflow(seg.Base, seg.Len) {
		return newErr("add_segment", seg.Base, seg.Len, KindAddressOverflow)
	}
	i := sort.Search(len(img.segments), func(i int) bool {
		return img.segments[i].Base >= seg.Base
	})
	if i > 0 && img.segments[i-1].End() > seg.Base {
		return newErr("add_segment", seg.Base, seg.Len, KindAccessViolation)
	}
	if i < len(img.segments) && seg.End() > img.segments[i].Base {
		return newErr("add_segment", seg.Base, seg.Len, KindAccessViolation)
	}
	img.segments = append(img.segments, nil)
	copy(img.segments[i+1:], img.segments[i:])
	img.segments[i] = seg
	return nil
}

// RemoveSegment removes the segment at the given index, returning it so the
// caller (e.g. shmdt) can report its ShmID back. Foreign-backed segments are
// detached, never freed - removal is the same for both kinds from the
// Image's point of view; only the caller differs in what it does with the
// returned Segment.
func (img *Image) RemoveSegment(idx int) (*Segment, error) {
	img.mu.Lock()
	defer img.mu.Unlock()
	if idx < 0 || idx >= len(img.segments) {
		return nil, newErr("remove_segment", 0, 0, KindUnmapped)
	}
	seg := img.segments[idx]
	img.segments = append(img.segments[:idx], img.segments[idx+1:]...)
	return seg, nil
}

// IndexOfBase returns the index of the segment whose Base equals addr, or -1.
func (img *Image) IndexOfBase(addr uint32) int {
	img.mu.RLock()
	defer img.mu.RUnlock()
	for i, seg := range img.segments {
		if seg.Base == addr {
			return i
		}
	}
	return -1
}

// ResizeSegment grows or shrinks the owned segment based at base. Growing
// zero-fills; shrinking truncates. Only defined for owned-backed segments.
func (img *Image) ResizeSegment(base, newLen uint32) error {
	img.mu.Lock()
	defer img.mu.Unlock()
	for _, seg := range img.segments {
		if seg.Base != base {
			continue
		}
		if seg.Kind != BackingOwned {
			return newErr("resize_segment", base, newLen, KindAccessViolation)
		}
		if newLen > seg.Len {
			// verify growth doesn't overlap the next segment
			var next *Segment
			for _, other := range img.segments {
				if other.Base > seg.Base && (next == nil || other.Base < next.Base) {
					next = other
				}
			}
			if next != nil && base+newLen > next.Base {
				return newErr("resize_segment", base, newLen, KindAccessViolation)
			}
		}
		seg.resize(newLen)
		return nil
	}
	return newErr("resize_segment", base, newLen, KindUnmapped)
}

// SegmentAt returns the segment based at addr, or nil.
func (img *Image) SegmentAt(addr uint32) *Segment {
	img.mu.RLock()
	defer img.mu.RUnlock()
	for _, seg := range img.segments {
		if seg.Base == addr {
			return seg
		}
	}
	return nil
}
