package syscallabi

import (
	"testing"

	"github.com/zayn68k/m68kemu/internal/guestcpu"
	"github.com/zayn68k/m68kemu/internal/guestmem"
)

func newTLSState(t *testing.T, heapBase, heapLen uint32) (*guestcpu.State, *guestmem.Image) {
	t.Helper()
	img := guestmem.NewImage()
	seg := guestmem.NewOwnedSegment(heapBase, heapLen, guestmem.Perm{Read: true, Write: true}, 0)
	if err := img.AddSegment(seg); err != nil {
		t.Fatalf("AddSegment: %v", err)
	}
	cpu := &guestcpu.State{
		BrkBase:         heapBase,
		HeapSegmentBase: heapBase,
		Brk:             heapBase + heapLen,
		StackBase:       0x10000000,
	}
	return cpu, img
}

// TestSetThreadAreaGrowsAndZeroFills verifies the first set_thread_area call
// grows the heap segment to back the TCB+pad window and zero-fills it since
// no TLS image was previously installed.
func TestSetThreadAreaGrowsAndZeroFills(t *testing.T) {
	cpu, mem := newTLSState(t, 0x10000, 0x1000)
	tlsAddr := cpu.Brk + tlsTCBSize

	if _, err := handleSetThreadArea(cpu, mem, [5]uint32{tlsAddr}); err != nil {
		t.Fatalf("handleSetThreadArea: %v", err)
	}
	if cpu.TLSBase != tlsAddr {
		t.Fatalf("TLSBase = %#x, want %#x", cpu.TLSBase, tlsAddr)
	}
	if !cpu.TLSInitialized {
		t.Fatalf("TLSInitialized not set")
	}

	seg := mem.SegmentAt(cpu.HeapSegmentBase)
	if seg == nil {
		t.Fatalf("heap segment missing")
	}
	wantEnd := pageAlignUp(tlsAddr + tlsPadSize)
	if cpu.HeapSegmentBase+seg.Len < wantEnd {
		t.Fatalf("heap segment end %#x short of %#x", cpu.HeapSegmentBase+seg.Len, wantEnd)
	}

	b, err := mem.ReadByte(tlsAddr - tlsTCBSize)
	if err != nil {
		t.Fatalf("ReadByte: %v", err)
	}
	if b != 0 {
		t.Fatalf("TCB not zero-filled: got %#x", b)
	}
}

// TestSetThreadAreaCopiesOnRelocate verifies a second set_thread_area call
// copies the previously-installed TLS image to the new base.
func TestSetThreadAreaCopiesOnRelocate(t *testing.T) {
	cpu, mem := newTLSState(t, 0x10000, 0x1000)
	oldAddr := cpu.Brk + tlsTCBSize
	if _, err := handleSetThreadArea(cpu, mem, [5]uint32{oldAddr}); err != nil {
		t.Fatalf("handleSetThreadArea (initial): %v", err)
	}
	marker := uint32(0xDEADBEEF)
	if err := mem.WriteLong(oldAddr-4, marker); err != nil {
		t.Fatalf("WriteLong: %v", err)
	}

	newAddr := oldAddr + 0x100
	if _, err := handleSetThreadArea(cpu, mem, [5]uint32{newAddr}); err != nil {
		t.Fatalf("handleSetThreadArea (relocate): %v", err)
	}
	got, err := mem.ReadLong(newAddr - 4)
	if err != nil {
		t.Fatalf("ReadLong: %v", err)
	}
	if got != marker {
		t.Fatalf("relocated TLS content = %#x, want %#x", got, marker)
	}
}

// TestReadThreadPointerLazilyAllocates verifies read_thread_pointer installs
// a TLS block on first use when none is configured, then returns the same
// base on subsequent calls.
func TestReadThreadPointerLazilyAllocates(t *testing.T) {
	cpu, mem := newTLSState(t, 0x10000, 0x1000)

	tp, err := handleReadThreadPointer(cpu, mem)
	if err != nil {
		t.Fatalf("handleReadThreadPointer: %v", err)
	}
	if tp == 0 {
		t.Fatalf("expected a nonzero thread pointer")
	}
	if !cpu.TLSInitialized {
		t.Fatalf("TLSInitialized not set after lazy allocation")
	}

	tp2, err := handleReadThreadPointer(cpu, mem)
	if err != nil {
		t.Fatalf("handleReadThreadPointer (second call): %v", err)
	}
	if tp2 != tp {
		t.Fatalf("second call returned %#x, want unchanged %#x", tp2, tp)
	}
}
