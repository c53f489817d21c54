package syscallabi

import (
	"testing"

	"github.com/zayn68k/m68kemu/internal/guestcpu"
	"github.com/zayn68k/m68kemu/internal/guestmem"
)

func newHeapState(t *testing.T, heapBase, heapLen uint32) (*guestcpu.State, *guestmem.Image) {
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
		StackBase:       0xF0000000,
	}
	return cpu, img
}

// TestBrkQueryIsIdempotent verifies that brk(0) reports the current break
// without altering it, and that repeating the query changes nothing.
func TestBrkQueryIsIdempotent(t *testing.T) {
	cpu, mem := newHeapState(t, 0x1000, 0x1000)
	want := cpu.Brk

	for i := 0; i < 3; i++ {
		got, err := handleBrk(cpu, mem, [5]uint32{0})
		if err != nil {
			t.Fatalf("handleBrk: %v", err)
		}
		if got != want {
			t.Fatalf("iteration %d: brk query returned %#x, want %#x", i, got, want)
		}
		if cpu.Brk != want {
			t.Fatalf("iteration %d: brk mutated by a query to %#x", i, cpu.Brk)
		}
	}
}

// TestBrkGrowsHeapSegment verifies that requesting a higher break grows the
// backing segment and that a subsequent query reports the new break.
func TestBrkGrowsHeapSegment(t *testing.T) {
	cpu, mem := newHeapState(t, 0x1000, 0x1000)
	newBrk := cpu.Brk + 0x500

	got, err := handleBrk(cpu, mem, [5]uint32{newBrk})
	if err != nil {
		t.Fatalf("handleBrk: %v", err)
	}
	if got != newBrk {
		t.Fatalf("handleBrk grow = %#x, want %#x", got, newBrk)
	}
	if cpu.Brk != newBrk {
		t.Fatalf("cpu.Brk = %#x after grow, want %#x", cpu.Brk, newBrk)
	}

	seg := mem.SegmentAt(cpu.HeapSegmentBase)
	if seg == nil {
		t.Fatalf("heap segment missing after grow")
	}
	if seg.Len != pageAlignUp(newBrk)-cpu.HeapSegmentBase {
		t.Fatalf("heap segment length = %#x, want %#x", seg.Len, pageAlignUp(newBrk)-cpu.HeapSegmentBase)
	}

	query, err := handleBrk(cpu, mem, [5]uint32{0})
	if err != nil {
		t.Fatalf("handleBrk query after grow: %v", err)
	}
	if query != newBrk {
		t.Fatalf("post-grow query = %#x, want %#x", query, newBrk)
	}
}

// TestBrkClampsBelowBase verifies that a request below BrkBase clamps
// upward to BrkBase instead of shrinking past the segment's origin.
func TestBrkClampsBelowBase(t *testing.T) {
	cpu, mem := newHeapState(t, 0x2000, 0x1000)

	got, err := handleBrk(cpu, mem, [5]uint32{0x1000})
	if err != nil {
		t.Fatalf("handleBrk: %v", err)
	}
	if got != cpu.BrkBase {
		t.Fatalf("handleBrk below base = %#x, want clamped to BrkBase %#x", got, cpu.BrkBase)
	}
	if cpu.Brk != cpu.BrkBase {
		t.Fatalf("cpu.Brk = %#x after clamp, want %#x", cpu.Brk, cpu.BrkBase)
	}
}

// TestBrkGuardGapBlocksCrossingIntoStack verifies that a request landing
// inside the one-page guard gap below the stack is silently refused,
// leaving the break unchanged.
func TestBrkGuardGapBlocksCrossingIntoStack(t *testing.T) {
	cpu, mem := newHeapState(t, 0x2000, 0x1000)
	cpu.StackBase = 0x4000
	want := cpu.Brk

	got, err := handleBrk(cpu, mem, [5]uint32{0x3800})
	if err != nil {
		t.Fatalf("handleBrk: %v", err)
	}
	if got != want {
		t.Fatalf("handleBrk into guard gap = %#x, want unchanged %#x", got, want)
	}
}

// TestMprotectMappedRangeLeavesPermsAndAccessIntact verifies that mprotect
// on a fully-mapped range returns success and that a guest PROT_NONE request
// does not actually revoke guestmem access to the range - emulator pages
// stay accessible regardless of the requested protection.
func TestMprotectMappedRangeLeavesPermsAndAccessIntact(t *testing.T) {
	img := newFlatImage(t, 0x5000, 0x1000)

	got, err := handleMprotect(img, [5]uint32{0x5000, 0x1000, 0 /* PROT_NONE */})
	if err != nil {
		t.Fatalf("handleMprotect: %v", err)
	}
	if got != 0 {
		t.Fatalf("handleMprotect = %#x, want 0 (success)", got)
	}

	seg := img.SegmentAt(0x5000)
	if seg == nil {
		t.Fatalf("segment missing after mprotect")
	}
	if !seg.Perm.Read || !seg.Perm.Write {
		t.Fatalf("mprotect mutated segment permissions to %+v, want unchanged", seg.Perm)
	}
	if _, err := img.ReadLong(0x5000); err != nil {
		t.Fatalf("ReadLong after PROT_NONE mprotect: %v", err)
	}
}

// TestMprotectUnmappedRangeFails verifies that a range not fully covered by
// a mapped segment is rejected with ENOMEM.
func TestMprotectUnmappedRangeFails(t *testing.T) {
	img := newFlatImage(t, 0x5000, 0x1000)

	got, err := handleMprotect(img, [5]uint32{0x5000, 0x2000, 0})
	if err != nil {
		t.Fatalf("handleMprotect: %v", err)
	}
	if got == 0 {
		t.Fatalf("handleMprotect over unmapped range returned success, want an error")
	}
}

// TestAtomicCmpxchg32MatchSwaps verifies the m68k atomic_cmpxchg_32
// pseudo-syscall: when the memory word equals the expected old value, it is
// replaced and the prior value is returned.
func TestAtomicCmpxchg32MatchSwaps(t *testing.T) {
	img := newFlatImage(t, 0x3000, 0x10)
	if err := img.WriteLong(0x3000, 0xAAAA); err != nil {
		t.Fatalf("WriteLong: %v", err)
	}

	// args: {newVal, oldVal, addr}
	prior, err := handleAtomicCmpxchg32(img, [5]uint32{0xBBBB, 0xAAAA, 0x3000})
	if err != nil {
		t.Fatalf("handleAtomicCmpxchg32: %v", err)
	}
	if prior != 0xAAAA {
		t.Fatalf("returned prior value = %#x, want %#x", prior, 0xAAAA)
	}
	got, err := img.ReadLong(0x3000)
	if err != nil {
		t.Fatalf("ReadLong: %v", err)
	}
	if got != 0xBBBB {
		t.Fatalf("memory after swap = %#x, want %#x", got, 0xBBBB)
	}
}

// TestAtomicCmpxchg32MismatchLeavesMemoryUntouched verifies that a mismatch
// between the expected old value and the actual memory word returns the
// actual value without writing anything.
func TestAtomicCmpxchg32MismatchLeavesMemoryUntouched(t *testing.T) {
	img := newFlatImage(t, 0x3000, 0x10)
	if err := img.WriteLong(0x3000, 0xAAAA); err != nil {
		t.Fatalf("WriteLong: %v", err)
	}

	prior, err := handleAtomicCmpxchg32(img, [5]uint32{0xBBBB, 0xCCCC, 0x3000})
	if err != nil {
		t.Fatalf("handleAtomicCmpxchg32: %v", err)
	}
	if prior != 0xAAAA {
		t.Fatalf("returned prior value = %#x, want %#x", prior, 0xAAAA)
	}
	got, err := img.ReadLong(0x3000)
	if err != nil {
		t.Fatalf("ReadLong: %v", err)
	}
	if got != 0xAAAA {
		t.Fatalf("memory mutated on mismatch: got %#x, want unchanged %#x", got, 0xAAAA)
	}
}
