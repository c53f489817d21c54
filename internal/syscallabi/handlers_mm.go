// handlers_mm.go - brk and the mmap family.
//
// Grounded on DESIGN.md's Open Question decision for munmap: segment
// removal completes the mutator guestmem.Image.RemoveSegment already
// exposes, rather than inventing unspecified behavior. brk growth and
// idempotence follow the same "reuse the existing segment API" approach:
// growing/shrinking the owned heap segment via ResizeSegment.

package syscallabi

import (
	"golang.org/x/sys/unix"

	"github.com/zayn68k/m68kemu/internal/guestcpu"
	"github.com/zayn68k/m68kemu/internal/guestmem"
)

func permFromProt(prot uint32) guestmem.Perm {
	return guestmem.Perm{
		Read:    prot&unix.PROT_READ != 0,
		Write:   prot&unix.PROT_WRITE != 0,
		Execute: prot&unix.PROT_EXEC != 0,
	}
}

const pageSize = 4096

// pageAlignUp rounds v up to the next 4-KiB boundary.
func pageAlignUp(v uint32) uint32 {
	return (v + pageSize - 1) &^ (pageSize - 1)
}

// handleBrk implements brk(2): a request of 0 reports the current break
// without moving it. A request below BrkBase clamps upward to BrkBase
// rather than failing. Old and new breaks are compared page-aligned; the
// heap segment is only resized when the new page-aligned break exceeds the
// old one. A one-page guard gap below the stack is always preserved - a
// request that would cross it silently returns the old break unchanged.
// The stored break is the exact requested (post-clamp) value, not the
// page-aligned one.
func handleBrk(cpu *guestcpu.State, mem *guestmem.Image, args [5]uint32) (uint32, error) {
	requested := args[0]
	if requested == 0 {
		return cpu.Brk, nil
	}
	if requested < cpu.BrkBase {
		requested = cpu.BrkBase
	}
	if cpu.StackBase != 0 && requested > cpu.StackBase-pageSize {
		return cpu.Brk, nil
	}
	oldPage := pageAlignUp(cpu.Brk)
	newPage := pageAlignUp(requested)
	if newPage > oldPage {
		newLen := newPage - cpu.HeapSegmentBase
		if err := mem.ResizeSegment(cpu.HeapSegmentBase, newLen); err != nil {
			return cpu.Brk, nil
		}
	}
	cpu.Brk = requested
	return cpu.Brk, nil
}

func mmapCommon(cpu *guestcpu.State, mem *guestmem.Image, addrHint, length, prot, flags uint32, fd int32, offset int64) (uint32, error) {
	base := addrHint
	if flags&unix.MAP_FIXED == 0 {
		free, ok := mem.FindFreeRange(length)
		if !ok {
			return libcToKernel(0, unix.ENOMEM), nil
		}
		base = free
	}
	perm := permFromProt(prot)
	seg := guestmem.NewOwnedSegment(base, length, perm, 0)
	if err := mem.AddSegment(seg); err != nil {
		return libcToKernel(0, unix.ENOMEM), nil
	}
	if flags&unix.MAP_ANONYMOUS == 0 && fd >= 0 {
		buf, err := mem.GuestToHostMut(base, length)
		if err != nil {
			return 0, err
		}
		if _, rerr := unix.Pread(int(fd), buf, offset); rerr != nil {
			return libcToKernel(0, rerr), nil
		}
	}
	return base, nil
}

func handleOldMmap(cpu *guestcpu.State, mem *guestmem.Image, args [5]uint32) (uint32, error) {
	a, err := readMmapArgStruct(mem, args[0])
	if err != nil {
		return 0, err
	}
	return mmapCommon(cpu, mem, a.Addr, a.Len, a.Prot, a.Flags, int32(a.Fd), int64(int32(a.Offset)))
}

// handleMmap2's sixth argument (the page-unit offset) rides on the guest
// stack per the ABI's stack-passed-sixth-argument convention.
func handleMmap2(cpu *guestcpu.State, mem *guestmem.Image, args [5]uint32) (uint32, error) {
	pgoff, err := sixthArg(cpu, mem)
	if err != nil {
		return 0, err
	}
	offset := int64(pgoff) * 4096
	return mmapCommon(cpu, mem, args[0], args[1], args[2], args[3], int32(args[4]), offset)
}

// handleMunmap removes the whole segment whose base equals addr, whatever
// its length or backing kind; len is not consulted and segments are never
// split. An addr that is not a segment base is a no-op reporting success.
func handleMunmap(cpu *guestcpu.State, mem *guestmem.Image, args [5]uint32) (uint32, error) {
	idx := mem.IndexOfBase(args[0])
	if idx < 0 {
		return 0, nil
	}
	if _, err := mem.RemoveSegment(idx); err != nil {
		return 0, err
	}
	return 0, nil
}

func handleMremap(cpu *guestcpu.State, mem *guestmem.Image, args [5]uint32) (uint32, error) {
	oldAddr, newSize := args[0], args[2]
	if err := mem.ResizeSegment(oldAddr, newSize); err != nil {
		return libcToKernel(0, unix.ENOMEM), nil
	}
	return oldAddr, nil
}

// handleMprotect is validate-only: emulator pages are always accessible, so
// there is no real protection to change. It checks that [addr, addr+len) is
// mapped and returns success without touching the segment's permissions - a
// guest mprotect(addr, len, PROT_NONE) guard-page idiom must not turn into a
// guestmem access violation on the next legitimate access.
func handleMprotect(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	if !mem.CoversRange(args[0], args[1]) {
		return libcToKernel(0, unix.ENOMEM), nil
	}
	return 0, nil
}

func handlePkeyMprotect(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	// Protection keys have no guest-visible equivalent; forward as a plain
	// mprotect and drop the key argument.
	return handleMprotect(mem, args)
}
