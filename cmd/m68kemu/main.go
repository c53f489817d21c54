// Command m68kemu runs a big-endian 68020 Linux binary under the
// translator in internal/interp. Out of scope as an intellectually
// interesting component per spec.md §1 ("the CLI wrapper... specified
// only through the interfaces [it] consumes"), so this stays the thin
// argument-parsing-and-exit-code shape spec.md §155 names, grounded on
// main.go's os.Exit(1)-on-failure convention.
package main

import (
	"fmt"
	"os"

	"github.com/zayn68k/m68kemu/internal/elfload"
	"github.com/zayn68k/m68kemu/internal/guestcpu"
	"github.com/zayn68k/m68kemu/internal/guestmem"
	"github.com/zayn68k/m68kemu/internal/interp"
)

const (
	initialHeapLen = 0x10000
	stackLen       = 0x100000
	stackBase      = 0x7FFF0000
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <guest-binary>\n", os.Args[0])
		os.Exit(1)
	}

	cpu, mem, err := setup(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "m68kemu: %v\n", err)
		os.Exit(1)
	}

	code, err := interp.Run(cpu, mem)
	if err != nil {
		fmt.Fprintf(os.Stderr, "m68kemu: %v\n", err)
		os.Exit(1)
	}
	os.Exit(code)
}

// setup loads the guest binary's PT_LOAD segments, appends a growable heap
// segment immediately above them and a fixed-size stack segment below
// stackBase, and seeds a guestcpu.State ready for interp.Run: PC at the
// ELF entry point, A7 near the top of the stack, and the brk/heap/stack/
// exe_path bookkeeping fields the syscall layer consults. The TLS fields
// start zeroed (no TLS configured).
func setup(path string) (*guestcpu.State, *guestmem.Image, error) {
	loaded, err := elfload.Load(path)
	if err != nil {
		return nil, nil, err
	}

	heapBase := pageAlignUp(loaded.BrkBase)
	heapSeg := guestmem.NewOwnedSegment(heapBase, initialHeapLen, guestmem.Perm{Read: true, Write: true}, 0)
	if err := loaded.Image.AddSegment(heapSeg); err != nil {
		return nil, nil, fmt.Errorf("m68kemu: adding heap segment: %w", err)
	}

	stackSeg := guestmem.NewOwnedSegment(stackBase-stackLen, stackLen, guestmem.Perm{Read: true, Write: true}, 0)
	if err := loaded.Image.AddSegment(stackSeg); err != nil {
		return nil, nil, fmt.Errorf("m68kemu: adding stack segment: %w", err)
	}

	cpu := &guestcpu.State{
		PC:              loaded.Entry,
		Brk:             heapBase,
		BrkBase:         heapBase,
		HeapSegmentBase: heapBase,
		StackBase:       stackBase,
		ExePath:         path,
	}
	cpu.SetSP(stackBase - 0x100)

	return cpu, loaded.Image, nil
}

func pageAlignUp(v uint32) uint32 {
	const pageSize = 4096
	return (v + pageSize - 1) &^ (pageSize - 1)
}
