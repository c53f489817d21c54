// Package elfload reads a big-endian ELF binary's PT_LOAD program headers
// and builds the guestmem.Image the core runs against. Out of scope as an
// intellectually interesting component per spec.md §1 ("the ELF
// program-header reader... specified only through the interfaces they
// consume"), so this stays a thin wrapper over the standard library's
// debug/elf rather than a hand-rolled ELF parser.
package elfload

import (
	"debug/elf"
	"fmt"
	"io"
	"sort"

	"github.com/zayn68k/m68kemu/internal/guestmem"
)

// Loaded carries the populated image plus the bookkeeping values the core
// needs to seed guestcpu.State: the entry point and the address just past
// the highest PT_LOAD segment, a natural brk_base.
type Loaded struct {
	Image       *guestmem.Image
	Entry       uint32
	BrkBase     uint32
	IsBigEndian bool
}

// Load opens path, verifies it targets a big-endian 32-bit machine, and
// builds a guestmem.Image from its PT_LOAD segments: each keyed by
// p_vaddr, sized to p_memsz, with contents from [p_offset, p_offset+p_filesz)
// and zero-fill beyond, and permission bits copied from p_flags. Segments
// are added in ascending base-address order, since the core relies on the
// image's segment list being sorted by base.
func Load(path string) (*Loaded, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("elfload: open %s: %w", path, err)
	}
	defer f.Close()

	if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("elfload: %s is not a 32-bit ELF", path)
	}
	if f.Data != elf.ELFDATA2MSB {
		return nil, fmt.Errorf("elfload: %s is not big-endian", path)
	}
	if f.Type != elf.ET_EXEC && f.Type != elf.ET_DYN {
		return nil, fmt.Errorf("elfload: %s is not an executable ELF", path)
	}

	var progs []*elf.Prog
	for _, p := range f.Progs {
		if p.Type != elf.PT_LOAD || p.Memsz == 0 {
			continue
		}
		if p.Memsz < p.Filesz {
			return nil, fmt.Errorf("elfload: segment at %#x has memsz %#x smaller than filesz %#x", p.Vaddr, p.Memsz, p.Filesz)
		}
		progs = append(progs, p)
	}
	if len(progs) == 0 {
		return nil, fmt.Errorf("elfload: %s has no PT_LOAD segments", path)
	}
	sort.Slice(progs, func(i, j int) bool { return progs[i].Vaddr < progs[j].Vaddr })

	img := guestmem.NewImage()
	var brkBase uint32
	for _, p := range progs {
		base := uint32(p.Vaddr)
		length := uint32(p.Memsz)
		seg := guestmem.NewOwnedSegment(base, length, permFromFlags(p.Flags), 0)

		if p.Filesz > 0 {
			if _, err := io.ReadFull(p.Open(), seg.Bytes()[:p.Filesz]); err != nil {
				return nil, fmt.Errorf("elfload: reading segment at %#x: %w", p.Vaddr, err)
			}
		}

		if err := img.AddSegment(seg); err != nil {
			return nil, fmt.Errorf("elfload: adding segment at %#x: %w", p.Vaddr, err)
		}

		if end := base + length; end > brkBase {
			brkBase = end
		}
	}

	return &Loaded{
		Image:       img,
		Entry:       uint32(f.Entry),
		BrkBase:     brkBase,
		IsBigEndian: true,
	}, nil
}

// permFromFlags maps an ELF program header's R/W/X bits onto guestmem.Perm.
func permFromFlags(flags elf.ProgFlag) guestmem.Perm {
	return guestmem.Perm{
		Read:    flags&elf.PF_R != 0,
		Write:   flags&elf.PF_W != 0,
		Execute: flags&elf.PF_X != 0,
	}
}
