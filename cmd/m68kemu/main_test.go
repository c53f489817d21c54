package main

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// buildM68kELF mirrors internal/elfload's test helper: a minimal big-endian
// 32-bit ELF executable with a single PT_LOAD segment.
func buildM68kELF(t *testing.T, vaddr, memsz uint32, filedata []byte, entry uint32) []byte {
	t.Helper()
	const (
		ehSize = 52
		phSize = 32
	)
	phoff := uint32(ehSize)
	dataOff := phoff + phSize
	buf := make([]byte, dataOff+uint32(len(filedata)))

	copy(buf[0:4], []byte{0x7f, 'E', 'L', 'F'})
	buf[4] = 1
	buf[5] = 2
	buf[6] = 1

	be := binary.BigEndian
	be.PutUint16(buf[16:18], 2)
	be.PutUint16(buf[18:20], 4)
	be.PutUint32(buf[20:24], 1)
	be.PutUint32(buf[24:28], entry)
	be.PutUint32(buf[28:32], phoff)
	be.PutUint16(buf[40:42], ehSize)
	be.PutUint16(buf[42:44], phSize)
	be.PutUint16(buf[44:46], 1)

	ph := buf[phoff : phoff+phSize]
	be.PutUint32(ph[0:4], 1)
	be.PutUint32(ph[4:8], dataOff)
	be.PutUint32(ph[8:12], vaddr)
	be.PutUint32(ph[12:16], vaddr)
	be.PutUint32(ph[16:20], uint32(len(filedata)))
	be.PutUint32(ph[20:24], memsz)
	be.PutUint32(ph[24:28], 7)
	be.PutUint32(ph[28:32], 4)

	copy(buf[dataOff:], filedata)
	return buf
}

// TestSetupSeedsCPUStateFromEntry verifies setup loads the binary, places PC
// at the ELF entry point, and leaves the stack pointer below stackBase.
func TestSetupSeedsCPUStateFromEntry(t *testing.T) {
	const vaddr = 0x2000
	raw := buildM68kELF(t, vaddr, 0x1000, []byte{0x4E, 0x40}, vaddr)
	path := filepath.Join(t.TempDir(), "guest.elf")
	if err := os.WriteFile(path, raw, 0o755); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cpu, mem, err := setup(path)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if cpu.PC != vaddr {
		t.Fatalf("PC = %#x, want %#x", cpu.PC, vaddr)
	}
	if cpu.SP() >= stackBase || cpu.SP() == 0 {
		t.Fatalf("SP = %#x, want a nonzero address below stackBase %#x", cpu.SP(), uint32(stackBase))
	}
	if cpu.ExePath != path {
		t.Fatalf("ExePath = %q, want %q", cpu.ExePath, path)
	}

	if _, err := mem.ReadWord(vaddr); err != nil {
		t.Fatalf("loaded segment unreadable: %v", err)
	}
}

// TestSetupFailsOnMissingFile verifies a nonexistent path surfaces an error
// rather than a panic, matching the CLI's nonzero-exit-on-load-failure
// contract.
func TestSetupFailsOnMissingFile(t *testing.T) {
	if _, _, err := setup(filepath.Join(t.TempDir(), "does-not-exist.elf")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}
