package syscallabi

import (
	"testing"

	"golang.org/x/sys/unix"

	"github.com/zayn68k/m68kemu/internal/guestmem"
)

func newFlatImage(t *testing.T, base, length uint32) *guestmem.Image {
	t.Helper()
	img := guestmem.NewImage()
	seg := guestmem.NewOwnedSegment(base, length, guestmem.Perm{Read: true, Write: true}, 0)
	if err := img.AddSegment(seg); err != nil {
		t.Fatalf("AddSegment: %v", err)
	}
	return img
}

// TestFdSetRoundTrip exercises the guest<->host fd_set conversion law: any
// bit pattern written as a guest fd_set survives a read-then-write cycle
// through the host unix.FdSet representation unchanged.
func TestFdSetRoundTrip(t *testing.T) {
	img := newFlatImage(t, 0x1000, 0x100)
	addr := uint32(0x1000)

	// Set bits for fd 0, fd 63, fd 300, and fd 1023 (the last bit).
	fds := []int{0, 63, 300, 1023}
	for _, fd := range fds {
		wordIdx := fd / 32
		bitIdx := uint(fd % 32)
		word, err := img.ReadLong(addr + uint32(wordIdx*4))
		if err != nil {
			t.Fatalf("ReadLong: %v", err)
		}
		word |= 1 << bitIdx
		if err := img.WriteLong(addr+uint32(wordIdx*4), word); err != nil {
			t.Fatalf("WriteLong: %v", err)
		}
	}

	set, err := readFdSet(img, addr)
	if err != nil {
		t.Fatalf("readFdSet: %v", err)
	}

	addr2 := uint32(0x1000 + 0x80)
	img2 := newFlatImage(t, addr2, 0x80)
	if err := writeFdSet(img2, addr2, set); err != nil {
		t.Fatalf("writeFdSet: %v", err)
	}

	for _, fd := range fds {
		wordIdx := fd / 32
		bitIdx := uint32(fd % 32)
		word, err := img2.ReadLong(addr2 + uint32(wordIdx*4))
		if err != nil {
			t.Fatalf("ReadLong back: %v", err)
		}
		if word&(1<<bitIdx) == 0 {
			t.Fatalf("fd %d bit lost in round trip", fd)
		}
	}
}

func TestFdSetNilAddrIsNoop(t *testing.T) {
	img := newFlatImage(t, 0, 0x10)
	set, err := readFdSet(img, 0)
	if err != nil {
		t.Fatalf("readFdSet(0): %v", err)
	}
	if set != nil {
		t.Fatalf("expected nil FdSet for addr 0")
	}
	if err := writeFdSet(img, 0, &unix.FdSet{}); err != nil {
		t.Fatalf("writeFdSet(0): %v", err)
	}
}
