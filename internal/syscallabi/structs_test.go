package syscallabi

import (
	"testing"

	"golang.org/x/sys/unix"
)

// TestWriteStatSerializesFields verifies the guest stat struct's twelve
// leading 32-bit fields plus the trailing ctime word, matching spec.md §6's
// documented 52-byte layout.
func TestWriteStatSerializesFields(t *testing.T) {
	img := newFlatImage(t, 0x4000, 0x100)
	addr := uint32(0x4000)

	var st unix.Stat_t
	st.Dev = 5
	st.Ino = 42
	st.Mode = 0o100644
	st.Nlink = 1
	st.Uid = 1000
	st.Gid = 1000
	st.Rdev = 0
	st.Size = 12345
	st.Blksize = 4096
	st.Blocks = 24
	st.Atim.Sec = 1000
	st.Mtim.Sec = 2000
	st.Ctim.Sec = 3000

	if err := writeStat(img, addr, &st); err != nil {
		t.Fatalf("writeStat: %v", err)
	}

	checks := []struct {
		off  uint32
		want uint32
	}{
		{0, uint32(st.Dev)},
		{4, uint32(st.Ino)},
		{8, st.Mode},
		{12, uint32(st.Nlink)},
		{16, st.Uid},
		{20, st.Gid},
		{24, uint32(st.Rdev)},
		{28, uint32(st.Size)},
		{32, uint32(st.Blksize)},
		{36, uint32(st.Blocks)},
		{40, uint32(st.Atim.Sec)},
		{44, uint32(st.Mtim.Sec)},
		{48, uint32(st.Ctim.Sec)},
	}
	for _, c := range checks {
		got, err := img.ReadLong(addr + c.off)
		if err != nil {
			t.Fatalf("ReadLong(%#x): %v", c.off, err)
		}
		if got != c.want {
			t.Fatalf("field at offset %d = %#x, want %#x", c.off, got, c.want)
		}
	}
}

// TestWriteStatfsSerializesFields verifies the seven-field guest statfs
// layout.
func TestWriteStatfsSerializesFields(t *testing.T) {
	img := newFlatImage(t, 0x5000, 0x100)
	addr := uint32(0x5000)

	var st unix.Statfs_t
	st.Type = 0xEF53
	st.Bsize = 4096
	st.Blocks = 1000
	st.Bfree = 500
	st.Bavail = 400
	st.Files = 200
	st.Ffree = 100

	if err := writeStatfs(img, addr, &st); err != nil {
		t.Fatalf("writeStatfs: %v", err)
	}

	want := []uint32{uint32(st.Type), uint32(st.Bsize), uint32(st.Blocks), uint32(st.Bfree), uint32(st.Bavail), uint32(st.Files), uint32(st.Ffree)}
	for i, w := range want {
		got, err := img.ReadLong(addr + uint32(i*4))
		if err != nil {
			t.Fatalf("ReadLong(%d): %v", i, err)
		}
		if got != w {
			t.Fatalf("field %d = %#x, want %#x", i, got, w)
		}
	}
}

// TestTimespec64RoundTrip verifies the 64-bit-seconds timespec convention
// used by clock_gettime/nanosleep/utimensat: high word first, nanoseconds
// trailing in a single 32-bit word.
func TestTimespec64RoundTrip(t *testing.T) {
	img := newFlatImage(t, 0x6000, 0x100)
	addr := uint32(0x6000)

	ts := unix.Timespec{Sec: 0x1_0000_0001, Nsec: 500_000_000}
	if err := writeTimespec64(img, addr, ts); err != nil {
		t.Fatalf("writeTimespec64: %v", err)
	}
	got, err := readTimespec64(img, addr)
	if err != nil {
		t.Fatalf("readTimespec64: %v", err)
	}
	if got != ts {
		t.Fatalf("round trip = %+v, want %+v", got, ts)
	}

	hi, err := img.ReadLong(addr)
	if err != nil {
		t.Fatalf("ReadLong hi: %v", err)
	}
	if hi != uint32(uint64(ts.Sec)>>32) {
		t.Fatalf("high word = %#x, want %#x", hi, uint32(uint64(ts.Sec)>>32))
	}
}
