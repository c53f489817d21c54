package syscallabi

import (
	"testing"

	"golang.org/x/sys/unix"
)

// TestOpenFlagTranslationRoundTrip exercises every combination of the
// divergent bits except O_LARGEFILE, which has no host equivalent and so
// cannot round-trip.
func TestOpenFlagTranslationRoundTrip(t *testing.T) {
	combos := []uint32{
		0,
		guestODirectory,
		guestONofollow,
		guestODirect,
		guestODirectory | guestONofollow,
		guestODirectory | guestONofollow | guestODirect,
	}
	for _, guest := range combos {
		host := guestToHostOpenFlags(guest)
		back := hostToGuestOpenFlags(host)
		if back != guest {
			t.Fatalf("round trip mismatch: guest=%#o -> host=%#o -> %#o", guest, host, back)
		}
	}
}

// TestOpenFlagDirectoryRdwr matches the concrete scenario: guest
// O_DIRECTORY|O_RDWR must translate to a host value containing
// unix.O_DIRECTORY and the same O_RDWR bits.
func TestOpenFlagDirectoryRdwr(t *testing.T) {
	const guestORdwr = 0o2
	guest := uint32(guestODirectory | guestORdwr)
	host := guestToHostOpenFlags(guest)
	if host&unix.O_DIRECTORY == 0 {
		t.Fatalf("expected host flags to contain O_DIRECTORY, got %#o", host)
	}
	if host&0o3 != guestORdwr {
		t.Fatalf("expected host flags to preserve O_RDWR, got %#o", host)
	}
}

// TestOpenFlagLargefileDropped documents that O_LARGEFILE has no host
// equivalent and is silently dropped rather than corrupting adjacent bits.
func TestOpenFlagLargefileDropped(t *testing.T) {
	host := guestToHostOpenFlags(guestOLargefile)
	if host != 0 {
		t.Fatalf("expected O_LARGEFILE to translate to no host bits, got %#o", host)
	}
}
