// flags.go - guest<->host open(2) flag translation.
//
// Grounded on spec.md §7/§8's open-flag translation law (guest
// O_DIRECTORY|O_RDWR => host O_DIRECTORY|O_RDWR with different bit
// patterns) and the m68k/host divergence named in spec.md: O_DIRECTORY,
// O_NOFOLLOW, O_DIRECT, O_LARGEFILE each sit at different bit positions
// than the host's x86_64 values. O_RDONLY/O_WRONLY/O_RDWR/O_CREAT/O_EXCL/
// O_TRUNC/O_APPEND/O_NONBLOCK/O_SYNC share the same bit positions on both
// and need no table entry.

package syscallabi

import "golang.org/x/sys/unix"

const (
	guestODirectory = 0o040000
	guestONofollow  = 0o100000
	guestODirect    = 0o200000
	// guestOLargefile has no host equivalent: the host's 64-bit off_t is
	// always large-file capable, so the bit is dropped rather than mapped.
	guestOLargefile = 0o400000
)

// flagBit pairs a guest bit with its host equivalent for the translation
// table; bits not listed here pass through unchanged in both directions.
type flagBit struct {
	guest, host uint32
}

var openFlagTable = []flagBit{
	{guestODirectory, unix.O_DIRECTORY},
	{guestONofollow, unix.O_NOFOLLOW},
	{guestODirect, unix.O_DIRECT},
}

// guestToHostOpenFlags translates guest open(2) flags to host flags,
// remapping the divergent bits and passing the shared low bits through.
func guestToHostOpenFlags(guest uint32) uint32 {
	const sharedMask = 0o037777 | 0o2000000 | 0o4000000 // low bits, O_CLOEXEC, __O_SYNC
	host := guest & sharedMask
	for _, fb := range openFlagTable {
		if guest&fb.guest != 0 {
			host |= fb.host
		}
	}
	return host
}

// hostToGuestOpenFlags is guestToHostOpenFlags's inverse, used by fcntl's
// F_GETFL to report flags back in guest terms.
func hostToGuestOpenFlags(host uint32) uint32 {
	const sharedMask = 0o037777 | 0o2000000 | 0o4000000 // low bits, O_CLOEXEC, __O_SYNC
	guest := host & sharedMask
	for _, fb := range openFlagTable {
		if host&fb.host != 0 {
			guest |= fb.guest
		}
	}
	return guest
}
