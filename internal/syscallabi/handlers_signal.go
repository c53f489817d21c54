// handlers_signal.go - rt_sigaction/rt_sigprocmask (accepted, not applied),
// plus signalfd/signalfd4's base-pointer-only struct reshaping.
//
// Grounded on DESIGN.md's Open Question decision: rt_sigaction/rt_sigprocmask
// report success without reaching the host rather than guessing at the m68k
// rt_sigaction struct layout, which needs verification this build does not
// attempt. signalfd/signalfd4 are different: their only guest pointer is the
// sigset_t mask, so it is translated to a host buffer and the rest of the
// arguments pass through as scalars.

package syscallabi

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/zayn68k/m68kemu/internal/guestmem"
)

// sigsetSize is the kernel's sizeof(sigset_t) (64 signal bits), the only
// mask size the host signalfd/signalfd4 accept. signalfd's mask is
// translated at this size; signalfd4's at the size its caller passes.
const sigsetSize = 8

// handleSignalfd translates the guest sigset_t mask pointer to a host
// buffer and forwards fd and the guest's sizemask as scalars.
func handleSignalfd(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	fd, maskAddr, sizemask := int32(args[0]), args[1], args[2]

	buf, err := mem.GuestToHostMut(maskAddr, sigsetSize)
	if err != nil {
		return 0, err
	}
	r, _, errno := unix.Syscall(unix.SYS_SIGNALFD, uintptr(fd), uintptr(unsafe.Pointer(&buf[0])), uintptr(sizemask))
	if errno != 0 {
		return libcToKernel(0, errno), nil
	}
	return uint32(r), nil
}

// handleSignalfd4 is signalfd plus a flags word; the mask is translated at
// the caller's sizemask.
func handleSignalfd4(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	fd, maskAddr, sizemask, flags := int32(args[0]), args[1], args[2], args[3]

	buf, err := mem.GuestToHostMut(maskAddr, sizemask)
	if err != nil {
		return 0, err
	}
	r, _, errno := unix.Syscall6(unix.SYS_SIGNALFD4, uintptr(fd), uintptr(unsafe.Pointer(&buf[0])), uintptr(sizemask), uintptr(flags), 0, 0)
	if errno != 0 {
		return libcToKernel(0, errno), nil
	}
	return uint32(r), nil
}

func handleRtSigaction(args [5]uint32) (uint32, error) {
	// The guest sigaction struct's field order/padding on m68k is
	// unverified; forwarding it byte-for-byte to the host's differently
	// shaped struct would silently corrupt handler dispatch, so this
	// reports success without installing anything rather than guess.
	return 0, nil
}

func handleRtSigprocmask(args [5]uint32) (uint32, error) {
	// Same caveat as rt_sigaction: the guest sigset_t's bit layout is left
	// unverified, so the mask is accepted but not applied against the host.
	return 0, nil
}
