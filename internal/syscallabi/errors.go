// errors.go - the two disjoint error classes of spec.md §7.
//
// Grounded on guestmem.Error/m68kdecode.Error/guestcpu.Error: a small typed
// struct per package rather than sentinel values. A *Fatal here is distinct
// from those - it specifically marks behaviour the translator refuses to
// model, per spec.md's "emulator-fatal errors" class, and is never turned
// into a guest errno.

package syscallabi

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Fatal reports guest behaviour the translator cannot model without
// ambiguity: an unsupported syscall number, a clone with a custom stack, a
// malformed pointer argument, and similar. The interpreter unwinds on a
// Fatal rather than ever writing it into D0.
type Fatal struct {
	Syscall string
	Addr    uint32
	Reason  string
}

func (e *Fatal) Error() string {
	return fmt.Sprintf("syscallabi: fatal in %s at guest pc %#08x: %s", e.Syscall, e.Addr, e.Reason)
}

// DefaultErrno is substituted when a host error can't be mapped to a
// unix.Errno value - should not occur in practice, since every host syscall
// invoked here returns either nil or a unix.Errno.
const DefaultErrno = unix.EIO

// libcToKernel converts a host libc-style return (ret == -1, err holds
// errno) into the kernel-style signed return the guest expects in D0:
// non-negative values pass through verbatim, failures become -errno.
func libcToKernel(ret uintptr, err error) uint32 {
	if err == nil {
		return uint32(ret)
	}
	errno := DefaultErrno
	if en, ok := err.(unix.Errno); ok {
		errno = en
	}
	return uint32(int32(-int32(errno)))
}
