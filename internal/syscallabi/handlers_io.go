// handlers_io.go - read/write family, open/close, seek, vectored I/O.
//
// Grounded on memory_bus.go's Read/Write byte-slice access, generalised
// into guest<->host buffer translation via guestcpu.GuestBuffer(Mut), and
// on gvisor's host.go pattern of calling straight through to
// golang.org/x/sys/unix wrappers rather than raw syscall numbers.

package syscallabi

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/zayn68k/m68kemu/internal/guestcpu"
	"github.com/zayn68k/m68kemu/internal/guestmem"
)

func handleRead(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	buf, err := guestcpu.GuestBufferMut(mem, args[1], args[2])
	if err != nil {
		return 0, err
	}
	n, rerr := unix.Read(int(int32(args[0])), buf)
	return libcToKernel(uintptr(n), rerr), nil
}

func handleWrite(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	buf, err := guestcpu.GuestBuffer(mem, args[1], args[2])
	if err != nil {
		return 0, err
	}
	n, werr := unix.Write(int(int32(args[0])), buf)
	return libcToKernel(uintptr(n), werr), nil
}

func handleOpen(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	path, err := guestcpu.ReadCString(mem, args[0])
	if err != nil {
		return 0, err
	}
	fd, operr := unix.Open(path, int(guestToHostOpenFlags(args[1])), uint32(args[2]))
	return libcToKernel(uintptr(fd), operr), nil
}

func handleOpenat(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	path, err := guestcpu.ReadCString(mem, args[1])
	if err != nil {
		return 0, err
	}
	fd, operr := unix.Openat(int(int32(args[0])), path, int(guestToHostOpenFlags(args[2])), uint32(args[3]))
	return libcToKernel(uintptr(fd), operr), nil
}

func handleClose(args [5]uint32) (uint32, error) {
	err := unix.Close(int(int32(args[0])))
	return libcToKernel(0, err), nil
}

func handleLseek(args [5]uint32) (uint32, error) {
	off, err := unix.Seek(int(int32(args[0])), int64(int32(args[1])), int(args[2]))
	return libcToKernel(uintptr(off), err), nil
}

// handleLlseek reshapes the 64-bit split argument of _llseek: a high/low
// offset pair in D2/D3, a result pointer in D4, and whence in D5.
func handleLlseek(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	offset := int64(uint64(args[1])<<32 | uint64(args[2]))
	resultAddr := args[3]
	whence := int(args[4])
	off, err := unix.Seek(int(int32(args[0])), offset, whence)
	if err != nil {
		return libcToKernel(0, err), nil
	}
	if werr := guestcpu.WriteUint64(mem, resultAddr, uint64(off)); werr != nil {
		return 0, werr
	}
	return 0, nil
}

func handlePread64(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	buf, err := guestcpu.GuestBufferMut(mem, args[1], args[2])
	if err != nil {
		return 0, err
	}
	n, rerr := unix.Pread(int(int32(args[0])), buf, int64(int32(args[3])))
	return libcToKernel(uintptr(n), rerr), nil
}

func handlePwrite64(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	buf, err := guestcpu.GuestBuffer(mem, args[1], args[2])
	if err != nil {
		return 0, err
	}
	n, werr := unix.Pwrite(int(int32(args[0])), buf, int64(int32(args[3])))
	return libcToKernel(uintptr(n), werr), nil
}

func handleReadv(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	iovs, err := guestcpu.BuildHostIovecs(mem, args[1], int(args[2]), true)
	if err != nil {
		return 0, err
	}
	n, rerr := readv(int(int32(args[0])), iovs)
	return libcToKernel(uintptr(n), rerr), nil
}

func handleWritev(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	iovs, err := guestcpu.BuildHostIovecs(mem, args[1], int(args[2]), false)
	if err != nil {
		return 0, err
	}
	n, werr := writev(int(int32(args[0])), iovs)
	return libcToKernel(uintptr(n), werr), nil
}

func handlePreadv(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	iovs, err := guestcpu.BuildHostIovecs(mem, args[1], int(args[2]), true)
	if err != nil {
		return 0, err
	}
	n, rerr := preadv(int(int32(args[0])), iovs, int64(int32(args[3])))
	return libcToKernel(uintptr(n), rerr), nil
}

func handlePwritev(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	iovs, err := guestcpu.BuildHostIovecs(mem, args[1], int(args[2]), false)
	if err != nil {
		return 0, err
	}
	n, werr := pwritev(int(int32(args[0])), iovs, int64(int32(args[3])))
	return libcToKernel(uintptr(n), werr), nil
}

// readv/writev/preadv/pwritev invoke the host syscall directly against a
// []unix.Iovec rather than going through unix.Readv's [][]byte wrapper,
// since guestcpu.BuildHostIovecs already produces the raw ABI shape the
// kernel expects.
func readv(fd int, iovs []unix.Iovec) (uintptr, error) {
	return rawIovecSyscall(unix.SYS_READV, fd, iovs, 0, false)
}

func writev(fd int, iovs []unix.Iovec) (uintptr, error) {
	return rawIovecSyscall(unix.SYS_WRITEV, fd, iovs, 0, false)
}

func preadv(fd int, iovs []unix.Iovec, off int64) (uintptr, error) {
	return rawIovecSyscall(unix.SYS_PREADV, fd, iovs, off, true)
}

func pwritev(fd int, iovs []unix.Iovec, off int64) (uintptr, error) {
	return rawIovecSyscall(unix.SYS_PWRITEV, fd, iovs, off, true)
}

func rawIovecSyscall(sysno uintptr, fd int, iovs []unix.Iovec, off int64, withOffset bool) (uintptr, error) {
	if len(iovs) == 0 {
		return 0, nil
	}
	base := uintptr(unsafe.Pointer(&iovs[0]))
	var ret uintptr
	var errno unix.Errno
	if withOffset {
		ret, _, errno = unix.Syscall6(sysno, uintptr(fd), base, uintptr(len(iovs)), uintptr(off), uintptr(off>>32), 0)
	} else {
		ret, _, errno = unix.Syscall(sysno, uintptr(fd), base, uintptr(len(iovs)))
	}
	if errno != 0 {
		return 0, errno
	}
	return ret, nil
}

func handleDup(args [5]uint32) (uint32, error) {
	fd, err := unix.Dup(int(int32(args[0])))
	return libcToKernel(uintptr(fd), err), nil
}

func handleDup2(args [5]uint32) (uint32, error) {
	err := unix.Dup2(int(int32(args[0])), int(int32(args[1])))
	return libcToKernel(uintptr(args[1]), err), nil
}

func handlePipe(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return libcToKernel(0, err), nil
	}
	if err := mem.WriteLong(args[0], uint32(fds[0])); err != nil {
		return 0, err
	}
	if err := mem.WriteLong(args[0]+4, uint32(fds[1])); err != nil {
		return 0, err
	}
	return 0, nil
}

func handleIoctl(args [5]uint32) (uint32, error) {
	// Only the argument-less/scalar-argument ioctls are forwarded; anything
	// requiring guest-side struct reshaping is out of this build's scope.
	r, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(args[0]), uintptr(args[1]), uintptr(args[2]))
	if errno != 0 {
		return libcToKernel(0, errno), nil
	}
	return uint32(r), nil
}

func handleFlock(args [5]uint32) (uint32, error) {
	err := unix.Flock(int(int32(args[0])), int(args[1]))
	return libcToKernel(0, err), nil
}

func handleSendfile(args [5]uint32) (uint32, error) {
	var off *int64
	if args[2] != 0 {
		o := int64(int32(args[2]))
		off = &o
	}
	n, err := unix.Sendfile(int(int32(args[0])), int(int32(args[1])), off, int(args[3]))
	return libcToKernel(uintptr(n), err), nil
}
