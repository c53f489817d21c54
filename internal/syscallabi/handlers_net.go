// handlers_net.go - socket/connect/sendmsg/recvmsg.
//
// Grounded on gvisor's host.go socket-syscall forwarding pattern: guest
// sockaddrs for the families this build targets (AF_UNIX, AF_INET) share the
// host's field layout, with sa_family in the guest's big-endian byte order;
// msghdr fields are read as big-endian 32-bit guest words.

package syscallabi

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/zayn68k/m68kemu/internal/guestcpu"
	"github.com/zayn68k/m68kemu/internal/guestmem"
)

// unsafeIovecBytes/unsafeIovecBytesMut reinterpret an already-resolved
// unix.Iovec (built by guestcpu.BuildHostIovecs against live guest memory)
// as a plain byte slice, for the handlers that need to drive a scalar
// unix.Write/unix.Read per segment rather than a vectored syscall.
func unsafeIovecBytes(iov unix.Iovec) []byte {
	return unsafe.Slice(iov.Base, int(iov.Len))
}

func unsafeIovecBytesMut(iov unix.Iovec) []byte {
	return unsafe.Slice(iov.Base, int(iov.Len))
}

func handleSocket(args [5]uint32) (uint32, error) {
	fd, err := unix.Socket(int(args[0]), int(args[1]), int(args[2]))
	return libcToKernel(uintptr(fd), err), nil
}

func handleConnect(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	addrBytes, err := guestcpu.GuestBuffer(mem, args[1], args[2])
	if err != nil {
		return 0, err
	}
	sa, perr := parseSockaddr(addrBytes)
	if perr != nil {
		return libcToKernel(0, unix.EINVAL), nil
	}
	return libcToKernel(0, unix.Connect(int(int32(args[0])), sa)), nil
}

// parseSockaddr decodes the family-tagged prefix shared by every sockaddr
// variant and builds the matching unix.Sockaddr; only the families this
// build's guest targets actually use are handled.
func parseSockaddr(b []byte) (unix.Sockaddr, error) {
	if len(b) < 2 {
		return nil, unix.EINVAL
	}
	family := uint16(b[0])<<8 | uint16(b[1])
	switch family {
	case unix.AF_UNIX:
		path := make([]byte, 0, len(b)-2)
		for _, c := range b[2:] {
			if c == 0 {
				break
			}
			path = append(path, c)
		}
		return &unix.SockaddrUnix{Name: string(path)}, nil
	case unix.AF_INET:
		if len(b) < 16 {
			return nil, unix.EINVAL
		}
		var sa unix.SockaddrInet4
		sa.Port = int(b[2])<<8 | int(b[3])
		copy(sa.Addr[:], b[4:8])
		return &sa, nil
	default:
		return nil, unix.EAFNOSUPPORT
	}
}

func handleSendmsg(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	// The msghdr's iovec array is the only piece this build reshapes; name
	// (sockaddr) and control data are forwarded empty, matching the subset
	// of send paths the guest's libc actually exercises for plain stream
	// sockets.
	iovAddr, err := mem.ReadLong(args[1] + 8)
	if err != nil {
		return 0, err
	}
	iovLen, err := mem.ReadLong(args[1] + 12)
	if err != nil {
		return 0, err
	}
	iovs, err := guestcpu.BuildHostIovecs(mem, iovAddr, int(iovLen), false)
	if err != nil {
		return 0, err
	}
	var buf []byte
	for _, iov := range iovs {
		if iov.Len == 0 {
			continue
		}
		buf = append(buf, unsafeIovecBytes(iov)...)
	}
	n, serr := unix.Write(int(int32(args[0])), buf)
	return libcToKernel(uintptr(n), serr), nil
}

func handleRecvmsg(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	iovAddr, err := mem.ReadLong(args[1] + 8)
	if err != nil {
		return 0, err
	}
	iovLen, err := mem.ReadLong(args[1] + 12)
	if err != nil {
		return 0, err
	}
	iovs, err := guestcpu.BuildHostIovecs(mem, iovAddr, int(iovLen), true)
	if err != nil {
		return 0, err
	}
	if len(iovs) == 0 {
		return 0, nil
	}
	total := 0
	for _, iov := range iovs {
		buf := unsafeIovecBytesMut(iov)
		n, rerr := unix.Read(int(int32(args[0])), buf)
		if rerr != nil {
			return libcToKernel(0, rerr), nil
		}
		total += n
		if n < len(buf) {
			break
		}
	}
	return uint32(total), nil
}
