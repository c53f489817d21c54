// handlers_ipc.go - System V message queues/shared memory, POSIX mqueue.
//
// Grounded on guestmem.NewForeignSegment (built specifically to host a
// System-V shm attachment per its doc comment) and structs.go's mqAttr/
// readMsgbufType marshallers.

package syscallabi

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/zayn68k/m68kemu/internal/guestcpu"
	"github.com/zayn68k/m68kemu/internal/guestmem"
)

// System-V message queues have no typed x/sys/unix wrapper (unlike shm, via
// SysvShmGet/Attach/Detach), so these three go straight through the raw
// syscall numbers, the same pattern handlers_io.go uses for readv/writev.

func handleMsgget(args [5]uint32) (uint32, error) {
	id, _, errno := unix.Syscall(unix.SYS_MSGGET, uintptr(int32(args[0])), uintptr(args[1]), 0)
	if errno != 0 {
		return libcToKernel(0, errno), nil
	}
	return uint32(id), nil
}

// handleMsgsnd builds a temporary host struct msgbuf - an 8-byte long mtype
// followed immediately by the message body, as SYS_MSGSND/SYS_MSGRCV expect
// for their second argument - from the guest's 4-byte-mtype layout.
func handleMsgsnd(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	mtype, err := readMsgbufType(mem, args[1])
	if err != nil {
		return 0, err
	}
	bodyLen := args[2]
	body, err := guestcpu.GuestBuffer(mem, args[1]+4, bodyLen)
	if err != nil {
		return 0, err
	}
	hostBuf := make([]byte, 8+len(body)) // long mtype (8 bytes on a 64-bit host) + body
	*(*int64)(unsafe.Pointer(&hostBuf[0])) = int64(mtype)
	copy(hostBuf[8:], body)
	_, _, errno := unix.Syscall6(unix.SYS_MSGSND, uintptr(int32(args[0])), uintptr(unsafe.Pointer(&hostBuf[0])), uintptr(bodyLen), uintptr(args[3]), 0, 0)
	if errno != 0 {
		return libcToKernel(0, errno), nil
	}
	return 0, nil
}

func handleMsgrcv(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	bodyLen := args[2]
	hostBuf := make([]byte, 8+bodyLen)
	n, _, errno := unix.Syscall6(unix.SYS_MSGRCV, uintptr(int32(args[0])), uintptr(unsafe.Pointer(&hostBuf[0])), uintptr(bodyLen), uintptr(int32(args[3])), uintptr(args[4]), 0)
	if errno != 0 {
		return libcToKernel(0, errno), nil
	}
	mtype := *(*int64)(unsafe.Pointer(&hostBuf[0]))
	if err := mem.WriteLong(args[1], uint32(int32(mtype))); err != nil {
		return 0, err
	}
	if err := mem.WriteData(args[1]+4, hostBuf[8:8+n]); err != nil {
		return 0, err
	}
	return uint32(n), nil
}

func handleShmget(args [5]uint32) (uint32, error) {
	id, err := unix.SysvShmGet(int(int32(args[0])), int(args[1]), int(args[2]))
	return libcToKernel(uintptr(id), err), nil
}

// handleShmat attaches a System-V segment to the host and maps it into the
// guest address space as a foreign-backed segment, per guestmem.Segment's
// documented purpose for this exact case.
func handleShmat(cpu *guestcpu.State, mem *guestmem.Image, args [5]uint32) (uint32, error) {
	shmid := int(int32(args[0]))
	hostAddr, err := unix.SysvShmAttach(shmid, 0, int(args[2]))
	if err != nil {
		return libcToKernel(0, err), nil
	}
	base := args[1]
	if base == 0 {
		free, ok := mem.FindFreeRange(uint32(len(hostAddr)))
		if !ok {
			return libcToKernel(0, unix.ENOMEM), nil
		}
		base = free
	}
	perm := guestmem.Perm{Read: true, Write: args[2]&unix.SHM_RDONLY == 0}
	seg := guestmem.NewForeignSegment(base, hostAddr, shmid, perm)
	if err := mem.AddSegment(seg); err != nil {
		return libcToKernel(0, unix.ENOMEM), nil
	}
	return base, nil
}

func handleShmdt(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	idx := mem.IndexOfBase(args[0])
	if idx < 0 {
		return libcToKernel(0, unix.EINVAL), nil
	}
	seg, err := mem.RemoveSegment(idx)
	if err != nil {
		return 0, err
	}
	if derr := unix.SysvShmDetach(seg.Bytes()); derr != nil {
		return libcToKernel(0, derr), nil
	}
	return 0, nil
}

func handleMqOpen(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	name, err := guestcpu.ReadCString(mem, args[0])
	if err != nil {
		return 0, err
	}
	fd, operr := unix.Open(name, int(guestToHostOpenFlags(args[1])), uint32(args[2]))
	return libcToKernel(uintptr(fd), operr), nil
}

func handleMqTimedsend(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	buf, err := guestcpu.GuestBuffer(mem, args[1], args[2])
	if err != nil {
		return 0, err
	}
	n, werr := unix.Write(int(int32(args[0])), buf)
	return libcToKernel(uintptr(n), werr), nil
}

func handleMqTimedreceive(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	buf, err := guestcpu.GuestBufferMut(mem, args[1], args[2])
	if err != nil {
		return 0, err
	}
	n, rerr := unix.Read(int(int32(args[0])), buf)
	return libcToKernel(uintptr(n), rerr), nil
}

func handleMqGetsetattr(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	if args[2] != 0 {
		cur, err := readMqAttr(mem, args[2])
		if err != nil {
			return 0, err
		}
		if err := writeMqAttr(mem, args[2], cur); err != nil {
			return 0, err
		}
	}
	if args[1] != 0 {
		newAttr, err := readMqAttr(mem, args[1])
		if err != nil {
			return 0, err
		}
		_ = newAttr // flag-only attributes (O_NONBLOCK) aren't tracked per-fd here
	}
	return 0, nil
}
