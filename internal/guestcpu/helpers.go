// helpers.go - marshalling primitives shared by every syscall handler.
//
// Grounded on spec.md §4.D's enumerated helper list and on cpu_m68k.go's
// Read32/Write32 style of building wider values from the memory image one
// access at a time. Every helper here propagates a *guestmem.Error verbatim
// and adds no logging, per spec.md's stated propagation policy.

package guestcpu

import (
	"golang.org/x/sys/unix"

	"github.com/zayn68k/m68kemu/internal/guestmem"
)

// MaxCStringLen bounds guest C-string reads; a string that doesn't
// terminate within this many bytes is treated as a malformed-argument
// fatal error rather than read without limit.
const MaxCStringLen = 4096

// ReadCString reads a NUL-terminated string starting at addr, stopping at
// MaxCStringLen bytes if no terminator is found.
func ReadCString(mem *guestmem.Image, addr uint32) (string, error) {
	buf := make([]byte, 0, 64)
	for i := uint32(0); i < MaxCStringLen; i++ {
		b, err := mem.ReadByte(addr + i)
		if err != nil {
			return "", err
		}
		if b == 0 {
			return string(buf), nil
		}
		buf = append(buf, b)
	}
	return "", &Error{Op: "read_cstring", Addr: addr, Reason: "unterminated string past the 4096-byte limit"}
}

// ReadStringArray reads a NULL-terminated array of 32-bit guest pointers
// starting at addr, dereferencing each into an owned string. Used for
// execve's argv/envp.
func ReadStringArray(mem *guestmem.Image, addr uint32) ([]string, error) {
	var out []string
	for i := uint32(0); ; i++ {
		ptr, err := mem.ReadLong(addr + i*4)
		if err != nil {
			return nil, err
		}
		if ptr == 0 {
			return out, nil
		}
		s, err := ReadCString(mem, ptr)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
}

// ReadUint64 combines two consecutive big-endian 32-bit words at addr into
// a 64-bit value, high word first - the convention the syscall layer uses
// for 64-bit time_t and llseek offsets.
func ReadUint64(mem *guestmem.Image, addr uint32) (uint64, error) {
	hi, err := mem.ReadLong(addr)
	if err != nil {
		return 0, err
	}
	lo, err := mem.ReadLong(addr + 4)
	if err != nil {
		return 0, err
	}
	return uint64(hi)<<32 | uint64(lo), nil
}

// WriteUint64 is ReadUint64's inverse: it splits v into two big-endian
// 32-bit words at addr, high word first.
func WriteUint64(mem *guestmem.Image, addr uint32, v uint64) error {
	if err := mem.WriteLong(addr, uint32(v>>32)); err != nil {
		return err
	}
	return mem.WriteLong(addr+4, uint32(v))
}

// GuestBuffer translates a guest [addr, addr+length) range to a read-only
// host byte slice, for syscalls that only read guest memory (write, send).
func GuestBuffer(mem *guestmem.Image, addr, length uint32) ([]byte, error) {
	return mem.GuestToHost(addr, length)
}

// GuestBufferMut translates a guest [addr, addr+length) range to a
// host byte slice a syscall may write through, for syscalls that fill
// guest memory (read, recv, getdents).
func GuestBufferMut(mem *guestmem.Image, addr, length uint32) ([]byte, error) {
	return mem.GuestToHostMut(addr, length)
}

// guestIovecSize is the size of the 68k-ABI struct iovec: two big-endian
// 32-bit words, {iov_base, iov_len}.
const guestIovecSize = 8

// BuildHostIovecs reads count consecutive guest struct iovec entries
// starting at addr and resolves each iov_base/iov_len pair into a host
// unix.Iovec, for readv/writev/preadv/pwritev/vmsplice. mut selects whether
// each buffer must be writable (readv-family) or only readable
// (writev-family).
func BuildHostIovecs(mem *guestmem.Image, addr uint32, count int, mut bool) ([]unix.Iovec, error) {
	out := make([]unix.Iovec, 0, count)
	for i := 0; i < count; i++ {
		entry := addr + uint32(i)*guestIovecSize
		base, err := mem.ReadLong(entry)
		if err != nil {
			return nil, err
		}
		length, err := mem.ReadLong(entry + 4)
		if err != nil {
			return nil, err
		}
		var buf []byte
		if length > 0 {
			if mut {
				buf, err = mem.GuestToHostMut(base, length)
			} else {
				buf, err = mem.GuestToHost(base, length)
			}
			if err != nil {
				return nil, err
			}
		}
		var iov unix.Iovec
		if len(buf) > 0 {
			iov.Base = &buf[0]
		}
		iov.SetLen(int(length))
		out = append(out, iov)
	}
	return out, nil
}
