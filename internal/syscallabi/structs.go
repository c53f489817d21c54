// structs.go - guest-visible struct layouts, reproduced bit-exact per
// spec.md §6.
//
// Grounded on memory_bus.go's WriteU32/ReadU32 style of field-at-a-time
// access, generalised into one writer per guest struct. Every host struct
// consulted here comes from golang.org/x/sys/unix (Stat_t, Statfs_t,
// Statx_t, Sysinfo_t, Utsname), matching the dependency gvisor's host
// package pulls it in for (see DESIGN.md).

package syscallabi

import (
	"golang.org/x/sys/unix"

	"github.com/zayn68k/m68kemu/internal/guestcpu"
	"github.com/zayn68k/m68kemu/internal/guestmem"
)

// writeStat serializes the 52-byte guest stat struct: thirteen big-endian
// 32-bit fields truncating the host's 64-bit dev/ino/size/time fields.
func writeStat(mem *guestmem.Image, addr uint32, st *unix.Stat_t) error {
	fields := []uint32{
		uint32(st.Dev),
		uint32(st.Ino),
		st.Mode,
		uint32(st.Nlink),
		st.Uid,
		st.Gid,
		uint32(st.Rdev),
		uint32(st.Size),
		uint32(st.Blksize),
		uint32(st.Blocks),
		uint32(st.Atim.Sec),
		uint32(st.Mtim.Sec),
	}
	// The twelve fields above end with mtime; ctime is the thirteenth word,
	// at offset 48, completing the 52 bytes.
	for i, v := range fields {
		if err := mem.WriteLong(addr+uint32(i*4), v); err != nil {
			return err
		}
	}
	return mem.WriteLong(addr+48, uint32(st.Ctim.Sec))
}

// writeStatfs serializes the first 28 documented bytes of the guest statfs
// struct: seven big-endian 32-bit fields.
func writeStatfs(mem *guestmem.Image, addr uint32, st *unix.Statfs_t) error {
	fields := []uint32{
		uint32(st.Type),
		uint32(st.Bsize),
		uint32(st.Blocks),
		uint32(st.Bfree),
		uint32(st.Bavail),
		uint32(st.Files),
		uint32(st.Ffree),
	}
	for i, v := range fields {
		if err := mem.WriteLong(addr+uint32(i*4), v); err != nil {
			return err
		}
	}
	return nil
}

func writeStatxTimestamp(mem *guestmem.Image, addr uint32, ts unix.StatxTimestamp) error {
	if err := guestcpu.WriteUint64(mem, addr, uint64(ts.Sec)); err != nil {
		return err
	}
	return mem.WriteLong(addr+8, ts.Nsec)
}

// writeStatx serializes the guest statx struct, whose layout matches the
// host's field-for-field (per spec.md §6), just written big-endian instead
// of little-endian.
func writeStatx(mem *guestmem.Image, addr uint32, stx *unix.Statx_t) error {
	if err := mem.WriteLong(addr+0, stx.Mask); err != nil {
		return err
	}
	if err := mem.WriteLong(addr+4, stx.Blksize); err != nil {
		return err
	}
	if err := guestcpu.WriteUint64(mem, addr+8, stx.Attributes); err != nil {
		return err
	}
	if err := mem.WriteLong(addr+16, stx.Nlink); err != nil {
		return err
	}
	if err := mem.WriteLong(addr+20, stx.Uid); err != nil {
		return err
	}
	if err := mem.WriteLong(addr+24, stx.Gid); err != nil {
		return err
	}
	if err := mem.WriteWord(addr+28, stx.Mode); err != nil {
		return err
	}
	if err := guestcpu.WriteUint64(mem, addr+32, stx.Ino); err != nil {
		return err
	}
	if err := guestcpu.WriteUint64(mem, addr+40, stx.Size); err != nil {
		return err
	}
	if err := guestcpu.WriteUint64(mem, addr+48, stx.Blocks); err != nil {
		return err
	}
	if err := guestcpu.WriteUint64(mem, addr+56, stx.Attributes_mask); err != nil {
		return err
	}
	if err := writeStatxTimestamp(mem, addr+64, stx.Atime); err != nil {
		return err
	}
	if err := writeStatxTimestamp(mem, addr+80, stx.Btime); err != nil {
		return err
	}
	if err := writeStatxTimestamp(mem, addr+96, stx.Ctime); err != nil {
		return err
	}
	if err := writeStatxTimestamp(mem, addr+112, stx.Mtime); err != nil {
		return err
	}
	if err := mem.WriteLong(addr+128, stx.Rdev_major); err != nil {
		return err
	}
	if err := mem.WriteLong(addr+132, stx.Rdev_minor); err != nil {
		return err
	}
	if err := mem.WriteLong(addr+136, stx.Dev_major); err != nil {
		return err
	}
	return mem.WriteLong(addr+140, stx.Dev_minor)
}

// writeUname fills the guest utsname struct: six 65-byte fields, each NUL
// padded, with machine forced to the guest's own architecture name
// regardless of the host's.
func writeUname(mem *guestmem.Image, addr uint32) error {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return err
	}
	fields := [][65]byte{u.Sysname, u.Nodename, u.Release, u.Version, u.Machine, u.Domainname}
	copy(fields[4][:], "m68k\x00")
	for i, f := range fields {
		if err := mem.WriteData(addr+uint32(i*65), f[:]); err != nil {
			return err
		}
	}
	return nil
}

// writeSysinfo truncates the host's wider Sysinfo_t into the legacy 64-byte
// guest struct sysinfo (all 32-bit fields), the same truncate-on-crossing
// pattern used for statfs.
func writeSysinfo(mem *guestmem.Image, addr uint32) error {
	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err != nil {
		return err
	}
	fields := []uint32{
		uint32(si.Uptime),
		uint32(si.Loads[0]), uint32(si.Loads[1]), uint32(si.Loads[2]),
		uint32(si.Totalram), uint32(si.Freeram), uint32(si.Sharedram), uint32(si.Bufferram),
		uint32(si.Totalswap), uint32(si.Freeswap),
		uint32(si.Procs),
		uint32(si.Totalhigh), uint32(si.Freehigh),
		si.Unit,
	}
	for i, v := range fields {
		if err := mem.WriteLong(addr+uint32(i*4), v); err != nil {
			return err
		}
	}
	return nil
}

// readTimespec64 reads the guest {i64 seconds, i32 nanos} timespec used by
// clock_gettime/nanosleep/utimensat; 4 bytes of trailing padding complete
// the guest's 16-byte record.
func readTimespec64(mem *guestmem.Image, addr uint32) (unix.Timespec, error) {
	sec, err := guestcpu.ReadUint64(mem, addr)
	if err != nil {
		return unix.Timespec{}, err
	}
	nsec, err := mem.ReadLong(addr + 8)
	if err != nil {
		return unix.Timespec{}, err
	}
	return unix.Timespec{Sec: int64(sec), Nsec: int64(int32(nsec))}, nil
}

// writeTimespec64 is readTimespec64's inverse.
func writeTimespec64(mem *guestmem.Image, addr uint32, ts unix.Timespec) error {
	if err := guestcpu.WriteUint64(mem, addr, uint64(ts.Sec)); err != nil {
		return err
	}
	return mem.WriteLong(addr+8, uint32(ts.Nsec))
}

// readTimeval64 reads the guest {i64 seconds, i32 micros} timeval.
func readTimeval64(mem *guestmem.Image, addr uint32) (unix.Timeval, error) {
	sec, err := guestcpu.ReadUint64(mem, addr)
	if err != nil {
		return unix.Timeval{}, err
	}
	usec, err := mem.ReadLong(addr + 8)
	if err != nil {
		return unix.Timeval{}, err
	}
	return unix.Timeval{Sec: int64(sec), Usec: int64(int32(usec))}, nil
}

// writeTimeval64 is readTimeval64's inverse.
func writeTimeval64(mem *guestmem.Image, addr uint32, tv unix.Timeval) error {
	if err := guestcpu.WriteUint64(mem, addr, uint64(tv.Sec)); err != nil {
		return err
	}
	return mem.WriteLong(addr+8, uint32(tv.Usec))
}

// mqAttr is the guest struct mq_attr: four 32-bit big-endian fields.
type mqAttr struct {
	Flags   uint32
	Maxmsg  uint32
	Msgsize uint32
	Curmsgs uint32
}

func readMqAttr(mem *guestmem.Image, addr uint32) (mqAttr, error) {
	var a mqAttr
	vals := make([]uint32, 4)
	for i := range vals {
		v, err := mem.ReadLong(addr + uint32(i*4))
		if err != nil {
			return mqAttr{}, err
		}
		vals[i] = v
	}
	a.Flags, a.Maxmsg, a.Msgsize, a.Curmsgs = vals[0], vals[1], vals[2], vals[3]
	return a, nil
}

func writeMqAttr(mem *guestmem.Image, addr uint32, a mqAttr) error {
	vals := []uint32{a.Flags, a.Maxmsg, a.Msgsize, a.Curmsgs}
	for i, v := range vals {
		if err := mem.WriteLong(addr+uint32(i*4), v); err != nil {
			return err
		}
	}
	return nil
}

// mmapArgStruct is the 24-byte guest mmap_arg_struct used by old_mmap: six
// 32-bit big-endian words.
type mmapArgStruct struct {
	Addr, Len, Prot, Flags, Fd, Offset uint32
}

func readMmapArgStruct(mem *guestmem.Image, addr uint32) (mmapArgStruct, error) {
	vals := make([]uint32, 6)
	for i := range vals {
		v, err := mem.ReadLong(addr + uint32(i*4))
		if err != nil {
			return mmapArgStruct{}, err
		}
		vals[i] = v
	}
	return mmapArgStruct{vals[0], vals[1], vals[2], vals[3], vals[4], vals[5]}, nil
}

// openHow is the guest open_how struct: three 8-byte big-endian fields,
// minimum size 24 bytes.
type openHow struct {
	Flags, Mode, Resolve uint64
}

func readOpenHow(mem *guestmem.Image, addr uint32) (openHow, error) {
	flags, err := guestcpu.ReadUint64(mem, addr)
	if err != nil {
		return openHow{}, err
	}
	mode, err := guestcpu.ReadUint64(mem, addr+8)
	if err != nil {
		return openHow{}, err
	}
	resolve, err := guestcpu.ReadUint64(mem, addr+16)
	if err != nil {
		return openHow{}, err
	}
	return openHow{flags, mode, resolve}, nil
}

// readMsgbufType reads the 4-byte guest mtype header of a System-V message
// buffer (the host's struct msgbuf uses an 8-byte long for the same field).
func readMsgbufType(mem *guestmem.Image, addr uint32) (int32, error) {
	v, err := mem.ReadLong(addr)
	return int32(v), err
}
