// handlers_fs.go - path-bearing filesystem calls.
//
// Grounded on guestcpu.ReadCString for the path argument and gvisor's
// host.go for which unix.* wrapper to call per operation. Every path read
// here is bounded by guestcpu.MaxCStringLen, matching spec.md §7's
// unterminated-string fatal-error class.

package syscallabi

import (
	"golang.org/x/sys/unix"

	"github.com/zayn68k/m68kemu/internal/guestcpu"
	"github.com/zayn68k/m68kemu/internal/guestmem"
)

// resolvePath reads a guest path, rewriting /proc/self/exe to the host path
// of the loaded binary - the one special-case spec.md's path handling
// calls out by name.
func resolvePath(cpu *guestcpu.State, mem *guestmem.Image, addr uint32) (string, error) {
	path, err := guestcpu.ReadCString(mem, addr)
	if err != nil {
		return "", err
	}
	if path == "/proc/self/exe" && cpu != nil && cpu.ExePath != "" {
		return cpu.ExePath, nil
	}
	return path, nil
}

func handleAccess(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	path, err := guestcpu.ReadCString(mem, args[0])
	if err != nil {
		return 0, err
	}
	return libcToKernel(0, unix.Access(path, uint32(args[1]))), nil
}

func handleFaccessat(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	path, err := guestcpu.ReadCString(mem, args[1])
	if err != nil {
		return 0, err
	}
	return libcToKernel(0, unix.Faccessat(int(int32(args[0])), path, int(args[2]), int(args[3]))), nil
}

func handleChdir(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	path, err := guestcpu.ReadCString(mem, args[0])
	if err != nil {
		return 0, err
	}
	return libcToKernel(0, unix.Chdir(path)), nil
}

func handleGetcwd(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	buf := make([]byte, args[1])
	n, err := unix.Getcwd(buf)
	if err != nil {
		return libcToKernel(0, err), nil
	}
	if werr := mem.WriteData(args[0], buf[:n]); werr != nil {
		return 0, werr
	}
	return uint32(n), nil
}

func handleUnlink(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	path, err := guestcpu.ReadCString(mem, args[0])
	if err != nil {
		return 0, err
	}
	return libcToKernel(0, unix.Unlink(path)), nil
}

func handleUnlinkat(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	path, err := guestcpu.ReadCString(mem, args[1])
	if err != nil {
		return 0, err
	}
	return libcToKernel(0, unix.Unlinkat(int(int32(args[0])), path, int(args[2]))), nil
}

func handleMkdir(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	path, err := guestcpu.ReadCString(mem, args[0])
	if err != nil {
		return 0, err
	}
	return libcToKernel(0, unix.Mkdir(path, uint32(args[1]))), nil
}

func handleRmdir(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	path, err := guestcpu.ReadCString(mem, args[0])
	if err != nil {
		return 0, err
	}
	return libcToKernel(0, unix.Rmdir(path)), nil
}

func handleRename(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	oldpath, err := guestcpu.ReadCString(mem, args[0])
	if err != nil {
		return 0, err
	}
	newpath, err := guestcpu.ReadCString(mem, args[1])
	if err != nil {
		return 0, err
	}
	return libcToKernel(0, unix.Rename(oldpath, newpath)), nil
}

func handleRenameat(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	oldpath, err := guestcpu.ReadCString(mem, args[1])
	if err != nil {
		return 0, err
	}
	newpath, err := guestcpu.ReadCString(mem, args[3])
	if err != nil {
		return 0, err
	}
	return libcToKernel(0, unix.Renameat(int(int32(args[0])), oldpath, int(int32(args[2])), newpath)), nil
}

func handleSymlink(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	oldpath, err := guestcpu.ReadCString(mem, args[0])
	if err != nil {
		return 0, err
	}
	newpath, err := guestcpu.ReadCString(mem, args[1])
	if err != nil {
		return 0, err
	}
	return libcToKernel(0, unix.Symlink(oldpath, newpath)), nil
}

func handleReadlink(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	path, err := guestcpu.ReadCString(mem, args[0])
	if err != nil {
		return 0, err
	}
	buf := make([]byte, args[2])
	n, rerr := unix.Readlink(path, buf)
	if rerr != nil {
		return libcToKernel(0, rerr), nil
	}
	if werr := mem.WriteData(args[1], buf[:n]); werr != nil {
		return 0, werr
	}
	return uint32(n), nil
}

func handleReadlinkat(cpu *guestcpu.State, mem *guestmem.Image, args [5]uint32) (uint32, error) {
	path, err := resolvePath(cpu, mem, args[1])
	if err != nil {
		return 0, err
	}
	buf := make([]byte, args[3])
	if cpu != nil && cpu.ExePath != "" && path == cpu.ExePath {
		// The link target of /proc/self/exe is the recorded exe path itself,
		// truncated to the guest buffer.
		n := copy(buf, cpu.ExePath)
		if werr := mem.WriteData(args[2], buf[:n]); werr != nil {
			return 0, werr
		}
		return uint32(n), nil
	}
	n, rerr := unix.Readlinkat(int(int32(args[0])), path, buf)
	if rerr != nil {
		return libcToKernel(0, rerr), nil
	}
	if werr := mem.WriteData(args[2], buf[:n]); werr != nil {
		return 0, werr
	}
	return uint32(n), nil
}

func handleMknod(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	path, err := guestcpu.ReadCString(mem, args[0])
	if err != nil {
		return 0, err
	}
	return libcToKernel(0, unix.Mknod(path, uint32(args[1]), int(args[2]))), nil
}

func handleMknodat(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	path, err := guestcpu.ReadCString(mem, args[1])
	if err != nil {
		return 0, err
	}
	return libcToKernel(0, unix.Mknodat(int(int32(args[0])), path, uint32(args[2]), int(args[3]))), nil
}

func handleFchownat(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	path, err := guestcpu.ReadCString(mem, args[1])
	if err != nil {
		return 0, err
	}
	return libcToKernel(0, unix.Fchownat(int(int32(args[0])), path, int(args[2]), int(args[3]), int(args[4]))), nil
}

func handleStat(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	path, err := guestcpu.ReadCString(mem, args[0])
	if err != nil {
		return 0, err
	}
	var st unix.Stat_t
	if serr := unix.Stat(path, &st); serr != nil {
		return libcToKernel(0, serr), nil
	}
	if werr := writeStat(mem, args[1], &st); werr != nil {
		return 0, werr
	}
	return 0, nil
}

func handleLstat(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	path, err := guestcpu.ReadCString(mem, args[0])
	if err != nil {
		return 0, err
	}
	var st unix.Stat_t
	if serr := unix.Lstat(path, &st); serr != nil {
		return libcToKernel(0, serr), nil
	}
	if werr := writeStat(mem, args[1], &st); werr != nil {
		return 0, werr
	}
	return 0, nil
}

func handleFstat(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	var st unix.Stat_t
	if serr := unix.Fstat(int(int32(args[0])), &st); serr != nil {
		return libcToKernel(0, serr), nil
	}
	if werr := writeStat(mem, args[1], &st); werr != nil {
		return 0, werr
	}
	return 0, nil
}

func handleStatx(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	path, err := guestcpu.ReadCString(mem, args[1])
	if err != nil {
		return 0, err
	}
	var stx unix.Statx_t
	serr := unix.Statx(int(int32(args[0])), path, int(args[2]), int(args[3]), &stx)
	if serr != nil {
		return libcToKernel(0, serr), nil
	}
	if werr := writeStatx(mem, args[4], &stx); werr != nil {
		return 0, werr
	}
	return 0, nil
}

func handleStatfs(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	path, err := guestcpu.ReadCString(mem, args[0])
	if err != nil {
		return 0, err
	}
	var st unix.Statfs_t
	if serr := unix.Statfs(path, &st); serr != nil {
		return libcToKernel(0, serr), nil
	}
	if werr := writeStatfs(mem, args[1], &st); werr != nil {
		return 0, werr
	}
	return 0, nil
}

func handleFstatfs(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	var st unix.Statfs_t
	if serr := unix.Fstatfs(int(int32(args[0])), &st); serr != nil {
		return libcToKernel(0, serr), nil
	}
	if werr := writeStatfs(mem, args[1], &st); werr != nil {
		return 0, werr
	}
	return 0, nil
}
