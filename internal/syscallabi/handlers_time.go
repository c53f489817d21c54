// handlers_time.go - clocks, sleeping, uname/sysinfo, randomness, limits.
//
// Grounded on structs.go's readTimespec64/writeTimespec64/writeUname/
// writeSysinfo marshallers and gvisor's host.go pattern of calling straight
// through to unix.ClockGettime/unix.Nanosleep.

package syscallabi

import (
	"golang.org/x/sys/unix"

	"github.com/zayn68k/m68kemu/internal/guestcpu"
	"github.com/zayn68k/m68kemu/internal/guestmem"
)

func handleNanosleep(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	req, err := readTimespec64(mem, args[0])
	if err != nil {
		return 0, err
	}
	var rem unix.Timespec
	serr := unix.Nanosleep(&req, &rem)
	if serr != nil {
		if args[1] != 0 {
			if werr := writeTimespec64(mem, args[1], rem); werr != nil {
				return 0, werr
			}
		}
		return libcToKernel(0, serr), nil
	}
	return 0, nil
}

func handleGettimeofday(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	var tv unix.Timeval
	if err := unix.Gettimeofday(&tv); err != nil {
		return libcToKernel(0, err), nil
	}
	if args[0] != 0 {
		if err := writeTimeval64(mem, args[0], tv); err != nil {
			return 0, err
		}
	}
	// Timezone (args[1]) is permanently UTC/zero per spec.md's stated policy
	// of never modeling a guest-visible timezone.
	if args[1] != 0 {
		if err := mem.WriteLong(args[1], 0); err != nil {
			return 0, err
		}
		if err := mem.WriteLong(args[1]+4, 0); err != nil {
			return 0, err
		}
	}
	return 0, nil
}

func handleClockGettime(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(int32(args[0]), &ts); err != nil {
		return libcToKernel(0, err), nil
	}
	if err := writeTimespec64(mem, args[1], ts); err != nil {
		return 0, err
	}
	return 0, nil
}

func handleUtimensat(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	var path string
	if args[1] != 0 {
		p, err := pathArg(mem, args[1])
		if err != nil {
			return 0, err
		}
		path = p
	}
	var times [2]unix.Timespec
	if args[2] != 0 {
		for i := 0; i < 2; i++ {
			ts, err := readTimespec64(mem, args[2]+uint32(i*16))
			if err != nil {
				return 0, err
			}
			times[i] = ts
		}
	} else {
		times[0] = unix.Timespec{Nsec: unix.UTIME_NOW}
		times[1] = unix.Timespec{Nsec: unix.UTIME_NOW}
	}
	var err error
	if path == "" {
		err = unix.UtimesNanoAt(int(int32(args[0])), "", times[:], int(args[3]))
	} else {
		err = unix.UtimesNanoAt(int(int32(args[0])), path, times[:], int(args[3]))
	}
	return libcToKernel(0, err), nil
}

func pathArg(mem *guestmem.Image, addr uint32) (string, error) {
	if addr == 0 {
		return "", nil
	}
	return guestcpu.ReadCString(mem, addr)
}

func handleUname(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	if err := writeUname(mem, args[0]); err != nil {
		return 0, err
	}
	return 0, nil
}

func handleSysinfo(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	if err := writeSysinfo(mem, args[0]); err != nil {
		return 0, err
	}
	return 0, nil
}

func handleGetrandom(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	buf, err := mem.GuestToHostMut(args[0], args[1])
	if err != nil {
		return 0, err
	}
	n, rerr := unix.Getrandom(buf, int(args[2]))
	return libcToKernel(uintptr(n), rerr), nil
}

func handlePrlimit64(args [5]uint32) (uint32, error) {
	// Resource limits are never translated to a guest-visible struct in
	// this build; report ENOSYS so callers fall back to getrlimit-style
	// failure handling rather than receive a fabricated limit.
	return libcToKernel(^uintptr(0), unix.ENOSYS), nil
}
