// handlers_process.go - exit, process identity, fork/clone/execve, wait4.
//
// Grounded on spec.md §9's clone open question: clone is forwarded to the
// host, but a custom guest stack can't be honored without duplicating the
// memory image, so that case is rejected as Fatal rather than silently
// mishandled (see DESIGN.md's Open Question decisions).

package syscallabi

import (
	"golang.org/x/sys/unix"

	"github.com/zayn68k/m68kemu/internal/guestcpu"
	"github.com/zayn68k/m68kemu/internal/guestmem"
)

func handleExit(args [5]uint32) (uint32, error) {
	return 0, &Exit{Code: int(int32(args[0]))}
}

func handleGetpid() uint32 {
	return uint32(unix.Getpid())
}

func handleGettid() uint32 {
	return uint32(unix.Gettid())
}

func rawFork() (uintptr, error) {
	pid, _, errno := unix.RawSyscall(unix.SYS_FORK, 0, 0, 0)
	if errno != 0 {
		return 0, errno
	}
	return pid, nil
}

func handleFork() (uint32, error) {
	pid, err := rawFork()
	return libcToKernel(pid, err), nil
}

// handleClone forwards to the host clone(2) via fork-equivalent semantics
// only; a guest-supplied child stack can't be honored because the child
// would run against the same *guestmem.Image with no partitioning scheme,
// an unresolved design gap named in spec.md §9.
func handleClone(cpu *guestcpu.State, args [5]uint32) (uint32, error) {
	childStack := args[1]
	if childStack != 0 {
		return 0, &Fatal{Syscall: "clone", Addr: cpu.PC, Reason: "custom child stack requires memory-image duplication, unspecified by spec.md §9"}
	}
	flags := args[0]
	pid, err := rawFork()
	_ = flags
	return libcToKernel(pid, err), nil
}

func handleExecve(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	path, err := guestcpu.ReadCString(mem, args[0])
	if err != nil {
		return 0, err
	}
	argv, err := guestcpu.ReadStringArray(mem, args[1])
	if err != nil {
		return 0, err
	}
	envp, err := guestcpu.ReadStringArray(mem, args[2])
	if err != nil {
		return 0, err
	}
	execErr := unix.Exec(path, argv, envp)
	return libcToKernel(^uintptr(0), execErr), nil
}

func handleWait4(mem *guestmem.Image, args [5]uint32) (uint32, error) {
	var ws unix.WaitStatus
	pid, err := unix.Wait4(int(int32(args[0])), &ws, int(args[2]), nil)
	if err != nil {
		return libcToKernel(0, err), nil
	}
	if args[1] != 0 {
		if werr := mem.WriteLong(args[1], uint32(ws)); werr != nil {
			return 0, werr
		}
	}
	return uint32(pid), nil
}
