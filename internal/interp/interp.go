// Package interp is the thin fetch/decode/trap loop binding the decoder,
// the register file, and the syscall layer together.
//
// Grounded on cpu_m68k.go's StepOne (fetch, advance PC, hand off to
// decode/execute), but stripped to what spec.md names as in scope for this
// package: it consumes m68kdecode.Instruction records and a guestmem.Image,
// dispatching TRAP instructions to syscallabi and advancing PC by each
// instruction's length. Executing the rest of the instruction set's data
// effects is the interpreter main loop's job per spec.md §1's explicit
// out-of-scope boundary; this loop only does enough to reach and service
// guest syscalls.
package interp

import (
	"github.com/zayn68k/m68kemu/internal/guestcpu"
	"github.com/zayn68k/m68kemu/internal/guestmem"
	"github.com/zayn68k/m68kemu/internal/m68kdecode"
	"github.com/zayn68k/m68kemu/internal/syscallabi"
)

// Run repeatedly fetches and decodes the instruction at cpu.PC, advances PC
// past it, and services TRAP #0 (the guest's syscall gate) by calling
// syscallabi.Dispatch. It returns nil only via the guest calling
// exit/exit_group (surfaced as *syscallabi.Exit, unwrapped into Code here);
// any other error - a decode failure or a *syscallabi.Fatal - propagates to
// the caller unchanged.
func Run(cpu *guestcpu.State, mem *guestmem.Image) (exitCode int, err error) {
	for {
		instr, derr := m68kdecode.Decode(mem, cpu.PC)
		if derr != nil {
			return 0, derr
		}
		cpu.PC += instr.Len()

		if instr.Op != m68kdecode.OpTRAP {
			continue
		}
		if instr.Reg0 != 0 {
			// Only TRAP #0 is wired as the Linux syscall gate; any other
			// vector has no guest-visible handler installed in this build.
			return 0, &guestcpu.Error{Op: "trap", Addr: instr.Addr, Reason: "unhandled trap vector"}
		}

		if derr := syscallabi.Dispatch(cpu, mem); derr != nil {
			if exit, ok := derr.(*syscallabi.Exit); ok {
				return exit.Code, nil
			}
			return 0, derr
		}
	}
}
