// state.go - the register file and syscall-facing bookkeeping fields.
//
// Grounded on cpu_m68k.go's M68KCPU ([8]uint32 DataRegs/AddrRegs, a PC
// field); narrowed to the register file plus the bookkeeping the syscall
// translator needs per spec.md §3, dropping the teacher's SR/VBR/cycle
// fields that belong to the (out of scope) interpreter.

package guestcpu

// State is the CPU-visible register file plus the handful of bookkeeping
// fields the syscall layer consults: brk/heap tracking, TLS, and the exe
// path used to answer reads of /proc/self/exe.
type State struct {
	DataRegs [8]uint32 // D0-D7
	AddrRegs [8]uint32 // A0-A7; AddrRegs[7] is the stack pointer
	PC       uint32
	CCR      uint8 // condition code byte; untouched by the syscall layer

	Brk             uint32
	BrkBase         uint32
	HeapSegmentBase uint32
	StackBase       uint32
	TLSBase         uint32
	TLSMemsz        uint32
	TLSInitialized  bool
	ExePath         string
}

// SP returns the current stack pointer, A7.
func (s *State) SP() uint32 { return s.AddrRegs[7] }

// SetSP sets A7.
func (s *State) SetSP(v uint32) { s.AddrRegs[7] = v }

// SyscallArgs returns the guest syscall argument registers D1-D5 in order,
// per the 68k Linux ABI (D0 carries the syscall number on entry and the
// return value on exit, never an argument).
func (s *State) SyscallArgs() [5]uint32 {
	return [5]uint32{s.DataRegs[1], s.DataRegs[2], s.DataRegs[3], s.DataRegs[4], s.DataRegs[5]}
}

// SetReturn writes a syscall's D0 result.
func (s *State) SetReturn(v uint32) { s.DataRegs[0] = v }
