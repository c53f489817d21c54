package guestcpu

import "testing"

func TestSyscallArgsSkipsD0(t *testing.T) {
	var s State
	for i := range s.DataRegs {
		s.DataRegs[i] = uint32(i + 1)
	}
	args := s.SyscallArgs()
	want := [5]uint32{2, 3, 4, 5, 6}
	if args != want {
		t.Fatalf("SyscallArgs() = %v, want %v", args, want)
	}
}

func TestSPAccessors(t *testing.T) {
	var s State
	s.SetSP(0xDEAD0000)
	if s.SP() != 0xDEAD0000 {
		t.Fatalf("SP() = %#x, want 0xDEAD0000", s.SP())
	}
	if s.AddrRegs[7] != 0xDEAD0000 {
		t.Fatalf("AddrRegs[7] = %#x, want 0xDEAD0000", s.AddrRegs[7])
	}
}
