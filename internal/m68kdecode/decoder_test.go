// Grounded on cpu_m68k_harte_test.go's style of feeding raw opcode bytes
// through the decoder and asserting on the resulting fields, adapted to
// this package's Instruction record instead of executed register state.

package m68kdecode

import (
	"testing"

	"github.com/zayn68k/m68kemu/internal/guestmem"
)

func newTestImage(t *testing.T, base uint32, code []byte) *guestmem.Image {
	t.Helper()
	img := guestmem.NewImage()
	seg := guestmem.NewOwnedSegment(base, uint32(len(code)), guestmem.Perm{Read: true, Execute: true}, 1)
	copy(seg.Bytes(), code)
	if err := img.AddSegment(seg); err != nil {
		t.Fatalf("AddSegment: %v", err)
	}
	return img
}

func TestDecodeMoveLongPostIncrement(t *testing.T) {
	// MOVE.L D0,(A1)+  =>  0x22C0
	img := newTestImage(t, 0x1000, []byte{0x22, 0xC0})

	in, err := Decode(img, 0x1000)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if in.Op != OpMove {
		t.Fatalf("Op = %v, want OpMove", in.Op)
	}
	if in.Size != Long {
		t.Fatalf("Size = %v, want Long", in.Size)
	}
	if in.Src.Mode != DataRegDirect || in.Src.Reg != 0 {
		t.Fatalf("Src = %+v, want D0 direct", in.Src)
	}
	if in.Dst.Mode != AddrRegPostInc || in.Dst.Reg != 1 {
		t.Fatalf("Dst = %+v, want (A1)+", in.Dst)
	}
	if in.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", in.Len())
	}
}

func TestDecodeLengthIsDeterministic(t *testing.T) {
	cases := [][]byte{
		{0x4E, 0x71},             // NOP
		{0x22, 0xC0},             // MOVE.L D0,(A1)+
		{0x06, 0x40, 0x00, 0x05}, // ADDI.W #5,D0
		{0x4E, 0x50, 0x00, 0x08}, // LINK A0,#8
		{0x48, 0x40},             // SWAP D0
		{0xE1, 0x00},             // ASL.B #8,D0
	}
	for _, code := range cases {
		img := newTestImage(t, 0x2000, code)
		in1, err := Decode(img, 0x2000)
		if err != nil {
			t.Fatalf("Decode(%x): %v", code, err)
		}
		in2, err := Decode(img, 0x2000)
		if err != nil {
			t.Fatalf("Decode(%x) second pass: %v", code, err)
		}
		if in1.Len() != in2.Len() {
			t.Fatalf("Len() not deterministic for %x: %d vs %d", code, in1.Len(), in2.Len())
		}
		if in1.Len() != uint32(len(code)) {
			t.Fatalf("Len() = %d, want %d consumed for %x", in1.Len(), len(code), code)
		}
	}
}

func TestDecodeIllegalExactMatch(t *testing.T) {
	img := newTestImage(t, 0x3000, []byte{0x4A, 0xFC})
	in, err := Decode(img, 0x3000)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if in.Op != OpIllegal {
		t.Fatalf("Op = %v, want OpIllegal", in.Op)
	}
}

func TestDecodeSwapBeforePea(t *testing.T) {
	// SWAP D0 (0x4840) must not be misread as PEA D0 (which is illegal anyway
	// since PEA requires a control addressing mode, not register direct).
	img := newTestImage(t, 0x4000, []byte{0x48, 0x40})
	in, err := Decode(img, 0x4000)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if in.Op != OpSWAP {
		t.Fatalf("Op = %v, want OpSWAP", in.Op)
	}
	if in.Dst.Mode != DataRegDirect || in.Dst.Reg != 0 {
		t.Fatalf("Dst = %+v, want D0 direct", in.Dst)
	}
}

func TestDecodeTasBeforeTst(t *testing.T) {
	// TAS D0 (0x4AC0) must not fall into the broader TST dispatch (0x4A00 mask).
	img := newTestImage(t, 0x5000, []byte{0x4A, 0xC0})
	in, err := Decode(img, 0x5000)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if in.Op != OpTAS {
		t.Fatalf("Op = %v, want OpTAS", in.Op)
	}
}

func TestDecodeUnrecognizedOpcodeReturnsError(t *testing.T) {
	// Opcode group 10 is unused on the 68020 and always an error.
	img := newTestImage(t, 0x6000, []byte{0xA0, 0x00})
	_, err := Decode(img, 0x6000)
	if err == nil {
		t.Fatal("expected error for unrecognized opcode group")
	}
	if _, ok := err.(*Error); !ok {
		t.Fatalf("error type = %T, want *Error", err)
	}
}

func TestDecodeAddqSubq(t *testing.T) {
	// ADDQ.W #3,D1  => 0101 011 001 000 001 = 0x5641
	img := newTestImage(t, 0x7000, []byte{0x56, 0x41})
	in, err := Decode(img, 0x7000)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if in.Op != OpADDQ {
		t.Fatalf("Op = %v, want OpADDQ", in.Op)
	}
	if in.Reg0 != 3 {
		t.Fatalf("Reg0 = %d, want 3", in.Reg0)
	}
	if in.Dst.Mode != DataRegDirect || in.Dst.Reg != 1 {
		t.Fatalf("Dst = %+v, want D1 direct", in.Dst)
	}
}

func TestDecodeShiftRegisterImmediateCount(t *testing.T) {
	// ASL.B #1,D0 => 1110 001 1 00 0 00 000 = 0xE300
	img := newTestImage(t, 0x8000, []byte{0xE3, 0x00})
	in, err := Decode(img, 0x8000)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if in.Op != OpASL {
		t.Fatalf("Op = %v, want OpASL", in.Op)
	}
	if in.Reg0 != 1 {
		t.Fatalf("Reg0 = %d, want count 1", in.Reg0)
	}
	if in.EAToReg {
		t.Fatal("EAToReg should be false for immediate count")
	}
}

func TestDecodeSubxRegisterForm(t *testing.T) {
	// SUBX.L D1,D0 => 1001 000 1 10 000 001 = 0x9181
	img := newTestImage(t, 0x9000, []byte{0x91, 0x81})
	in, err := Decode(img, 0x9000)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if in.Op != OpSUBX {
		t.Fatalf("Op = %v, want OpSUBX", in.Op)
	}
	if in.Src.Mode != DataRegDirect || in.Src.Reg != 1 {
		t.Fatalf("Src = %+v, want D1 direct", in.Src)
	}
	if in.Dst.Mode != DataRegDirect || in.Dst.Reg != 0 {
		t.Fatalf("Dst = %+v, want D0 direct", in.Dst)
	}
}
