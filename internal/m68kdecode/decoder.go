// decoder.go - top-level structural disassembler.
//
// Implements spec.md §4.B's three-stage algorithm: an exact-match check for
// the seven fixed-encoding instructions, classical 68k bit-field extraction,
// then group-indexed dispatch. Grounded on cpu_m68k.go's
// FetchAndDecodeInstruction (a single opcode>>12 table dispatch) and its
// decodeGroupN methods, restructured into a pure decode (no CPU/memory
// mutation) that returns a durable Instruction record instead of executing
// one.

package m68kdecode

import "github.com/zayn68k/m68kemu/internal/guestmem"

const (
	opReset   = 0x4E70
	opNop     = 0x4E71
	opRTE     = 0x4E73
	opRTS     = 0x4E75
	opTrapV   = 0x4E76
	opRTR     = 0x4E77
	opIllegal = 0x4AFC
)

// Decode decodes one instruction starting at addr, advancing nothing itself
// - the caller owns the program counter and advances it by the returned
// Instruction.Len(). Decoding the same bytes always yields records of
// identical length, and that length always equals the number of bytes
// consumed from mem.
func Decode(mem *guestmem.Image, addr uint32) (*Instruction, error) {
	c := newCursor(mem, addr)
	opcode, err := c.fetchWord()
	if err != nil {
		return nil, err
	}

	in, err := decodeOpcode(c, opcode)
	if err != nil {
		if de, ok := err.(*Error); ok {
			de.Addr = addr
			de.Opcode = opcode
		}
		return nil, err
	}
	in.Addr = addr
	in.Opcode = opcode
	in.Bytes = c.bytes
	return in, nil
}

func decodeOpcode(c *cursor, opcode uint16) (*Instruction, error) {
	// Stage 1: exact-match check for fixed-encoding instructions.
	switch opcode {
	case opReset:
		return &Instruction{Op: OpReset}, nil
	case opNop:
		return &Instruction{Op: OpNop}, nil
	case opRTE:
		return &Instruction{Op: OpRTE}, nil
	case opRTS:
		return &Instruction{Op: OpRTS}, nil
	case opTrapV:
		return &Instruction{Op: OpTrapV}, nil
	case opRTR:
		return &Instruction{Op: OpRTR}, nil
	case opIllegal:
		return &Instruction{Op: OpIllegal}, nil
	}

	// Stage 2: classical bit-field extraction.
	group := opcode >> 12

	// Stage 3: group-indexed dispatch.
	switch group {
	case 0:
		return decodeGroup0(c, opcode)
	case 1:
		return decodeMove(c, opcode, Byte)
	case 2:
		return decodeMove(c, opcode, Long)
	case 3:
		return decodeMove(c, opcode, Word)
	case 4:
		return decodeGroup4(c, opcode)
	case 5:
		return decodeGroup5(c, opcode)
	case 9:
		return decodeGroup9(c, opcode)
	case 13:
		return decodeGroup13(c, opcode)
	case 14:
		return decodeGroup14(c, opcode)
	default:
		return nil, &Error{Opcode: opcode, Reason: "unrecognized opcode group"}
	}
}

func sizeField2(bits uint16) (Size, bool) {
	switch bits {
	case 0:
		return Byte, true
	case 1:
		return Word, true
	case 2:
		return Long, true
	default:
		return 0, false
	}
}
