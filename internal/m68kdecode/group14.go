// group14.go - 0xExxx: shift and rotate (ASx, LSx, ROXx, ROx).
//
// Grounded on cpu_m68k.go's decodeGroup14: the register form keys off the
// 2-bit type field at bits 3-4 plus the i/r bit choosing an immediate count
// or a count register, while the memory form (size field == 3) shifts a
// single memory operand by exactly one bit with the type field relocated to
// bits 9-11. Restructured into a pure decode producing an Instruction.

package m68kdecode

func decodeGroup14(c *cursor, opcode uint16) (*Instruction, error) {
	sizeBits := (opcode >> 6) & 0x3
	left := opcode&0x0100 != 0

	if sizeBits == 3 {
		// Memory shift: single bit, word size, EA operand.
		typ := (opcode >> 9) & 0x3
		op := shiftOp(typ, left)
		mode, reg := eaField(opcode)
		dst, err := resolveEA(c, mode, reg, Word)
		if err != nil {
			return nil, err
		}
		return &Instruction{Op: op, Size: Word, Reg0: 1, Dst: dst}, nil
	}

	size, ok := sizeField2(sizeBits)
	if !ok {
		return nil, &Error{Opcode: opcode, Reason: "invalid size field in shift/rotate"}
	}

	typ := (opcode >> 3) & 0x3
	op := shiftOp(typ, left)
	countOrReg := uint8((opcode >> 9) & 0x7)
	reg := uint8(opcode & 0x7)

	in := &Instruction{Op: op, Size: size, Dst: EffectiveAddress{Mode: DataRegDirect, Reg: reg}}
	if opcode&0x0020 != 0 {
		// Register-specified count.
		in.EAToReg = true
		in.Reg0 = countOrReg
	} else {
		count := countOrReg
		if count == 0 {
			count = 8
		}
		in.Reg0 = count
	}
	return in, nil
}

func shiftOp(typ uint16, left bool) Operation {
	switch typ {
	case 0:
		if left {
			return OpASL
		}
		return OpASR
	case 1:
		if left {
			return OpLSL
		}
		return OpLSR
	case 2:
		if left {
			return OpROXL
		}
		return OpROXR
	default:
		if left {
			return OpROL
		}
		return OpROR
	}
}
