// group4.go - 0x4xxx: the miscellaneous group.
//
// Covers NBCD, SWAP, PEA, EXT/EXTB, MOVE-from-SR, MOVE-to-CCR, MOVE-to-SR,
// JSR, JMP, TST, TAS, LINK, UNLK, MOVE USP, TRAP, CLR, NEG, NEGX, NOT.
// Grounded on cpu_m68k.go's decodeGroup4-equivalent dispatch shape (a chain
// of mask/compare checks ordered narrowest-mask-first); spec.md §4.B calls
// out this exact corner of the opcode space as needing specific-before-
// general tie-breaking, which the check order below implements.

package m68kdecode

func decodeGroup4(c *cursor, opcode uint16) (*Instruction, error) {
	switch {
	case opcode&0xFFF0 == 0x4E60: // MOVE USP
		reg := uint8(opcode & 0x7)
		toReg := opcode&0x8 != 0
		return &Instruction{Op: OpMoveUSP, Reg0: reg, EAToReg: toReg}, nil

	case opcode&0xFFF0 == 0x4E40: // TRAP
		return &Instruction{Op: OpTRAP, Reg0: uint8(opcode & 0xF)}, nil

	case opcode&0xFFF8 == 0x4E50: // LINK.W
		reg := uint8(opcode & 0x7)
		disp, err := c.fetchWord()
		if err != nil {
			return nil, err
		}
		return &Instruction{Op: OpLINK, Reg0: reg, Src: EffectiveAddress{ExtraKind: ExtraShort, Short: int16(disp)}}, nil

	case opcode&0xFFF8 == 0x4E58: // UNLK
		return &Instruction{Op: OpUNLK, Reg0: uint8(opcode & 0x7)}, nil

	case opcode&0xFFF8 == 0x4840: // SWAP
		return &Instruction{Op: OpSWAP, Size: Long, Dst: EffectiveAddress{Mode: DataRegDirect, Reg: uint8(opcode & 0x7)}}, nil

	case opcode&0xFFF8 == 0x4880, opcode&0xFFF8 == 0x48C0, opcode&0xFFF8 == 0x49C0: // EXT/EXTB
		opmode := uint8((opcode >> 6) & 0x7)
		size := Word
		if opmode != 2 {
			size = Long
		}
		return &Instruction{Op: OpEXT, Size: size, Reg1: opmode, Dst: EffectiveAddress{Mode: DataRegDirect, Reg: uint8(opcode & 0x7)}}, nil

	case opcode&0xFFC0 == 0x4AC0: // TAS
		mode, reg := eaField(opcode)
		dst, err := resolveEA(c, mode, reg, Byte)
		if err != nil {
			return nil, err
		}
		return &Instruction{Op: OpTAS, Size: Byte, Dst: dst}, nil

	case opcode&0xFFC0 == 0x40C0: // MOVE from SR
		mode, reg := eaField(opcode)
		dst, err := resolveEA(c, mode, reg, Word)
		if err != nil {
			return nil, err
		}
		return &Instruction{Op: OpMoveFromSR, Size: Word, Dst: dst}, nil

	case opcode&0xFFC0 == 0x44C0: // MOVE to CCR
		mode, reg := eaField(opcode)
		src, err := resolveEA(c, mode, reg, Word)
		if err != nil {
			return nil, err
		}
		return &Instruction{Op: OpMoveToCCR, Size: Word, Src: src}, nil

	case opcode&0xFFC0 == 0x46C0: // MOVE to SR
		mode, reg := eaField(opcode)
		src, err := resolveEA(c, mode, reg, Word)
		if err != nil {
			return nil, err
		}
		return &Instruction{Op: OpMoveToSR, Size: Word, Src: src}, nil

	case opcode&0xFFC0 == 0x4800: // NBCD
		mode, reg := eaField(opcode)
		dst, err := resolveEA(c, mode, reg, Byte)
		if err != nil {
			return nil, err
		}
		return &Instruction{Op: OpNBCD, Size: Byte, Dst: dst}, nil

	case opcode&0xFFC0 == 0x4840: // PEA
		mode, reg := eaField(opcode)
		dst, err := resolveEA(c, mode, reg, Long)
		if err != nil {
			return nil, err
		}
		return &Instruction{Op: OpPEA, Size: Long, Dst: dst}, nil

	case opcode&0xFFC0 == 0x4E80: // JSR
		mode, reg := eaField(opcode)
		dst, err := resolveEA(c, mode, reg, Long)
		if err != nil {
			return nil, err
		}
		return &Instruction{Op: OpJSR, Dst: dst}, nil

	case opcode&0xFFC0 == 0x4EC0: // JMP
		mode, reg := eaField(opcode)
		dst, err := resolveEA(c, mode, reg, Long)
		if err != nil {
			return nil, err
		}
		return &Instruction{Op: OpJMP, Dst: dst}, nil
	}

	// Broader, size-bearing single-operand forms.
	if size, ok := sizeField2((opcode >> 6) & 0x3); ok {
		mode, reg := eaField(opcode)
		var op Operation
		switch opcode & 0xFF00 {
		case 0x4000:
			op = OpNEGX
		case 0x4200:
			op = OpCLR
		case 0x4400:
			op = OpNEG
		case 0x4600:
			op = OpNOT
		case 0x4A00:
			op = OpTST
		default:
			return nil, &Error{Opcode: opcode, Reason: "unrecognized group-4 encoding"}
		}
		dst, err := resolveEA(c, mode, reg, size)
		if err != nil {
			return nil, err
		}
		return &Instruction{Op: op, Size: size, Dst: dst}, nil
	}

	return nil, &Error{Opcode: opcode, Reason: "unrecognized group-4 encoding"}
}
