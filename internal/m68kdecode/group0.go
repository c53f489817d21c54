// group0.go - 0x0xxx: immediate operations, bit manipulation, MOVEP.
//
// Grounded on cpu_m68k.go's decodeGroup0: the same fixed bit masks
// (0xFF00 for immediate ops, 0xF1C0 for dynamic bit ops, 0xF138 for MOVEP)
// drive dispatch, reworked to build an Instruction instead of calling an
// Exec method directly.

package m68kdecode

func decodeGroup0(c *cursor, opcode uint16) (*Instruction, error) {
	// MOVEP: 0000 rrr1 mm001rrr. Checked before the dynamic bit ops, whose
	// mask also matches every MOVEP encoding.
	if opcode&0xF138 == 0x0108 {
		return decodeMovep(c, opcode)
	}

	// Dynamic bit manipulation: 0000 rrr1 00mmmrrr
	if opcode&0xF1C0 == 0x0100 || opcode&0xF1C0 == 0x0140 ||
		opcode&0xF1C0 == 0x0180 || opcode&0xF1C0 == 0x01C0 {
		return decodeBitOp(c, opcode, true)
	}

	// Static (immediate bit number) manipulation: 0000 1000 ssmmmrrr-ish
	if opcode&0xFF00 == 0x0800 {
		return decodeBitOp(c, opcode, false)
	}

	// Immediate arithmetic/logical: 0000 ooo0 ssmmmrrr
	if op, ok := immediateOp(opcode); ok {
		size, ok := sizeField2((opcode >> 6) & 0x3)
		if !ok {
			return nil, &Error{Opcode: opcode, Reason: "invalid size field in immediate op"}
		}
		src, err := resolveImmediate(c, size)
		if err != nil {
			return nil, err
		}
		mode, reg := eaField(opcode)
		dst, err := resolveEA(c, mode, reg, size)
		if err != nil {
			return nil, err
		}
		return &Instruction{Op: op, Size: size, Src: src, Dst: dst}, nil
	}

	return nil, &Error{Opcode: opcode, Reason: "unrecognized group-0 encoding"}
}

func immediateOp(opcode uint16) (Operation, bool) {
	switch opcode & 0xFF00 {
	case 0x0000:
		return OpORI, true
	case 0x0200:
		return OpANDI, true
	case 0x0400:
		return OpSUBI, true
	case 0x0600:
		return OpADDI, true
	case 0x0A00:
		return OpEORI, true
	case 0x0C00:
		return OpCMPI, true
	default:
		return 0, false
	}
}

func decodeBitOp(c *cursor, opcode uint16, dynamic bool) (*Instruction, error) {
	var op Operation
	switch (opcode >> 6) & 0x3 {
	case 0:
		op = OpBTST
	case 1:
		op = OpBCHG
	case 2:
		op = OpBCLR
	case 3:
		op = OpBSET
	}

	var src EffectiveAddress
	if dynamic {
		src = EffectiveAddress{Mode: DataRegDirect, Reg: uint8((opcode >> 9) & 0x7)}
	} else {
		imm, err := c.fetchByteImm()
		if err != nil {
			return nil, err
		}
		src = EffectiveAddress{Mode: Immediate, ExtraKind: ExtraImmediate, Immediate: uint32(imm), ImmSize: Byte}
	}

	mode, reg := eaField(opcode)
	size := Byte
	if mode == 0 {
		size = Long // operating on a data register operates on the full long word
	}
	dst, err := resolveEA(c, mode, reg, size)
	if err != nil {
		return nil, err
	}
	return &Instruction{Op: op, Size: size, Src: src, Dst: dst}, nil
}

func decodeMovep(c *cursor, opcode uint16) (*Instruction, error) {
	dataReg := uint8((opcode >> 9) & 0x7)
	addrReg := uint8(opcode & 0x7)
	toMemory := opcode&0x0080 != 0
	size := Word
	if opcode&0x0040 != 0 {
		size = Long
	}
	disp, err := c.fetchWord()
	if err != nil {
		return nil, err
	}
	mem := EffectiveAddress{Mode: AddrRegDisp, Reg: addrReg, ExtraKind: ExtraShort, Short: int16(disp)}
	reg := EffectiveAddress{Mode: DataRegDirect, Reg: dataReg}
	in := &Instruction{Op: OpMOVEP, Size: size}
	if toMemory {
		in.Src, in.Dst = reg, mem
	} else {
		in.Src, in.Dst = mem, reg
	}
	return in, nil
}
