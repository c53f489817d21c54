// group5.go - 0x5xxx: ADDQ/SUBQ.
//
// Grounded on cpu_m68k.go's decodeGroup5, which reads the same 3-bit "data"
// field (0 meaning 8) and size field before dispatching; restructured to
// produce an Instruction rather than mutate a register in place.

package m68kdecode

func decodeGroup5(c *cursor, opcode uint16) (*Instruction, error) {
	size, ok := sizeField2((opcode >> 6) & 0x3)
	if !ok {
		return nil, &Error{Opcode: opcode, Reason: "invalid size field in ADDQ/SUBQ"}
	}

	data := uint8((opcode >> 9) & 0x7)
	if data == 0 {
		data = 8
	}

	mode, reg := eaField(opcode)
	dst, err := resolveEA(c, mode, reg, size)
	if err != nil {
		return nil, err
	}

	op := OpADDQ
	if opcode&0x0100 != 0 {
		op = OpSUBQ
	}
	return &Instruction{Op: op, Size: size, Reg0: data, Dst: dst}, nil
}
