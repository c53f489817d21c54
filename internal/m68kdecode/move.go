// move.go - 0x1xxx/0x2xxx/0x3xxx: MOVE and MOVEA, groups 1-3.
//
// Grounded on cpu_m68k.go's decodeGroup1/2/3, which all extract the same
// destReg/destMode/srcMode/srcReg fields before dispatching on addressing
// mode; restructured to resolve the source effective address first and the
// destination second, per spec.md's stated tie-break for two-operand
// instructions whose source and destination may both carry trailing words.

package m68kdecode

func decodeMove(c *cursor, opcode uint16, size Size) (*Instruction, error) {
	destReg := uint8((opcode >> 9) & 0x7)
	destMode := uint8((opcode >> 6) & 0x7)
	srcMode, srcReg := eaField(opcode)

	src, err := resolveEA(c, srcMode, srcReg, size)
	if err != nil {
		return nil, err
	}
	dst, err := resolveEA(c, destMode, destReg, size)
	if err != nil {
		return nil, err
	}

	op := OpMove
	if destMode == 1 {
		op = OpMoveA
	}
	return &Instruction{Op: op, Size: size, Src: src, Dst: dst}, nil
}
