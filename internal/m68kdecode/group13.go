// group13.go - 0xDxxx: the ADD family (ADD, ADDA, ADDX).
//
// Grounded on cpu_m68k.go's decodeGroup13, mirroring decodeGroup9's opmode
// dispatch with the SUB/SUBX operations swapped for ADD/ADDX.

package m68kdecode

func decodeGroup13(c *cursor, opcode uint16) (*Instruction, error) {
	reg := uint8((opcode >> 9) & 0x7)
	opmode := (opcode >> 6) & 0x7
	mode, eaReg := eaField(opcode)

	switch opmode {
	case 0, 1, 2: // ADD <ea>,Dn
		size, _ := sizeField2(opmode)
		src, err := resolveEA(c, mode, eaReg, size)
		if err != nil {
			return nil, err
		}
		return &Instruction{Op: OpADD, Size: size, Src: src, Dst: EffectiveAddress{Mode: DataRegDirect, Reg: reg}}, nil

	case 3: // ADDA.W <ea>,An
		src, err := resolveEA(c, mode, eaReg, Word)
		if err != nil {
			return nil, err
		}
		return &Instruction{Op: OpADDA, Size: Word, Src: src, Dst: EffectiveAddress{Mode: AddrRegDirect, Reg: reg}}, nil

	case 7: // ADDA.L <ea>,An
		src, err := resolveEA(c, mode, eaReg, Long)
		if err != nil {
			return nil, err
		}
		return &Instruction{Op: OpADDA, Size: Long, Src: src, Dst: EffectiveAddress{Mode: AddrRegDirect, Reg: reg}}, nil

	case 4, 5, 6:
		size, _ := sizeField2(opmode - 4)
		if mode == 0 || mode == 1 { // ADDX: Dy,Dx or -(Ay),-(Ax)
			predec := mode == 1
			srcMode, dstMode := DataRegDirect, DataRegDirect
			if predec {
				srcMode, dstMode = AddrRegPreDec, AddrRegPreDec
			}
			return &Instruction{
				Op:   OpADDX,
				Size: size,
				Src:  EffectiveAddress{Mode: srcMode, Reg: eaReg},
				Dst:  EffectiveAddress{Mode: dstMode, Reg: reg},
			}, nil
		}
		// ADD Dn,<ea> (memory alterable)
		dst, err := resolveEA(c, mode, eaReg, size)
		if err != nil {
			return nil, err
		}
		return &Instruction{Op: OpADD, Size: size, Src: EffectiveAddress{Mode: DataRegDirect, Reg: reg}, Dst: dst}, nil
	}

	return nil, &Error{Opcode: opcode, Reason: "unrecognized group-13 encoding"}
}
