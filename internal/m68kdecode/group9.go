// group9.go - 0x9xxx: the SUB family (SUB, SUBA, SUBX).
//
// Grounded on cpu_m68k.go's decodeGroup9, which extracts the same 3-bit
// opmode field and special-cases the register/predecrement encodings of
// SUBX before falling back to plain SUB; restructured into a pure decode.

package m68kdecode

func decodeGroup9(c *cursor, opcode uint16) (*Instruction, error) {
	reg := uint8((opcode >> 9) & 0x7)
	opmode := (opcode >> 6) & 0x7
	mode, eaReg := eaField(opcode)

	switch opmode {
	case 0, 1, 2: // SUB <ea>,Dn
		size, _ := sizeField2(opmode)
		src, err := resolveEA(c, mode, eaReg, size)
		if err != nil {
			return nil, err
		}
		return &Instruction{Op: OpSUB, Size: size, Src: src, Dst: EffectiveAddress{Mode: DataRegDirect, Reg: reg}}, nil

	case 3: // SUBA.W <ea>,An
		src, err := resolveEA(c, mode, eaReg, Word)
		if err != nil {
			return nil, err
		}
		return &Instruction{Op: OpSUBA, Size: Word, Src: src, Dst: EffectiveAddress{Mode: AddrRegDirect, Reg: reg}}, nil

	case 7: // SUBA.L <ea>,An
		src, err := resolveEA(c, mode, eaReg, Long)
		if err != nil {
			return nil, err
		}
		return &Instruction{Op: OpSUBA, Size: Long, Src: src, Dst: EffectiveAddress{Mode: AddrRegDirect, Reg: reg}}, nil

	case 4, 5, 6:
		size, _ := sizeField2(opmode - 4)
		if mode == 0 || mode == 1 { // SUBX: Dy,Dx or -(Ay),-(Ax)
			predec := mode == 1
			srcMode, dstMode := DataRegDirect, DataRegDirect
			if predec {
				srcMode, dstMode = AddrRegPreDec, AddrRegPreDec
			}
			return &Instruction{
				Op:   OpSUBX,
				Size: size,
				Src:  EffectiveAddress{Mode: srcMode, Reg: eaReg},
				Dst:  EffectiveAddress{Mode: dstMode, Reg: reg},
			}, nil
		}
		// SUB Dn,<ea> (memory alterable)
		dst, err := resolveEA(c, mode, eaReg, size)
		if err != nil {
			return nil, err
		}
		return &Instruction{Op: OpSUB, Size: size, Src: EffectiveAddress{Mode: DataRegDirect, Reg: reg}, Dst: dst}, nil
	}

	return nil, &Error{Opcode: opcode, Reason: "unrecognized group-9 encoding"}
}
