// ea.go - effective-address resolution.
//
// Grounded on cpu_m68k.go's M68K_AM_* mode table and M68K_EXT_* extension
// word bit positions (brief-format base/index bits); generalised here from
// "compute a value immediately" (the teacher fuses resolution and operand
// fetch) into "capture a durable descriptor" per spec.md's effective-address
// contract in §3/§4.B.

package m68kdecode

// resolveEA decodes the 3-bit mode and 3-bit register/submode fields into an
// EffectiveAddress, consuming any trailing words the mode requires. size is
// needed only for Immediate operands, where it picks 8/16/32 bits.
func resolveEA(c *cursor, mode, reg uint8, size Size) (EffectiveAddress, error) {
	switch mode {
	case 0:
		return EffectiveAddress{Mode: DataRegDirect, Reg: reg}, nil
	case 1:
		return EffectiveAddress{Mode: AddrRegDirect, Reg: reg}, nil
	case 2:
		return EffectiveAddress{Mode: AddrRegIndirect, Reg: reg}, nil
	case 3:
		return EffectiveAddress{Mode: AddrRegPostInc, Reg: reg}, nil
	case 4:
		return EffectiveAddress{Mode: AddrRegPreDec, Reg: reg}, nil
	case 5:
		disp, err := c.fetchWord()
		if err != nil {
			return EffectiveAddress{}, err
		}
		return EffectiveAddress{Mode: AddrRegDisp, Reg: reg, ExtraKind: ExtraShort, Short: int16(disp)}, nil
	case 6:
		ext, err := c.fetchWord()
		if err != nil {
			return EffectiveAddress{}, err
		}
		return EffectiveAddress{Mode: AddrRegIndex, Reg: reg, IndexedExt: ext}, nil
	case 7:
		switch reg {
		case 0:
			w, err := c.fetchWord()
			if err != nil {
				return EffectiveAddress{}, err
			}
			return EffectiveAddress{Mode: AbsShort, ExtraKind: ExtraLong, Long: uint32(int32(int16(w)))}, nil
		case 1:
			l, err := c.fetchLong()
			if err != nil {
				return EffectiveAddress{}, err
			}
			return EffectiveAddress{Mode: AbsLong, ExtraKind: ExtraLong, Long: l}, nil
		case 2:
			disp, err := c.fetchWord()
			if err != nil {
				return EffectiveAddress{}, err
			}
			return EffectiveAddress{Mode: PCDisp, ExtraKind: ExtraShort, Short: int16(disp)}, nil
		case 3:
			ext, err := c.fetchWord()
			if err != nil {
				return EffectiveAddress{}, err
			}
			return EffectiveAddress{Mode: PCIndex, IndexedExt: ext}, nil
		case 4:
			return resolveImmediate(c, size)
		default:
			return EffectiveAddress{}, &Error{Opcode: 0, Reason: "reserved mode 7 submode"}
		}
	default:
		return EffectiveAddress{}, &Error{Reason: "impossible EA mode"}
	}
}

func resolveImmediate(c *cursor, size Size) (EffectiveAddress, error) {
	switch size {
	case Byte:
		b, err := c.fetchByteImm()
		if err != nil {
			return EffectiveAddress{}, err
		}
		return EffectiveAddress{Mode: Immediate, ExtraKind: ExtraImmediate, Immediate: uint32(b), ImmSize: Byte}, nil
	case Word:
		w, err := c.fetchWord()
		if err != nil {
			return EffectiveAddress{}, err
		}
		return EffectiveAddress{Mode: Immediate, ExtraKind: ExtraImmediate, Immediate: uint32(w), ImmSize: Word}, nil
	case Long:
		l, err := c.fetchLong()
		if err != nil {
			return EffectiveAddress{}, err
		}
		return EffectiveAddress{Mode: Immediate, ExtraKind: ExtraImmediate, Immediate: l, ImmSize: Long}, nil
	default:
		return EffectiveAddress{}, &Error{Reason: "invalid immediate size"}
	}
}

// eaField splits the classical 6-bit effective-address field (3-bit mode,
// 3-bit register) out of bits 0-5 of an opcode.
func eaField(opcode uint16) (mode, reg uint8) {
	return uint8((opcode >> 3) & 0x7), uint8(opcode & 0x7)
}
