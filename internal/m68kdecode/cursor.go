// cursor.go - sequential instruction-word fetcher shared by every decode stage.

package m68kdecode

import (
	"encoding/binary"

	"github.com/zayn68k/m68kemu/internal/guestmem"
)

// cursor tracks the bytes consumed while decoding a single instruction so
// the finished Instruction.Bytes accumulates the opcode word and every
// trailing word resolved during addressing-mode and size resolution.
type cursor struct {
	mem   *guestmem.Image
	pos   uint32
	bytes []byte
}

func newCursor(mem *guestmem.Image, addr uint32) *cursor {
	return &cursor{mem: mem, pos: addr}
}

func (c *cursor) fetchWord() (uint16, error) {
	b, err := c.mem.FetchInstruction(c.pos, 2)
	if err != nil {
		return 0, err
	}
	c.bytes = append(c.bytes, b...)
	c.pos += 2
	return binary.BigEndian.Uint16(b), nil
}

func (c *cursor) fetchLong() (uint32, error) {
	hi, err := c.fetchWord()
	if err != nil {
		return 0, err
	}
	lo, err := c.fetchWord()
	if err != nil {
		return 0, err
	}
	return uint32(hi)<<16 | uint32(lo), nil
}

// fetchByteImm reads an 8-bit immediate, which the 68k ISA always stores
// in the low byte of a 16-bit word.
func (c *cursor) fetchByteImm() (uint8, error) {
	w, err := c.fetchWord()
	if err != nil {
		return 0, err
	}
	return uint8(w), nil
}
