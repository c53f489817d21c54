// fdset.go - guest<->host fd_set conversion.
//
// Grounded on spec.md §8's fd_set round-trip law: the guest fd_set is
// thirty-two big-endian 32-bit longs (1024 bits), bit order matching the
// host's fd_set bit-for-bit once byte order is accounted for.

package syscallabi

import (
	"golang.org/x/sys/unix"

	"github.com/zayn68k/m68kemu/internal/guestmem"
)

const fdSetWords = 32

func readFdSet(mem *guestmem.Image, addr uint32) (*unix.FdSet, error) {
	if addr == 0 {
		return nil, nil
	}
	var set unix.FdSet
	// The guest fd_set is 32 big-endian 32-bit words; the host's FdSet packs
	// the same 1024 bits into sixteen 64-bit words. Pair guest words two at
	// a time, low word first, to reassemble each host word.
	for i := 0; i < fdSetWords/2; i++ {
		hiIdx, loIdx := i*2, i*2+1
		hiWord, err := mem.ReadLong(addr + uint32(hiIdx*4))
		if err != nil {
			return nil, err
		}
		loWord, err := mem.ReadLong(addr + uint32(loIdx*4))
		if err != nil {
			return nil, err
		}
		set.Bits[i] = int64(uint64(loWord)<<32 | uint64(hiWord))
	}
	return &set, nil
}

func writeFdSet(mem *guestmem.Image, addr uint32, set *unix.FdSet) error {
	if addr == 0 || set == nil {
		return nil
	}
	for i := 0; i < fdSetWords/2; i++ {
		v := uint64(set.Bits[i])
		hiWord := uint32(v)
		loWord := uint32(v >> 32)
		if err := mem.WriteLong(addr+uint32(i*2)*4, hiWord); err != nil {
			return err
		}
		if err := mem.WriteLong(addr+uint32(i*2+1)*4, loWord); err != nil {
			return err
		}
	}
	return nil
}
