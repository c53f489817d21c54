// errors.go - guestcpu's own fatal-error type.
//
// Grounded on guestmem.Error and m68kdecode.Error: a small typed struct
// rather than a sentinel, so callers can recover the address and operation
// that failed. Memory-image errors are never wrapped - they propagate
// verbatim, per spec.md §4.D.

package guestcpu

import "fmt"

// Error reports a failure that isn't a memory-image error: a C string that
// ran past MaxCStringLen without a terminator, or (from interp) a trap
// vector with no handler.
type Error struct {
	Op     string
	Addr   uint32
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("guestcpu: %s at %#08x: %s", e.Op, e.Addr, e.Reason)
}
