package binary

import (
	"encoding/binary"

	"github.com/wippyai/dotnet-metadata/errors"
)

// Region is a bounds-checked little-endian view over an immutable byte
// buffer. Every read validates offset+width against the region length, so a
// malformed offset taken from a table column can never read adjacent memory.
// Regions are safe for concurrent readers.
type Region struct {
	data  []byte
	phase errors.Phase
}

// NewRegion wraps data in a Region. Reads that fail report the given phase.
func NewRegion(data []byte, phase errors.Phase) Region {
	return Region{data: data, phase: phase}
}

// Len returns the region length in bytes.
func (r Region) Len() int {
	return len(r.data)
}

func (r Region) check(off, width int) error {
	if off < 0 || width < 0 || off+width > len(r.data) || off+width < 0 {
		return errors.OutOfBounds(r.phase, off, width, len(r.data))
	}
	return nil
}

// U8At reads one byte at the given offset.
func (r Region) U8At(off int) (uint8, error) {
	if err := r.check(off, 1); err != nil {
		return 0, err
	}
	return r.data[off], nil
}

// U16At reads a little-endian uint16 at the given offset.
func (r Region) U16At(off int) (uint16, error) {
	if err := r.check(off, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(r.data[off:]), nil
}

// U32At reads a little-endian uint32 at the given offset.
func (r Region) U32At(off int) (uint32, error) {
	if err := r.check(off, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(r.data[off:]), nil
}

// U64At reads a little-endian uint64 at the given offset.
func (r Region) U64At(off int) (uint64, error) {
	if err := r.check(off, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(r.data[off:]), nil
}

// BytesAt returns a view of n bytes at the given offset. The returned slice
// aliases the region's backing buffer; callers must not mutate it.
func (r Region) BytesAt(off, n int) ([]byte, error) {
	if err := r.check(off, n); err != nil {
		return nil, err
	}
	return r.data[off : off+n : off+n], nil
}

// Tail returns the sub-region starting at off.
func (r Region) Tail(off int) (Region, error) {
	if err := r.check(off, 0); err != nil {
		return Region{}, err
	}
	return Region{data: r.data[off:], phase: r.phase}, nil
}

// Sub returns the sub-region [off, off+n).
func (r Region) Sub(off, n int) (Region, error) {
	b, err := r.BytesAt(off, n)
	if err != nil {
		return Region{}, err
	}
	return Region{data: b, phase: r.phase}, nil
}
