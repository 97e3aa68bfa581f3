package metadata

import (
	"encoding/binary"
	stderrors "errors"
	"testing"

	mderrors "github.com/wippyai/dotnet-metadata/errors"
)

// rawStream builds #~ header bytes by hand for edge cases the fixture
// builder does not produce.
func rawStream(heapFlags uint8, valid uint64, counts []uint32, extra []byte, rows []byte) []byte {
	var out []byte
	out = binary.LittleEndian.AppendUint32(out, 0)
	out = append(out, 2, 0, heapFlags, 1)
	out = binary.LittleEndian.AppendUint64(out, valid)
	out = binary.LittleEndian.AppendUint64(out, 0)
	for _, n := range counts {
		out = binary.LittleEndian.AppendUint32(out, n)
	}
	out = append(out, extra...)
	return append(out, rows...)
}

func TestDecodeTableStreamExtraData(t *testing.T) {
	// One ModuleRef row (Name index, 2 bytes) preceded by the optional
	// 4-byte extra field the 0x40 heap flag declares.
	data := rawStream(heapExtraData, 1<<TableModuleRef, []uint32{1},
		[]byte{0xDE, 0xAD, 0xBE, 0xEF}, []byte{0x07, 0x00})
	ts, err := decodeTableStream(data)
	if err != nil {
		t.Fatal(err)
	}
	row, err := ts.Row(TableModuleRef, 1)
	if err != nil {
		t.Fatal(err)
	}
	name, err := row.StringOffset(0)
	if err != nil || name != 7 {
		t.Errorf("Name = (%d, %v), want 7", name, err)
	}
}

func TestDecodeTableStreamUnknownTableBit(t *testing.T) {
	for _, bit := range []int{0x2D, 0x3F} {
		data := rawStream(0, 1<<bit, []uint32{1}, nil, nil)
		_, err := decodeTableStream(data)
		want := &mderrors.Error{Phase: mderrors.PhaseLoad, Kind: mderrors.KindUnsupportedVersion}
		if !stderrors.Is(err, want) {
			t.Errorf("bit %#x: got %v, want unsupported version", bit, err)
		}
	}
}

func TestDecodeTableStreamTruncatedRows(t *testing.T) {
	// ModuleRef declares one row (2 bytes) but only 1 byte follows.
	data := rawStream(0, 1<<TableModuleRef, []uint32{1}, nil, []byte{0x07})
	_, err := decodeTableStream(data)
	want := &mderrors.Error{Phase: mderrors.PhaseDecode, Kind: mderrors.KindOutOfBounds}
	if !stderrors.Is(err, want) {
		t.Errorf("got %v, want out of bounds", err)
	}
}

func TestDecodeTableStreamHostileRowCount(t *testing.T) {
	// Field declares 2^32-1 rows of 6 bytes each. The byte total does not
	// fit in 32 bits, so the size check has to happen in 64-bit arithmetic.
	data := rawStream(0, 1<<TableField, []uint32{0xFFFFFFFF}, nil, nil)
	_, err := decodeTableStream(data)
	want := &mderrors.Error{Phase: mderrors.PhaseDecode, Kind: mderrors.KindOutOfBounds}
	if !stderrors.Is(err, want) {
		t.Errorf("got %v, want out of bounds", err)
	}
}

func TestDecodeTableStreamTruncatedHeader(t *testing.T) {
	data := rawStream(0, 1<<TableModuleRef, []uint32{1}, nil, nil)
	if _, err := decodeTableStream(data[:10]); err == nil {
		t.Error("decode of truncated header succeeded")
	}
}
