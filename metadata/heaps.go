package metadata

import (
	"unicode/utf16"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/wippyai/dotnet-metadata/errors"
	"github.com/wippyai/dotnet-metadata/metadata/internal/binary"
)

// Compressed unsigned integer encoding shared by the #US and #Blob heaps:
// the high bits of the first byte select a 1-, 2- or 4-byte big-endian
// payload (0xxxxxxx, 10xxxxxx xxxxxxxx, 110xxxxx xxxxxxxx*3).

// ReadCompressedUint decodes a compressed unsigned integer from the start
// of b. It returns the value and the number of bytes consumed, or ok=false
// when b is empty or truncated mid-encoding.
func ReadCompressedUint(b []byte) (value uint32, size int, ok bool) {
	if len(b) == 0 {
		return 0, 0, false
	}
	switch {
	case b[0]&0x80 == 0:
		return uint32(b[0]), 1, true
	case b[0]&0xC0 == 0x80:
		if len(b) < 2 {
			return 0, 0, false
		}
		return uint32(b[0]&0x3F)<<8 | uint32(b[1]), 2, true
	default:
		if len(b) < 4 {
			return 0, 0, false
		}
		return uint32(b[0]&0x1F)<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), 4, true
	}
}

// StringHeap reads NUL-terminated UTF-8 records from the #Strings heap.
// The zero value behaves as an empty heap.
type StringHeap struct {
	data []byte
}

// NewStringHeap wraps raw #Strings heap bytes.
func NewStringHeap(data []byte) *StringHeap {
	return &StringHeap{data: data}
}

// String resolves a heap offset taken from a table column. Offset 0 is the
// canonical empty string. A record with no NUL terminator before heap end,
// or an offset past heap end, is a malformed_heap error.
func (h *StringHeap) String(offset uint32) (string, error) {
	if offset == 0 {
		return "", nil
	}
	if int64(offset) >= int64(len(h.data)) {
		return "", errors.MalformedHeap("#Strings", offset, "offset beyond heap end")
	}
	rest := h.data[offset:]
	end := 0
	for end < len(rest) && rest[end] != 0 {
		end++
	}
	if end == len(rest) {
		return "", errors.MalformedHeap("#Strings", offset, "no NUL terminator before heap end")
	}
	raw := rest[:end]
	if !utf8.Valid(raw) {
		return "", errors.MalformedHeap("#Strings", offset, "record is not valid UTF-8")
	}
	return string(raw), nil
}

// GUIDHeap reads fixed 16-byte records from the #GUID heap. Indices are
// 1-based; index 0 is the absent GUID.
type GUIDHeap struct {
	data []byte
}

// NewGUIDHeap wraps raw #GUID heap bytes.
func NewGUIDHeap(data []byte) *GUIDHeap {
	return &GUIDHeap{data: data}
}

// GUID resolves a 1-based heap index. Index 0 resolves to uuid.Nil.
func (h *GUIDHeap) GUID(index uint32) (uuid.UUID, error) {
	if index == 0 {
		return uuid.Nil, nil
	}
	start := int64(index-1) * 16
	if start+16 > int64(len(h.data)) {
		return uuid.Nil, errors.MalformedHeap("#GUID", index, "index beyond heap end")
	}
	id, err := uuid.FromBytes(h.data[start : start+16])
	if err != nil {
		return uuid.Nil, errors.MalformedHeap("#GUID", index, err.Error())
	}
	return id, nil
}

// BlobHeap reads length-prefixed opaque records from the #Blob heap.
type BlobHeap struct {
	data []byte
}

// NewBlobHeap wraps raw #Blob heap bytes.
func NewBlobHeap(data []byte) *BlobHeap {
	return &BlobHeap{data: data}
}

// Blob resolves a heap offset to the record's byte range. The returned
// slice aliases the heap's backing buffer; no copy is made. Offset 0 is
// the canonical empty blob.
func (h *BlobHeap) Blob(offset uint32) ([]byte, error) {
	if offset == 0 {
		return nil, nil
	}
	if int64(offset) >= int64(len(h.data)) {
		return nil, errors.MalformedHeap("#Blob", offset, "offset beyond heap end")
	}
	rest := h.data[offset:]
	length, size, ok := ReadCompressedUint(rest)
	if !ok {
		return nil, errors.MalformedHeap("#Blob", offset, "truncated length prefix")
	}
	if int64(size)+int64(length) > int64(len(rest)) {
		return nil, errors.MalformedHeap("#Blob", offset, "record extends past heap end")
	}
	return rest[size : size+int(length) : size+int(length)], nil
}

// UserString is one #US heap record: raw UTF-16 code units plus the
// record's trailing marker byte (set when the string contains characters
// needing special handling; absent on zero-length records).
type UserString struct {
	CodeUnits []uint16
	Marker    byte
}

// String decodes the code units to a Go string.
func (s UserString) String() string {
	return string(utf16.Decode(s.CodeUnits))
}

// UserStringHeap reads length-prefixed UTF-16 records from the #US heap.
type UserStringHeap struct {
	data []byte
}

// NewUserStringHeap wraps raw #US heap bytes.
func NewUserStringHeap(data []byte) *UserStringHeap {
	return &UserStringHeap{data: data}
}

// UserString resolves a heap offset to its record. The record length
// prefix counts UTF-16 bytes plus the trailing marker byte; a zero-length
// record is the canonical empty string.
func (h *UserStringHeap) UserString(offset uint32) (UserString, error) {
	if offset == 0 {
		return UserString{}, nil
	}
	if int64(offset) >= int64(len(h.data)) {
		return UserString{}, errors.MalformedHeap("#US", offset, "offset beyond heap end")
	}
	rest := h.data[offset:]
	length, size, ok := ReadCompressedUint(rest)
	if !ok {
		return UserString{}, errors.MalformedHeap("#US", offset, "truncated length prefix")
	}
	if int64(size)+int64(length) > int64(len(rest)) {
		return UserString{}, errors.MalformedHeap("#US", offset, "record extends past heap end")
	}
	record := rest[size : size+int(length)]
	if len(record) == 0 {
		return UserString{}, nil
	}

	var marker byte
	if len(record)%2 == 1 {
		marker = record[len(record)-1]
		record = record[:len(record)-1]
	}
	units := make([]uint16, len(record)/2)
	region := binary.NewRegion(record, errors.PhaseDecode)
	for i := range units {
		u, err := region.U16At(i * 2)
		if err != nil {
			return UserString{}, err
		}
		units[i] = u
	}
	return UserString{CodeUnits: units, Marker: marker}, nil
}
