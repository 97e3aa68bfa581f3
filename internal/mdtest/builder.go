// Package mdtest builds small synthetic metadata images for tests.
//
// The builder emits a metadata root with a #~ stream and the four heaps.
// All heap offsets and table indexes are written as 2-byte values, which
// is correct for any image whose heaps stay under 64 KiB and whose tables
// stay under 65536 rows; tests must keep their fixtures within that.
package mdtest

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// Builder accumulates heap contents and table rows and assembles them
// into metadata root bytes.
type Builder struct {
	strings []byte
	us      []byte
	guids   []byte
	blobs   []byte

	rows   [64][][]byte
	sorted uint64
}

// New returns a builder with the mandatory null entries pre-seeded: the
// empty string at #Strings offset 0, and the zero-length blob at #Blob
// offset 0.
func New() *Builder {
	return &Builder{
		strings: []byte{0},
		us:      []byte{0},
		blobs:   []byte{0},
	}
}

// AddString appends a NUL-terminated string and returns its heap offset.
func (b *Builder) AddString(s string) uint32 {
	off := uint32(len(b.strings))
	b.strings = append(b.strings, s...)
	b.strings = append(b.strings, 0)
	return off
}

// AddGUID appends a GUID and returns its 1-based heap index.
func (b *Builder) AddGUID(u uuid.UUID) uint32 {
	b.guids = append(b.guids, u[:]...)
	return uint32(len(b.guids) / 16)
}

// AddBlob appends a length-prefixed blob and returns its heap offset.
// Blobs longer than 127 bytes would need the multi-byte length prefix;
// the builder only supports the 1-byte form.
func (b *Builder) AddBlob(data []byte) uint32 {
	if len(data) > 0x7F {
		panic("mdtest: blob too long for 1-byte length prefix")
	}
	off := uint32(len(b.blobs))
	b.blobs = append(b.blobs, byte(len(data)))
	b.blobs = append(b.blobs, data...)
	return off
}

// AddUserString appends a UTF-16 user string record (with the trailing
// marker byte) and returns its heap offset.
func (b *Builder) AddUserString(s string, marker byte) uint32 {
	off := uint32(len(b.us))
	var payload []byte
	for _, r := range s {
		payload = binary.LittleEndian.AppendUint16(payload, uint16(r))
	}
	payload = append(payload, marker)
	if len(payload) > 0x7F {
		panic("mdtest: user string too long for 1-byte length prefix")
	}
	b.us = append(b.us, byte(len(payload)))
	b.us = append(b.us, payload...)
	return off
}

// MarkSorted sets the table's bit in the sorted mask.
func (b *Builder) MarkSorted(table uint8) {
	b.sorted |= 1 << table
}

// row appends raw row bytes to a table.
func (b *Builder) row(table uint8, data []byte) uint32 {
	b.rows[table] = append(b.rows[table], data)
	return uint32(len(b.rows[table]))
}

type rowBuf struct{ data []byte }

func (r *rowBuf) u8(v uint8)   { r.data = append(r.data, v) }
func (r *rowBuf) u16(v uint32) { r.data = binary.LittleEndian.AppendUint16(r.data, uint16(v)) }
func (r *rowBuf) u32(v uint32) { r.data = binary.LittleEndian.AppendUint32(r.data, v) }

// AddModule appends a Module row and returns its rid.
func (b *Builder) AddModule(name, mvid uint32) uint32 {
	var r rowBuf
	r.u16(0) // Generation
	r.u16(name)
	r.u16(mvid)
	r.u16(0) // EncId
	r.u16(0) // EncBaseId
	return b.row(0x00, r.data)
}

// AddTypeRef appends a TypeRef row. scope is a raw ResolutionScope coded
// value.
func (b *Builder) AddTypeRef(scope, name, namespace uint32) uint32 {
	var r rowBuf
	r.u16(scope)
	r.u16(name)
	r.u16(namespace)
	return b.row(0x01, r.data)
}

// AddTypeDef appends a TypeDef row. extends is a raw TypeDefOrRef coded
// value; fieldList and methodList are 1-based start indexes.
func (b *Builder) AddTypeDef(flags, name, namespace, extends, fieldList, methodList uint32) uint32 {
	var r rowBuf
	r.u32(flags)
	r.u16(name)
	r.u16(namespace)
	r.u16(extends)
	r.u16(fieldList)
	r.u16(methodList)
	return b.row(0x02, r.data)
}

// PatchTypeDefExtends overwrites the Extends column of an existing
// TypeDef row with a raw TypeDefOrRef value, for rows that must reference
// rows added after them.
func (b *Builder) PatchTypeDefExtends(rid, raw uint32) {
	row := b.rows[0x02][rid-1]
	binary.LittleEndian.PutUint16(row[8:], uint16(raw))
}

// AddField appends a Field row.
func (b *Builder) AddField(flags, name, signature uint32) uint32 {
	var r rowBuf
	r.u16(flags)
	r.u16(name)
	r.u16(signature)
	return b.row(0x04, r.data)
}

// AddMethodDef appends a MethodDef row.
func (b *Builder) AddMethodDef(rva, implFlags, flags, name, signature, paramList uint32) uint32 {
	var r rowBuf
	r.u32(rva)
	r.u16(implFlags)
	r.u16(flags)
	r.u16(name)
	r.u16(signature)
	r.u16(paramList)
	return b.row(0x06, r.data)
}

// AddParam appends a Param row.
func (b *Builder) AddParam(flags, sequence, name uint32) uint32 {
	var r rowBuf
	r.u16(flags)
	r.u16(sequence)
	r.u16(name)
	return b.row(0x08, r.data)
}

// AddInterfaceImpl appends an InterfaceImpl row. iface is a raw
// TypeDefOrRef coded value.
func (b *Builder) AddInterfaceImpl(class, iface uint32) uint32 {
	var r rowBuf
	r.u16(class)
	r.u16(iface)
	return b.row(0x09, r.data)
}

// AddConstant appends a Constant row. parent is a raw HasConstant coded
// value.
func (b *Builder) AddConstant(typ uint8, parent, value uint32) uint32 {
	var r rowBuf
	r.u8(typ)
	r.u8(0) // padding
	r.u16(parent)
	r.u16(value)
	return b.row(0x0B, r.data)
}

// AddModuleRef appends a ModuleRef row.
func (b *Builder) AddModuleRef(name uint32) uint32 {
	var r rowBuf
	r.u16(name)
	return b.row(0x1A, r.data)
}

// AddTypeSpec appends a TypeSpec row.
func (b *Builder) AddTypeSpec(signature uint32) uint32 {
	var r rowBuf
	r.u16(signature)
	return b.row(0x1B, r.data)
}

// AddAssembly appends an Assembly row.
func (b *Builder) AddAssembly(hashAlg uint32, major, minor, build, rev uint32, flags, publicKey, name, culture uint32) uint32 {
	var r rowBuf
	r.u32(hashAlg)
	r.u16(major)
	r.u16(minor)
	r.u16(build)
	r.u16(rev)
	r.u32(flags)
	r.u16(publicKey)
	r.u16(name)
	r.u16(culture)
	return b.row(0x20, r.data)
}

// AddAssemblyRef appends an AssemblyRef row.
func (b *Builder) AddAssemblyRef(major, minor, build, rev uint32, flags, publicKeyOrToken, name, culture, hash uint32) uint32 {
	var r rowBuf
	r.u16(major)
	r.u16(minor)
	r.u16(build)
	r.u16(rev)
	r.u32(flags)
	r.u16(publicKeyOrToken)
	r.u16(name)
	r.u16(culture)
	r.u16(hash)
	return b.row(0x23, r.data)
}

// AddNestedClass appends a NestedClass row.
func (b *Builder) AddNestedClass(nested, enclosing uint32) uint32 {
	var r rowBuf
	r.u16(nested)
	r.u16(enclosing)
	return b.row(0x29, r.data)
}

// TableStream assembles just the #~ stream bytes.
func (b *Builder) TableStream() []byte {
	var valid uint64
	for t, rows := range b.rows {
		if len(rows) > 0 {
			valid |= 1 << t
		}
	}

	var out []byte
	out = binary.LittleEndian.AppendUint32(out, 0) // reserved
	out = append(out, 2, 0)                        // major, minor
	out = append(out, 0)                           // heap flags: all small
	out = append(out, 1)                           // log2 rid
	out = binary.LittleEndian.AppendUint64(out, valid)
	out = binary.LittleEndian.AppendUint64(out, b.sorted)
	for _, rows := range b.rows {
		if len(rows) > 0 {
			out = binary.LittleEndian.AppendUint32(out, uint32(len(rows)))
		}
	}
	for _, rows := range b.rows {
		for _, row := range rows {
			out = append(out, row...)
		}
	}
	return out
}

// Build assembles the full metadata root.
func (b *Builder) Build() []byte {
	type stream struct {
		name    string
		payload []byte
	}
	streams := []stream{
		{"#~", b.TableStream()},
		{"#Strings", b.strings},
		{"#US", b.us},
		{"#GUID", b.guids},
		{"#Blob", b.blobs},
	}

	version := []byte("v4.0.30319\x00\x00")
	headerSize := 4 + 2 + 2 + 4 + 4 + len(version) + 2 + 2
	for _, s := range streams {
		headerSize += 8 + nameFieldLen(s.name)
	}

	var out []byte
	out = binary.LittleEndian.AppendUint32(out, 0x424A5342)
	out = binary.LittleEndian.AppendUint16(out, 1)
	out = binary.LittleEndian.AppendUint16(out, 1)
	out = binary.LittleEndian.AppendUint32(out, 0)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(version)))
	out = append(out, version...)
	out = binary.LittleEndian.AppendUint16(out, 0)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(streams)))

	offset := headerSize
	for _, s := range streams {
		out = binary.LittleEndian.AppendUint32(out, uint32(offset))
		out = binary.LittleEndian.AppendUint32(out, uint32(len(s.payload)))
		out = append(out, s.name...)
		for i := len(s.name); i < nameFieldLen(s.name); i++ {
			out = append(out, 0)
		}
		offset += len(s.payload)
	}
	for _, s := range streams {
		out = append(out, s.payload...)
	}
	return out
}

// nameFieldLen is the stream name's padded length: NUL-terminated, then
// padded to a 4-byte boundary.
func nameFieldLen(name string) int {
	return (len(name) + 1 + 3) &^ 3
}
