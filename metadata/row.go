package metadata

import (
	"fmt"

	"github.com/wippyai/dotnet-metadata/errors"
	"github.com/wippyai/dotnet-metadata/metadata/internal/binary"
)

// Row is a view of one physical table row. It holds a slice of the row's
// bytes and the table's layout; column values are read on each accessor
// call and never decoded ahead of time.
type Row struct {
	table  Table
	rid    uint32
	stream *TableStream
	layout *tableLayout
	data   binary.Region
}

// Table returns the table this row belongs to.
func (r Row) Table() Table { return r.table }

// Rid returns the row's 1-based identifier.
func (r Row) Rid() uint32 { return r.rid }

// raw reads the column's stored value, widened to uint32.
func (r Row) raw(col int) (columnLayout, uint32, error) {
	if col < 0 || col >= len(r.layout.columns) {
		panic(fmt.Sprintf("metadata: table %s has no column %d", r.table, col))
	}
	c := r.layout.columns[col]
	switch c.width {
	case 1:
		v, err := r.data.U8At(c.offset)
		return c, uint32(v), err
	case 2:
		v, err := r.data.U16At(c.offset)
		return c, uint32(v), err
	case 4:
		v, err := r.data.U32At(c.offset)
		return c, v, err
	default:
		panic(fmt.Sprintf("metadata: column %s.%s has width %d", r.table, c.name, c.width))
	}
}

func (r Row) require(col int, kinds ...columnKind) (columnLayout, uint32, error) {
	c, v, err := r.raw(col)
	for _, k := range kinds {
		if c.kind == k {
			return c, v, err
		}
	}
	panic(fmt.Sprintf("metadata: column %s.%s is not of the requested kind", r.table, c.name))
}

// Uint reads a fixed-width integer column.
func (r Row) Uint(col int) (uint32, error) {
	_, v, err := r.require(col, colUint8, colUint16, colUint32)
	return v, err
}

// StringOffset reads a #Strings heap offset column.
func (r Row) StringOffset(col int) (uint32, error) {
	_, v, err := r.require(col, colString)
	return v, err
}

// GUIDIndex reads a #GUID heap index column (1-based, 0 is null).
func (r Row) GUIDIndex(col int) (uint32, error) {
	_, v, err := r.require(col, colGUID)
	return v, err
}

// BlobOffset reads a #Blob heap offset column.
func (r Row) BlobOffset(col int) (uint32, error) {
	_, v, err := r.require(col, colBlob)
	return v, err
}

// Index reads a simple table index column. A stored zero yields a null
// TableRef; callers must check IsNull before resolving.
func (r Row) Index(col int) (TableRef, error) {
	c, v, err := r.require(col, colIndex)
	if err != nil {
		return TableRef{}, err
	}
	if v == 0 {
		return TableRef{}, nil
	}
	return TableRef{Table: c.target, Row: v}, nil
}

// CodedIndex reads and decodes a coded index column. The decoded row is
// validated against the target table's row count, so a non-null result
// always dereferences.
func (r Row) CodedIndex(col int) (TableRef, error) {
	c, v, err := r.require(col, colCoded)
	if err != nil {
		return TableRef{}, err
	}
	ref, err := c.coded.Decode(v)
	if err != nil {
		return TableRef{}, err
	}
	if !ref.IsNull() && ref.Row > r.stream.RowCount(ref.Table) {
		return TableRef{}, errors.InvalidCodedIndex(c.coded.String(), v,
			"row index exceeds "+ref.Table.String()+" row count")
	}
	return ref, nil
}
