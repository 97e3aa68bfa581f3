package metadata

import (
	"math/bits"

	"go.uber.org/zap"

	"github.com/wippyai/dotnet-metadata/errors"
	"github.com/wippyai/dotnet-metadata/metadata/internal/binary"
)

// TableStream is the decoded `#~` stream: header fields, per-table row
// counts, derived row layouts, and the raw row data. Rows are decoded on
// demand through Row; the stream never materializes whole tables.
type TableStream struct {
	MajorVersion uint8
	MinorVersion uint8
	HeapFlags    uint8
	Valid        uint64
	Sorted       uint64

	rowCounts [NumTables]uint32
	layouts   [NumTables]tableLayout
	offsets   [NumTables]int
	rows      binary.Region
}

// decodeTableStream parses the fixed header, collects row counts for every
// set bit of the valid mask in ascending table order, and then computes
// row layouts in a second pass (column widths depend on the row counts of
// referenced tables, so layouts cannot be computed while counts are still
// being read).
func decodeTableStream(data []byte) (*TableStream, error) {
	c := binary.NewCursor(binary.NewRegion(data, errors.PhaseDecode))

	if err := c.Skip(4); err != nil { // reserved
		return nil, err
	}
	major, err := c.U8()
	if err != nil {
		return nil, err
	}
	minor, err := c.U8()
	if err != nil {
		return nil, err
	}
	heapFlags, err := c.U8()
	if err != nil {
		return nil, err
	}
	if err := c.Skip(1); err != nil { // log2 of next rid, unused
		return nil, err
	}
	valid, err := c.U64()
	if err != nil {
		return nil, err
	}
	sorted, err := c.U64()
	if err != nil {
		return nil, err
	}

	ts := &TableStream{
		MajorVersion: major,
		MinorVersion: minor,
		HeapFlags:    heapFlags,
		Valid:        valid,
		Sorted:       sorted,
	}

	for i := 0; i < 64; i++ {
		if valid&(1<<i) == 0 {
			continue
		}
		if i >= NumTables || !Table(i).Valid() {
			return nil, errors.UnsupportedVersion("valid mask selects unknown table 0x%02x", i)
		}
		n, err := c.U32()
		if err != nil {
			return nil, err
		}
		ts.rowCounts[i] = n
	}

	if heapFlags&heapExtraData != 0 {
		if err := c.Skip(4); err != nil {
			return nil, err
		}
	}

	ts.layouts = computeLayouts(&ts.rowCounts, heapFlags)
	// Sizes accumulate in int64 so hostile row counts cannot wrap the
	// total on 32-bit platforms and slip past the length check.
	offset := int64(0)
	for t := Table(0); t < NumTables; t++ {
		ts.offsets[t] = int(offset)
		offset += int64(ts.layouts[t].rowSize) * int64(ts.rowCounts[t])
	}

	ts.rows, err = c.Tail()
	if err != nil {
		return nil, err
	}
	if offset > int64(ts.rows.Len()) {
		return nil, errors.New(errors.PhaseDecode, errors.KindOutOfBounds).
			Stream("#~").
			Detail("declared rows need %d bytes, stream has %d", offset, ts.rows.Len()).
			Build()
	}

	Logger().Debug("decoded table stream",
		zap.Uint8("major", major),
		zap.Uint8("minor", minor),
		zap.Int("tables", bits.OnesCount64(valid)),
	)
	return ts, nil
}

// RowCount returns the table's row count; absent tables have zero rows.
func (ts *TableStream) RowCount(t Table) uint32 {
	if int(t) >= NumTables {
		return 0
	}
	return ts.rowCounts[t]
}

// IsSorted reports whether the format declared the table sorted.
func (ts *TableStream) IsSorted(t Table) bool {
	return ts.Sorted&(1<<uint(t)) != 0
}

// Row returns a view of one row. rid is 1-based per the wire format and is
// validated against the table's row count before any dereference.
func (ts *TableStream) Row(t Table, rid uint32) (Row, error) {
	if int(t) >= NumTables || !t.Valid() {
		return Row{}, errors.InvalidRow(t.String(), rid, 0)
	}
	count := ts.rowCounts[t]
	if rid == 0 || rid > count {
		return Row{}, errors.InvalidRow(t.String(), rid, count)
	}
	layout := &ts.layouts[t]
	start := ts.offsets[t] + layout.rowSize*int(rid-1)
	data, err := ts.rows.Sub(start, layout.rowSize)
	if err != nil {
		return Row{}, err
	}
	return Row{table: t, rid: rid, stream: ts, layout: layout, data: data}, nil
}
