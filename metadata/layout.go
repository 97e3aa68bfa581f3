package metadata

// Heap-size flag bits of the table stream header.
const (
	heapStringsBig = 0x01 // #Strings offsets are 4 bytes
	heapGUIDBig    = 0x02 // #GUID indexes are 4 bytes
	heapBlobBig    = 0x04 // #Blob offsets are 4 bytes
	heapExtraData  = 0x40 // one extra 4-byte field follows the row counts
)

// columnLayout is a column plus its computed position within a row.
type columnLayout struct {
	column
	offset int
	width  int
}

// tableLayout is the derived byte layout of one table's rows.
type tableLayout struct {
	columns []columnLayout
	rowSize int
}

// computeLayouts derives every present table's row layout. It runs only
// after all row counts are known: a column indexing table A inside table B
// needs A's row count to pick its width, so widths cannot be decided while
// row counts are still being read.
func computeLayouts(rowCounts *[NumTables]uint32, heapFlags uint8) [NumTables]tableLayout {
	var layouts [NumTables]tableLayout
	for t := Table(0); t < NumTables; t++ {
		cols := schema(t)
		if cols == nil || rowCounts[t] == 0 {
			continue
		}
		layout := tableLayout{columns: make([]columnLayout, len(cols))}
		offset := 0
		for i, col := range cols {
			width := columnWidth(col, rowCounts, heapFlags)
			layout.columns[i] = columnLayout{column: col, offset: offset, width: width}
			offset += width
		}
		layout.rowSize = offset
		layouts[t] = layout
	}
	return layouts
}

func columnWidth(col column, rowCounts *[NumTables]uint32, heapFlags uint8) int {
	switch col.kind {
	case colUint8:
		return 1
	case colUint16:
		return 2
	case colUint32:
		return 4
	case colString:
		return heapIndexWidth(heapFlags, heapStringsBig)
	case colGUID:
		return heapIndexWidth(heapFlags, heapGUIDBig)
	case colBlob:
		return heapIndexWidth(heapFlags, heapBlobBig)
	case colIndex:
		// An absent target table has zero rows and always yields the
		// small width; its columns only ever hold the null encoding.
		if rowCounts[col.target] > 0xFFFF {
			return 4
		}
		return 2
	case colCoded:
		return col.coded.width(rowCounts)
	default:
		panic("metadata: unknown column kind")
	}
}

func heapIndexWidth(heapFlags uint8, bit uint8) int {
	if heapFlags&bit != 0 {
		return 4
	}
	return 2
}
