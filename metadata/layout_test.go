package metadata

import "testing"

func TestHeapIndexWidth(t *testing.T) {
	if got := heapIndexWidth(0, heapStringsBig); got != 2 {
		t.Errorf("small flag: width = %d, want 2", got)
	}
	if got := heapIndexWidth(heapStringsBig, heapStringsBig); got != 4 {
		t.Errorf("big flag: width = %d, want 4", got)
	}
	if got := heapIndexWidth(heapBlobBig, heapStringsBig); got != 2 {
		t.Errorf("other flag set: width = %d, want 2", got)
	}
}

func TestSimpleIndexWidthBoundary(t *testing.T) {
	var counts [NumTables]uint32
	col := idx("FieldList", TableField)

	counts[TableField] = 0xFFFF
	if got := columnWidth(col, &counts, 0); got != 2 {
		t.Errorf("65535 rows: width = %d, want 2", got)
	}
	counts[TableField] = 0x10000
	if got := columnWidth(col, &counts, 0); got != 4 {
		t.Errorf("65536 rows: width = %d, want 4", got)
	}
}

func TestCodedIndexWidthBoundary(t *testing.T) {
	// TypeDefOrRef uses 2 tag bits, so the 2-byte form holds row
	// indexes up to 0x3FFF.
	var counts [NumTables]uint32
	col := coded("Extends", TypeDefOrRef)

	counts[TableTypeRef] = 0x3FFF
	if got := columnWidth(col, &counts, 0); got != 2 {
		t.Errorf("0x3FFF rows: width = %d, want 2", got)
	}
	counts[TableTypeRef] = 0x4000
	if got := columnWidth(col, &counts, 0); got != 4 {
		t.Errorf("0x4000 rows: width = %d, want 4", got)
	}
}

func TestCodedIndexWidthIgnoresReservedSlots(t *testing.T) {
	// CustomAttributeType reserves three tag positions; only MethodDef
	// and MemberRef row counts matter for its width.
	var counts [NumTables]uint32
	counts[TableMemberRef] = 0x2000 // 0x2000<<3 > 0xFFFF
	if got := CustomAttributeType.width(&counts); got != 4 {
		t.Errorf("width = %d, want 4", got)
	}
	counts[TableMemberRef] = 0x1FFF
	if got := CustomAttributeType.width(&counts); got != 2 {
		t.Errorf("width = %d, want 2", got)
	}
}

func TestComputeLayoutsRowSizes(t *testing.T) {
	var counts [NumTables]uint32
	counts[TableModule] = 1
	counts[TableTypeDef] = 10
	counts[TableField] = 20
	counts[TableMethodDef] = 30

	layouts := computeLayouts(&counts, 0)

	// TypeDef: u32 + 2 strings + coded + 2 indexes, all small.
	if got := layouts[TableTypeDef].rowSize; got != 14 {
		t.Errorf("TypeDef rowSize = %d, want 14", got)
	}
	// Module: u16 + string + 3 GUID indexes.
	if got := layouts[TableModule].rowSize; got != 12 {
		t.Errorf("Module rowSize = %d, want 12", got)
	}

	wide := computeLayouts(&counts, heapStringsBig)
	if got := wide[TableTypeDef].rowSize; got != 18 {
		t.Errorf("TypeDef rowSize with wide strings = %d, want 18", got)
	}
}

func TestComputeLayoutsSkipsAbsentTables(t *testing.T) {
	var counts [NumTables]uint32
	counts[TableModule] = 1
	layouts := computeLayouts(&counts, 0)
	if layouts[TableTypeDef].rowSize != 0 || layouts[TableTypeDef].columns != nil {
		t.Error("absent table got a layout")
	}
}

func TestColumnOffsetsAreCumulative(t *testing.T) {
	var counts [NumTables]uint32
	counts[TableMethodDef] = 5
	counts[TableParam] = 5
	layouts := computeLayouts(&counts, 0)

	offset := 0
	for _, c := range layouts[TableMethodDef].columns {
		if c.offset != offset {
			t.Fatalf("column %s offset = %d, want %d", c.name, c.offset, offset)
		}
		offset += c.width
	}
	if offset != layouts[TableMethodDef].rowSize {
		t.Fatalf("rowSize = %d, want %d", layouts[TableMethodDef].rowSize, offset)
	}
}
