package metadata

import (
	"github.com/wippyai/dotnet-metadata/errors"
)

// CodedIndexKind identifies one of the format's compressed cross-table
// reference encodings. Each kind has a fixed ordered candidate table list;
// the low ceil(log2(len(candidates))) bits of a raw value select the table,
// the remaining high bits are the 1-based row index.
type CodedIndexKind uint8

const (
	TypeDefOrRef CodedIndexKind = iota
	HasConstant
	HasCustomAttribute
	HasFieldMarshal
	HasDeclSecurity
	MemberRefParent
	HasSemantics
	MethodDefOrRef
	MemberForwarded
	Implementation
	CustomAttributeType
	ResolutionScope
	TypeOrMethodDef
	HasCustomDebugInformation

	numCodedIndexKinds
)

type codedIndexDesc struct {
	name       string
	tagBits    uint
	candidates []Table
}

// Candidate lists are fixed by the format specification. tableNone marks
// tag positions the specification reserves but never assigns.
var codedIndexDescs = [numCodedIndexKinds]codedIndexDesc{
	TypeDefOrRef: {"TypeDefOrRef", 2, []Table{
		TableTypeDef, TableTypeRef, TableTypeSpec,
	}},
	HasConstant: {"HasConstant", 2, []Table{
		TableField, TableParam, TableProperty,
	}},
	HasCustomAttribute: {"HasCustomAttribute", 5, []Table{
		TableMethodDef, TableField, TableTypeRef, TableTypeDef, TableParam,
		TableInterfaceImpl, TableMemberRef, TableModule, TableDeclSecurity,
		TableProperty, TableEvent, TableStandAloneSig, TableModuleRef,
		TableTypeSpec, TableAssembly, TableAssemblyRef, TableFile,
		TableExportedType, TableManifestResource, TableGenericParam,
		TableGenericParamConstraint, TableMethodSpec, tableNone, tableNone,
	}},
	HasFieldMarshal: {"HasFieldMarshal", 1, []Table{
		TableField, TableParam,
	}},
	HasDeclSecurity: {"HasDeclSecurity", 2, []Table{
		TableTypeDef, TableMethodDef, TableAssembly,
	}},
	MemberRefParent: {"MemberRefParent", 3, []Table{
		TableTypeDef, TableTypeRef, TableModuleRef, TableMethodDef, TableTypeSpec,
	}},
	HasSemantics: {"HasSemantics", 1, []Table{
		TableEvent, TableProperty,
	}},
	MethodDefOrRef: {"MethodDefOrRef", 1, []Table{
		TableMethodDef, TableMemberRef,
	}},
	MemberForwarded: {"MemberForwarded", 1, []Table{
		TableField, TableMethodDef,
	}},
	Implementation: {"Implementation", 2, []Table{
		TableFile, TableAssemblyRef, TableExportedType,
	}},
	CustomAttributeType: {"CustomAttributeType", 3, []Table{
		tableNone, tableNone, TableMethodDef, TableMemberRef, tableNone,
	}},
	ResolutionScope: {"ResolutionScope", 2, []Table{
		TableModule, TableModuleRef, TableAssemblyRef, TableTypeRef,
	}},
	TypeOrMethodDef: {"TypeOrMethodDef", 1, []Table{
		TableTypeDef, TableMethodDef,
	}},
	HasCustomDebugInformation: {"HasCustomDebugInformation", 5, []Table{
		TableMethodDef, TableField, TableTypeRef, TableTypeDef, TableParam,
		TableInterfaceImpl, TableMemberRef, TableModule, TableDeclSecurity,
		TableProperty, TableEvent, TableStandAloneSig, TableModuleRef,
		TableTypeSpec, TableAssembly, TableAssemblyRef, TableFile,
		TableExportedType, TableManifestResource, TableGenericParam,
		TableGenericParamConstraint, TableMethodSpec, TableDocument,
		TableLocalScope, TableLocalVariable, TableLocalConstant,
		TableImportScope,
	}},
}

// String returns the kind's name from the format specification.
func (k CodedIndexKind) String() string {
	if k < numCodedIndexKinds {
		return codedIndexDescs[k].name
	}
	return "CodedIndexKind(?)"
}

// TagBits returns the number of low bits used for table selection.
func (k CodedIndexKind) TagBits() uint {
	return codedIndexDescs[k].tagBits
}

// Candidates returns the kind's fixed candidate table list. Reserved slots
// are absent from the returned list only in the sense that decoding their
// tag fails; the slice itself includes them for positional encoding.
func (k CodedIndexKind) Candidates() []Table {
	return codedIndexDescs[k].candidates
}

// TableRef is a decoded reference to a table row. Row is 1-based; the zero
// TableRef (IsNull) is the format's explicit null reference.
type TableRef struct {
	Table Table
	Row   uint32
}

// IsNull reports whether the reference is the null reference.
func (r TableRef) IsNull() bool {
	return r.Row == 0
}

// Decode splits a raw coded value into its (table, row) pair. A row index
// of zero decodes to the null reference regardless of tag. A tag selecting
// a position beyond the candidate list, or a reserved position, fails with
// an invalid_coded_index error.
func (k CodedIndexKind) Decode(raw uint32) (TableRef, error) {
	desc := &codedIndexDescs[k]
	tag := raw & (1<<desc.tagBits - 1)
	row := raw >> desc.tagBits

	if row == 0 {
		return TableRef{}, nil
	}
	if int(tag) >= len(desc.candidates) {
		return TableRef{}, errors.InvalidCodedIndex(desc.name, raw, "tag beyond candidate list")
	}
	target := desc.candidates[tag]
	if target == tableNone {
		return TableRef{}, errors.InvalidCodedIndex(desc.name, raw, "tag selects a reserved slot")
	}
	return TableRef{Table: target, Row: row}, nil
}

// Encode is the inverse of Decode: it packs a (table, row) pair back into
// the raw integer form. The null reference encodes to zero.
func (k CodedIndexKind) Encode(ref TableRef) (uint32, error) {
	desc := &codedIndexDescs[k]
	if ref.IsNull() {
		return 0, nil
	}
	for tag, candidate := range desc.candidates {
		if candidate == ref.Table {
			return ref.Row<<desc.tagBits | uint32(tag), nil
		}
	}
	return 0, errors.InvalidCodedIndex(desc.name, 0, "table "+ref.Table.String()+" is not a candidate")
}

// width returns the encoded byte width of the kind given the row counts of
// all tables: 4 bytes when the largest candidate row index shifted by the
// tag bits no longer fits in 16 bits, else 2.
func (k CodedIndexKind) width(rowCounts *[NumTables]uint32) int {
	desc := &codedIndexDescs[k]
	var maxRows uint32
	for _, candidate := range desc.candidates {
		if candidate == tableNone {
			continue
		}
		if n := rowCounts[candidate]; n > maxRows {
			maxRows = n
		}
	}
	if uint64(maxRows)<<desc.tagBits > 0xFFFF {
		return 4
	}
	return 2
}
