package metadata

// Table identifies one of the standard metadata table kinds. The values are
// the table indices of the on-disk format: bit N of the table stream's valid
// mask corresponds to Table(N), and metadata tokens carry the table index in
// their top byte.
type Table uint8

const (
	TableModule                 Table = 0x00
	TableTypeRef                Table = 0x01
	TableTypeDef                Table = 0x02
	TableFieldPtr               Table = 0x03
	TableField                  Table = 0x04
	TableMethodPtr              Table = 0x05
	TableMethodDef              Table = 0x06
	TableParamPtr               Table = 0x07
	TableParam                  Table = 0x08
	TableInterfaceImpl          Table = 0x09
	TableMemberRef              Table = 0x0A
	TableConstant               Table = 0x0B
	TableCustomAttribute        Table = 0x0C
	TableFieldMarshal           Table = 0x0D
	TableDeclSecurity           Table = 0x0E
	TableClassLayout            Table = 0x0F
	TableFieldLayout            Table = 0x10
	TableStandAloneSig          Table = 0x11
	TableEventMap               Table = 0x12
	TableEventPtr               Table = 0x13
	TableEvent                  Table = 0x14
	TablePropertyMap            Table = 0x15
	TablePropertyPtr            Table = 0x16
	TableProperty               Table = 0x17
	TableMethodSemantics        Table = 0x18
	TableMethodImpl             Table = 0x19
	TableModuleRef              Table = 0x1A
	TableTypeSpec               Table = 0x1B
	TableImplMap                Table = 0x1C
	TableFieldRVA               Table = 0x1D
	TableENCLog                 Table = 0x1E
	TableENCMap                 Table = 0x1F
	TableAssembly               Table = 0x20
	TableAssemblyProcessor      Table = 0x21
	TableAssemblyOS             Table = 0x22
	TableAssemblyRef            Table = 0x23
	TableAssemblyRefProcessor   Table = 0x24
	TableAssemblyRefOS          Table = 0x25
	TableFile                   Table = 0x26
	TableExportedType           Table = 0x27
	TableManifestResource       Table = 0x28
	TableNestedClass            Table = 0x29
	TableGenericParam           Table = 0x2A
	TableMethodSpec             Table = 0x2B
	TableGenericParamConstraint Table = 0x2C

	// Portable PDB debug tables.
	TableDocument               Table = 0x30
	TableMethodDebugInformation Table = 0x31
	TableLocalScope             Table = 0x32
	TableLocalVariable          Table = 0x33
	TableLocalConstant          Table = 0x34
	TableImportScope            Table = 0x35
	TableStateMachineMethod     Table = 0x36
	TableCustomDebugInformation Table = 0x37

	// NumTables bounds the table index space (0x00..0x37 inclusive).
	NumTables = 0x38

	// tableNone marks unused coded-index candidate slots.
	tableNone Table = 0xFF
)

var tableNames = map[Table]string{
	TableModule:                 "Module",
	TableTypeRef:                "TypeRef",
	TableTypeDef:                "TypeDef",
	TableFieldPtr:               "FieldPtr",
	TableField:                  "Field",
	TableMethodPtr:              "MethodPtr",
	TableMethodDef:              "MethodDef",
	TableParamPtr:               "ParamPtr",
	TableParam:                  "Param",
	TableInterfaceImpl:          "InterfaceImpl",
	TableMemberRef:              "MemberRef",
	TableConstant:               "Constant",
	TableCustomAttribute:        "CustomAttribute",
	TableFieldMarshal:           "FieldMarshal",
	TableDeclSecurity:           "DeclSecurity",
	TableClassLayout:            "ClassLayout",
	TableFieldLayout:            "FieldLayout",
	TableStandAloneSig:          "StandAloneSig",
	TableEventMap:               "EventMap",
	TableEventPtr:               "EventPtr",
	TableEvent:                  "Event",
	TablePropertyMap:            "PropertyMap",
	TablePropertyPtr:            "PropertyPtr",
	TableProperty:               "Property",
	TableMethodSemantics:        "MethodSemantics",
	TableMethodImpl:             "MethodImpl",
	TableModuleRef:              "ModuleRef",
	TableTypeSpec:               "TypeSpec",
	TableImplMap:                "ImplMap",
	TableFieldRVA:               "FieldRVA",
	TableENCLog:                 "ENCLog",
	TableENCMap:                 "ENCMap",
	TableAssembly:               "Assembly",
	TableAssemblyProcessor:      "AssemblyProcessor",
	TableAssemblyOS:             "AssemblyOS",
	TableAssemblyRef:            "AssemblyRef",
	TableAssemblyRefProcessor:   "AssemblyRefProcessor",
	TableAssemblyRefOS:          "AssemblyRefOS",
	TableFile:                   "File",
	TableExportedType:           "ExportedType",
	TableManifestResource:       "ManifestResource",
	TableNestedClass:            "NestedClass",
	TableGenericParam:           "GenericParam",
	TableMethodSpec:             "MethodSpec",
	TableGenericParamConstraint: "GenericParamConstraint",
	TableDocument:               "Document",
	TableMethodDebugInformation: "MethodDebugInformation",
	TableLocalScope:             "LocalScope",
	TableLocalVariable:          "LocalVariable",
	TableLocalConstant:          "LocalConstant",
	TableImportScope:            "ImportScope",
	TableStateMachineMethod:     "StateMachineMethod",
	TableCustomDebugInformation: "CustomDebugInformation",
}

// String returns the table's name from the format specification.
func (t Table) String() string {
	if name, ok := tableNames[t]; ok {
		return name
	}
	return "Table(0x" + hexByte(uint8(t)) + ")"
}

// Valid reports whether t is a table kind defined by the format.
func (t Table) Valid() bool {
	_, ok := tableNames[t]
	return ok
}

func hexByte(b uint8) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[b>>4], digits[b&0xf]})
}
