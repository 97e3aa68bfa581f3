package metadata

// columnKind describes how a column's bytes are interpreted. Widths of the
// index kinds are not fixed: they are computed per module from row counts
// and heap-size flags (see layout.go).
type columnKind uint8

const (
	colUint8  columnKind = iota // fixed 1 byte
	colUint16                   // fixed 2 bytes
	colUint32                   // fixed 4 bytes
	colString                   // #Strings heap offset
	colGUID                     // #GUID heap index, 1-based
	colBlob                     // #Blob heap offset
	colIndex                    // simple index into one table
	colCoded                    // coded index
)

type column struct {
	name   string
	kind   columnKind
	target Table          // colIndex only
	coded  CodedIndexKind // colCoded only
}

func u8(name string) column    { return column{name: name, kind: colUint8} }
func u16c(name string) column  { return column{name: name, kind: colUint16} }
func u32c(name string) column  { return column{name: name, kind: colUint32} }
func strc(name string) column  { return column{name: name, kind: colString} }
func guidc(name string) column { return column{name: name, kind: colGUID} }
func blobc(name string) column { return column{name: name, kind: colBlob} }
func idx(name string, t Table) column {
	return column{name: name, kind: colIndex, target: t}
}
func coded(name string, k CodedIndexKind) column {
	return column{name: name, kind: colCoded, coded: k}
}

// tableSchemas is the fixed column layout of every standard table, in
// column order, as given by the format specification. Absent entries are
// table indices the format does not define (0x2D..0x2F).
var tableSchemas = [NumTables][]column{
	TableModule: {
		u16c("Generation"), strc("Name"), guidc("Mvid"),
		guidc("EncId"), guidc("EncBaseId"),
	},
	TableTypeRef: {
		coded("ResolutionScope", ResolutionScope), strc("Name"), strc("Namespace"),
	},
	TableTypeDef: {
		u32c("Flags"), strc("Name"), strc("Namespace"),
		coded("Extends", TypeDefOrRef),
		idx("FieldList", TableField), idx("MethodList", TableMethodDef),
	},
	TableFieldPtr: {
		idx("Field", TableField),
	},
	TableField: {
		u16c("Flags"), strc("Name"), blobc("Signature"),
	},
	TableMethodPtr: {
		idx("Method", TableMethodDef),
	},
	TableMethodDef: {
		u32c("RVA"), u16c("ImplFlags"), u16c("Flags"),
		strc("Name"), blobc("Signature"), idx("ParamList", TableParam),
	},
	TableParamPtr: {
		idx("Param", TableParam),
	},
	TableParam: {
		u16c("Flags"), u16c("Sequence"), strc("Name"),
	},
	TableInterfaceImpl: {
		idx("Class", TableTypeDef), coded("Interface", TypeDefOrRef),
	},
	TableMemberRef: {
		coded("Class", MemberRefParent), strc("Name"), blobc("Signature"),
	},
	TableConstant: {
		u8("Type"), u8("Padding"), coded("Parent", HasConstant), blobc("Value"),
	},
	TableCustomAttribute: {
		coded("Parent", HasCustomAttribute), coded("Type", CustomAttributeType),
		blobc("Value"),
	},
	TableFieldMarshal: {
		coded("Parent", HasFieldMarshal), blobc("NativeType"),
	},
	TableDeclSecurity: {
		u16c("Action"), coded("Parent", HasDeclSecurity), blobc("PermissionSet"),
	},
	TableClassLayout: {
		u16c("PackingSize"), u32c("ClassSize"), idx("Parent", TableTypeDef),
	},
	TableFieldLayout: {
		u32c("Offset"), idx("Field", TableField),
	},
	TableStandAloneSig: {
		blobc("Signature"),
	},
	TableEventMap: {
		idx("Parent", TableTypeDef), idx("EventList", TableEvent),
	},
	TableEventPtr: {
		idx("Event", TableEvent),
	},
	TableEvent: {
		u16c("EventFlags"), strc("Name"), coded("EventType", TypeDefOrRef),
	},
	TablePropertyMap: {
		idx("Parent", TableTypeDef), idx("PropertyList", TableProperty),
	},
	TablePropertyPtr: {
		idx("Property", TableProperty),
	},
	TableProperty: {
		u16c("Flags"), strc("Name"), blobc("Type"),
	},
	TableMethodSemantics: {
		u16c("Semantics"), idx("Method", TableMethodDef),
		coded("Association", HasSemantics),
	},
	TableMethodImpl: {
		idx("Class", TableTypeDef), coded("MethodBody", MethodDefOrRef),
		coded("MethodDeclaration", MethodDefOrRef),
	},
	TableModuleRef: {
		strc("Name"),
	},
	TableTypeSpec: {
		blobc("Signature"),
	},
	TableImplMap: {
		u16c("MappingFlags"), coded("MemberForwarded", MemberForwarded),
		strc("ImportName"), idx("ImportScope", TableModuleRef),
	},
	TableFieldRVA: {
		u32c("RVA"), idx("Field", TableField),
	},
	TableENCLog: {
		u32c("Token"), u32c("FuncCode"),
	},
	TableENCMap: {
		u32c("Token"),
	},
	TableAssembly: {
		u32c("HashAlgId"), u16c("MajorVersion"), u16c("MinorVersion"),
		u16c("BuildNumber"), u16c("RevisionNumber"), u32c("Flags"),
		blobc("PublicKey"), strc("Name"), strc("Culture"),
	},
	TableAssemblyProcessor: {
		u32c("Processor"),
	},
	TableAssemblyOS: {
		u32c("OSPlatformId"), u32c("OSMajorVersion"), u32c("OSMinorVersion"),
	},
	TableAssemblyRef: {
		u16c("MajorVersion"), u16c("MinorVersion"), u16c("BuildNumber"),
		u16c("RevisionNumber"), u32c("Flags"), blobc("PublicKeyOrToken"),
		strc("Name"), strc("Culture"), blobc("HashValue"),
	},
	TableAssemblyRefProcessor: {
		u32c("Processor"), idx("AssemblyRef", TableAssemblyRef),
	},
	TableAssemblyRefOS: {
		u32c("OSPlatformId"), u32c("OSMajorVersion"), u32c("OSMinorVersion"),
		idx("AssemblyRef", TableAssemblyRef),
	},
	TableFile: {
		u32c("Flags"), strc("Name"), blobc("HashValue"),
	},
	TableExportedType: {
		u32c("Flags"), u32c("TypeDefId"), strc("TypeName"),
		strc("TypeNamespace"), coded("Implementation", Implementation),
	},
	TableManifestResource: {
		u32c("Offset"), u32c("Flags"), strc("Name"),
		coded("Implementation", Implementation),
	},
	TableNestedClass: {
		idx("NestedClass", TableTypeDef), idx("EnclosingClass", TableTypeDef),
	},
	TableGenericParam: {
		u16c("Number"), u16c("Flags"), coded("Owner", TypeOrMethodDef),
		strc("Name"),
	},
	TableMethodSpec: {
		coded("Method", MethodDefOrRef), blobc("Instantiation"),
	},
	TableGenericParamConstraint: {
		idx("Owner", TableGenericParam), coded("Constraint", TypeDefOrRef),
	},
	TableDocument: {
		blobc("Name"), guidc("HashAlgorithm"), blobc("Hash"), guidc("Language"),
	},
	TableMethodDebugInformation: {
		idx("Document", TableDocument), blobc("SequencePoints"),
	},
	TableLocalScope: {
		idx("Method", TableMethodDef), idx("ImportScope", TableImportScope),
		idx("VariableList", TableLocalVariable),
		idx("ConstantList", TableLocalConstant),
		u32c("StartOffset"), u32c("Length"),
	},
	TableLocalVariable: {
		u16c("Attributes"), u16c("Index"), strc("Name"),
	},
	TableLocalConstant: {
		strc("Name"), blobc("Signature"),
	},
	TableImportScope: {
		idx("Parent", TableImportScope), blobc("Imports"),
	},
	TableStateMachineMethod: {
		idx("MoveNextMethod", TableMethodDef), idx("KickoffMethod", TableMethodDef),
	},
	TableCustomDebugInformation: {
		coded("Parent", HasCustomDebugInformation), guidc("Kind"), blobc("Value"),
	},
}

// schema returns the column list for a table kind, or nil for indices the
// format does not define.
func schema(t Table) []column {
	if int(t) >= len(tableSchemas) {
		return nil
	}
	return tableSchemas[t]
}
