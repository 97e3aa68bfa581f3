package model

// TypeAttributes is the Flags column of a TypeDef row.
type TypeAttributes uint32

const (
	TypeVisibilityMask    TypeAttributes = 0x00000007
	TypeNotPublic         TypeAttributes = 0x00000000
	TypePublic            TypeAttributes = 0x00000001
	TypeNestedPublic      TypeAttributes = 0x00000002
	TypeNestedPrivate     TypeAttributes = 0x00000003
	TypeNestedFamily      TypeAttributes = 0x00000004
	TypeNestedAssembly    TypeAttributes = 0x00000005
	TypeNestedFamANDAssem TypeAttributes = 0x00000006
	TypeNestedFamORAssem  TypeAttributes = 0x00000007
	TypeLayoutMask        TypeAttributes = 0x00000018
	TypeSequentialLayout  TypeAttributes = 0x00000008
	TypeExplicitLayout    TypeAttributes = 0x00000010
	TypeInterface         TypeAttributes = 0x00000020
	TypeAbstract          TypeAttributes = 0x00000080
	TypeSealed            TypeAttributes = 0x00000100
	TypeSpecialName       TypeAttributes = 0x00000400
	TypeRTSpecialName     TypeAttributes = 0x00000800
	TypeImport            TypeAttributes = 0x00001000
	TypeSerializable      TypeAttributes = 0x00002000
	TypeHasSecurity       TypeAttributes = 0x00040000
	TypeBeforeFieldInit   TypeAttributes = 0x00100000
)

// IsInterface reports whether the type is an interface.
func (a TypeAttributes) IsInterface() bool { return a&TypeInterface != 0 }

// IsAbstract reports whether the type is abstract.
func (a TypeAttributes) IsAbstract() bool { return a&TypeAbstract != 0 }

// IsSealed reports whether the type is sealed.
func (a TypeAttributes) IsSealed() bool { return a&TypeSealed != 0 }

// IsNested reports whether the type's visibility is one of the nested
// kinds.
func (a TypeAttributes) IsNested() bool { return a&TypeVisibilityMask >= TypeNestedPublic }

// FieldAttributes is the Flags column of a Field row.
type FieldAttributes uint16

const (
	FieldAccessMask    FieldAttributes = 0x0007
	FieldPrivate       FieldAttributes = 0x0001
	FieldFamily        FieldAttributes = 0x0004
	FieldPublic        FieldAttributes = 0x0006
	FieldStatic        FieldAttributes = 0x0010
	FieldInitOnly      FieldAttributes = 0x0020
	FieldLiteral       FieldAttributes = 0x0040
	FieldNotSerialized FieldAttributes = 0x0080
	FieldHasRVA        FieldAttributes = 0x0100
	FieldSpecialName   FieldAttributes = 0x0200
	FieldRTSpecialName FieldAttributes = 0x0400
	FieldPinvokeImpl   FieldAttributes = 0x2000
	FieldHasDefault    FieldAttributes = 0x8000
)

// IsStatic reports whether the field is static.
func (a FieldAttributes) IsStatic() bool { return a&FieldStatic != 0 }

// IsLiteral reports whether the field is a compile-time constant.
func (a FieldAttributes) IsLiteral() bool { return a&FieldLiteral != 0 }

// MethodAttributes is the Flags column of a MethodDef row.
type MethodAttributes uint16

const (
	MethodAccessMask    MethodAttributes = 0x0007
	MethodPrivate       MethodAttributes = 0x0001
	MethodFamily        MethodAttributes = 0x0004
	MethodPublic        MethodAttributes = 0x0006
	MethodStatic        MethodAttributes = 0x0010
	MethodFinal         MethodAttributes = 0x0020
	MethodVirtual       MethodAttributes = 0x0040
	MethodHideBySig     MethodAttributes = 0x0080
	MethodNewSlot       MethodAttributes = 0x0100
	MethodAbstract      MethodAttributes = 0x0400
	MethodSpecialName   MethodAttributes = 0x0800
	MethodRTSpecialName MethodAttributes = 0x1000
	MethodPinvokeImpl   MethodAttributes = 0x2000
	MethodHasSecurity   MethodAttributes = 0x4000
)

// IsStatic reports whether the method is static.
func (a MethodAttributes) IsStatic() bool { return a&MethodStatic != 0 }

// IsVirtual reports whether the method is virtual.
func (a MethodAttributes) IsVirtual() bool { return a&MethodVirtual != 0 }

// IsAbstract reports whether the method is abstract.
func (a MethodAttributes) IsAbstract() bool { return a&MethodAbstract != 0 }

// MethodImplAttributes is the ImplFlags column of a MethodDef row.
type MethodImplAttributes uint16

const (
	MethodCodeTypeMask MethodImplAttributes = 0x0003
	MethodCodeIL       MethodImplAttributes = 0x0000
	MethodCodeNative   MethodImplAttributes = 0x0001
	MethodCodeRuntime  MethodImplAttributes = 0x0003
	MethodNoInlining   MethodImplAttributes = 0x0008
	MethodSynchronized MethodImplAttributes = 0x0020
	MethodInternalCall MethodImplAttributes = 0x1000
)

// ParamAttributes is the Flags column of a Param row.
type ParamAttributes uint16

const (
	ParamIn              ParamAttributes = 0x0001
	ParamOut             ParamAttributes = 0x0002
	ParamOptional        ParamAttributes = 0x0010
	ParamHasDefault      ParamAttributes = 0x1000
	ParamHasFieldMarshal ParamAttributes = 0x2000
)

// AssemblyFlags is the Flags column of Assembly and AssemblyRef rows.
type AssemblyFlags uint32

const (
	AssemblyPublicKey    AssemblyFlags = 0x0001
	AssemblyRetargetable AssemblyFlags = 0x0100
)
