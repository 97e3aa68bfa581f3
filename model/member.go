package model

import (
	"github.com/wippyai/dotnet-metadata/metadata"
)

// Field is a field defined in this module.
type Field struct {
	entity
}

// Flags returns the field's attributes.
func (f *Field) Flags() (FieldAttributes, error) {
	v, err := f.row.Uint(0)
	return FieldAttributes(v), err
}

// Name returns the field's name.
func (f *Field) Name() (string, error) {
	return f.str(1)
}

// Signature returns the raw field signature blob. The slice aliases the
// heap.
func (f *Field) Signature() ([]byte, error) {
	return f.blob(2)
}

// DeclaringType resolves the TypeDef whose field list contains this row.
func (f *Field) DeclaringType() (*TypeDef, error) {
	if err := f.mod.ownerLists(); err != nil {
		return nil, err
	}
	owner := ownerOf(f.mod.fieldStarts, f.key.Row)
	if owner == 0 {
		return nil, nil
	}
	return f.mod.resolveTypeDef(owner)
}

// Method is a method defined in this module.
type Method struct {
	entity
}

// RVA returns the method body's relative virtual address, zero for
// abstract and runtime-provided methods.
func (m *Method) RVA() (uint32, error) {
	return m.row.Uint(0)
}

// ImplFlags returns the method's implementation attributes.
func (m *Method) ImplFlags() (MethodImplAttributes, error) {
	v, err := m.row.Uint(1)
	return MethodImplAttributes(v), err
}

// Flags returns the method's attributes.
func (m *Method) Flags() (MethodAttributes, error) {
	v, err := m.row.Uint(2)
	return MethodAttributes(v), err
}

// Name returns the method's name.
func (m *Method) Name() (string, error) {
	return m.str(3)
}

// Signature returns the raw method signature blob. The slice aliases the
// heap.
func (m *Method) Signature() ([]byte, error) {
	return m.blob(4)
}

// Params resolves the parameter rows owned by this method, in row order.
// The return parameter, when present, is the row with sequence zero.
func (m *Method) Params() ([]*Param, error) {
	if err := m.mod.ownerLists(); err != nil {
		return nil, err
	}
	lo, hi := childRange(m.mod.paramStarts, m.key.Row,
		m.mod.root.Tables.RowCount(metadata.TableParam))
	params := make([]*Param, 0, hi-lo)
	for rid := lo; rid < hi; rid++ {
		e, err := m.mod.resolve(Key{Table: metadata.TableParam, Row: rid})
		if err != nil {
			return nil, err
		}
		params = append(params, e.(*Param))
	}
	return params, nil
}

// DeclaringType resolves the TypeDef whose method list contains this row.
func (m *Method) DeclaringType() (*TypeDef, error) {
	if err := m.mod.ownerLists(); err != nil {
		return nil, err
	}
	owner := ownerOf(m.mod.methodStarts, m.key.Row)
	if owner == 0 {
		return nil, nil
	}
	return m.mod.resolveTypeDef(owner)
}

// Param is a parameter row of a method.
type Param struct {
	entity
}

// Flags returns the parameter's attributes.
func (p *Param) Flags() (ParamAttributes, error) {
	v, err := p.row.Uint(0)
	return ParamAttributes(v), err
}

// Sequence returns the parameter's position: zero for the return
// parameter, one for the first argument.
func (p *Param) Sequence() (uint16, error) {
	v, err := p.row.Uint(1)
	return uint16(v), err
}

// Name returns the parameter's name, often empty for return parameters.
func (p *Param) Name() (string, error) {
	return p.str(2)
}

// Method resolves the method whose parameter list contains this row.
func (p *Param) Method() (*Method, error) {
	if err := p.mod.ownerLists(); err != nil {
		return nil, err
	}
	owner := ownerOf(p.mod.paramStarts, p.key.Row)
	if owner == 0 {
		return nil, nil
	}
	e, err := p.mod.resolve(Key{Table: metadata.TableMethodDef, Row: owner})
	if err != nil {
		return nil, err
	}
	return e.(*Method), nil
}

// MemberRef is a reference to a field or method defined elsewhere.
type MemberRef struct {
	entity
}

// Class resolves the MemberRefParent column: the *TypeRef, *TypeDef,
// *TypeSpec, *ModuleRef or *Method owning the referenced member.
func (r *MemberRef) Class() (Entity, error) {
	ref, err := r.row.CodedIndex(0)
	if err != nil {
		return nil, err
	}
	return r.mod.Resolve(ref)
}

// Name returns the referenced member's name.
func (r *MemberRef) Name() (string, error) {
	return r.str(1)
}

// Signature returns the raw member signature blob. The slice aliases the
// heap.
func (r *MemberRef) Signature() ([]byte, error) {
	return r.blob(2)
}
