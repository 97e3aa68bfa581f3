package model

import (
	"github.com/wippyai/dotnet-metadata/errors"
	"github.com/wippyai/dotnet-metadata/metadata"
)

// TypeDef is a type defined in this module.
type TypeDef struct {
	entity
}

// Flags returns the type's attributes.
func (t *TypeDef) Flags() (TypeAttributes, error) {
	v, err := t.row.Uint(0)
	return TypeAttributes(v), err
}

// Name returns the type's simple name.
func (t *TypeDef) Name() (string, error) {
	return t.str(1)
}

// Namespace returns the type's namespace, empty for nested types and
// types in the global namespace.
func (t *TypeDef) Namespace() (string, error) {
	return t.str(2)
}

// FullName returns the type's display name: namespace-qualified with '.'
// and, for nested types, prefixed with the enclosing type's full name
// joined by '+'. The enclosing chain is walked iteratively with a
// visited set, so a cyclic NestedClass table yields an error instead of
// unbounded recursion.
func (t *TypeDef) FullName() (string, error) {
	name, err := t.Name()
	if err != nil {
		return "", err
	}
	idx, err := t.mod.nestedIndex()
	if err != nil {
		return "", err
	}
	outer := t
	seen := map[uint32]bool{t.key.Row: true}
	for {
		enclosing, ok := idx[outer.key.Row]
		if !ok {
			break
		}
		if seen[enclosing] {
			return "", errors.New(errors.PhaseResolve, errors.KindInvalidRow).
				Table(metadata.TableNestedClass.String()).
				Detail("nesting chain revisits TypeDef row %d", enclosing).
				Build()
		}
		seen[enclosing] = true
		outer, err = t.mod.resolveTypeDef(enclosing)
		if err != nil {
			return "", err
		}
		outerName, err := outer.Name()
		if err != nil {
			return "", err
		}
		name = outerName + "+" + name
	}
	ns, err := outer.Namespace()
	if err != nil {
		return "", err
	}
	if ns == "" {
		return name, nil
	}
	return ns + "." + name, nil
}

// BaseType resolves the Extends column. It returns nil for types with no
// base (interfaces and <Module>); the result is a *TypeDef, *TypeRef or
// *TypeSpec. A type may extend itself in malformed input; resolution
// still terminates because the shell is cached before this accessor can
// run.
func (t *TypeDef) BaseType() (Entity, error) {
	ref, err := t.row.CodedIndex(3)
	if err != nil {
		return nil, err
	}
	return t.mod.Resolve(ref)
}

// Fields resolves the fields owned by this type, in row order.
func (t *TypeDef) Fields() ([]*Field, error) {
	if err := t.mod.ownerLists(); err != nil {
		return nil, err
	}
	lo, hi := childRange(t.mod.fieldStarts, t.key.Row,
		t.mod.root.Tables.RowCount(metadata.TableField))
	fields := make([]*Field, 0, hi-lo)
	for rid := lo; rid < hi; rid++ {
		e, err := t.mod.resolve(Key{Table: metadata.TableField, Row: rid})
		if err != nil {
			return nil, err
		}
		fields = append(fields, e.(*Field))
	}
	return fields, nil
}

// Methods resolves the methods owned by this type, in row order.
func (t *TypeDef) Methods() ([]*Method, error) {
	if err := t.mod.ownerLists(); err != nil {
		return nil, err
	}
	lo, hi := childRange(t.mod.methodStarts, t.key.Row,
		t.mod.root.Tables.RowCount(metadata.TableMethodDef))
	methods := make([]*Method, 0, hi-lo)
	for rid := lo; rid < hi; rid++ {
		e, err := t.mod.resolve(Key{Table: metadata.TableMethodDef, Row: rid})
		if err != nil {
			return nil, err
		}
		methods = append(methods, e.(*Method))
	}
	return methods, nil
}

// Interfaces resolves the interfaces this type implements, in
// InterfaceImpl row order. Results are *TypeDef, *TypeRef or *TypeSpec.
func (t *TypeDef) Interfaces() ([]Entity, error) {
	tables := t.mod.root.Tables
	n := tables.RowCount(metadata.TableInterfaceImpl)
	var out []Entity
	for rid := uint32(1); rid <= n; rid++ {
		row, err := tables.Row(metadata.TableInterfaceImpl, rid)
		if err != nil {
			return nil, err
		}
		class, err := row.Index(0)
		if err != nil {
			return nil, err
		}
		if class.Row != t.key.Row {
			// The table is sorted by Class; once past our row there is
			// nothing left to find.
			if tables.IsSorted(metadata.TableInterfaceImpl) && class.Row > t.key.Row {
				break
			}
			continue
		}
		iface, err := row.CodedIndex(1)
		if err != nil {
			return nil, err
		}
		e, err := t.mod.Resolve(iface)
		if err != nil {
			return nil, err
		}
		if e != nil {
			out = append(out, e)
		}
	}
	return out, nil
}

// DeclaringType resolves the enclosing type for nested types, nil
// otherwise.
func (t *TypeDef) DeclaringType() (*TypeDef, error) {
	idx, err := t.mod.nestedIndex()
	if err != nil {
		return nil, err
	}
	enclosing, ok := idx[t.key.Row]
	if !ok {
		return nil, nil
	}
	return t.mod.resolveTypeDef(enclosing)
}

// NestedTypes resolves the types nested directly inside this one, in
// NestedClass row order.
func (t *TypeDef) NestedTypes() ([]*TypeDef, error) {
	tables := t.mod.root.Tables
	n := tables.RowCount(metadata.TableNestedClass)
	var out []*TypeDef
	for rid := uint32(1); rid <= n; rid++ {
		row, err := tables.Row(metadata.TableNestedClass, rid)
		if err != nil {
			return nil, err
		}
		enclosing, err := row.Index(1)
		if err != nil {
			return nil, err
		}
		if enclosing.Row != t.key.Row {
			continue
		}
		nested, err := row.Index(0)
		if err != nil {
			return nil, err
		}
		td, err := t.mod.resolveTypeDef(nested.Row)
		if err != nil {
			return nil, err
		}
		out = append(out, td)
	}
	return out, nil
}

// TypeRef is a reference to a type defined elsewhere.
type TypeRef struct {
	entity
}

// Name returns the referenced type's simple name.
func (t *TypeRef) Name() (string, error) {
	return t.str(1)
}

// Namespace returns the referenced type's namespace.
func (t *TypeRef) Namespace() (string, error) {
	return t.str(2)
}

// FullName returns the namespace-qualified name.
func (t *TypeRef) FullName() (string, error) {
	name, err := t.Name()
	if err != nil {
		return "", err
	}
	ns, err := t.Namespace()
	if err != nil {
		return "", err
	}
	if ns == "" {
		return name, nil
	}
	return ns + "." + name, nil
}

// Scope resolves the ResolutionScope column: a *Raw Module row, a
// *ModuleRef, an *AssemblyRef, or another *TypeRef for nested references.
// It returns nil for the null scope (exported type lookup applies).
func (t *TypeRef) Scope() (Entity, error) {
	ref, err := t.row.CodedIndex(0)
	if err != nil {
		return nil, err
	}
	return t.mod.Resolve(ref)
}

// TypeSpec is a type described by a signature blob.
type TypeSpec struct {
	entity
}

// Signature returns the raw signature blob. The slice aliases the heap.
func (t *TypeSpec) Signature() ([]byte, error) {
	return t.blob(0)
}
