package model

import (
	"fmt"

	"github.com/wippyai/dotnet-metadata/metadata"
)

// Key identifies an entity: a table kind and a 1-based row index. It is
// the resolution cache key, so two resolves of the same key always yield
// the same entity pointer.
type Key struct {
	Table metadata.Table
	Row   uint32
}

// String formats the key as table name plus row, e.g. "TypeDef[3]".
func (k Key) String() string {
	return fmt.Sprintf("%s[%d]", k.Table, k.Row)
}

// Entity is a node of the resolved object graph. Concrete entities are
// *TypeDef, *TypeRef, *TypeSpec, *Field, *Method, *Param, *ModuleRef,
// *Assembly, *AssemblyRef, *MemberRef, and *Raw for tables without a
// dedicated type.
type Entity interface {
	// Key returns the entity's cache key.
	Key() Key

	// Module returns the module the entity was resolved from.
	Module() *Module
}

// entity is the shared base of all concrete entities. It is allocated and
// cached before any column is read, so reference cycles terminate at the
// cache instead of recursing.
type entity struct {
	mod *Module
	key Key
	row metadata.Row
}

func (e *entity) Key() Key        { return e.key }
func (e *entity) Module() *Module { return e.mod }

// str resolves a #Strings column of the entity's row.
func (e *entity) str(col int) (string, error) {
	off, err := e.row.StringOffset(col)
	if err != nil {
		return "", err
	}
	return e.mod.root.Strings.String(off)
}

// blob resolves a #Blob column of the entity's row.
func (e *entity) blob(col int) ([]byte, error) {
	off, err := e.row.BlobOffset(col)
	if err != nil {
		return nil, err
	}
	return e.mod.root.Blobs.Blob(off)
}

// Token is a 4-byte metadata token: table kind in the top byte, 1-based
// row index in the low three bytes.
type Token uint32

// Table returns the token's table kind.
func (t Token) Table() metadata.Table { return metadata.Table(t >> 24) }

// Rid returns the token's 1-based row index.
func (t Token) Rid() uint32 { return uint32(t) & 0x00FFFFFF }

// IsNull reports whether the token has a zero row index.
func (t Token) IsNull() bool { return t.Rid() == 0 }

// Key converts the token to a cache key.
func (t Token) Key() Key { return Key{Table: t.Table(), Row: t.Rid()} }

// String formats the token in the conventional 8-digit hex form.
func (t Token) String() string { return fmt.Sprintf("0x%08x", uint32(t)) }
