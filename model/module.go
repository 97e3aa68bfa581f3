package model

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wippyai/dotnet-metadata/errors"
	"github.com/wippyai/dotnet-metadata/metadata"
	"github.com/wippyai/dotnet-metadata/peimage"
)

// defaultMaxMajorVersion is the highest table stream major version the
// loader accepts unless overridden.
const defaultMaxMajorVersion = 2

type options struct {
	maxMajor uint8
}

// Option configures Load and LoadMetadata.
type Option func(*options)

// WithMaxMajorVersion raises (or lowers) the highest accepted table
// stream major version.
func WithMaxMajorVersion(v uint8) Option {
	return func(o *options) { o.maxMajor = v }
}

// Module is the root of the resolved object graph for one assembly
// module. Entities are resolved on first access and cached by (table,
// row) key for the life of the Module; the cache is never evicted, so a
// key always resolves to the same pointer.
//
// Module is safe for concurrent use.
type Module struct {
	root   *metadata.Root
	header *peimage.Cor20Header

	mu    sync.Mutex
	cache map[Key]Entity

	listsOnce    sync.Once
	listsErr     error
	fieldStarts  []uint32
	methodStarts []uint32
	paramStarts  []uint32

	nestedOnce sync.Once
	nestedErr  error
	nestedIn   map[uint32]uint32

	namesOnce sync.Once
	namesErr  error
	names     map[typeName]uint32
}

// typeName keys the type-name index: the TypeDef row's own namespace and
// name columns, not the folded nested display name.
type typeName struct {
	namespace string
	name      string
}

// Load opens the object graph of a managed image: it locates the CLR
// runtime header through the image's data directory, resolves the
// metadata root it points at, and decodes it.
func Load(img peimage.Image, opts ...Option) (*Module, error) {
	rva, size, err := img.CLRDirectory()
	if err != nil {
		return nil, err
	}
	hdrBytes, err := img.ResolveRVA(rva, size)
	if err != nil {
		return nil, err
	}
	header, err := peimage.DecodeCor20(hdrBytes)
	if err != nil {
		return nil, err
	}
	metaBytes, err := img.ResolveRVA(header.MetadataRVA, header.MetadataSize)
	if err != nil {
		return nil, err
	}
	root, err := metadata.DecodeRoot(metaBytes)
	if err != nil {
		return nil, err
	}
	m, err := newModule(root, opts)
	if err != nil {
		return nil, err
	}
	m.header = &header
	Logger().Debug("loaded module",
		zap.String("version", root.Version),
		zap.Uint32("entry point", header.EntryPointToken),
	)
	return m, nil
}

// LoadMetadata builds the object graph over an already decoded metadata
// root, for callers that obtained the metadata bytes by other means. The
// resulting Module has no runtime header, so EntryPointToken is null.
func LoadMetadata(root *metadata.Root, opts ...Option) (*Module, error) {
	return newModule(root, opts)
}

func newModule(root *metadata.Root, opts []Option) (*Module, error) {
	o := options{maxMajor: defaultMaxMajorVersion}
	for _, opt := range opts {
		opt(&o)
	}
	if root.Tables.MajorVersion > o.maxMajor {
		return nil, errors.UnsupportedVersion("table stream version %d.%d exceeds supported major %d",
			root.Tables.MajorVersion, root.Tables.MinorVersion, o.maxMajor)
	}
	if n := root.Tables.RowCount(metadata.TableModule); n != 1 {
		return nil, errors.NotManagedAssembly(
			fmt.Sprintf("metadata has %d Module rows, want exactly one", n))
	}
	return &Module{
		root:  root,
		cache: make(map[Key]Entity),
	}, nil
}

// Metadata returns the underlying physical metadata.
func (m *Module) Metadata() *metadata.Root {
	return m.root
}

// Name returns the module's name from the Module table.
func (m *Module) Name() (string, error) {
	row, err := m.root.Tables.Row(metadata.TableModule, 1)
	if err != nil {
		return "", err
	}
	off, err := row.StringOffset(1)
	if err != nil {
		return "", err
	}
	return m.root.Strings.String(off)
}

// MVID returns the module version identifier.
func (m *Module) MVID() (uuid.UUID, error) {
	row, err := m.root.Tables.Row(metadata.TableModule, 1)
	if err != nil {
		return uuid.Nil, err
	}
	idx, err := row.GUIDIndex(2)
	if err != nil {
		return uuid.Nil, err
	}
	return m.root.GUIDs.GUID(idx)
}

// EntryPointToken returns the managed entry point token from the runtime
// header, or the null token when the module was loaded without one.
func (m *Module) EntryPointToken() Token {
	if m.header == nil {
		return 0
	}
	return Token(m.header.EntryPointToken)
}

// EntryPoint resolves the entry point token. It returns nil for modules
// without an entry point.
func (m *Module) EntryPoint() (Entity, error) {
	tok := m.EntryPointToken()
	if tok.IsNull() {
		return nil, nil
	}
	return m.resolve(tok.Key())
}

// Resolve returns the entity for a table reference, resolving it on first
// use. Null references resolve to nil.
func (m *Module) Resolve(ref metadata.TableRef) (Entity, error) {
	if ref.IsNull() {
		return nil, nil
	}
	return m.resolve(Key{Table: ref.Table, Row: ref.Row})
}

// resolve is the cache's single entry point. The entity shell goes into
// the cache before any of its columns can be read, so cyclic references
// terminate here with a cache hit instead of recursing.
func (m *Module) resolve(key Key) (Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.cache[key]; ok {
		return e, nil
	}
	e, err := m.newEntity(key)
	if err != nil {
		return nil, err
	}
	m.cache[key] = e
	return e, nil
}

// newEntity validates the key against the table stream and allocates the
// typed shell. It must not resolve other entities; see resolve.
func (m *Module) newEntity(key Key) (Entity, error) {
	row, err := m.root.Tables.Row(key.Table, key.Row)
	if err != nil {
		return nil, err
	}
	base := entity{mod: m, key: key, row: row}
	switch key.Table {
	case metadata.TableTypeDef:
		return &TypeDef{entity: base}, nil
	case metadata.TableTypeRef:
		return &TypeRef{entity: base}, nil
	case metadata.TableTypeSpec:
		return &TypeSpec{entity: base}, nil
	case metadata.TableField:
		return &Field{entity: base}, nil
	case metadata.TableMethodDef:
		return &Method{entity: base}, nil
	case metadata.TableParam:
		return &Param{entity: base}, nil
	case metadata.TableMemberRef:
		return &MemberRef{entity: base}, nil
	case metadata.TableModuleRef:
		return &ModuleRef{entity: base}, nil
	case metadata.TableAssembly:
		return &Assembly{entity: base}, nil
	case metadata.TableAssemblyRef:
		return &AssemblyRef{entity: base}, nil
	default:
		return &Raw{entity: base}, nil
	}
}

// resolveTypeDef resolves a key known to be a TypeDef row.
func (m *Module) resolveTypeDef(rid uint32) (*TypeDef, error) {
	e, err := m.resolve(Key{Table: metadata.TableTypeDef, Row: rid})
	if err != nil {
		return nil, err
	}
	return e.(*TypeDef), nil
}

// Types resolves every TypeDef row, in row order.
func (m *Module) Types() ([]*TypeDef, error) {
	n := m.root.Tables.RowCount(metadata.TableTypeDef)
	types := make([]*TypeDef, 0, n)
	for rid := uint32(1); rid <= n; rid++ {
		t, err := m.resolveTypeDef(rid)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

// TypeByName finds a TypeDef by namespace and name. It returns nil when
// no type matches. Nested type names are not folded here; match against
// the row's own Name and Namespace columns. The lookup index is built on
// first use; later duplicate (namespace, name) pairs lose to earlier rows.
func (m *Module) TypeByName(namespace, name string) (*TypeDef, error) {
	if err := m.nameIndex(); err != nil {
		return nil, err
	}
	rid, ok := m.names[typeName{namespace: namespace, name: name}]
	if !ok {
		return nil, nil
	}
	return m.resolveTypeDef(rid)
}

func (m *Module) nameIndex() error {
	m.namesOnce.Do(func() {
		n := m.root.Tables.RowCount(metadata.TableTypeDef)
		idx := make(map[typeName]uint32, n)
		for rid := uint32(1); rid <= n; rid++ {
			row, err := m.root.Tables.Row(metadata.TableTypeDef, rid)
			if err != nil {
				m.namesErr = err
				return
			}
			name, err := m.rowString(row, 1)
			if err != nil {
				m.namesErr = err
				return
			}
			ns, err := m.rowString(row, 2)
			if err != nil {
				m.namesErr = err
				return
			}
			key := typeName{namespace: ns, name: name}
			if _, dup := idx[key]; !dup {
				idx[key] = rid
			}
		}
		m.names = idx
	})
	return m.namesErr
}

// Fields resolves every Field row in the module, in row order, regardless
// of owning type.
func (m *Module) Fields() ([]*Field, error) {
	n := m.root.Tables.RowCount(metadata.TableField)
	fields := make([]*Field, 0, n)
	for rid := uint32(1); rid <= n; rid++ {
		e, err := m.resolve(Key{Table: metadata.TableField, Row: rid})
		if err != nil {
			return nil, err
		}
		fields = append(fields, e.(*Field))
	}
	return fields, nil
}

// Methods resolves every MethodDef row in the module, in row order.
func (m *Module) Methods() ([]*Method, error) {
	n := m.root.Tables.RowCount(metadata.TableMethodDef)
	methods := make([]*Method, 0, n)
	for rid := uint32(1); rid <= n; rid++ {
		e, err := m.resolve(Key{Table: metadata.TableMethodDef, Row: rid})
		if err != nil {
			return nil, err
		}
		methods = append(methods, e.(*Method))
	}
	return methods, nil
}

// Params resolves every Param row in the module, in row order.
func (m *Module) Params() ([]*Param, error) {
	n := m.root.Tables.RowCount(metadata.TableParam)
	params := make([]*Param, 0, n)
	for rid := uint32(1); rid <= n; rid++ {
		e, err := m.resolve(Key{Table: metadata.TableParam, Row: rid})
		if err != nil {
			return nil, err
		}
		params = append(params, e.(*Param))
	}
	return params, nil
}

// TypeRefs resolves every TypeRef row, in row order.
func (m *Module) TypeRefs() ([]*TypeRef, error) {
	n := m.root.Tables.RowCount(metadata.TableTypeRef)
	refs := make([]*TypeRef, 0, n)
	for rid := uint32(1); rid <= n; rid++ {
		e, err := m.resolve(Key{Table: metadata.TableTypeRef, Row: rid})
		if err != nil {
			return nil, err
		}
		refs = append(refs, e.(*TypeRef))
	}
	return refs, nil
}

// TypeSpecs resolves every TypeSpec row, in row order.
func (m *Module) TypeSpecs() ([]*TypeSpec, error) {
	n := m.root.Tables.RowCount(metadata.TableTypeSpec)
	specs := make([]*TypeSpec, 0, n)
	for rid := uint32(1); rid <= n; rid++ {
		e, err := m.resolve(Key{Table: metadata.TableTypeSpec, Row: rid})
		if err != nil {
			return nil, err
		}
		specs = append(specs, e.(*TypeSpec))
	}
	return specs, nil
}

// Assembly returns the module's Assembly row, or nil for module-only
// metadata (netmodules carry no Assembly table).
func (m *Module) Assembly() (*Assembly, error) {
	if m.root.Tables.RowCount(metadata.TableAssembly) == 0 {
		return nil, nil
	}
	e, err := m.resolve(Key{Table: metadata.TableAssembly, Row: 1})
	if err != nil {
		return nil, err
	}
	return e.(*Assembly), nil
}

// AssemblyRefs resolves every AssemblyRef row, in row order.
func (m *Module) AssemblyRefs() ([]*AssemblyRef, error) {
	n := m.root.Tables.RowCount(metadata.TableAssemblyRef)
	refs := make([]*AssemblyRef, 0, n)
	for rid := uint32(1); rid <= n; rid++ {
		e, err := m.resolve(Key{Table: metadata.TableAssemblyRef, Row: rid})
		if err != nil {
			return nil, err
		}
		refs = append(refs, e.(*AssemblyRef))
	}
	return refs, nil
}

// ModuleRefs resolves every ModuleRef row, in row order.
func (m *Module) ModuleRefs() ([]*ModuleRef, error) {
	n := m.root.Tables.RowCount(metadata.TableModuleRef)
	refs := make([]*ModuleRef, 0, n)
	for rid := uint32(1); rid <= n; rid++ {
		e, err := m.resolve(Key{Table: metadata.TableModuleRef, Row: rid})
		if err != nil {
			return nil, err
		}
		refs = append(refs, e.(*ModuleRef))
	}
	return refs, nil
}

func (m *Module) rowString(row metadata.Row, col int) (string, error) {
	off, err := row.StringOffset(col)
	if err != nil {
		return "", err
	}
	return m.root.Strings.String(off)
}

// ownerLists builds the run-length list start arrays used for both
// forward (owner to children) and reverse (child to owner) lookups. The
// arrays are read once and shared; the format requires list pointers to
// be non-decreasing across rows.
func (m *Module) ownerLists() error {
	m.listsOnce.Do(func() {
		m.fieldStarts, m.listsErr = m.readStarts(metadata.TableTypeDef, 4)
		if m.listsErr != nil {
			return
		}
		m.methodStarts, m.listsErr = m.readStarts(metadata.TableTypeDef, 5)
		if m.listsErr != nil {
			return
		}
		m.paramStarts, m.listsErr = m.readStarts(metadata.TableMethodDef, 5)
	})
	return m.listsErr
}

func (m *Module) readStarts(owner metadata.Table, col int) ([]uint32, error) {
	n := m.root.Tables.RowCount(owner)
	starts := make([]uint32, n)
	var prev uint32
	for rid := uint32(1); rid <= n; rid++ {
		row, err := m.root.Tables.Row(owner, rid)
		if err != nil {
			return nil, err
		}
		ref, err := row.Index(col)
		if err != nil {
			return nil, err
		}
		// The binary search in ownerOf needs the column non-decreasing;
		// a row that steps backwards is structurally broken.
		if ref.Row < prev {
			return nil, errors.New(errors.PhaseResolve, errors.KindInvalidRow).
				Table(owner.String()).
				Detail("list pointer %d at row %d is below the previous row's %d",
					ref.Row, rid, prev).
				Build()
		}
		prev = ref.Row
		starts[rid-1] = ref.Row
	}
	return starts, nil
}

// childRange returns the half-open child rid range [lo, hi) owned by the
// owner row rid. The owner's range ends where the next owner's begins, or
// one past the child table for the last owner.
func childRange(starts []uint32, rid, childCount uint32) (lo, hi uint32) {
	lo = starts[rid-1]
	if lo == 0 {
		return 0, 0
	}
	hi = childCount + 1
	if int(rid) < len(starts) && starts[rid] != 0 {
		hi = starts[rid]
	}
	if lo > hi {
		lo = hi
	}
	return lo, hi
}

// ownerOf finds the 1-based owner row whose child range contains rid,
// assuming starts is non-decreasing.
func ownerOf(starts []uint32, rid uint32) uint32 {
	i := sort.Search(len(starts), func(i int) bool { return starts[i] > rid })
	return uint32(i)
}

// nestedIndex maps nested TypeDef rids to their enclosing TypeDef rids,
// built once from the NestedClass table.
func (m *Module) nestedIndex() (map[uint32]uint32, error) {
	m.nestedOnce.Do(func() {
		n := m.root.Tables.RowCount(metadata.TableNestedClass)
		idx := make(map[uint32]uint32, n)
		for rid := uint32(1); rid <= n; rid++ {
			row, err := m.root.Tables.Row(metadata.TableNestedClass, rid)
			if err != nil {
				m.nestedErr = err
				return
			}
			nested, err := row.Index(0)
			if err != nil {
				m.nestedErr = err
				return
			}
			enclosing, err := row.Index(1)
			if err != nil {
				m.nestedErr = err
				return
			}
			if nested.IsNull() || enclosing.IsNull() {
				continue
			}
			idx[nested.Row] = enclosing.Row
		}
		m.nestedIn = idx
	})
	return m.nestedIn, m.nestedErr
}
