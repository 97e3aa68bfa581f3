package model_test

import (
	stderrors "errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	mderrors "github.com/wippyai/dotnet-metadata/errors"
	"github.com/wippyai/dotnet-metadata/internal/mdtest"
	"github.com/wippyai/dotnet-metadata/metadata"
	"github.com/wippyai/dotnet-metadata/model"
	"github.com/wippyai/dotnet-metadata/peimage"
)

var testMvid = uuid.MustParse("dec0de00-1111-2222-3333-444444444444")

// buildFixture assembles a module with this shape:
//
//	<Module>                      (TypeDef 1, owns nothing)
//	Demo.Widget : System.Object   (TypeDef 2, fields count+name, methods Run+Stop)
//	Demo.Gadget : Demo.Gadget     (TypeDef 3, self-referential base, owns nothing)
//	Inner                         (TypeDef 4, nested in Widget, field inner, method Get)
//
// Widget implements System.IDisposable; Run has one parameter.
func buildFixture() *mdtest.Builder {
	b := mdtest.New()
	b.AddModule(b.AddString("app.dll"), b.AddGUID(testMvid))

	b.AddAssemblyRef(4, 0, 0, 0, 0, b.AddBlob([]byte{1, 2, 3}),
		b.AddString("System.Runtime"), 0, 0)

	// Both references are scoped to AssemblyRef row 1.
	system := b.AddString("System")
	objectRef := b.AddTypeRef(1<<2|2, b.AddString("Object"), system)
	disposableRef := b.AddTypeRef(1<<2|2, b.AddString("IDisposable"), system)

	fieldSig := b.AddBlob([]byte{0x06, 0x08})
	b.AddField(uint32(model.FieldPrivate), b.AddString("count"), fieldSig)
	b.AddField(uint32(model.FieldPublic|model.FieldStatic), b.AddString("name"), fieldSig)
	b.AddField(uint32(model.FieldPrivate), b.AddString("inner"), fieldSig)

	methodSig := b.AddBlob([]byte{0x20, 0x01, 0x01, 0x0E})
	b.AddMethodDef(0x2050, 0, uint32(model.MethodPublic), b.AddString("Run"), methodSig, 1)
	b.AddMethodDef(0x2080, 0, uint32(model.MethodPublic|model.MethodStatic), b.AddString("Stop"), methodSig, 2)
	b.AddMethodDef(0x20A0, 0, uint32(model.MethodPrivate), b.AddString("Get"), methodSig, 2)

	b.AddParam(0, 1, b.AddString("input"))

	demo := b.AddString("Demo")
	b.AddTypeDef(0, b.AddString("<Module>"), 0, 0, 1, 1)
	widget := b.AddTypeDef(uint32(model.TypePublic), b.AddString("Widget"), demo,
		objectRef<<2|1, 1, 1)
	gadget := b.AddTypeDef(uint32(model.TypePublic), b.AddString("Gadget"), demo,
		0, 3, 3)
	inner := b.AddTypeDef(uint32(model.TypeNestedPrivate), b.AddString("Inner"), 0,
		objectRef<<2|1, 3, 3)

	// Gadget extends itself. The raw value can only be written after the
	// row exists, so patch it in place.
	b.PatchTypeDefExtends(gadget, gadget<<2|0)

	b.AddInterfaceImpl(widget, disposableRef<<2|1)
	b.MarkSorted(uint8(metadata.TableInterfaceImpl))

	b.AddNestedClass(inner, widget)
	b.MarkSorted(uint8(metadata.TableNestedClass))

	b.AddAssembly(0x8004, 1, 2, 3, 4, 0, 0, b.AddString("App"), 0)
	return b
}

func loadFixture(t *testing.T) *model.Module {
	t.Helper()
	root, err := metadata.DecodeRoot(buildFixture().Build())
	if err != nil {
		t.Fatal(err)
	}
	mod, err := model.LoadMetadata(root)
	if err != nil {
		t.Fatal(err)
	}
	return mod
}

func TestModuleIdentity(t *testing.T) {
	mod := loadFixture(t)

	name, err := mod.Name()
	if err != nil || name != "app.dll" {
		t.Errorf("Name = (%q, %v), want app.dll", name, err)
	}
	mvid, err := mod.MVID()
	if err != nil || mvid != testMvid {
		t.Errorf("MVID = (%v, %v), want %v", mvid, err, testMvid)
	}
}

func TestTypesAndFullNames(t *testing.T) {
	mod := loadFixture(t)
	types, err := mod.Types()
	if err != nil {
		t.Fatal(err)
	}
	if len(types) != 4 {
		t.Fatalf("len(Types) = %d, want 4", len(types))
	}

	want := []string{"<Module>", "Demo.Widget", "Demo.Gadget", "Demo.Widget+Inner"}
	for i, typ := range types {
		got, err := typ.FullName()
		if err != nil {
			t.Fatal(err)
		}
		if got != want[i] {
			t.Errorf("Types[%d].FullName = %q, want %q", i, got, want[i])
		}
	}
}

func TestTypeByName(t *testing.T) {
	mod := loadFixture(t)

	typ, err := mod.TypeByName("Demo", "Widget")
	if err != nil {
		t.Fatal(err)
	}
	if typ == nil {
		t.Fatal("Widget not found")
	}
	if typ.Key() != (model.Key{Table: metadata.TableTypeDef, Row: 2}) {
		t.Errorf("Key = %v, want TypeDef[2]", typ.Key())
	}

	missing, err := mod.TypeByName("Demo", "Missing")
	if err != nil || missing != nil {
		t.Errorf("missing type = (%v, %v), want nil", missing, err)
	}
}

func TestBaseType(t *testing.T) {
	mod := loadFixture(t)
	widget, err := mod.TypeByName("Demo", "Widget")
	if err != nil {
		t.Fatal(err)
	}

	base, err := widget.BaseType()
	if err != nil {
		t.Fatal(err)
	}
	ref, ok := base.(*model.TypeRef)
	if !ok {
		t.Fatalf("base type is %T, want *TypeRef", base)
	}
	full, err := ref.FullName()
	if err != nil || full != "System.Object" {
		t.Errorf("base FullName = (%q, %v), want System.Object", full, err)
	}

	scope, err := ref.Scope()
	if err != nil {
		t.Fatal(err)
	}
	asmRef, ok := scope.(*model.AssemblyRef)
	if !ok {
		t.Fatalf("scope is %T, want *AssemblyRef", scope)
	}
	name, err := asmRef.Name()
	if err != nil || name != "System.Runtime" {
		t.Errorf("scope name = (%q, %v), want System.Runtime", name, err)
	}
}

func TestSelfReferentialBaseTypeTerminates(t *testing.T) {
	mod := loadFixture(t)
	gadget, err := mod.TypeByName("Demo", "Gadget")
	if err != nil {
		t.Fatal(err)
	}

	base, err := gadget.BaseType()
	if err != nil {
		t.Fatal(err)
	}
	if base != model.Entity(gadget) {
		t.Error("self-referential base did not resolve to the same entity")
	}
}

func TestOwnershipRanges(t *testing.T) {
	mod := loadFixture(t)
	types, err := mod.Types()
	if err != nil {
		t.Fatal(err)
	}
	moduleType, widget, gadget, inner := types[0], types[1], types[2], types[3]

	assertFieldNames := func(typ *model.TypeDef, want []string) {
		t.Helper()
		fields, err := typ.Fields()
		if err != nil {
			t.Fatal(err)
		}
		if len(fields) != len(want) {
			t.Fatalf("len(Fields) = %d, want %d", len(fields), len(want))
		}
		for i, f := range fields {
			name, err := f.Name()
			if err != nil || name != want[i] {
				t.Errorf("field %d = (%q, %v), want %q", i, name, err, want[i])
			}
		}
	}

	assertFieldNames(moduleType, nil)
	assertFieldNames(widget, []string{"count", "name"})
	assertFieldNames(gadget, nil)
	assertFieldNames(inner, []string{"inner"})

	methods, err := widget.Methods()
	if err != nil {
		t.Fatal(err)
	}
	if len(methods) != 2 {
		t.Fatalf("len(widget.Methods) = %d, want 2", len(methods))
	}

	params, err := methods[0].Params()
	if err != nil {
		t.Fatal(err)
	}
	if len(params) != 1 {
		t.Fatalf("len(Run.Params) = %d, want 1", len(params))
	}
	pname, err := params[0].Name()
	if err != nil || pname != "input" {
		t.Errorf("param = (%q, %v), want input", pname, err)
	}

	stopParams, err := methods[1].Params()
	if err != nil || len(stopParams) != 0 {
		t.Errorf("Stop params = (%d, %v), want none", len(stopParams), err)
	}
}

func TestReverseOwnership(t *testing.T) {
	mod := loadFixture(t)

	field, err := mod.Resolve(metadata.TableRef{Table: metadata.TableField, Row: 2})
	if err != nil {
		t.Fatal(err)
	}
	owner, err := field.(*model.Field).DeclaringType()
	if err != nil {
		t.Fatal(err)
	}
	name, err := owner.Name()
	if err != nil || name != "Widget" {
		t.Errorf("field 2 owner = (%q, %v), want Widget", name, err)
	}

	lastField, err := mod.Resolve(metadata.TableRef{Table: metadata.TableField, Row: 3})
	if err != nil {
		t.Fatal(err)
	}
	owner, err = lastField.(*model.Field).DeclaringType()
	if err != nil {
		t.Fatal(err)
	}
	name, err = owner.Name()
	if err != nil || name != "Inner" {
		t.Errorf("field 3 owner = (%q, %v), want Inner", name, err)
	}

	param, err := mod.Resolve(metadata.TableRef{Table: metadata.TableParam, Row: 1})
	if err != nil {
		t.Fatal(err)
	}
	method, err := param.(*model.Param).Method()
	if err != nil {
		t.Fatal(err)
	}
	mname, err := method.Name()
	if err != nil || mname != "Run" {
		t.Errorf("param 1 method = (%q, %v), want Run", mname, err)
	}
}

func TestNesting(t *testing.T) {
	mod := loadFixture(t)
	widget, err := mod.TypeByName("Demo", "Widget")
	if err != nil {
		t.Fatal(err)
	}

	nested, err := widget.NestedTypes()
	if err != nil {
		t.Fatal(err)
	}
	if len(nested) != 1 {
		t.Fatalf("len(NestedTypes) = %d, want 1", len(nested))
	}
	decl, err := nested[0].DeclaringType()
	if err != nil {
		t.Fatal(err)
	}
	if decl != widget {
		t.Error("DeclaringType is not the enclosing entity")
	}

	top, err := widget.DeclaringType()
	if err != nil || top != nil {
		t.Errorf("top-level DeclaringType = (%v, %v), want nil", top, err)
	}
}

func TestFullNameCyclicNesting(t *testing.T) {
	// Two types each declared nested in the other. The walk up the
	// enclosing chain must fail instead of recursing forever.
	b := mdtest.New()
	b.AddModule(b.AddString("cyclic.dll"), b.AddGUID(testMvid))
	b.AddTypeDef(0, b.AddString("<Module>"), 0, 0, 1, 1)
	outer := b.AddTypeDef(uint32(model.TypeNestedPrivate), b.AddString("Outer"), 0, 0, 1, 1)
	inner := b.AddTypeDef(uint32(model.TypeNestedPrivate), b.AddString("Inner"), 0, 0, 1, 1)
	b.AddNestedClass(outer, inner)
	b.AddNestedClass(inner, outer)
	b.MarkSorted(uint8(metadata.TableNestedClass))

	root, err := metadata.DecodeRoot(b.Build())
	if err != nil {
		t.Fatal(err)
	}
	mod, err := model.LoadMetadata(root)
	if err != nil {
		t.Fatal(err)
	}
	e, err := mod.Resolve(metadata.TableRef{Table: metadata.TableTypeDef, Row: outer})
	if err != nil {
		t.Fatal(err)
	}

	_, err = e.(*model.TypeDef).FullName()
	want := &mderrors.Error{Phase: mderrors.PhaseResolve, Kind: mderrors.KindInvalidRow}
	if !stderrors.Is(err, want) {
		t.Errorf("got %v, want invalid row", err)
	}
}

func TestFieldListMustNotDecrease(t *testing.T) {
	// A fieldList pointer of 0 after a nonzero one breaks the
	// non-decreasing ordering the reverse owner lookup depends on.
	b := mdtest.New()
	b.AddModule(b.AddString("broken.dll"), b.AddGUID(testMvid))
	b.AddField(0, b.AddString("x"), b.AddBlob([]byte{0x06, 0x08}))
	b.AddTypeDef(0, b.AddString("<Module>"), 0, 0, 1, 1)
	b.AddTypeDef(0, b.AddString("A"), 0, 0, 2, 1)
	b.AddTypeDef(0, b.AddString("B"), 0, 0, 0, 1)

	root, err := metadata.DecodeRoot(b.Build())
	if err != nil {
		t.Fatal(err)
	}
	mod, err := model.LoadMetadata(root)
	if err != nil {
		t.Fatal(err)
	}
	types, err := mod.Types()
	if err != nil {
		t.Fatal(err)
	}

	_, err = types[0].Fields()
	want := &mderrors.Error{Phase: mderrors.PhaseResolve, Kind: mderrors.KindInvalidRow}
	if !stderrors.Is(err, want) {
		t.Errorf("got %v, want invalid row", err)
	}
}

func TestInterfaces(t *testing.T) {
	mod := loadFixture(t)
	widget, err := mod.TypeByName("Demo", "Widget")
	if err != nil {
		t.Fatal(err)
	}

	ifaces, err := widget.Interfaces()
	if err != nil {
		t.Fatal(err)
	}
	if len(ifaces) != 1 {
		t.Fatalf("len(Interfaces) = %d, want 1", len(ifaces))
	}
	full, err := ifaces[0].(*model.TypeRef).FullName()
	if err != nil || full != "System.IDisposable" {
		t.Errorf("interface = (%q, %v), want System.IDisposable", full, err)
	}

	gadget, err := mod.TypeByName("Demo", "Gadget")
	if err != nil {
		t.Fatal(err)
	}
	none, err := gadget.Interfaces()
	if err != nil || len(none) != 0 {
		t.Errorf("Gadget interfaces = (%d, %v), want none", len(none), err)
	}
}

func TestAssemblyManifest(t *testing.T) {
	mod := loadFixture(t)

	asm, err := mod.Assembly()
	if err != nil {
		t.Fatal(err)
	}
	if asm == nil {
		t.Fatal("Assembly() = nil")
	}
	name, err := asm.Name()
	if err != nil || name != "App" {
		t.Errorf("Name = (%q, %v), want App", name, err)
	}
	version, err := asm.Version()
	if err != nil || version.String() != "1.2.3.4" {
		t.Errorf("Version = (%v, %v), want 1.2.3.4", version, err)
	}

	refs, err := mod.AssemblyRefs()
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 1 {
		t.Fatalf("len(AssemblyRefs) = %d, want 1", len(refs))
	}
}

func TestResolveIdempotent(t *testing.T) {
	mod := loadFixture(t)
	ref := metadata.TableRef{Table: metadata.TableTypeDef, Row: 2}

	first, err := mod.Resolve(ref)
	if err != nil {
		t.Fatal(err)
	}
	second, err := mod.Resolve(ref)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("two resolves of the same key returned different entities")
	}
}

func TestResolveNullAndInvalid(t *testing.T) {
	mod := loadFixture(t)

	e, err := mod.Resolve(metadata.TableRef{})
	if err != nil || e != nil {
		t.Errorf("null ref = (%v, %v), want nil", e, err)
	}

	_, err = mod.Resolve(metadata.TableRef{Table: metadata.TableTypeDef, Row: 99})
	want := &mderrors.Error{Phase: mderrors.PhaseResolve, Kind: mderrors.KindInvalidRow}
	if !stderrors.Is(err, want) {
		t.Errorf("got %v, want invalid row", err)
	}
}

func TestResolveRawFallback(t *testing.T) {
	mod := loadFixture(t)

	e, err := mod.Resolve(metadata.TableRef{Table: metadata.TableModule, Row: 1})
	if err != nil {
		t.Fatal(err)
	}
	raw, ok := e.(*model.Raw)
	if !ok {
		t.Fatalf("Module row resolved to %T, want *Raw", e)
	}
	gen, err := raw.Row().Uint(0)
	if err != nil || gen != 0 {
		t.Errorf("Generation = (%d, %v), want 0", gen, err)
	}
}

func TestConcurrentResolve(t *testing.T) {
	mod := loadFixture(t)
	ref := metadata.TableRef{Table: metadata.TableTypeDef, Row: 3}

	const goroutines = 16
	results := make([]model.Entity, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e, err := mod.Resolve(ref)
			if err != nil {
				t.Error(err)
				return
			}
			if _, err := e.(*model.TypeDef).BaseType(); err != nil {
				t.Error(err)
			}
			results[i] = e
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		if results[i] != results[0] {
			t.Fatal("concurrent resolves returned different entities")
		}
	}
}

func TestVersionGate(t *testing.T) {
	root, err := metadata.DecodeRoot(buildFixture().Build())
	if err != nil {
		t.Fatal(err)
	}

	// The fixture's table stream declares major version 2.
	_, err = model.LoadMetadata(root, model.WithMaxMajorVersion(1))
	want := &mderrors.Error{Phase: mderrors.PhaseLoad, Kind: mderrors.KindUnsupportedVersion}
	if !stderrors.Is(err, want) {
		t.Errorf("got %v, want unsupported version", err)
	}

	if _, err := model.LoadMetadata(root, model.WithMaxMajorVersion(3)); err != nil {
		t.Errorf("raised cap rejected the stream: %v", err)
	}
}

func TestLoadFromImage(t *testing.T) {
	meta := buildFixture().Build()

	const base = 0x2000
	header := peimage.Cor20Header{
		Size:                72,
		MajorRuntimeVersion: 2,
		MetadataRVA:         base + 72,
		MetadataSize:        uint32(len(meta)),
		EntryPointToken:     0x06000001, // MethodDef row 1
	}
	img := &peimage.Flat{
		Base:    base,
		Data:    append(peimage.EncodeCor20(header), meta...),
		CLRRva:  base,
		CLRSize: 72,
	}

	mod, err := model.Load(img)
	if err != nil {
		t.Fatal(err)
	}
	if tok := mod.EntryPointToken(); tok.Table() != metadata.TableMethodDef || tok.Rid() != 1 {
		t.Errorf("EntryPointToken = %v", tok)
	}
	ep, err := mod.EntryPoint()
	if err != nil {
		t.Fatal(err)
	}
	name, err := ep.(*model.Method).Name()
	if err != nil || name != "Run" {
		t.Errorf("entry point = (%q, %v), want Run", name, err)
	}
}

func TestLoadMetadataHasNullEntryPoint(t *testing.T) {
	mod := loadFixture(t)
	if !mod.EntryPointToken().IsNull() {
		t.Error("module without runtime header reports an entry point")
	}
	ep, err := mod.EntryPoint()
	if err != nil || ep != nil {
		t.Errorf("EntryPoint = (%v, %v), want nil", ep, err)
	}
}
