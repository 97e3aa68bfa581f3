package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/dotnet-metadata/metadata"
	"github.com/wippyai/dotnet-metadata/model"
)

func TestTokenParts(t *testing.T) {
	tok := model.Token(0x06000001)
	assert.Equal(t, metadata.TableMethodDef, tok.Table())
	assert.Equal(t, uint32(1), tok.Rid())
	assert.False(t, tok.IsNull())
	assert.Equal(t, model.Key{Table: metadata.TableMethodDef, Row: 1}, tok.Key())
	assert.Equal(t, "0x06000001", tok.String())

	assert.True(t, model.Token(0).IsNull())
	assert.True(t, model.Token(0x02000000).IsNull())
}

func TestKeyString(t *testing.T) {
	key := model.Key{Table: metadata.TableTypeDef, Row: 3}
	assert.Equal(t, "TypeDef[3]", key.String())
}

func TestVersionString(t *testing.T) {
	v := model.Version{Major: 4, Minor: 0, Build: 30319, Revision: 42000}
	assert.Equal(t, "4.0.30319.42000", v.String())
}

func TestTypeAttributePredicates(t *testing.T) {
	assert.True(t, (model.TypeInterface | model.TypeAbstract).IsInterface())
	assert.True(t, model.TypeAbstract.IsAbstract())
	assert.True(t, model.TypeSealed.IsSealed())

	assert.False(t, model.TypePublic.IsNested())
	for _, vis := range []model.TypeAttributes{
		model.TypeNestedPublic, model.TypeNestedPrivate, model.TypeNestedFamily,
		model.TypeNestedAssembly, model.TypeNestedFamANDAssem, model.TypeNestedFamORAssem,
	} {
		assert.True(t, vis.IsNested(), "visibility %#x", uint32(vis))
	}
}

func TestMemberAttributePredicates(t *testing.T) {
	assert.True(t, (model.FieldStatic | model.FieldPublic).IsStatic())
	assert.True(t, model.FieldLiteral.IsLiteral())
	assert.False(t, model.FieldPublic.IsStatic())

	assert.True(t, model.MethodStatic.IsStatic())
	assert.True(t, model.MethodVirtual.IsVirtual())
	assert.True(t, model.MethodAbstract.IsAbstract())
}

func TestEntityFlagAccessors(t *testing.T) {
	mod := loadFixture(t)

	widget, err := mod.TypeByName("Demo", "Widget")
	require.NoError(t, err)
	flags, err := widget.Flags()
	require.NoError(t, err)
	assert.Equal(t, model.TypePublic, flags&model.TypeVisibilityMask)

	fields, err := widget.Fields()
	require.NoError(t, err)
	require.Len(t, fields, 2)
	fflags, err := fields[1].Flags()
	require.NoError(t, err)
	assert.True(t, fflags.IsStatic())

	methods, err := widget.Methods()
	require.NoError(t, err)
	require.Len(t, methods, 2)
	mflags, err := methods[1].Flags()
	require.NoError(t, err)
	assert.True(t, mflags.IsStatic())
}
