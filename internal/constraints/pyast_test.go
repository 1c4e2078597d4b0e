package constraints

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModuleExtractsClassAndMethods(t *testing.T) {
	mod, err := ParseModule([]byte(validExtractor))
	require.NoError(t, err)
	require.Len(t, mod.Classes, 1)
	cls := mod.Classes[0]
	assert.Equal(t, "SkuExtractor", cls.Name)
	assert.Contains(t, cls.Bases, "BaseExtractor")
	require.Len(t, cls.Methods, 2)
	assert.Equal(t, "__init__", cls.Methods[0].Name)
	assert.Contains(t, cls.Methods[0].Decorators, "inject")
}

func TestParseModuleExtractsImports(t *testing.T) {
	mod, err := ParseModule([]byte(validExtractor))
	require.NoError(t, err)
	found := false
	for _, imp := range mod.Imports {
		if imp.Module == "logging" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestParseModuleExtractsParamTypeHints(t *testing.T) {
	mod, err := ParseModule([]byte(validExtractor))
	require.NoError(t, err)
	cls := mod.Classes[0]
	var extractFn *Function
	for i := range cls.Methods {
		if cls.Methods[i].Name == "extract" {
			extractFn = &cls.Methods[i]
		}
	}
	require.NotNil(t, extractFn)
	assert.True(t, extractFn.HasReturnHint)
	require.Len(t, extractFn.Params, 2)
	assert.Equal(t, "row", extractFn.Params[1].Name)
	assert.True(t, extractFn.Params[1].HasHint)
}
