package constraints

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDependencyInjectionWalkerIgnoresUndecoratedClasses(t *testing.T) {
	mod, err := ParseModule([]byte(`class Plain:
    def __init__(self, x):
        self.x = x
`))
	require.NoError(t, err)
	violations := (dependencyInjectionWalker{}).Check(mod, testPolicy())
	assert.Empty(t, violations)
}

func TestDependencyInjectionWalkerFlagsMissingTypeAnnotation(t *testing.T) {
	mod, err := ParseModule([]byte(`class Widget:
    @inject
    def __init__(self, source):
        self.source = source
`))
	require.NoError(t, err)
	violations := (dependencyInjectionWalker{}).Check(mod, testPolicy())
	require.Len(t, violations, 1)
	assert.Equal(t, "MISSING_DECORATOR", violations[0].Code)
	assert.Contains(t, violations[0].Message, "source")
}

func TestDependencyInjectionWalkerFlagsBareMutableDefault(t *testing.T) {
	mod, err := ParseModule([]byte(`class Widget:
    @inject
    def __init__(self, items: list = []):
        self.items = items
`))
	require.NoError(t, err)
	violations := (dependencyInjectionWalker{}).Check(mod, testPolicy())
	require.Len(t, violations, 1)
	assert.Equal(t, "MISSING_DECORATOR", violations[0].Code)
	assert.Contains(t, violations[0].Message, "mutable default")
}

func TestDependencyInjectionWalkerFlagsModuleLevelMutableGlobal(t *testing.T) {
	mod, err := ParseModule([]byte(`_CACHE = {}


class Widget:
    @inject
    def __init__(self, source: str) -> None:
        self.source = source
`))
	require.NoError(t, err)
	violations := (dependencyInjectionWalker{}).Check(mod, testPolicy())
	require.Len(t, violations, 1)
	assert.Equal(t, "MUTABLE_GLOBAL", violations[0].Code)
	assert.Contains(t, violations[0].Message, "_CACHE")
}

func TestDependencyInjectionWalkerAcceptsConformingConstructor(t *testing.T) {
	mod, err := ParseModule([]byte(validExtractor))
	require.NoError(t, err)
	violations := (dependencyInjectionWalker{}).Check(mod, testPolicy())
	assert.Empty(t, violations)
}
