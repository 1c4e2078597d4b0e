package constraints

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportWalkerFlagsForbiddenImportPerOccurrence(t *testing.T) {
	mod, err := ParseModule([]byte("import os\nimport socket\n"))
	require.NoError(t, err)
	policy := testPolicy()
	policy.ForbiddenImports = []string{"socket"}

	violations := (importWalker{}).Check(mod, policy)
	require.Len(t, violations, 1)
	assert.Equal(t, "FORBIDDEN_IMPORT", violations[0].Code)
}

func TestImportWalkerAggregatesMissingRequiredImports(t *testing.T) {
	mod, err := ParseModule([]byte("import os\n"))
	require.NoError(t, err)
	policy := testPolicy()
	policy.RequiredImports = []string{"logging", "json"}

	violations := (importWalker{}).Check(mod, policy)
	require.Len(t, violations, 1)
	assert.Equal(t, "MISSING_REQUIRED_IMPORT", violations[0].Code)
	assert.Contains(t, violations[0].Message, "logging")
	assert.Contains(t, violations[0].Message, "json")
}

func TestImportWalkerPassesWhenAllRequiredImportsPresent(t *testing.T) {
	mod, err := ParseModule([]byte("import logging\nimport json\n"))
	require.NoError(t, err)
	policy := testPolicy()
	policy.RequiredImports = []string{"logging", "json"}

	violations := (importWalker{}).Check(mod, policy)
	assert.Empty(t, violations)
}
