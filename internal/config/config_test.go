package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConstraintConfigMatchesPolicyDefaults(t *testing.T) {
	cfg := DefaultConstraintConfig()
	assert.Equal(t, 10, cfg.MaxCyclomaticComplexity)
	assert.Equal(t, 50, cfg.MaxMethodLines)
	assert.Equal(t, 500, cfg.MaxFileLines)
	assert.True(t, cfg.RequireTypeHints)
	assert.True(t, cfg.RequireDocstrings)
	assert.False(t, cfg.AllowPrintStatements)
	assert.Contains(t, cfg.DangerousCallables, "eval")
	assert.Contains(t, cfg.DangerousCallables, "subprocess.Popen")
}

func TestLoadMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: demo
data_source:
  kind: csv
constraints:
  max_cyclomatic_complexity: 5
generation:
  max_retries: 1
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Name)
	assert.Equal(t, "csv", cfg.DataSource.Kind)
	assert.Equal(t, 5, cfg.Constraints.MaxCyclomaticComplexity)
	assert.Equal(t, 1, cfg.Generation.MaxRetries)
}

func TestValidateRejectsEmptyName(t *testing.T) {
	cfg := DefaultProjectConfig("")
	assert.Error(t, cfg.Validate())
}

func TestValidateDryRunForcesWriteFilesOff(t *testing.T) {
	cfg := DefaultProjectConfig("demo")
	cfg.Generation.DryRun = true
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.Generation.WriteFiles)
}
