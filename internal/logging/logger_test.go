package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeCreatesLogDirOnFirstWrite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Initialize(dir))

	Get(CategoryRefine).Info("hello %s", "world")

	entries, err := os.ReadDir(filepath.Join(dir, ".pipeline", "logs"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCategoryDisabledProducesNoFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".pipeline"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".pipeline", "config.json"),
		[]byte(`{"debug_mode":false,"categories":{"writer":false}}`), 0o644))
	require.NoError(t, Initialize(dir))

	Get(CategoryWriter).Info("should not appear")

	_, err := os.Stat(filepath.Join(dir, ".pipeline", "logs"))
	assert.True(t, os.IsNotExist(err))
}

func TestTimerStopReportsElapsed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Initialize(dir))

	timer := StartTimer(CategoryLLM, "plan-call")
	time.Sleep(time.Millisecond)
	elapsed := timer.Stop()
	assert.Greater(t, elapsed, time.Duration(0))
}

func TestRequestLoggerCarriesFields(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Initialize(dir))

	rl := WithRequestID(CategoryRefine, "run-123").WithField("attempt", 2)
	rl.Info("attempt started")
	assert.Equal(t, "run-123", rl.fields["run_id"])
	assert.Equal(t, 2, rl.fields["attempt"])
}
