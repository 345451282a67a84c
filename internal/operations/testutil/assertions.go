package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conflictpanel/internal/operations"
)

// AssertStepStatus verifies a step has the expected status
func AssertStepStatus(t *testing.T, step *operations.StepState, expected operations.StepStatus) {
	t.Helper()
	require.NotNil(t, step, "step state is nil")
	assert.Equal(t, expected, step.Status, "step %s", step.ID)
}

// AssertRunStatus verifies a run has the expected status
func AssertRunStatus(t *testing.T, state *operations.RunState, expected operations.RunStatus) {
	t.Helper()
	require.NotNil(t, state, "run state is nil")
	assert.Equal(t, expected, state.Status)
}

// ReadTable reads a written output table, header included
func ReadTable(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

// ReadDir returns the contents of every regular file in dir, keyed by name
func ReadDir(t *testing.T, dir string) map[string][]byte {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	files := make(map[string][]byte, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		files[e.Name()] = data
	}
	return files
}
