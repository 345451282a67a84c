package exporter

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "conflictpanel/internal/errors"
	"conflictpanel/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
}

func sampleTables() []Table {
	return []Table{
		EpisodesTable{FileName: "Armed Conflict Dataset.csv", Episodes: []domain.ConflictEpisode{sampleEpisode()}},
		PricesTable{FileName: "Bloomberg.csv", Prices: []domain.PriceObservation{samplePrice(), samplePrice()}},
	}
}

// failingTable has a name no filesystem accepts
type failingTable struct{}

func (failingTable) Name() string       { return "broken\x00.csv" }
func (failingTable) Header() []string   { return []string{"x"} }
func (failingTable) Len() int           { return 0 }
func (failingTable) Row(i int) []string { return nil }

func TestOutputWriter_WriteAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "outputs")
	writer := NewOutputWriter(dir, testLogger())

	counts, err := writer.WriteAll(context.Background(), sampleTables()...)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Armed Conflict Dataset.csv": 1, "Bloomberg.csv": 2}, counts)

	records := readCSV(t, filepath.Join(dir, "Bloomberg.csv"))
	require.Len(t, records, 3)
	assert.Equal(t, "", records[0][0])
	assert.Equal(t, "trading_date", records[0][1])
	assert.Equal(t, "0", records[1][0])
	assert.Equal(t, "1", records[2][0])

	entries, err := os.ReadDir(filepath.Dir(dir))
	require.NoError(t, err)
	require.Len(t, entries, 1, "staging directory must not be left behind")

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
}

func TestOutputWriter_RefusesExistingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "outputs")
	require.NoError(t, os.Mkdir(dir, 0755))
	marker := filepath.Join(dir, "keep.txt")
	require.NoError(t, os.WriteFile(marker, []byte("previous run"), 0644))

	writer := NewOutputWriter(dir, testLogger())
	assert.True(t, apperrors.IsType(writer.CheckTarget(), apperrors.ErrTypeOutputExists))

	_, err := writer.WriteAll(context.Background(), sampleTables()...)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeOutputExists))

	content, err := os.ReadFile(marker)
	require.NoError(t, err)
	assert.Equal(t, "previous run", string(content))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestOutputWriter_RerunIsByteIdentical(t *testing.T) {
	base := t.TempDir()
	first := filepath.Join(base, "run1")
	second := filepath.Join(base, "run2")

	_, err := NewOutputWriter(first, testLogger()).WriteAll(context.Background(), sampleTables()...)
	require.NoError(t, err)
	_, err = NewOutputWriter(second, testLogger()).WriteAll(context.Background(), sampleTables()...)
	require.NoError(t, err)

	for _, table := range sampleTables() {
		a, err := os.ReadFile(filepath.Join(first, table.Name()))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(second, table.Name()))
		require.NoError(t, err)
		assert.Equal(t, a, b, table.Name())
	}
}

func TestOutputWriter_FailureLeavesNothing(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "outputs")
	writer := NewOutputWriter(dir, testLogger())

	tables := append(sampleTables(), failingTable{})
	_, err := writer.WriteAll(context.Background(), tables...)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))

	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, WriteJSON(path, map[string]int{"rows": 3}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"rows": 3}`, string(content))
}
