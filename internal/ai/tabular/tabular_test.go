package tabular

import (
	"github.com/janpfeifer/tictactoeGo/internal/state/statetest"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

func TestGetOrDefault(t *testing.T) {
	table := New()
	assert.Equal(t, 0.0, table.GetOrDefault("1,0,0,0,0,0,0,0,0"))
	// Reading doesn't insert.
	assert.Equal(t, 0, table.Len())

	table.Set("1,0,0,0,0,0,0,0,0", 0.5)
	assert.Equal(t, 0.5, table.GetOrDefault("1,0,0,0,0,0,0,0,0"))
	_, found := table.Get("0,0,0,0,0,0,0,0,0")
	assert.False(t, found)

	b := statetest.BuildBoard("X..", "...", "...")
	assert.Equal(t, float32(0.5), table.Score(b))
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	fileName := PolicyFileName(dir, "X")
	assert.Equal(t, filepath.Join(dir, "policy_X"), fileName)

	table := NewWithValues(map[string]float64{"h1": 0.42, "h2": -0.1})
	table.FileName = fileName
	require.NoError(t, table.Save())

	loaded, err := Load(fileName)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())
	assert.Equal(t, 0.42, loaded.GetOrDefault("h1"))
	assert.Equal(t, -0.1, loaded.GetOrDefault("h2"))
	assert.Equal(t, fileName, loaded.FileName)

	// Saving again keeps the previous version as a backup, and no temporary file is left behind.
	loaded.Set("h3", 1)
	require.NoError(t, loaded.Save())
	_, err = os.Stat(fileName + "~")
	assert.NoError(t, err)
	_, err = os.Stat(fileName + ".tmp")
	assert.True(t, os.IsNotExist(err))
	backup, err := Load(fileName + "~")
	require.NoError(t, err)
	assert.Equal(t, 2, backup.Len())
	reloaded, err := Load(fileName)
	require.NoError(t, err)
	assert.Equal(t, []string{"h1", "h2", "h3"}, reloaded.Hashes())
}

func TestLoadMissing(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(PolicyFileName(dir, "O"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPolicyNotFound))

	table, err := LoadOrCreate(PolicyFileName(dir, "O"))
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
	assert.Equal(t, PolicyFileName(dir, "O"), table.FileName)

	// Corrupted files are not reported as missing.
	corrupted := filepath.Join(dir, "policy_bad")
	require.NoError(t, os.WriteFile(corrupted, []byte("not a gob"), 0644))
	_, err = LoadOrCreate(corrupted)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrPolicyNotFound))
}

func TestSummary(t *testing.T) {
	assert.Equal(t, 0, New().Summary().NumStates)

	table := NewWithValues(map[string]float64{"a": 1, "b": -1, "c": 0})
	s := table.Summary()
	assert.Equal(t, 3, s.NumStates)
	assert.InDelta(t, 0.0, s.Mean, 1e-9)
	assert.InDelta(t, 1.0, s.StdDev, 1e-9)
	assert.Equal(t, -1.0, s.Min)
	assert.Equal(t, 1.0, s.Max)
	assert.Equal(t, 1, s.NumPositive)
	assert.Equal(t, 1, s.NumNegative)
	assert.Contains(t, s.String(), "3 states")
}
