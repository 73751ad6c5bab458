package profilers

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteHeapProfile(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "heap.prof")
	require.NoError(t, writeHeapProfile(fileName))
	info, err := os.Stat(fileName)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	assert.Error(t, writeHeapProfile(filepath.Join(t.TempDir(), "missing", "heap.prof")))
}
