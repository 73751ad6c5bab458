package statetest

import (
	"github.com/janpfeifer/tictactoeGo/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestParseRows(t *testing.T) {
	b, err := ParseRows("X.O", "...", "..x")
	require.NoError(t, err)
	assert.Equal(t, "1,0,-1,0,0,0,0,0,1", b.Hash())

	_, err = ParseRows("X..", "...")
	assert.Error(t, err)
	_, err = ParseRows("X..", "..", "...")
	assert.Error(t, err)
	_, err = ParseRows("X.?", "...", "...")
	assert.Error(t, err)
	assert.Panics(t, func() { BuildBoard("Z..", "...", "...") })
	assert.Equal(t, state.OutcomeOngoing, BuildBoard("...", "...", "...").CheckTerminal())
}
