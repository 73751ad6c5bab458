package match

import (
	"github.com/janpfeifer/tictactoeGo/internal/agent"
	. "github.com/janpfeifer/tictactoeGo/internal/state"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestMatch(t *testing.T) {
	ag := agent.New("O", agent.WithEpsilon(0.9))
	m := New(ag, PlayerTwo)
	assert.Equal(t, agent.AlwaysExploit, ag.Epsilon)
	assert.Equal(t, PlayerOne, m.HumanMark())
	assert.False(t, m.IsAgentTurn())

	// Agent can't move out of turn.
	_, _, err := m.AgentMove()
	assert.True(t, errors.Is(err, ErrWrongTurn))

	outcome, err := m.HumanMove(Pos{1, 1})
	require.NoError(t, err)
	assert.Equal(t, OutcomeOngoing, outcome)
	assert.True(t, m.IsAgentTurn())

	// Human can't move twice.
	_, err = m.HumanMove(Pos{0, 0})
	assert.True(t, errors.Is(err, ErrWrongTurn))

	// Agent with an empty table takes the first open cell.
	pos, outcome, err := m.AgentMove()
	require.NoError(t, err)
	assert.Equal(t, Pos{0, 0}, pos)
	assert.Equal(t, OutcomeOngoing, outcome)

	// Occupied cell: human can retry.
	_, err = m.HumanMove(Pos{0, 0})
	assert.True(t, errors.Is(err, ErrInvalidMove))
	_, err = m.HumanMove(Pos{5, 5})
	assert.True(t, errors.Is(err, ErrInvalidMove))
	assert.False(t, m.IsAgentTurn())

	// Human wins on the middle column: X at (1,1), (0,1), (2,1).
	_, err = m.HumanMove(Pos{0, 1})
	require.NoError(t, err)
	pos, _, err = m.AgentMove()
	require.NoError(t, err)
	assert.Equal(t, Pos{0, 2}, pos)
	outcome, err = m.HumanMove(Pos{2, 1})
	require.NoError(t, err)
	assert.Equal(t, OutcomePlayerOneWin, outcome)
	assert.True(t, m.IsOver())

	_, err = m.HumanMove(Pos{2, 2})
	assert.True(t, errors.Is(err, ErrMatchOver))
	_, _, err = m.AgentMove()
	assert.True(t, errors.Is(err, ErrMatchOver))

	// Playing never learns.
	assert.Equal(t, 0, ag.Table.Len())
	assert.Empty(t, ag.Visited())
}

func TestAgentFirst(t *testing.T) {
	ag := agent.New("X")
	// The agent prefers the center.
	center := NewBoard()
	require.NoError(t, center.Apply(Pos{1, 1}, PlayerOne))
	ag.Table.Set(center.Hash(), 0.8)

	m := New(ag, PlayerOne)
	assert.True(t, m.IsAgentTurn())
	positions, values, err := m.MoveValues()
	require.NoError(t, err)
	assert.Len(t, positions, NumCells)
	assert.Equal(t, float32(0.8), values[Pos{1, 1}.Index()])

	pos, _, err := m.AgentMove()
	require.NoError(t, err)
	assert.Equal(t, Pos{1, 1}, pos)
	assert.Equal(t, PlayerTwo, m.Next)
}
