// Package match implements a match between a human and a trained agent.
//
// The agent only exploits what it learned: it never explores, never records visited boards and
// its value table is never updated or saved.
package match

import (
	"github.com/janpfeifer/tictactoeGo/internal/agent"
	"github.com/janpfeifer/tictactoeGo/internal/ai"
	. "github.com/janpfeifer/tictactoeGo/internal/state"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var (
	// ErrWrongTurn is returned (wrapped) if a player tries to move out of turn.
	ErrWrongTurn = errors.New("not this player's turn")

	// ErrMatchOver is returned (wrapped) if a move is attempted after the match finished.
	ErrMatchOver = errors.New("match is over")
)

// Match between a human and an agent. PlayerOne always moves first.
type Match struct {
	Board *Board

	// Next is the mark of the player to move.
	Next Mark

	Agent     *agent.Agent
	AgentMark Mark

	// Outcome of the match so far.
	Outcome Outcome
}

// New creates a match where ag plays with agentMark, and the human plays with the other mark.
//
// The agent is set to always exploit.
func New(ag *agent.Agent, agentMark Mark) *Match {
	ag.Epsilon = agent.AlwaysExploit
	ag.ResetEpisode()
	return &Match{
		Board:     NewBoard(),
		Next:      PlayerOne,
		Agent:     ag,
		AgentMark: agentMark,
	}
}

// HumanMark returns the mark played by the human.
func (m *Match) HumanMark() Mark {
	return m.AgentMark.Opponent()
}

// IsAgentTurn returns whether it's the agent's turn to move.
func (m *Match) IsAgentTurn() bool {
	return !m.Outcome.IsTerminal() && m.Next == m.AgentMark
}

// IsOver returns whether the match has finished.
func (m *Match) IsOver() bool {
	return m.Outcome.IsTerminal()
}

func (m *Match) play(pos Pos, mark Mark) (Outcome, error) {
	if m.Outcome.IsTerminal() {
		return m.Outcome, errors.Wrapf(ErrMatchOver, "cannot play %s at %s", mark, pos)
	}
	if mark != m.Next {
		return m.Outcome, errors.Wrapf(ErrWrongTurn, "%s tried to play, but it's %s's turn", mark, m.Next)
	}
	if err := m.Board.Apply(pos, mark); err != nil {
		return m.Outcome, err
	}
	m.Outcome = m.Board.CheckTerminal()
	m.Next = mark.Opponent()
	klog.V(1).Infof("%s played %s: %s", mark, pos, m.Outcome)
	return m.Outcome, nil
}

// HumanMove places the human's mark at pos.
//
// Invalid positions (out of the board or occupied) return an error wrapping state.ErrInvalidMove, and
// moving out of turn returns an error wrapping ErrWrongTurn. In both cases the match is unchanged, and
// the human can try again.
func (m *Match) HumanMove(pos Pos) (Outcome, error) {
	return m.play(pos, m.HumanMark())
}

// AgentMove lets the agent choose and play its move.
func (m *Match) AgentMove() (Pos, Outcome, error) {
	if m.Outcome.IsTerminal() {
		return Pos{}, m.Outcome, errors.Wrapf(ErrMatchOver, "agent %q cannot move", m.Agent.Name)
	}
	if m.Next != m.AgentMark {
		return Pos{}, m.Outcome, errors.Wrapf(ErrWrongTurn, "agent %q (%s) tried to play, but it's %s's turn",
			m.Agent.Name, m.AgentMark, m.Next)
	}
	pos, err := m.Agent.ChooseAction(m.Board.AvailablePositions(), m.Board, m.AgentMark)
	if err != nil {
		return Pos{}, m.Outcome, err
	}
	outcome, err := m.play(pos, m.AgentMark)
	return pos, outcome, err
}

// MoveValues returns the agent's value for each available position, that is, the score of the board
// if the agent were to play there. It's used to display hints.
func (m *Match) MoveValues() (positions []Pos, values []float32, err error) {
	positions = m.Board.AvailablePositions()
	values, err = ai.ScoreMoves(m.Agent.Scorer(), m.Board, m.AgentMark, positions)
	return
}
