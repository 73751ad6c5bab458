// Package ai (Artificial Intelligence) defines the rewards of the game and the interface
// of anything able to value a board.
package ai

import (
	"github.com/chewxy/math32"
	. "github.com/janpfeifer/tictactoeGo/internal/state"
	"github.com/pkg/errors"
)

// Rewards given to each player at the end of a match.
//
// A draw is rewarded slightly positive for both players: it's a better result than a loss
// against an opponent that plays well.
const (
	WinReward  = 1.0
	LossReward = -1.0
	DrawReward = 0.1
)

// Rewards returns the reward for each player (indexed by Mark.Index) for the given outcome.
// For an ongoing match, both rewards are 0.
func Rewards(outcome Outcome) (rewards [NumPlayers]float64) {
	switch outcome {
	case OutcomeDraw:
		rewards[0], rewards[1] = DrawReward, DrawReward
	case OutcomePlayerOneWin, OutcomePlayerTwoWin:
		winner := outcome.Winner()
		rewards[winner.Index()] = WinReward
		rewards[winner.Opponent().Index()] = LossReward
	}
	return
}

// SquashScore converts any score to a value between +WinReward and -WinReward
// by using then tanh(x) function -- a type of S curve.
func SquashScore(x float32) float32 {
	return math32.Tanh(x) * WinReward
}

// ValueScorer returns a score (value) for a given board, as seen by whoever just moved
// into it. Higher is better.
type ValueScorer interface {
	Score(board *Board) float32
	String() string
}

// ScoreMoves returns the score of the board resulting of placing mark on each of the positions,
// as valued by scorer. The board itself is not changed.
func ScoreMoves(scorer ValueScorer, board *Board, mark Mark, positions []Pos) ([]float32, error) {
	scores := make([]float32, len(positions))
	for ii, pos := range positions {
		next := board.Clone()
		if err := next.Apply(pos, mark); err != nil {
			return nil, errors.WithMessagef(err, "%s scoring moves", scorer)
		}
		scores[ii] = scorer.Score(next)
	}
	return scores, nil
}
