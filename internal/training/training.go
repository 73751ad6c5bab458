// Package training implements self-play training: two agents play episodes (matches) against
// each other and, at the end of each episode, each one updates its value table from the reward
// it got.
package training

import (
	"context"
	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/tictactoeGo/internal/agent"
	"github.com/janpfeifer/tictactoeGo/internal/ai"
	. "github.com/janpfeifer/tictactoeGo/internal/state"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ErrInvalidConfiguration is returned (wrapped) when training is configured with invalid values,
// e.g. a non-positive number of episodes or invalid agent hyperparameters.
var ErrInvalidConfiguration = agent.ErrInvalidConfiguration

// Driver runs episodes between two agents on a shared board.
//
// Players[0] always plays PlayerOne (and moves first), Players[1] plays PlayerTwo.
type Driver struct {
	Players [NumPlayers]*agent.Agent
	Board   *Board

	// PolicyDir is where the policies of the agents are saved at the end of Train.
	PolicyDir string

	// OnEpisode, if set, is called at the end of each episode, after the rewards were distributed.
	OnEpisode func(episode int, outcome Outcome, results *Results)
}

// NewDriver creates a Driver for the two agents, with an empty board.
func NewDriver(playerOne, playerTwo *agent.Agent, policyDir string) *Driver {
	return &Driver{
		Players:   [NumPlayers]*agent.Agent{playerOne, playerTwo},
		Board:     NewBoard(),
		PolicyDir: policyDir,
	}
}

// PlayEpisode plays one match, starting from the current board (usually empty) with PlayerOne to move.
//
// After each move the resulting board hash is recorded in the visited list of the agent that moved.
// It returns the terminal outcome. Failing to apply a move chosen by an agent is a logic error, and it panics.
func (d *Driver) PlayEpisode() Outcome {
	mark := PlayerOne
	for {
		player := d.Players[mark.Index()]
		available := d.Board.AvailablePositions()
		pos, err := player.ChooseAction(available, d.Board, mark)
		if err != nil {
			exceptions.Panicf("agent %q failed to choose a move for board %q: %+v", player.Name, d.Board.Hash(), err)
		}
		if err = d.Board.Apply(pos, mark); err != nil {
			exceptions.Panicf("agent %q chose an invalid move: %+v", player.Name, err)
		}
		player.RecordVisited(d.Board.Hash())
		if outcome := d.Board.CheckTerminal(); outcome.IsTerminal() {
			if klog.V(2).Enabled() {
				klog.Infof("Episode finished with %s:\n%s", outcome, d.Board)
			}
			return outcome
		}
		mark = mark.Opponent()
	}
}

// DistributeRewards gives each agent its reward for the outcome: ai.WinReward to the winner and
// ai.LossReward to the loser, or ai.DrawReward to both. Both agents are always updated.
func (d *Driver) DistributeRewards(outcome Outcome) {
	if !outcome.IsTerminal() {
		exceptions.Panicf("rewards distributed for a match that is not over (outcome %s)", outcome)
	}
	rewards := ai.Rewards(outcome)
	for idx, player := range d.Players {
		player.UpdateFromReward(rewards[idx])
	}
}

// Reset the board and the episode state of both agents.
func (d *Driver) Reset() {
	d.Board.Reset()
	for _, player := range d.Players {
		player.ResetEpisode()
	}
}

// Train plays numEpisodes episodes, updating the agents after each of them, and then saves both
// policies in PolicyDir.
//
// A non-positive numEpisodes returns an error wrapping ErrInvalidConfiguration, and nothing is done.
// If ctx is cancelled before all episodes are played, training stops between episodes and the
// policies are not saved: the partial results are returned along with the context error.
// A cancellation after the last episode doesn't count as an interruption.
func (d *Driver) Train(ctx context.Context, numEpisodes int) (*Results, error) {
	if numEpisodes <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfiguration, "number of episodes must be positive, got %d", numEpisodes)
	}
	for _, player := range d.Players {
		if err := player.Validate(); err != nil {
			return nil, err
		}
	}
	results := NewResults(numEpisodes)
	d.Reset()
	err := exceptions.TryCatch[error](func() {
		for episode := range numEpisodes {
			if ctx.Err() != nil {
				return
			}
			outcome := d.PlayEpisode()
			d.DistributeRewards(outcome)
			d.Reset()
			results.Record(outcome)
			if klog.V(1).Enabled() {
				klog.Infof("Episode %d finished: %s", episode, outcome)
			}
			if d.OnEpisode != nil {
				d.OnEpisode(episode, outcome, results)
			}
		}
	})
	if err != nil {
		return nil, errors.WithMessagef(err, "training failed after %d episodes", results.NumEpisodes)
	}
	if ctx.Err() != nil && results.NumEpisodes < numEpisodes {
		return results, errors.Wrapf(ctx.Err(), "training interrupted after %d of %d episodes, policies not saved",
			results.NumEpisodes, numEpisodes)
	}
	klog.Infof("Training finished: %s", results)
	for _, player := range d.Players {
		if err = player.Save(d.PolicyDir); err != nil {
			return results, err
		}
		klog.V(1).Infof("Agent %q value table: %s", player.Name, player.Table.Summary())
	}
	return results, nil
}
