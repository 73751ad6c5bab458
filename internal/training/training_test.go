package training

import (
	"context"
	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/tictactoeGo/internal/agent"
	"github.com/janpfeifer/tictactoeGo/internal/ai/tabular"
	. "github.com/janpfeifer/tictactoeGo/internal/state"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
)

func newSeededAgent(name string, epsilon float64, seed uint64) *agent.Agent {
	return agent.New(name, agent.WithEpsilon(epsilon), agent.WithRand(rand.New(rand.NewPCG(seed, 0))))
}

func TestPlayEpisodeForcedWin(t *testing.T) {
	// Both agents exploit with empty tables, so they always take the first open cell, and
	// PlayerOne completes the anti-diagonal on its 4th move.
	x, o := newSeededAgent("X", 0, 1), newSeededAgent("O", 0, 2)
	d := NewDriver(x, o, t.TempDir())
	outcome := d.PlayEpisode()
	require.Equal(t, OutcomePlayerOneWin, outcome)
	assert.Equal(t, "XOX\nOXO\nX..", d.Board.String())

	wantX := []string{
		"1,0,0,0,0,0,0,0,0",
		"1,-1,1,0,0,0,0,0,0",
		"1,-1,1,-1,1,0,0,0,0",
		"1,-1,1,-1,1,-1,1,0,0",
	}
	wantO := []string{
		"1,-1,0,0,0,0,0,0,0",
		"1,-1,1,-1,0,0,0,0,0",
		"1,-1,1,-1,1,-1,0,0,0",
	}
	assert.Equal(t, wantX, x.Visited())
	assert.Equal(t, wantO, o.Visited())

	d.DistributeRewards(outcome)
	for ii, want := range []float64{0.00531441, 0.019683, 0.0729, 0.27} {
		assert.InDelta(t, want, x.Table.GetOrDefault(wantX[ii]), 1e-9)
	}
	for ii, want := range []float64{-0.019683, -0.0729, -0.27} {
		assert.InDelta(t, want, o.Table.GetOrDefault(wantO[ii]), 1e-9)
	}

	d.Reset()
	assert.Empty(t, x.Visited())
	assert.Empty(t, o.Visited())
	assert.Equal(t, NewBoard().Hash(), d.Board.Hash())
	assert.Equal(t, 4, x.Table.Len())
}

func TestPlayEpisodeSeededTables(t *testing.T) {
	// Seeded values steer both agents away from the first open cell: X takes the center, and
	// wins on the middle column while O never blocks it.
	x, o := newSeededAgent("X", 0, 1), newSeededAgent("O", 0, 2)
	wantX := []string{
		"0,0,0,0,1,0,0,0,0",
		"0,0,0,0,1,0,0,1,-1",
		"0,1,-1,0,1,0,0,1,-1",
	}
	wantO := []string{
		"0,0,0,0,1,0,0,0,-1",
		"0,0,-1,0,1,0,0,1,-1",
	}
	const seededValue = 0.5
	for _, hash := range wantX {
		x.Table.Set(hash, seededValue)
	}
	for _, hash := range wantO {
		o.Table.Set(hash, seededValue)
	}

	d := NewDriver(x, o, t.TempDir())
	outcome := d.PlayEpisode()
	require.Equal(t, OutcomePlayerOneWin, outcome)
	assert.Equal(t, ".XO\n.X.\n.XO", d.Board.String())
	assert.Equal(t, wantX, x.Visited())
	assert.Equal(t, wantO, o.Visited())

	d.DistributeRewards(outcome)
	x3 := seededValue + 0.3*(0.9*1-seededValue)
	x2 := seededValue + 0.3*(0.9*x3-seededValue)
	x1 := seededValue + 0.3*(0.9*x2-seededValue)
	for ii, want := range []float64{x1, x2, x3} {
		assert.InDelta(t, want, x.Table.GetOrDefault(wantX[ii]), 1e-9)
	}
	o2 := seededValue + 0.3*(0.9*-1-seededValue)
	o1 := seededValue + 0.3*(0.9*o2-seededValue)
	for ii, want := range []float64{o1, o2} {
		assert.InDelta(t, want, o.Table.GetOrDefault(wantO[ii]), 1e-9)
	}
	assert.Equal(t, len(wantX), x.Table.Len())
	assert.Equal(t, len(wantO), o.Table.Len())
}

func TestDistributeRewardsDraw(t *testing.T) {
	x, o := newSeededAgent("X", 0, 1), newSeededAgent("O", 0, 2)
	d := NewDriver(x, o, "")
	x.RecordVisited("x1")
	o.RecordVisited("o1")
	d.DistributeRewards(OutcomeDraw)
	assert.InDelta(t, 0.3*0.9*0.1, x.Table.GetOrDefault("x1"), 1e-9)
	assert.InDelta(t, 0.3*0.9*0.1, o.Table.GetOrDefault("o1"), 1e-9)

	assert.Panics(t, func() { d.DistributeRewards(OutcomeOngoing) })
}

func TestTrain(t *testing.T) {
	dir := t.TempDir()
	x, o := newSeededAgent("X", 0.4, 1), newSeededAgent("O", 0.4, 2)
	d := NewDriver(x, o, dir)
	var numCalls int
	d.OnEpisode = func(episode int, outcome Outcome, results *Results) {
		assert.Equal(t, numCalls, episode)
		assert.True(t, outcome.IsTerminal())
		numCalls++
	}
	const numEpisodes = 300
	results, err := d.Train(context.Background(), numEpisodes)
	require.NoError(t, err)
	assert.Equal(t, numEpisodes, numCalls)
	assert.Equal(t, numEpisodes, results.NumEpisodes)
	assert.Equal(t, numEpisodes, results.Wins[0]+results.Wins[1]+results.Draws)
	assert.InDelta(t, 1.0, results.Stats[0]+results.Stats[1]+results.Stats[2], 1e-6)
	assert.Len(t, results.Curve, numEpisodes)

	for _, player := range d.Players {
		loaded, err := tabular.Load(tabular.PolicyFileName(dir, player.Name))
		require.NoError(t, err)
		assert.Equal(t, player.Table.Len(), loaded.Len())
		assert.Greater(t, loaded.Len(), 0)
	}

	// Learning curve.
	plotPath := filepath.Join(dir, "curve.png")
	require.NoError(t, SaveLearningCurve(plotPath, results))
	info, err := os.Stat(plotPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
	assert.Error(t, SaveLearningCurve(plotPath, NewResults(10)))
}

func TestTrainInvalid(t *testing.T) {
	dir := t.TempDir()
	x, o := newSeededAgent("X", 0.4, 1), newSeededAgent("O", 0.4, 2)
	d := NewDriver(x, o, dir)
	for _, n := range []int{0, -5} {
		_, err := d.Train(context.Background(), n)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidConfiguration))
	}
	assert.Equal(t, 0, x.Table.Len())
	_, err := os.Stat(tabular.PolicyFileName(dir, "X"))
	assert.True(t, os.IsNotExist(err))

	o.LearningRate = 0
	_, err = d.Train(context.Background(), 10)
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
}

func TestTrainInterrupted(t *testing.T) {
	dir := t.TempDir()
	x, o := newSeededAgent("X", 0.4, 1), newSeededAgent("O", 0.4, 2)
	d := NewDriver(x, o, dir)
	ctx, cancel := context.WithCancel(context.Background())
	d.OnEpisode = func(episode int, _ Outcome, _ *Results) {
		if episode == 4 {
			cancel()
		}
	}
	results, err := d.Train(ctx, 100)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 5, results.NumEpisodes)
	_, err = os.Stat(tabular.PolicyFileName(dir, "X"))
	assert.True(t, os.IsNotExist(err))
}

func TestTrainCancelledAfterLastEpisode(t *testing.T) {
	dir := t.TempDir()
	x, o := newSeededAgent("X", 0.4, 1), newSeededAgent("O", 0.4, 2)
	d := NewDriver(x, o, dir)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	const numEpisodes = 5
	d.OnEpisode = func(episode int, _ Outcome, _ *Results) {
		if episode == numEpisodes-1 {
			cancel()
		}
	}
	results, err := d.Train(ctx, numEpisodes)
	require.NoError(t, err)
	assert.Equal(t, numEpisodes, results.NumEpisodes)
	for _, player := range d.Players {
		_, err = os.Stat(tabular.PolicyFileName(dir, player.Name))
		assert.NoError(t, err)
	}
}

func TestTrainLogicError(t *testing.T) {
	x, o := newSeededAgent("X", 0.4, 1), newSeededAgent("O", 0.4, 2)
	d := NewDriver(x, o, t.TempDir())
	d.OnEpisode = func(episode int, _ Outcome, _ *Results) {
		exceptions.Panicf("failure at episode %d", episode)
	}
	results, err := d.Train(context.Background(), 10)
	require.Error(t, err)
	assert.Nil(t, results)
	assert.Contains(t, err.Error(), "failure at episode 0")
}

func TestStats(t *testing.T) {
	var s Stats
	s.CombineResult(OutcomePlayerOneWin, 1)
	assert.Equal(t, Stats{1, 0, 0}, s)
	s.CombineResult(OutcomeDraw, 2)
	assert.InDeltaSlice(t, []float64{0.5, 0, 0.5}, s[:], 1e-9)

	r := NewResults(5000)
	for range 5000 {
		r.Record(OutcomePlayerTwoWin)
	}
	assert.Equal(t, 5000, r.Wins[1])
	assert.Len(t, r.Curve, 1000)
	assert.Equal(t, 5000, r.Curve[len(r.Curve)-1].Episode)
	assert.Contains(t, r.String(), "O wins 5000 (100.0%)")
}
