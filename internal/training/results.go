package training

import (
	"fmt"
	. "github.com/janpfeifer/tictactoeGo/internal/state"
)

// MaxMovingAverageWeight is the most weight the moving average carries from past episodes.
const MaxMovingAverageWeight = 0.99

// MaxCurvePoints is the maximum number of points kept in Results.Curve.
const MaxCurvePoints = 1000

// Stats is a moving average of the frequency of each terminal outcome: PlayerOne wins,
// PlayerTwo wins and draws. They sum up to 1 once at least one episode was combined.
type Stats [3]float64

// statsIndex maps terminal outcomes to the index in Stats.
func statsIndex(outcome Outcome) int {
	switch outcome {
	case OutcomePlayerOneWin:
		return 0
	case OutcomePlayerTwoWin:
		return 1
	}
	return 2
}

// CombineResult of the count-th episode (starting from 1) into the moving average.
// Earlier episodes have their weight capped to MaxMovingAverageWeight.
func (s *Stats) CombineResult(outcome Outcome, count int) {
	weight := 1.0 - 1.0/float64(count)
	if weight > MaxMovingAverageWeight {
		weight = MaxMovingAverageWeight
	}
	r := statsIndex(outcome)
	for ii := range s {
		s[ii] = s[ii] * weight
		if ii == r {
			s[ii] += 1.0 - weight
		}
	}
}

// CurvePoint is the moving average at the end of the given episode (counting from 1).
type CurvePoint struct {
	Episode int
	Stats   Stats
}

// Results of a training session.
type Results struct {
	NumEpisodes int
	Wins        [NumPlayers]int
	Draws       int

	// Current moving average.
	Stats Stats

	// Curve holds samples of the moving average, used to plot the learning curve.
	Curve []CurvePoint

	sampleEvery int
}

// NewResults creates empty results for a training session of the given number of episodes.
func NewResults(numEpisodes int) *Results {
	return &Results{sampleEvery: max(1, numEpisodes/MaxCurvePoints)}
}

// Record the outcome of one more episode.
func (r *Results) Record(outcome Outcome) {
	r.NumEpisodes++
	if winner := outcome.Winner(); winner != Empty {
		r.Wins[winner.Index()]++
	} else {
		r.Draws++
	}
	r.Stats.CombineResult(outcome, r.NumEpisodes)
	if r.NumEpisodes%r.sampleEvery == 0 {
		r.Curve = append(r.Curve, CurvePoint{Episode: r.NumEpisodes, Stats: r.Stats})
	}
}

// String implements fmt.Stringer.
func (r *Results) String() string {
	if r.NumEpisodes == 0 {
		return "no episodes played"
	}
	n := float64(r.NumEpisodes)
	return fmt.Sprintf("%d episodes: %s wins %d (%.1f%%), %s wins %d (%.1f%%), draws %d (%.1f%%)",
		r.NumEpisodes,
		PlayerOne, r.Wins[0], 100*float64(r.Wins[0])/n,
		PlayerTwo, r.Wins[1], 100*float64(r.Wins[1])/n,
		r.Draws, 100*float64(r.Draws)/n)
}
