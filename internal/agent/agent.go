// Package agent implements the tabular reinforcement learning player: it chooses moves
// epsilon-greedily over the values of the boards they lead to, and at the end of each match it
// updates the values of the boards it visited, walking backwards from the final reward.
//
// An Agent is not safe for concurrent use. Use ForEvaluation to create independent agents
// that share a (read-only) value table.
package agent

import (
	"fmt"
	"github.com/janpfeifer/tictactoeGo/internal/ai"
	"github.com/janpfeifer/tictactoeGo/internal/ai/tabular"
	"github.com/janpfeifer/tictactoeGo/internal/generics"
	"github.com/janpfeifer/tictactoeGo/internal/parameters"
	. "github.com/janpfeifer/tictactoeGo/internal/state"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
	"math/rand/v2"
)

// Default hyperparameters.
const (
	DefaultEpsilon      = 0.4
	DefaultLearningRate = 0.3
	DefaultDiscount     = 0.9
)

// AlwaysExploit is the value of Epsilon that disables exploration: the agent always picks the
// best valued move. It's used when playing against humans.
const AlwaysExploit = -1.0

var (
	// ErrNoAvailableMove is returned (wrapped) when asked to choose a move with no positions available.
	ErrNoAvailableMove = errors.New("no available move")

	// ErrInvalidConfiguration is returned (wrapped) for invalid hyperparameters or configuration.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// Agent is a player that learns the value of boards.
type Agent struct {
	// Name of the agent, also used to name its policy file.
	Name string

	// Table of values learned, owned by the agent.
	Table *tabular.Table

	// Epsilon is the probability of exploring, that is, of choosing a uniformly random move.
	// It must be in [0, 1], or AlwaysExploit.
	Epsilon float64

	// LearningRate (alpha) in (0, 1] used in the value updates.
	LearningRate float64

	// Discount (gamma) in (0, 1] applied to the target as it propagates backwards.
	Discount float64

	// visited holds the hashes of the boards right after each of the agent's own moves in
	// the current episode, in order.
	visited []string

	rng *rand.Rand
}

// Option configures an Agent at creation.
type Option func(a *Agent)

// WithEpsilon sets the exploration rate.
func WithEpsilon(epsilon float64) Option {
	return func(a *Agent) { a.Epsilon = epsilon }
}

// WithLearningRate sets the learning rate (alpha).
func WithLearningRate(lr float64) Option {
	return func(a *Agent) { a.LearningRate = lr }
}

// WithDiscount sets the discount (gamma).
func WithDiscount(discount float64) Option {
	return func(a *Agent) { a.Discount = discount }
}

// WithRand sets the random number generator used for exploration.
func WithRand(rng *rand.Rand) Option {
	return func(a *Agent) { a.rng = rng }
}

// WithTable sets the value table. The agent takes ownership of it.
func WithTable(table *tabular.Table) Option {
	return func(a *Agent) { a.Table = table }
}

// New creates an agent with the default hyperparameters, an empty value table and a randomly
// seeded random number generator, modified by the given options.
func New(name string, options ...Option) *Agent {
	a := &Agent{
		Name:         name,
		Epsilon:      DefaultEpsilon,
		LearningRate: DefaultLearningRate,
		Discount:     DefaultDiscount,
	}
	for _, opt := range options {
		opt(a)
	}
	if a.Table == nil {
		a.Table = tabular.New()
	}
	if a.rng == nil {
		a.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return a
}

// NewFromConfig creates an agent configured with a config string.
//
// Parameters:
//
//   - epsilon (float): exploration rate, default is DefaultEpsilon. Use -1 (AlwaysExploit) to disable exploration.
//   - learning_rate (float): default is DefaultLearningRate.
//   - discount (float): default is DefaultDiscount.
//
// Unknown parameters or out of range values return an error wrapping ErrInvalidConfiguration.
// If rng is nil, a randomly seeded one is used.
func NewFromConfig(name, config string, rng *rand.Rand) (*Agent, error) {
	params := parameters.NewFromConfigString(config)
	epsilon, err := parameters.PopParamOr(params, "epsilon", DefaultEpsilon)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidConfiguration, "agent %q: %v", name, err)
	}
	lr, err := parameters.PopParamOr(params, "learning_rate", DefaultLearningRate)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidConfiguration, "agent %q: %v", name, err)
	}
	discount, err := parameters.PopParamOr(params, "discount", DefaultDiscount)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidConfiguration, "agent %q: %v", name, err)
	}
	if err = parameters.CheckAllConsumed(params); err != nil {
		return nil, errors.Wrapf(ErrInvalidConfiguration, "agent %q config %q: %v", name, config, err)
	}
	options := []Option{WithEpsilon(epsilon), WithLearningRate(lr), WithDiscount(discount)}
	if rng != nil {
		options = append(options, WithRand(rng))
	}
	a := New(name, options...)
	if err = a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate the hyperparameters. It returns an error wrapping ErrInvalidConfiguration if any is out of range.
func (a *Agent) Validate() error {
	if a.Epsilon != AlwaysExploit && (a.Epsilon < 0 || a.Epsilon > 1) {
		return errors.Wrapf(ErrInvalidConfiguration, "agent %q: epsilon=%g must be in [0, 1] or %g", a.Name, a.Epsilon, AlwaysExploit)
	}
	if a.LearningRate <= 0 || a.LearningRate > 1 {
		return errors.Wrapf(ErrInvalidConfiguration, "agent %q: learning_rate=%g must be in (0, 1]", a.Name, a.LearningRate)
	}
	if a.Discount <= 0 || a.Discount > 1 {
		return errors.Wrapf(ErrInvalidConfiguration, "agent %q: discount=%g must be in (0, 1]", a.Name, a.Discount)
	}
	return nil
}

// String implements fmt.Stringer.
func (a *Agent) String() string {
	return fmt.Sprintf("Agent %q (epsilon=%g, learning_rate=%g, discount=%g, %s)",
		a.Name, a.Epsilon, a.LearningRate, a.Discount, a.Table)
}

// ForEvaluation returns a new agent that shares the value table with a, but has its own
// epsilon, random number generator and an empty visited list.
// The table must not be updated while the returned agent is in use.
func (a *Agent) ForEvaluation(epsilon float64, rng *rand.Rand) *Agent {
	options := []Option{WithEpsilon(epsilon), WithLearningRate(a.LearningRate), WithDiscount(a.Discount), WithTable(a.Table)}
	if rng != nil {
		options = append(options, WithRand(rng))
	}
	return New(a.Name, options...)
}

// ChooseAction picks one of the available positions to place mark on board.
//
// With probability Epsilon it explores, picking a position uniformly at random. Otherwise, it picks
// the position leading to the board with the highest value, where ties go to the earliest
// position in available. The board itself is never changed.
//
// It returns an error wrapping ErrNoAvailableMove if available is empty.
func (a *Agent) ChooseAction(available []Pos, board *Board, mark Mark) (Pos, error) {
	if len(available) == 0 {
		return Pos{}, errors.Wrapf(ErrNoAvailableMove, "agent %q asked to move on a board with no available positions", a.Name)
	}
	if a.Epsilon > 0 && a.rng.Float64() <= a.Epsilon {
		pos := available[a.rng.IntN(len(available))]
		if klog.V(2).Enabled() {
			klog.Infof("Agent %q explores %s", a.Name, pos)
		}
		return pos, nil
	}
	values, err := a.MoveValues(available, board, mark)
	if err != nil {
		return Pos{}, err
	}
	pos := available[generics.ArgMaxFirst(values)]
	if klog.V(2).Enabled() {
		klog.Infof("Agent %q exploits %s, values=%v", a.Name, pos, values)
	}
	return pos, nil
}

// MoveValues returns the value of the board resulting of placing mark on each of the positions.
// The board itself is not changed.
func (a *Agent) MoveValues(positions []Pos, board *Board, mark Mark) ([]float64, error) {
	values := make([]float64, len(positions))
	for ii, pos := range positions {
		next := board.Clone()
		if err := next.Apply(pos, mark); err != nil {
			return nil, errors.WithMessagef(err, "agent %q evaluating moves", a.Name)
		}
		values[ii] = a.Table.GetOrDefault(next.Hash())
	}
	return values, nil
}

// Scorer returns the value table as an ai.ValueScorer.
func (a *Agent) Scorer() ai.ValueScorer {
	return a.Table
}

// RecordVisited appends the hash of a board reached by the agent's own move.
func (a *Agent) RecordVisited(hash string) {
	a.visited = append(a.visited, hash)
}

// Visited returns the hashes recorded in the current episode. The returned slice must not be changed.
func (a *Agent) Visited() []string {
	return a.visited
}

// UpdateFromReward updates the values of the visited boards, from the last to the first:
//
//	value(s) <- value(s) + LearningRate * (Discount * target - value(s))
//
// The target starts as the reward, and after each update it becomes the newly updated value.
// The visited list is not cleared, see ResetEpisode.
func (a *Agent) UpdateFromReward(reward float64) {
	target := reward
	for ii := len(a.visited) - 1; ii >= 0; ii-- {
		hash := a.visited[ii]
		old := a.Table.GetOrDefault(hash)
		updated := old + a.LearningRate*(a.Discount*target-old)
		a.Table.Set(hash, updated)
		if klog.V(2).Enabled() {
			klog.Infof("Agent %q: value[%s]: %.4f -> %.4f", a.Name, hash, old, updated)
		}
		target = updated
	}
}

// ResetEpisode clears the visited list. The value table is kept.
//
// Slices previously returned by Visited are left untouched.
func (a *Agent) ResetEpisode() {
	a.visited = nil
}

// Save the value table to the policy file of the agent in dir.
func (a *Agent) Save(dir string) error {
	a.Table.FileName = tabular.PolicyFileName(dir, a.Name)
	if err := a.Table.Save(); err != nil {
		return errors.WithMessagef(err, "agent %q failed to save its policy", a.Name)
	}
	klog.Infof("Agent %q saved policy with %d states to %q", a.Name, a.Table.Len(), a.Table.FileName)
	return nil
}

// Load replaces the value table with the one in the policy file of the agent in dir.
//
// It returns an error wrapping tabular.ErrPolicyNotFound if there is no policy file. The current
// table is kept in case of error.
func (a *Agent) Load(dir string) error {
	table, err := tabular.Load(tabular.PolicyFileName(dir, a.Name))
	if err != nil {
		return errors.WithMessagef(err, "agent %q failed to load its policy", a.Name)
	}
	a.Table = table
	klog.Infof("Agent %q loaded policy with %d states from %q", a.Name, a.Table.Len(), a.Table.FileName)
	return nil
}
