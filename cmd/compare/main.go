// compare plays matches between the policies of two training runs and reports the results.
//
// Each run directory holds the policy_X and policy_O files saved by the trainer. A table only
// holds boards reached by the mark it was trained for, so it always plays that mark: matches
// alternate between the X of the 1st run playing the O of the 2nd run, and the reverse.
//
// Example:
//
//	$ go run ./cmd/compare -run1=run1 -run2=run2 -num_matches=1000
package main

import (
	"context"
	"flag"
	"fmt"
	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/must"
	"github.com/janpfeifer/tictactoeGo/internal/agent"
	"github.com/janpfeifer/tictactoeGo/internal/ai/tabular"
	"github.com/janpfeifer/tictactoeGo/internal/generics"
	"github.com/janpfeifer/tictactoeGo/internal/profilers"
	"github.com/janpfeifer/tictactoeGo/internal/state"
	"github.com/janpfeifer/tictactoeGo/internal/training"
	"github.com/janpfeifer/tictactoeGo/internal/ui/spinning"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
	"math/rand/v2"
	"runtime"
	"strings"
	"sync"
	"time"
)

var (
	flagRuns = [2]*string{
		flag.String("run1", ".", "Directory with the policy files of the 1st run, AI-1."),
		flag.String("run2", ".", "Directory with the policy files of the 2nd run, AI-2."),
	}
	flagNumMatches  = flag.Int("num_matches", 100, "Number of matches to play. The run that plays X is alternated.")
	flagEpsilon     = flag.Float64("epsilon", 0.1, "Exploration rate used by both agents, so matches are not all the same.")
	flagSeed        = flag.Uint64("seed", 0, "Random seed. If 0, a random seed is used.")
	flagParallelism = flag.Int("parallelism", 0, "If > 0 ignore GOMAXPROCS and play "+
		"these many matches simultaneously.")
)

// Globals
var (
	// globalCtx used everywhere. It is cancelled when the program is about to exit either by
	// an interrupt (ctrl+C) or by reaching the end.
	globalCtx = context.Background()
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if *flagNumMatches <= 0 {
		klog.Exitf("Invalid -num_matches=%d, it must be positive", *flagNumMatches)
	}

	// Capture Control+C
	var globalCancel func()
	globalCtx, globalCancel = context.WithCancel(context.Background())
	spinning.SafeInterrupt(globalCancel, 5*time.Second)
	defer globalCancel()

	profilers.Setup(globalCtx)
	defer profilers.OnQuit()

	runs := must.M1(loadRuns())
	if *flagSeed == 0 {
		*flagSeed = rand.Uint64()
	}
	r := must.M1(runMatches(globalCtx, runs))
	fmt.Printf("\r%s\n", r)
}

// Runs holds the agents of each run, indexed by run and then by Mark.Index.
type Runs [2][state.NumPlayers]*agent.Agent

// loadRuns loads the policy of each mark from the run directories.
func loadRuns() (runs Runs, err error) {
	for runIdx, dir := range generics.SliceMap(flagRuns[:], func(f *string) string { return *f }) {
		for markIdx := range state.NumPlayers {
			mark := state.MarkFromIndex(markIdx)
			var table *tabular.Table
			table, err = tabular.Load(tabular.PolicyFileName(dir, mark.String()))
			if err != nil {
				return
			}
			runs[runIdx][markIdx] = agent.New(fmt.Sprintf("AI-%d/%s", runIdx+1, mark), agent.WithTable(table))
			klog.V(1).Infof("Loaded %s", runs[runIdx][markIdx])
		}
	}
	return
}

// Results of the comparison.
type Results struct {
	mu               sync.Mutex
	start            time.Time
	winsAsX, winsAsO [2]int
	draws            [2]int
	played, total    int
}

func (r *Results) String() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("Played %d of %d: ", r.played, r.total))
	for runIdx := range 2 {
		parts = append(parts,
			fmt.Sprintf("AI-%d: %d Wins (X: %d, O: %d) / ",
				runIdx+1, r.winsAsX[runIdx]+r.winsAsO[runIdx],
				r.winsAsX[runIdx], r.winsAsO[runIdx]))
	}
	parts = append(parts, fmt.Sprintf("%d draws (%d AI-1 as X, %d AI-2 as X) - ",
		r.draws[0]+r.draws[1], r.draws[0], r.draws[1]))
	parts = append(parts, fmt.Sprintf("%s", time.Since(r.start)))
	parts = append(parts, "\x1b[0K")
	return strings.Join(parts, "")
}

func runMatches(ctx context.Context, runs Runs) (*Results, error) {
	r := &Results{
		start: time.Now(),
		total: *flagNumMatches,
	}
	var wg errgroup.Group
	wg.SetLimit(getParallelism())
	fmt.Printf("\r%s", r)

	for matchIdx := range r.total {
		wg.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			runAsX := matchIdx % 2
			winner, err := runMatch(matchIdx, runs, runAsX)
			if err != nil {
				return err
			}
			// Record winner.
			r.mu.Lock()
			defer r.mu.Unlock()
			switch winner {
			case -1:
				r.draws[runAsX]++
			case runAsX:
				r.winsAsX[winner]++
			default:
				r.winsAsO[winner]++
			}
			r.played++
			fmt.Printf("\r%s", r)
			return nil
		})
	}
	if err := wg.Wait(); err != nil {
		return r, err
	}
	if ctx.Err() != nil {
		return r, errors.Wrapf(ctx.Err(), "comparison interrupted after %d matches", r.played)
	}
	return r, nil
}

// matchPlayers returns the players of a match, indexed by Mark.Index: the X of runs[runAsX] against
// the O of the other run.
func matchPlayers(runs Runs, runAsX int) (players [state.NumPlayers]*agent.Agent) {
	for markIdx := range state.NumPlayers {
		players[markIdx] = runs[(runAsX+markIdx)%2][markIdx]
	}
	return
}

// runMatch plays one match, where runs[runAsX] plays X. It returns the index of the winning run or -1 for a draw.
func runMatch(matchIdx int, runs Runs, runAsX int) (winner int, err error) {
	var players [state.NumPlayers]*agent.Agent
	for markIdx, player := range matchPlayers(runs, runAsX) {
		rng := rand.New(rand.NewPCG(*flagSeed, uint64(2*matchIdx+markIdx)))
		players[markIdx] = player.ForEvaluation(*flagEpsilon, rng)
	}
	driver := training.NewDriver(players[0], players[1], "")
	var outcome state.Outcome
	err = exceptions.TryCatch[error](func() { outcome = driver.PlayEpisode() })
	if err != nil {
		return -1, errors.WithMessagef(err, "match %d failed", matchIdx)
	}
	klog.V(1).Infof("Match %d: %s vs %s, %s", matchIdx, players[0].Name, players[1].Name, outcome)
	if outcome == state.OutcomeDraw {
		return -1, nil
	}
	return (runAsX + outcome.Winner().Index()) % 2, nil
}

// getParallelism returns the parallelism.
func getParallelism() (parallelism int) {
	parallelism = runtime.GOMAXPROCS(0)
	if *flagParallelism > 0 {
		parallelism = *flagParallelism
	}
	return
}
