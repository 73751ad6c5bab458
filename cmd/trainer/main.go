// trainer trains two tabular agents by self-play, and saves their policies.
//
// Example:
//
//	$ go run ./cmd/trainer -n=50000 -policy_dir=. -plot=curve.png
package main

import (
	"context"
	"flag"
	"fmt"
	"github.com/janpfeifer/must"
	"github.com/janpfeifer/tictactoeGo/internal/agent"
	"github.com/janpfeifer/tictactoeGo/internal/ai/tabular"
	"github.com/janpfeifer/tictactoeGo/internal/profilers"
	. "github.com/janpfeifer/tictactoeGo/internal/state"
	"github.com/janpfeifer/tictactoeGo/internal/training"
	"github.com/janpfeifer/tictactoeGo/internal/ui/spinning"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"
	"math/rand/v2"
	"os"
	"time"
)

var (
	flagNumEpisodes = flag.Int("n", 100, "Number of self-play episodes (matches) to train. Must be positive.")
	flagPolicyDir   = flag.String("policy_dir", ".", "Directory where to save the policies (policy_X and policy_O).")
	flagPlayers     = [NumPlayers]*string{
		flag.String("ai0", "", "Configuration string for the agent playing X (first), e.g. \"epsilon=0.3,learning_rate=0.2\"."),
		flag.String("ai1", "", "Configuration string for the agent playing O (second)."),
	}
	flagSeed     = flag.Uint64("seed", 0, "Random seed. If 0, a random seed is used.")
	flagContinue = flag.Bool("continue", false, "Continue training from the policies saved in -policy_dir, if they exist.")
	flagPlot     = flag.String("plot", "", "If set, saves the learning curve (moving average of wins and draws) to the given file (e.g. \"curve.png\").")
	flagProgress = flag.Bool("progress", true, "Display a progress bar while training.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if *flagNumEpisodes <= 0 {
		klog.Exitf("Invalid value for -n=%d: the number of episodes must be positive", *flagNumEpisodes)
	}

	// Capture Control+C: training stops and policies are not saved.
	ctx, cancel := context.WithCancel(context.Background())
	spinning.SafeInterrupt(cancel, 5*time.Second)
	defer cancel()

	profilers.Setup(ctx)
	defer profilers.OnQuit()

	driver := training.NewDriver(must.M1(createAgent(0)), must.M1(createAgent(1)), *flagPolicyDir)
	if *flagProgress {
		bar := progressbar.NewOptions(*flagNumEpisodes,
			progressbar.OptionSetDescription("Training"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("episodes"),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish())
		driver.OnEpisode = func(_ int, _ Outcome, results *training.Results) {
			_ = bar.Add(1)
			if results.NumEpisodes%1000 == 0 {
				bar.Describe(fmt.Sprintf("Training (X:%.2f O:%.2f draws:%.2f)",
					results.Stats[0], results.Stats[1], results.Stats[2]))
			}
		}
		defer func() { _ = bar.Finish() }()
	}

	start := time.Now()
	results, err := driver.Train(ctx, *flagNumEpisodes)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			klog.Exitf("Training interrupted, policies not saved: %v", err)
		}
		klog.Exitf("Training failed: %+v", err)
	}
	fmt.Printf("\n%s in %s\n", results, time.Since(start))
	for _, player := range driver.Players {
		fmt.Printf("- %s: %s\n", player.Table.FileName, player.Table.Summary())
	}
	if *flagPlot != "" {
		must.M(training.SaveLearningCurve(*flagPlot, results))
		fmt.Printf("- Learning curve saved to %s\n", *flagPlot)
	}
}

// createAgent for the player with the given index (0 for X, 1 for O).
func createAgent(idx int) (*agent.Agent, error) {
	mark := MarkFromIndex(idx)
	var rng *rand.Rand
	if *flagSeed != 0 {
		rng = rand.New(rand.NewPCG(*flagSeed, uint64(idx)))
	}
	ag, err := agent.NewFromConfig(mark.String(), *flagPlayers[idx], rng)
	if err != nil {
		return nil, err
	}
	if *flagContinue {
		table, err := tabular.LoadOrCreate(tabular.PolicyFileName(*flagPolicyDir, ag.Name))
		if err != nil {
			return nil, err
		}
		ag.Table = table
	}
	klog.V(1).Infof("Created %s", ag)
	return ag, nil
}
