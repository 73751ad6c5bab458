// tictactoe lets a human play against a trained agent in the terminal.
//
// The agent's policy must have been trained before with the trainer:
//
//	$ go run ./cmd/trainer -n=50000
//	$ go run ./cmd/tictactoe
package main

import (
	"context"
	"flag"
	"fmt"
	"github.com/janpfeifer/tictactoeGo/internal/agent"
	"github.com/janpfeifer/tictactoeGo/internal/ai/tabular"
	"github.com/janpfeifer/tictactoeGo/internal/match"
	. "github.com/janpfeifer/tictactoeGo/internal/state"
	"github.com/janpfeifer/tictactoeGo/internal/ui/cli"
	"github.com/janpfeifer/tictactoeGo/internal/ui/spinning"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
	"strings"
	"time"
)

var (
	flagFirst     = flag.String("first", "human", "Who plays first (as X): \"human\" or \"ai\".")
	flagPolicyDir = flag.String("policy_dir", ".", "Directory with the trained policies (policy_X and policy_O).")
	flagDelay     = flag.Duration("delay", time.Second, "Time the computer pretends to think before each move.")
	flagHints     = flag.Bool("hints", false, "Show the value the computer gives to each open cell.")
	flagColor     = flag.Bool("color", true, "Use colors in the terminal.")
	flagClear     = flag.Bool("clear", false, "Clear the screen before printing the board.")

	globalCtx = context.Background()
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	var agentMark Mark
	switch strings.ToLower(*flagFirst) {
	case "human":
		agentMark = PlayerTwo
	case "ai":
		agentMark = PlayerOne
	default:
		klog.Exitf("Invalid -first=%q, only valid values are \"human\" or \"ai\"", *flagFirst)
	}

	// Capture Control+C
	var cancel func()
	globalCtx, cancel = context.WithCancel(context.Background())
	spinning.SafeInterrupt(cancel, time.Second)
	defer cancel()

	ag := agent.New(agentMark.String())
	if err := ag.Load(*flagPolicyDir); err != nil {
		if errors.Is(err, tabular.ErrPolicyNotFound) {
			klog.Exitf("No trained policy for %s in %q, train one first with the trainer: %v",
				agentMark, *flagPolicyDir, err)
		}
		klog.Exitf("Failed to load policy: %+v", err)
	}
	m := match.New(ag, agentMark)
	ui := cli.New(*flagColor, *flagClear)
	fmt.Printf("You play %s, the computer plays %s.\n", ui.PlayerString(m.HumanMark()), ui.PlayerString(agentMark))

	for !m.IsOver() {
		if globalCtx.Err() != nil {
			klog.Exitf("Interrupted: %v", globalCtx.Err())
		}
		if m.IsAgentTurn() {
			ui.Print(m.Board, nil)
			fmt.Printf("    %s thinking ", ui.PlayerString(agentMark))
			if err := spinning.Pause(globalCtx, *flagDelay); err != nil {
				klog.Exitf("Interrupted: %v", err)
			}
			pos, _, err := m.AgentMove()
			if err != nil {
				klog.Exitf("Computer failed to move: %+v", err)
			}
			fmt.Printf("-> cell %d\n\n", cli.CellNumber(pos))
			continue
		}

		ui.Print(m.Board, hints(m))
		pos, err := ui.ReadMove(m.Board, m.HumanMark())
		if err != nil {
			klog.Exitf("Failed to read your move: %v", err)
		}
		if _, err = m.HumanMove(pos); err != nil {
			// ReadMove only returns empty cells, so this shouldn't happen.
			klog.Errorf("Invalid move: %v", err)
		}
		fmt.Println()
	}
	ui.Print(m.Board, nil)
	ui.PrintWinner(m.Outcome, m.HumanMark())
}

// hints returns the agent's values for each open cell, if -hints is set.
func hints(m *match.Match) map[Pos]float32 {
	if !*flagHints {
		return nil
	}
	positions, values, err := m.MoveValues()
	if err != nil {
		klog.Errorf("Failed to calculate hints: %v", err)
		return nil
	}
	h := make(map[Pos]float32, len(positions))
	for ii, pos := range positions {
		h[pos] = values[ii]
	}
	return h
}
