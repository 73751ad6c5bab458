// Package cli implements a command-line UI for the game.
package cli

import (
	"bufio"
	"fmt"
	"github.com/charmbracelet/lipgloss"
	"github.com/janpfeifer/tictactoeGo/internal/ai"
	. "github.com/janpfeifer/tictactoeGo/internal/state"
	"github.com/pkg/errors"
	"golang.org/x/term"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// CharsPerColumn is the width of each cell in the printed board.
const CharsPerColumn = 7

// MaxAttempts to read a valid move before ReadMove gives up.
const MaxAttempts = 3

// ErrTooManyAttempts is returned (wrapped) by ReadMove when the user fails to enter a valid move MaxAttempts times.
var ErrTooManyAttempts = errors.New("failed to read a valid move")

var ansiFilter = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// displayWidth of s removes its color/control sequences and returns the length of what is left.
func displayWidth(s string) int {
	return len(ansiFilter.ReplaceAllString(s, ""))
}

func centerString(s string, fit int) string {
	if displayWidth(s) >= fit {
		return s
	}
	marginLeft := (fit - displayWidth(s)) / 2
	marginRight := fit - displayWidth(s) - marginLeft
	return strings.Repeat(" ", marginLeft) + s + strings.Repeat(" ", marginRight)
}

// UI prints boards and reads the human moves.
type UI struct {
	color, clearScreen bool
	reader             *bufio.Reader
	out                io.Writer
	terminalWidth      func() int
}

var (
	rowColParser  = regexp.MustCompile(`^\s*(\d+)[\s,]+(\d+)\s*$`)
	cellNumParser = regexp.MustCompile(`^\s*(\d)\s*$`)
)

// New creates a UI that reads from stdin and writes to stdout.
func New(color bool, clearScreen bool) *UI {
	ui := NewWithIO(os.Stdin, os.Stdout, color)
	ui.clearScreen = clearScreen
	ui.terminalWidth = func() int {
		width, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil {
			return 0
		}
		return width
	}
	return ui
}

// NewWithIO creates a UI that reads from in and writes to out. Nothing is centered.
func NewWithIO(in io.Reader, out io.Writer, color bool) *UI {
	return &UI{
		color:         color,
		reader:        bufio.NewReader(in),
		out:           out,
		terminalWidth: func() int { return 0 },
	}
}

func (ui *UI) printCentered(block string) {
	lines := strings.Split(block, "\n")
	blockWidth := 0
	for _, line := range lines {
		blockWidth = max(blockWidth, displayWidth(line))
	}
	indent := max((ui.terminalWidth()-blockWidth)/2, 0)
	for _, line := range lines {
		if len(line) == 0 {
			_, _ = fmt.Fprintln(ui.out)
			continue
		}
		_, _ = fmt.Fprintf(ui.out, "%s%s\n", strings.Repeat(" ", indent), line)
	}
}

// markStyle returns the lipgloss style used to render the mark.
func (ui *UI) markStyle(mark Mark) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true)
	if !ui.color {
		return style
	}
	switch mark {
	case PlayerOne:
		return style.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("1"))
	case PlayerTwo:
		return style.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("2"))
	}
	return style.Faint(true)
}

// hintStyle colors a value: shades of green for positive values, shades of red for negative ones.
func (ui *UI) hintStyle(value float32) lipgloss.Style {
	style := lipgloss.NewStyle()
	if !ui.color {
		return style
	}
	// Learned values are small, so they are scaled before being squashed.
	squashed := ai.SquashScore(3 * value)
	switch {
	case squashed > 0.5:
		return style.Foreground(lipgloss.Color("10")).Bold(true)
	case squashed > 0.05:
		return style.Foreground(lipgloss.Color("2"))
	case squashed < -0.5:
		return style.Foreground(lipgloss.Color("9")).Bold(true)
	case squashed < -0.05:
		return style.Foreground(lipgloss.Color("1"))
	}
	return style.Faint(true)
}

// CellNumber is the number used to identify a position in the UI: 1 to 9, in row-major order.
func CellNumber(pos Pos) int {
	return pos.Index() + 1
}

// Print the board. If hints is not nil, the hint value for each empty position is printed, otherwise
// empty cells show their cell number.
func (ui *UI) Print(board *Board, hints map[Pos]float32) {
	if ui.clearScreen {
		_, _ = fmt.Fprint(ui.out, "\033c")
	}
	var sb strings.Builder
	separator := strings.Repeat("-", CharsPerColumn)
	separator = strings.Join([]string{separator, separator, separator}, "+")
	for row := range int8(BoardSize) {
		if row > 0 {
			sb.WriteString(separator)
			sb.WriteByte('\n')
		}
		cells := make([]string, 0, BoardSize)
		for col := range int8(BoardSize) {
			pos := Pos{row, col}
			var cell string
			if mark := board.At(pos); mark != Empty {
				cell = ui.markStyle(mark).Render(" " + mark.String() + " ")
			} else if value, found := hints[pos]; found {
				cell = ui.hintStyle(value).Render(fmt.Sprintf("%+.2f", value))
			} else {
				cell = ui.markStyle(Empty).Render(strconv.Itoa(CellNumber(pos)))
			}
			cells = append(cells, centerString(cell, CharsPerColumn))
		}
		sb.WriteString(strings.Join(cells, "|"))
		sb.WriteByte('\n')
	}
	ui.printCentered(strings.TrimSuffix(sb.String(), "\n"))
}

// PlayerString returns the mark of the player, colored.
func (ui *UI) PlayerString(mark Mark) string {
	return ui.markStyle(mark).Render(" " + mark.String() + " ")
}

// PrintWinner prints a banner with the outcome of the match. humanMark is used to
// personalize the message, pass Empty if no human is playing.
func (ui *UI) PrintWinner(outcome Outcome, humanMark Mark) {
	var msg string
	banner := lipgloss.NewStyle().Padding(1, 2).Bold(true)
	switch {
	case outcome == OutcomeDraw:
		msg = "*** DRAW! ***"
		if ui.color {
			banner = banner.Background(lipgloss.Color("13")).Foreground(lipgloss.Color("0"))
		}
	case !outcome.IsTerminal():
		msg = "*** Match not finished ***"
	default:
		winner := outcome.Winner()
		switch humanMark {
		case Empty:
			msg = fmt.Sprintf("*** %s WINS!! ***", winner)
		case winner:
			msg = fmt.Sprintf("*** %s: YOU WIN!! Congratulations! ***", winner)
		default:
			msg = fmt.Sprintf("*** %s: the computer wins ***", winner)
		}
		if ui.color {
			banner = banner.Inherit(ui.markStyle(winner))
		}
	}
	_, _ = fmt.Fprintln(ui.out)
	ui.printCentered(banner.Render(msg))
	_, _ = fmt.Fprintln(ui.out)
}

// ParseMove parses either a cell number from 1 to 9 (row-major), or a "row col" pair
// with values from 1 to 3.
func ParseMove(text string) (Pos, error) {
	if matches := cellNumParser.FindStringSubmatch(text); matches != nil {
		num, _ := strconv.Atoi(matches[1])
		if num < 1 || num > NumCells {
			return Pos{}, errors.Wrapf(ErrInvalidMove, "cell number %d must be between 1 and %d", num, NumCells)
		}
		return PosFromIndex(num - 1), nil
	}
	if matches := rowColParser.FindStringSubmatch(text); matches != nil {
		row, errRow := strconv.Atoi(matches[1])
		col, errCol := strconv.Atoi(matches[2])
		if errRow != nil || errCol != nil || row < 1 || row > BoardSize || col < 1 || col > BoardSize {
			return Pos{}, errors.Wrapf(ErrInvalidMove, "row and column in %q must be between 1 and %d", text, BoardSize)
		}
		return Pos{int8(row - 1), int8(col - 1)}, nil
	}
	return Pos{}, errors.Errorf("cannot parse move %q: enter a cell number (1-%d) or \"row col\"", text, NumCells)
}

// ReadMove prompts the human playing mark for a move, until a valid (empty) position is entered.
//
// It gives up with an error wrapping ErrTooManyAttempts after MaxAttempts failed attempts, and it returns
// the reader error (e.g. io.EOF) if the input is closed.
func (ui *UI) ReadMove(board *Board, mark Mark) (Pos, error) {
	for range MaxAttempts {
		_, _ = fmt.Fprintf(ui.out, "    %s move > ", ui.PlayerString(mark))
		text, err := ui.reader.ReadString('\n')
		if err != nil && (err != io.EOF || strings.TrimSpace(text) == "") {
			return Pos{}, err
		}
		pos, err := ParseMove(strings.TrimSpace(text))
		if err != nil {
			_, _ = fmt.Fprintf(ui.out, "    * %v\n", err)
			continue
		}
		if board.At(pos) != Empty {
			_, _ = fmt.Fprintf(ui.out, "    * Cell %d is already taken by %s\n", CellNumber(pos), board.At(pos))
			continue
		}
		return pos, nil
	}
	return Pos{}, errors.Wrapf(ErrTooManyAttempts, "%d attempts", MaxAttempts)
}
