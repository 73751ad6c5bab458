// Package state holds the tic-tac-toe board: marks, positions, hashing and the detection of
// wins and draws.
//
// The Board doesn't know whose turn it is: that is tracked by whoever drives the match
// (see packages training and match), and passed along with every placement.
package state

import (
	"fmt"
	"github.com/pkg/errors"
	"strconv"
	"strings"
)

const (
	// BoardSize is the number of rows and the number of columns of the board.
	BoardSize = 3

	// NumCells in the board.
	NumCells = BoardSize * BoardSize

	// NumPlayers is always 2.
	NumPlayers = 2
)

// Mark is the content of a cell: Empty or the mark of one of the players.
//
// The numeric values are such that a line owned by one player sums up to +3 or -3.
type Mark int8

const (
	Empty     Mark = 0
	PlayerOne Mark = 1
	PlayerTwo Mark = -1
)

// MarkLetters used to display the marks.
var MarkLetters = map[Mark]string{Empty: ".", PlayerOne: "X", PlayerTwo: "O"}

// String returns the letter used to display the mark.
func (m Mark) String() string {
	if letter, found := MarkLetters[m]; found {
		return letter
	}
	return fmt.Sprintf("Mark(%d)", int8(m))
}

// Opponent returns the mark of the other player. The opponent of Empty is Empty.
func (m Mark) Opponent() Mark {
	return -m
}

// Index returns 0 for PlayerOne and 1 for PlayerTwo, to index per-player arrays.
// It returns -1 for anything else.
func (m Mark) Index() int {
	switch m {
	case PlayerOne:
		return 0
	case PlayerTwo:
		return 1
	}
	return -1
}

// MarkFromIndex is the inverse of Mark.Index.
func MarkFromIndex(idx int) Mark {
	if idx == 0 {
		return PlayerOne
	}
	return PlayerTwo
}

// Pos packages row, col position in the board.
type Pos [2]int8

// Row of the position.
func (pos Pos) Row() int8 {
	return pos[0]
}

// Col of the position.
func (pos Pos) Col() int8 {
	return pos[1]
}

// Valid returns whether the position is inside the board.
func (pos Pos) Valid() bool {
	return pos[0] >= 0 && pos[0] < BoardSize && pos[1] >= 0 && pos[1] < BoardSize
}

// Index returns the row-major index of the position, from 0 to NumCells-1.
func (pos Pos) Index() int {
	return int(pos[0])*BoardSize + int(pos[1])
}

// PosFromIndex is the inverse of Pos.Index.
func PosFromIndex(idx int) Pos {
	return Pos{int8(idx / BoardSize), int8(idx % BoardSize)}
}

// String returns a text representation of Pos.
func (pos Pos) String() string {
	return fmt.Sprintf("(%d, %d)", pos[0], pos[1])
}

// AllPositions returns the positions of the board in row-major order.
func AllPositions() []Pos {
	positions := make([]Pos, 0, NumCells)
	for idx := range NumCells {
		positions = append(positions, PosFromIndex(idx))
	}
	return positions
}

// ErrInvalidMove is returned (wrapped) when placing a mark outside the board or on an occupied cell.
var ErrInvalidMove = errors.New("invalid move")

// Board is the 3x3 grid of marks.
//
// It is a small value: Clone is cheap and it's the way to simulate moves without changing
// the original board.
type Board struct {
	cells [BoardSize][BoardSize]Mark
}

// NewBoard creates a new empty board.
func NewBoard() *Board {
	return &Board{}
}

// Clone makes an independent copy of the board.
func (b *Board) Clone() *Board {
	newB := &Board{}
	*newB = *b
	return newB
}

// Reset clears all cells.
func (b *Board) Reset() {
	b.cells = [BoardSize][BoardSize]Mark{}
}

// At returns the mark at the given position. It panics if pos is not valid.
func (b *Board) At(pos Pos) Mark {
	return b.cells[pos[0]][pos[1]]
}

// Apply places mark at pos.
//
// It fails with ErrInvalidMove if pos is out of the board, if it's already occupied or if mark is Empty.
// It doesn't track turns: the caller is responsible for passing the correct mark.
func (b *Board) Apply(pos Pos, mark Mark) error {
	if !pos.Valid() {
		return errors.Wrapf(ErrInvalidMove, "position %s is out of the board", pos)
	}
	if mark != PlayerOne && mark != PlayerTwo {
		return errors.Wrapf(ErrInvalidMove, "cannot place mark %s at %s", mark, pos)
	}
	if current := b.At(pos); current != Empty {
		return errors.Wrapf(ErrInvalidMove, "position %s already taken by %s", pos, current)
	}
	b.cells[pos[0]][pos[1]] = mark
	return nil
}

// AvailablePositions returns the empty positions in row-major order.
func (b *Board) AvailablePositions() []Pos {
	positions := make([]Pos, 0, NumCells)
	for row := range int8(BoardSize) {
		for col := range int8(BoardSize) {
			if b.cells[row][col] == Empty {
				positions = append(positions, Pos{row, col})
			}
		}
	}
	return positions
}

// IsFull returns whether there are no empty cells left.
func (b *Board) IsFull() bool {
	for row := range BoardSize {
		for col := range BoardSize {
			if b.cells[row][col] == Empty {
				return false
			}
		}
	}
	return true
}

// NumMarks returns the number of cells with the given mark.
func (b *Board) NumMarks(mark Mark) (count int) {
	for row := range BoardSize {
		for col := range BoardSize {
			if b.cells[row][col] == mark {
				count++
			}
		}
	}
	return
}

// Lines enumerates the 8 lines of the board in the order they are checked: the 3 rows, the
// 3 columns, the main diagonal and the anti-diagonal.
var Lines = func() (lines [8][BoardSize]Pos) {
	for ii := range int8(BoardSize) {
		for jj := range int8(BoardSize) {
			lines[ii][jj] = Pos{ii, jj}
			lines[BoardSize+ii][jj] = Pos{jj, ii}
		}
		lines[2*BoardSize][ii] = Pos{ii, ii}
		lines[2*BoardSize+1][ii] = Pos{ii, BoardSize - 1 - ii}
	}
	return
}()

// LineSum returns the sum of the marks in the given line.
func (b *Board) LineSum(line [BoardSize]Pos) (sum int) {
	for _, pos := range line {
		sum += int(b.At(pos))
	}
	return
}

// CheckTerminal returns the outcome of the board.
//
// Lines are checked in order (rows, columns, diagonals) and the first one owned by a player
// decides the winner. Only if no line is owned is a full board a draw.
// The outcome is always calculated from the cells, it's never cached.
func (b *Board) CheckTerminal() Outcome {
	for _, line := range Lines {
		switch b.LineSum(line) {
		case BoardSize * int(PlayerOne):
			return OutcomePlayerOneWin
		case BoardSize * int(PlayerTwo):
			return OutcomePlayerTwoWin
		}
	}
	if b.IsFull() {
		return OutcomeDraw
	}
	return OutcomeOngoing
}

// Hash returns the canonical key of the board: the cell values in row-major order, as signed
// integers separated by commas. E.g.: "1,0,-1,0,0,0,0,0,0".
//
// Boards with the same contents have the same hash, and different boards have different hashes.
func (b *Board) Hash() string {
	var sb strings.Builder
	sb.Grow(3 * NumCells)
	for idx := range NumCells {
		if idx > 0 {
			sb.WriteByte(',')
		}
		pos := PosFromIndex(idx)
		sb.WriteString(strconv.Itoa(int(b.At(pos))))
	}
	return sb.String()
}

// ParseHash reconstructs a board from its Hash.
func ParseHash(hash string) (*Board, error) {
	parts := strings.Split(hash, ",")
	if len(parts) != NumCells {
		return nil, errors.Errorf("board hash %q has %d cells, expected %d", hash, len(parts), NumCells)
	}
	b := NewBoard()
	for idx, part := range parts {
		value, err := strconv.Atoi(part)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse cell #%d of board hash %q", idx, hash)
		}
		mark := Mark(value)
		if mark != Empty && mark != PlayerOne && mark != PlayerTwo {
			return nil, errors.Errorf("invalid mark %d in cell #%d of board hash %q", value, idx, hash)
		}
		pos := PosFromIndex(idx)
		b.cells[pos[0]][pos[1]] = mark
	}
	return b, nil
}

// String returns the board as 3 lines of text, using "X", "O" and "." for empty cells.
func (b *Board) String() string {
	var sb strings.Builder
	for row := range int8(BoardSize) {
		if row > 0 {
			sb.WriteByte('\n')
		}
		for col := range int8(BoardSize) {
			sb.WriteString(b.At(Pos{row, col}).String())
		}
	}
	return sb.String()
}
