// Package statetest provides helper functions to create tests using tic-tac-toe boards.
package statetest

import (
	"fmt"
	. "github.com/janpfeifer/tictactoeGo/internal/state"
	"github.com/pkg/errors"
)

// BuildBoard from rows of text, using "X" for PlayerOne, "O" for PlayerTwo and "." for empty cells.
// E.g.: BuildBoard("X.O", "...", "..X").
//
// It panics if the layout is invalid, it is meant to be used in tests only.
func BuildBoard(rows ...string) *Board {
	b, err := ParseRows(rows...)
	if err != nil {
		panic(err)
	}
	return b
}

// ParseRows is like BuildBoard, but returns an error instead of panicking.
func ParseRows(rows ...string) (*Board, error) {
	if len(rows) != BoardSize {
		return nil, errors.Errorf("board layout requires %d rows, got %d", BoardSize, len(rows))
	}
	b := NewBoard()
	for row, text := range rows {
		if len(text) != BoardSize {
			return nil, errors.Errorf("row %d (%q) should have %d cells", row, text, BoardSize)
		}
		for col, c := range text {
			pos := Pos{int8(row), int8(col)}
			var mark Mark
			switch c {
			case '.':
				continue
			case 'X', 'x':
				mark = PlayerOne
			case 'O', 'o':
				mark = PlayerTwo
			default:
				return nil, errors.Errorf("invalid cell %q at %s", string(c), pos)
			}
			if err := b.Apply(pos, mark); err != nil {
				return nil, errors.WithMessagef(err, "while building board from layout %v", fmt.Sprint(rows))
			}
		}
	}
	return b, nil
}
