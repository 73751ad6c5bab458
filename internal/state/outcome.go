package state

// Outcome of a board: whether the match is still going, or how it ended.
type Outcome int

const (
	OutcomeOngoing Outcome = iota
	OutcomePlayerOneWin
	OutcomePlayerTwoWin
	OutcomeDraw
)

//go:generate go tool enumer -type=Outcome -trimprefix=Outcome -values -text -json outcome.go

// IsTerminal returns whether the match is over.
func (o Outcome) IsTerminal() bool {
	return o != OutcomeOngoing
}

// Winner returns the mark of the winner, or Empty for an ongoing match or a draw.
func (o Outcome) Winner() Mark {
	switch o {
	case OutcomePlayerOneWin:
		return PlayerOne
	case OutcomePlayerTwoWin:
		return PlayerTwo
	}
	return Empty
}

// WinFor returns the winning outcome for the given mark.
func WinFor(mark Mark) Outcome {
	if mark == PlayerOne {
		return OutcomePlayerOneWin
	}
	return OutcomePlayerTwoWin
}
