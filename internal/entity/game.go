package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
)

const (
	PlayerX = "X"
	PlayerO = "O"

	EmptyCell = ""

	BoardSize = 9
)

// WinCombos - rows, columns and diagonals, in the order they are checked.
var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board - 9 cells in row-major order.
type Board [BoardSize]string

// Ply is one snapshot of the history. Col and Row are empty for the initial ply.
type Ply struct {
	Squares Board  `json:"squares"`
	Col     string `json:"col,omitempty"`
	Row     string `json:"row,omitempty"`
}

// WinResult holds the winning mark and the line that produced it.
type WinResult struct {
	Mark string `json:"mark"`
	Line [3]int `json:"line"`
}

// Game is the whole state of one session.
type Game struct {
	ID               string `json:"id"`
	History          []Ply  `json:"history"`
	CurrentPly       int    `json:"current_ply"`
	XIsNext          bool   `json:"x_is_next"`
	HistoryAscending bool   `json:"history_ascending"`
}

func NewGame(id string) Game {
	return Game{
		ID:               id,
		History:          []Ply{{}},
		CurrentPly:       0,
		XIsNext:          true,
		HistoryAscending: true,
	}
}

// CurrentBoard - board at the current ply.
func (that *Game) CurrentBoard() Board {
	return that.History[that.CurrentPly].Squares
}

// NextMark - mark that will be placed by the next move.
func (that *Game) NextMark() string {
	if that.XIsNext {
		return PlayerX
	}
	return PlayerO
}

// Clone returns a copy that shares no memory with the original.
func (that *Game) Clone() Game {
	clone := *that
	clone.History = make([]Ply, len(that.History))
	copy(clone.History, that.History)

	return clone
}

func (that Board) IsEmpty() bool {
	for _, cell := range that {
		if cell != EmptyCell {
			return false
		}
	}
	return true
}

// HasLine reports whether any of WinCombos is filled with one mark.
func (that Board) HasLine() bool {
	for _, combo := range WinCombos {
		a, b, c := combo[0], combo[1], combo[2]
		if that[a] != EmptyCell && that[a] == that[b] && that[a] == that[c] {
			return true
		}
	}
	return false
}

// Validate checks the history invariants of a game loaded from outside the reducer.
func (that *Game) Validate() error {
	if len(that.History) == 0 {
		return fmt.Errorf("%w: empty history", apperror.ErrCorruptGame)
	}

	if that.CurrentPly < 0 || that.CurrentPly >= len(that.History) {
		return fmt.Errorf("%w: current ply %d out of range", apperror.ErrCorruptGame, that.CurrentPly)
	}

	if that.XIsNext != (that.CurrentPly%2 == 0) {
		return fmt.Errorf("%w: turn does not match ply %d", apperror.ErrCorruptGame, that.CurrentPly)
	}

	if !that.History[0].Squares.IsEmpty() {
		return fmt.Errorf("%w: initial board is not empty", apperror.ErrCorruptGame)
	}

	for i := 1; i < len(that.History); i++ {
		if that.History[i-1].Squares.HasLine() {
			return fmt.Errorf("%w: ply %d follows a won board", apperror.ErrCorruptGame, i)
		}

		if err := checkStep(that.History[i-1].Squares, that.History[i].Squares, i); err != nil {
			return err
		}
	}

	return nil
}

// checkStep - ply k differs from ply k-1 by exactly one previously empty cell holding the mark of that ply.
func checkStep(prev, next Board, ply int) error {
	expected := PlayerX
	if ply%2 == 0 {
		expected = PlayerO
	}

	changed := 0
	for cell := range next {
		if prev[cell] == next[cell] {
			continue
		}

		if prev[cell] != EmptyCell || next[cell] != expected {
			return fmt.Errorf("%w: ply %d rewrites cell %d", apperror.ErrCorruptGame, ply, cell)
		}

		changed++
	}

	if changed != 1 {
		return fmt.Errorf("%w: ply %d changes %d cells", apperror.ErrCorruptGame, ply, changed)
	}

	return nil
}
