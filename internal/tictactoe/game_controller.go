package tictactoe

import (
	"fmt"
	"strconv"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
)

const boardWidth = 3

// DetectWin - returns the first line of WinCombos holding three equal marks.
func DetectWin(board entity.Board) (entity.WinResult, bool) {
	for _, combo := range entity.WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != entity.EmptyCell && a == b && b == c {
			return entity.WinResult{Mark: a, Line: combo}, true
		}
	}

	return entity.WinResult{}, false
}

// ApplyMove - places the next mark on cell and drops any plies after the current one.
// The game is returned unchanged, with false, when the board is already won or the cell is taken.
func ApplyMove(game entity.Game, cell int) (entity.Game, bool) {
	if !IsValidCell(cell) {
		return game, false
	}

	board := game.CurrentBoard()
	if _, won := DetectWin(board); won || board[cell] != entity.EmptyCell {
		return game, false
	}

	board[cell] = game.NextMark()

	history := make([]entity.Ply, game.CurrentPly+1, game.CurrentPly+2)
	copy(history, game.History[:game.CurrentPly+1])
	history = append(history, entity.Ply{
		Squares: board,
		Col:     strconv.Itoa(cell%boardWidth + 1),
		Row:     strconv.Itoa(cell/boardWidth + 1),
	})

	game.History = history
	game.CurrentPly = len(history) - 1
	game.XIsNext = !game.XIsNext

	return game, true
}

// JumpTo - moves the current ply pointer, history stays as it is.
func JumpTo(game entity.Game, ply int) (entity.Game, error) {
	if ply < 0 || ply >= len(game.History) {
		return game, fmt.Errorf("%w: %d of %d", apperror.ErrInvalidPly, ply, len(game.History))
	}

	game.CurrentPly = ply
	game.XIsNext = ply%2 == 0

	return game, nil
}

// ToggleOrder - flips the order the move list is shown in.
func ToggleOrder(game entity.Game) entity.Game {
	game.HistoryAscending = !game.HistoryAscending
	return game
}

// Status - a win is reported before a draw.
func Status(game entity.Game) string {
	if win, ok := DetectWin(game.CurrentBoard()); ok {
		return "Winner: " + win.Mark
	}

	if game.CurrentPly == entity.BoardSize {
		return "Draw the game"
	}

	return "Next player: " + game.NextMark()
}

func IsValidCell(cell int) bool {
	return cell >= 0 && cell < entity.BoardSize
}
