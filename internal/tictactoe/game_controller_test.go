package tictactoe

import (
	"testing"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	x = entity.PlayerX
	o = entity.PlayerO
	e = entity.EmptyCell
)

// play applies the moves in order and fails the test if one is ignored.
func play(t *testing.T, cells ...int) entity.Game {
	t.Helper()

	game := entity.NewGame("123")
	for _, cell := range cells {
		var applied bool
		game, applied = ApplyMove(game, cell)
		require.True(t, applied, "move to cell %d was ignored", cell)
	}

	return game
}

func TestDetectWin(t *testing.T) {
	t.Run("Empty board has no winner", func(t *testing.T) {
		// When: checking an empty board
		_, ok := DetectWin(entity.Board{})

		// Then: there is no winner
		assert.False(t, ok)
	})

	t.Run("Every line is detected for both marks", func(t *testing.T) {
		for _, combo := range entity.WinCombos {
			for _, mark := range []string{x, o} {
				// Given: a board with a single full line
				var board entity.Board
				for _, cell := range combo {
					board[cell] = mark
				}

				// When: checking the board
				win, ok := DetectWin(board)

				// Then: the line and its mark are returned
				require.True(t, ok, "line %v", combo)
				assert.Equal(t, entity.WinResult{Mark: mark, Line: combo}, win)
			}
		}
	})

	t.Run("Mixed line is not a win", func(t *testing.T) {
		// Given: a full board without three in a row
		board := entity.Board{
			x, o, x,
			x, o, o,
			o, x, x,
		}

		// When: checking the board
		_, ok := DetectWin(board)

		// Then: there is no winner
		assert.False(t, ok)
	})

	t.Run("First line in table order wins", func(t *testing.T) {
		// Given: a board where row 0 and column 0 are both X
		board := entity.Board{
			x, x, x,
			x, o, o,
			x, o, o,
		}

		// When: checking the board
		win, ok := DetectWin(board)

		// Then: the row is reported because it comes first
		require.True(t, ok)
		assert.Equal(t, [3]int{0, 1, 2}, win.Line)
	})
}

func TestApplyMove(t *testing.T) {
	t.Run("Places X first and flips the turn", func(t *testing.T) {
		// Given: a new game
		game := entity.NewGame("123")

		// When: cell 4 is clicked
		next, applied := ApplyMove(game, 4)

		// Then: X is placed in the centre with its label, and O moves next
		require.True(t, applied)
		expectedGame := entity.Game{
			ID: "123",
			History: []entity.Ply{
				{},
				{Squares: entity.Board{e, e, e, e, x, e, e, e, e}, Col: "2", Row: "2"},
			},
			CurrentPly:       1,
			XIsNext:          false,
			HistoryAscending: true,
		}
		assert.Equal(t, expectedGame, next)

		// Then: the input game is not modified
		assert.Len(t, game.History, 1)
		assert.True(t, game.XIsNext)
	})

	t.Run("Labels columns and rows from one", func(t *testing.T) {
		// When: the last cell is played
		game := play(t, 8)

		// Then: it is labelled column 3, row 3
		assert.Equal(t, "3", game.History[1].Col)
		assert.Equal(t, "3", game.History[1].Row)

		// When: cell 5 is played
		game, _ = ApplyMove(game, 5)

		// Then: it is labelled column 3, row 2
		assert.Equal(t, "3", game.History[2].Col)
		assert.Equal(t, "2", game.History[2].Row)
	})

	t.Run("Occupied cell is ignored", func(t *testing.T) {
		// Given: X already holds cell 0
		game := play(t, 0)

		// When: O clicks cell 0
		next, applied := ApplyMove(game, 0)

		// Then: nothing changes
		assert.False(t, applied)
		assert.Equal(t, game, next)
	})

	t.Run("Moves after a win are ignored", func(t *testing.T) {
		// Given: X has won on the top row
		game := play(t, 0, 4, 1, 5, 2)

		// When: O clicks an empty cell
		next, applied := ApplyMove(game, 8)

		// Then: nothing changes
		assert.False(t, applied)
		assert.Equal(t, game, next)
	})

	t.Run("Out of range cells are ignored", func(t *testing.T) {
		game := entity.NewGame("123")

		for _, cell := range []int{-1, 9, 20} {
			next, applied := ApplyMove(game, cell)

			assert.False(t, applied)
			assert.Equal(t, game, next)
		}
	})

	t.Run("History grows to current ply plus two", func(t *testing.T) {
		// Given: a game at ply 3
		game := play(t, 0, 1, 2)

		// When: another move is applied
		next, applied := ApplyMove(game, 3)

		// Then: the turn flipped and history has length currentPly + 2
		require.True(t, applied)
		assert.Len(t, next.History, game.CurrentPly+2)
		assert.Equal(t, !game.XIsNext, next.XIsNext)
	})

	t.Run("Move after time travel branches the history", func(t *testing.T) {
		// Given: a game that reached ply 5
		game := play(t, 0, 4, 1, 5, 8)
		require.Len(t, game.History, 6)

		// When: jumping back to ply 2 and playing cell 3
		game, err := JumpTo(game, 2)
		require.NoError(t, err)
		require.Equal(t, e, game.CurrentBoard()[3])

		game, applied := ApplyMove(game, 3)

		// Then: plies 3 to 5 are gone and the new move is ply 3
		require.True(t, applied)
		require.Len(t, game.History, 4)
		assert.Equal(t, 3, game.CurrentPly)
		assert.Equal(t, entity.Board{x, e, e, x, o, e, e, e, e}, game.CurrentBoard())
		assert.False(t, game.XIsNext)
		require.NoError(t, game.Validate())
	})

	t.Run("Branching does not touch the previous history", func(t *testing.T) {
		// Given: a game at ply 3 rewound to ply 1
		original := play(t, 0, 4, 8)
		rewound, err := JumpTo(original, 1)
		require.NoError(t, err)

		// When: a different move is applied
		_, applied := ApplyMove(rewound, 2)
		require.True(t, applied)

		// Then: the plies of the original game are intact
		assert.Len(t, original.History, 4)
		assert.Equal(t, entity.Board{x, e, e, e, o, e, e, e, e}, original.History[2].Squares)
		assert.Equal(t, entity.Board{x, e, e, e, o, e, e, e, x}, original.History[3].Squares)
	})
}

func TestJumpTo(t *testing.T) {
	t.Run("Sets the pointer and derives the turn", func(t *testing.T) {
		// Given: a game at ply 4
		game := play(t, 0, 4, 1, 5)

		for ply := range game.History {
			// When: jumping to the ply
			next, err := JumpTo(game, ply)

			// Then: turn follows the parity and history is untouched
			require.NoError(t, err)
			assert.Equal(t, ply, next.CurrentPly)
			assert.Equal(t, ply%2 == 0, next.XIsNext)
			assert.Equal(t, game.History, next.History)
		}
	})

	t.Run("Out of range ply is rejected", func(t *testing.T) {
		// Given: a game with two plies
		game := play(t, 0)

		for _, ply := range []int{-1, 2, 10} {
			// When: jumping outside the history
			next, err := JumpTo(game, ply)

			// Then: ErrInvalidPly is returned and the game is unchanged
			require.ErrorIs(t, err, apperror.ErrInvalidPly)
			assert.Equal(t, game, next)
		}
	})

	t.Run("Jumping back out of a won position allows moves again", func(t *testing.T) {
		// Given: X has won
		game := play(t, 0, 4, 1, 5, 2)

		// When: jumping to ply 4 and playing
		game, err := JumpTo(game, 4)
		require.NoError(t, err)
		game, applied := ApplyMove(game, 6)

		// Then: the move is accepted
		assert.True(t, applied)
		assert.Equal(t, "Next player: O", Status(game))
	})
}

func TestToggleOrder(t *testing.T) {
	// Given: a game at ply 2
	game := play(t, 0, 4)

	// When: the order is toggled twice
	once := ToggleOrder(game)
	twice := ToggleOrder(once)

	// Then: only the order flag changes
	assert.False(t, once.HistoryAscending)
	assert.Equal(t, game.History, once.History)
	assert.Equal(t, game.CurrentPly, once.CurrentPly)
	assert.Equal(t, game, twice)
}

func TestStatus(t *testing.T) {
	t.Run("Next player alternates", func(t *testing.T) {
		assert.Equal(t, "Next player: X", Status(entity.NewGame("123")))
		assert.Equal(t, "Next player: O", Status(play(t, 0)))
	})

	t.Run("Top row wins for X", func(t *testing.T) {
		// When: X@0, O@4, X@1, O@5, X@2
		game := play(t, 0, 4, 1, 5, 2)

		// Then: the top row is detected and X is the winner
		win, ok := DetectWin(game.CurrentBoard())
		require.True(t, ok)
		assert.Equal(t, [3]int{0, 1, 2}, win.Line)
		assert.Equal(t, "Winner: X", Status(game))
	})

	t.Run("Full board without a line is a draw", func(t *testing.T) {
		// When: nine moves fill the board without three in a row
		game := play(t, 0, 1, 2, 4, 3, 5, 7, 6, 8)

		// Then: the game is drawn
		assert.Equal(t, 9, game.CurrentPly)
		assert.Equal(t, "Draw the game", Status(game))
	})

	t.Run("Win on the last move beats the draw", func(t *testing.T) {
		// When: X completes a diagonal with the ninth move
		game := play(t, 0, 1, 2, 5, 3, 6, 4, 7, 8)

		// Then: the win is reported
		assert.Equal(t, 9, game.CurrentPly)
		assert.Equal(t, "Winner: X", Status(game))
	})

	t.Run("Rewinding a finished game reports the next player", func(t *testing.T) {
		game := play(t, 0, 1, 2, 4, 3, 5, 7, 6, 8)

		game, err := JumpTo(game, 3)
		require.NoError(t, err)

		assert.Equal(t, "Next player: O", Status(game))
	})
}
