package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
)

const (
	labelSortAscending  = "Sort ascending"
	labelSortDescending = "Sort descending"
)

// HistoryEntry is one row of the move list. Ply is the true history index to jump to.
type HistoryEntry struct {
	DisplayIndex int    `json:"display_index"`
	Ply          int    `json:"ply"`
	Label        string `json:"label"`
	IsCurrent    bool   `json:"is_current"`
}

// ViewState is everything a client needs to draw the game.
type ViewState struct {
	GameID           string         `json:"game_id"`
	Board            entity.Board   `json:"board"`
	Status           string         `json:"status"`
	Winner           string         `json:"winner,omitempty"`
	WinningLine      []int          `json:"winning_line,omitempty"`
	History          []HistoryEntry `json:"history"`
	HistoryAscending bool           `json:"history_ascending"`
	OrderToggleLabel string         `json:"order_toggle_label"`
}

func View(game entity.Game) ViewState {
	view := ViewState{
		GameID:           game.ID,
		Board:            game.CurrentBoard(),
		Status:           Status(game),
		History:          make([]HistoryEntry, 0, len(game.History)),
		HistoryAscending: game.HistoryAscending,
		OrderToggleLabel: labelSortDescending,
	}

	if win, ok := DetectWin(view.Board); ok {
		view.Winner = win.Mark
		view.WinningLine = win.Line[:]
	}

	if !game.HistoryAscending {
		view.OrderToggleLabel = labelSortAscending
	}

	last := len(game.History) - 1
	for i := range game.History {
		ply := i
		if !game.HistoryAscending {
			ply = last - i
		}

		view.History = append(view.History, HistoryEntry{
			DisplayIndex: i,
			Ply:          ply,
			Label:        moveLabel(ply, game.History[ply]),
			IsCurrent:    ply == game.CurrentPly,
		})
	}

	return view
}

func moveLabel(ply int, step entity.Ply) string {
	if ply == 0 {
		return "Go to game start"
	}
	return fmt.Sprintf("Go to move #%d (%s, %s)", ply, step.Col, step.Row)
}
