package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

// Listener is called with the full view after every change of the game it is subscribed to.
// It runs while the game is locked and must not call back into the GameManager.
type Listener func(view tictactoe.ViewState)

// gameLock serializes intents on one game. refs counts holders and waiters, the entry is dropped at zero.
type gameLock struct {
	mu   sync.Mutex
	refs int
}

// transition returns the next game and whether it differs from the one passed in.
type transition func(game entity.Game) (entity.Game, bool, error)

type GameManager struct {
	logger   *slog.Logger
	gameRepo gameRepo
	newID    func() string

	mu        sync.Mutex
	locks     map[string]*gameLock
	listeners map[string]map[uint64]Listener
	nextSubID uint64
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo) *GameManager {
	return &GameManager{
		logger:   logger.With("component", "game_manager"),
		gameRepo: gameRepo,
		newID:    uuid.NewString,

		locks:     make(map[string]*gameLock),
		listeners: make(map[string]map[uint64]Listener),
	}
}

func (that *GameManager) CreateGame(ctx context.Context) (tictactoe.ViewState, error) {
	game := entity.NewGame(that.newID())

	if err := that.gameRepo.CreateOrUpdate(ctx, &game); err != nil {
		return tictactoe.ViewState{}, fmt.Errorf("failed to create game: %w", err)
	}

	that.logger.Info("game created", "gameID", game.ID)

	return tictactoe.View(game), nil
}

func (that *GameManager) GetViewState(ctx context.Context, gameID string) (tictactoe.ViewState, error) {
	game, err := that.getGameByID(ctx, gameID)
	if err != nil {
		return tictactoe.ViewState{}, err
	}

	return tictactoe.View(*game), nil
}

// ApplyMove - a move onto a taken cell or a won board leaves the game as it is.
func (that *GameManager) ApplyMove(ctx context.Context, gameID string, cell int) (tictactoe.ViewState, error) {
	if !tictactoe.IsValidCell(cell) {
		return tictactoe.ViewState{}, fmt.Errorf("%w: %d", apperror.ErrInvalidCell, cell)
	}

	return that.update(ctx, gameID, "ApplyMove", func(game entity.Game) (entity.Game, bool, error) {
		next, applied := tictactoe.ApplyMove(game, cell)
		return next, applied, nil
	})
}

func (that *GameManager) JumpTo(ctx context.Context, gameID string, ply int) (tictactoe.ViewState, error) {
	return that.update(ctx, gameID, "JumpTo", func(game entity.Game) (entity.Game, bool, error) {
		next, err := tictactoe.JumpTo(game, ply)
		if err != nil {
			return game, false, err
		}

		return next, next.CurrentPly != game.CurrentPly, nil
	})
}

func (that *GameManager) ToggleOrder(ctx context.Context, gameID string) (tictactoe.ViewState, error) {
	return that.update(ctx, gameID, "ToggleOrder", func(game entity.Game) (entity.Game, bool, error) {
		return tictactoe.ToggleOrder(game), true, nil
	})
}

// EndGame - removes the session. Subscribers stay registered until they unsubscribe.
func (that *GameManager) EndGame(ctx context.Context, gameID string) error {
	unlock := that.lockGame(gameID)
	defer unlock()

	if err := that.gameRepo.DeleteByID(ctx, gameID); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	that.logger.Info("game ended", "gameID", gameID)

	return nil
}

// Subscribe registers listener for gameID and returns the function that removes it.
func (that *GameManager) Subscribe(gameID string, listener Listener) func() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.nextSubID++
	subID := that.nextSubID

	if that.listeners[gameID] == nil {
		that.listeners[gameID] = make(map[uint64]Listener)
	}
	that.listeners[gameID][subID] = listener

	var once sync.Once

	return func() {
		once.Do(func() {
			that.mu.Lock()
			defer that.mu.Unlock()

			delete(that.listeners[gameID], subID)
			if len(that.listeners[gameID]) == 0 {
				delete(that.listeners, gameID)
			}
		})
	}
}

// update runs load, transition and store under the game lock, then notifies subscribers if the game changed.
func (that *GameManager) update(ctx context.Context, gameID, method string, apply transition) (tictactoe.ViewState, error) {
	log := that.logger.With("method", method, "gameID", gameID)

	unlock := that.lockGame(gameID)
	defer unlock()

	game, err := that.getGameByID(ctx, gameID)
	if err != nil {
		return tictactoe.ViewState{}, err
	}

	next, changed, err := apply(*game)
	if err != nil {
		return tictactoe.ViewState{}, err
	}

	if !changed {
		log.Debug("intent ignored")
		return tictactoe.View(*game), nil
	}

	if err = that.gameRepo.CreateOrUpdate(ctx, &next); err != nil {
		return tictactoe.ViewState{}, fmt.Errorf("failed to update game: %w", err)
	}

	view := tictactoe.View(next)
	that.notify(gameID, view)

	log.Debug("game updated", "ply", next.CurrentPly, "status", view.Status)

	return view, nil
}

func (that *GameManager) notify(gameID string, view tictactoe.ViewState) {
	that.mu.Lock()
	listeners := make([]Listener, 0, len(that.listeners[gameID]))
	for _, listener := range that.listeners[gameID] {
		listeners = append(listeners, listener)
	}
	that.mu.Unlock()

	for _, listener := range listeners {
		listener(view)
	}
}

// lockGame blocks until gameID is free and returns the function that releases it.
func (that *GameManager) lockGame(gameID string) func() {
	that.mu.Lock()
	lock, ok := that.locks[gameID]
	if !ok {
		lock = &gameLock{}
		that.locks[gameID] = lock
	}
	lock.refs++
	that.mu.Unlock()

	lock.mu.Lock()

	return func() {
		lock.mu.Unlock()

		that.mu.Lock()
		defer that.mu.Unlock()

		lock.refs--
		if lock.refs == 0 {
			delete(that.locks, gameID)
		}
	}
}

func (that *GameManager) getGameByID(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if errors.Is(err, apperror.ErrGameNotFound) {
		return nil, fmt.Errorf("game %s: %w", id, err)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}
