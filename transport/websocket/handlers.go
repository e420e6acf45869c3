package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

var (
	errNotJoined      = errors.New("join a game first")
	errMissingGameID  = errors.New("game_id is required")
	errMissingCell    = errors.New("cell is required")
	errMissingPly     = errors.New("ply is required")
	errInvalidPayload = errors.New("payload is invalid")
)

func (that *Server) handleNewGame(ctx context.Context, _ *Message, c *client) error {
	view, err := that.uGame.CreateGame(ctx)
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}

	c.join(view.GameID, that.uGame.Subscribe)
	c.sendState(view)

	that.logger.Info("client started a game", "gameID", view.GameID)

	return nil
}

func (that *Server) handleJoinGame(ctx context.Context, msg *Message, c *client) error {
	payload, err := decodePayload(msg)
	if err != nil {
		return err
	}

	if payload.GameID == "" {
		return errMissingGameID
	}

	// subscribe first so no change between the read and the subscription is lost
	previous := c.gameID
	c.join(payload.GameID, that.uGame.Subscribe)

	view, err := that.uGame.GetViewState(ctx, payload.GameID)
	if err != nil {
		c.leave()
		if previous != "" {
			c.join(previous, that.uGame.Subscribe)
		}

		return fmt.Errorf("failed to join game: %w", err)
	}

	c.sendState(view)

	that.logger.Info("client joined a game", "gameID", view.GameID)

	return nil
}

func (that *Server) handleMove(ctx context.Context, msg *Message, c *client) error {
	payload, err := decodeJoinedPayload(msg, c)
	if err != nil {
		return err
	}

	if payload.Cell == nil {
		return errMissingCell
	}

	seen := c.notified.Load()

	view, err := that.uGame.ApplyMove(ctx, c.gameID, *payload.Cell)
	if err != nil {
		return fmt.Errorf("failed to apply move: %w", err)
	}

	replyIfIgnored(c, seen, view)

	return nil
}

func (that *Server) handleJump(ctx context.Context, msg *Message, c *client) error {
	payload, err := decodeJoinedPayload(msg, c)
	if err != nil {
		return err
	}

	if payload.Ply == nil {
		return errMissingPly
	}

	seen := c.notified.Load()

	view, err := that.uGame.JumpTo(ctx, c.gameID, *payload.Ply)
	if err != nil {
		return fmt.Errorf("failed to jump: %w", err)
	}

	replyIfIgnored(c, seen, view)

	return nil
}

func (that *Server) handleOrder(ctx context.Context, _ *Message, c *client) error {
	if c.gameID == "" {
		return errNotJoined
	}

	if _, err := that.uGame.ToggleOrder(ctx, c.gameID); err != nil {
		return fmt.Errorf("failed to toggle order: %w", err)
	}

	return nil
}

// replyIfIgnored sends view to the sender alone when the intent changed nothing and no subscriber was notified.
func replyIfIgnored(c *client, seen uint64, view tictactoe.ViewState) {
	if c.notified.Load() == seen {
		c.sendState(view)
	}
}

func decodePayload(msg *Message) (Payload, error) {
	var payload Payload
	if len(msg.Payload) == 0 {
		return payload, nil
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return payload, fmt.Errorf("%w: %w", errInvalidPayload, err)
	}

	return payload, nil
}

func decodeJoinedPayload(msg *Message, c *client) (Payload, error) {
	if c.gameID == "" {
		return Payload{}, errNotJoined
	}

	return decodePayload(msg)
}
