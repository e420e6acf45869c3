package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/usecase"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	actionNewGame  = "game:new"
	actionJoinGame = "game:join"
	actionMove     = "game:move"
	actionJump     = "game:jump"
	actionOrder    = "game:order"
	actionState    = "game:state"
	actionError    = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	GameID string               `json:"game_id,omitempty"`
	Cell   *int                 `json:"cell,omitempty"`
	Ply    *int                 `json:"ply,omitempty"`
	Game   *tictactoe.ViewState `json:"game,omitempty"`
	Action string               `json:"action,omitempty"`
	Error  string               `json:"error,omitempty"`
}

func newMessage(action string, payload any) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("failed to marshal %s payload: %w", action, err)
	}

	return Message{Action: action, Payload: data}, nil
}

// client is one connection. gameID and unsubscribe are only touched by the goroutine reading the connection.
type client struct {
	conn   *websocket.Conn
	logger *slog.Logger
	outbox chan Message

	// notified counts the states pushed by the game subscription
	notified atomic.Uint64

	gameID      string
	unsubscribe func()
}

func newClient(conn *websocket.Conn, logger *slog.Logger) *client {
	return &client{
		conn:   conn,
		logger: logger,
		outbox: make(chan Message, outboxSize),
	}
}

// send queues msg without blocking. A full outbox drops its oldest message, a later state supersedes it.
func (that *client) send(msg Message) {
	for {
		select {
		case that.outbox <- msg:
			return
		default:
		}

		select {
		case stale := <-that.outbox:
			that.logger.Warn("outbox is full, dropping message", "action", stale.Action)
		default:
		}
	}
}

func (that *client) sendPayload(action string, payload Payload) {
	msg, err := newMessage(action, payload)
	if err != nil {
		that.logger.Error("failed to build message", "action", action, "error", err)
		return
	}

	that.send(msg)
}

func (that *client) sendState(view tictactoe.ViewState) {
	that.sendPayload(actionState, Payload{Game: &view})
}

func (that *client) sendError(action, text string) {
	that.sendPayload(actionError, Payload{Action: action, Error: text})
}

// join moves the client to gameID, leaving the previous game if any.
func (that *client) join(gameID string, subscribe func(gameID string, listener usecase.Listener) func()) {
	that.leave()

	that.gameID = gameID
	that.unsubscribe = subscribe(gameID, func(view tictactoe.ViewState) {
		that.notified.Add(1)
		that.sendState(view)
	})
}

func (that *client) leave() {
	if that.unsubscribe != nil {
		that.unsubscribe()
	}

	that.gameID = ""
	that.unsubscribe = nil
}

func (that *client) writeLoop(ctx context.Context) {
	log := that.logger.With("method", "writeLoop")

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-that.outbox:
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(writeCtx, that.conn, msg)
			cancel()

			if err != nil {
				log.Error("failed to write message", "action", msg.Action, "error", err)
				return
			}
		}
	}
}
