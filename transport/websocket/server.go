package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/usecase"
	"nhooyr.io/websocket"
)

const (
	outboxSize      = 16
	writeTimeout    = 5 * time.Second
	shutdownTimeout = 5 * time.Second
)

type uGame interface {
	CreateGame(ctx context.Context) (tictactoe.ViewState, error)
	GetViewState(ctx context.Context, gameID string) (tictactoe.ViewState, error)
	ApplyMove(ctx context.Context, gameID string, cell int) (tictactoe.ViewState, error)
	JumpTo(ctx context.Context, gameID string, ply int) (tictactoe.ViewState, error)
	ToggleOrder(ctx context.Context, gameID string) (tictactoe.ViewState, error)
	Subscribe(gameID string, listener usecase.Listener) func()
}

type handler func(ctx context.Context, msg *Message, client *client) error

type Server struct {
	logger *slog.Logger
	uGame  uGame

	handlers map[string]handler
}

func New(logger *slog.Logger, uGame uGame) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		uGame:  uGame,

		handlers: make(map[string]handler),
	}

	server.handlers[actionNewGame] = server.handleNewGame
	server.handlers[actionJoinGame] = server.handleJoinGame
	server.handlers[actionMove] = server.handleMove
	server.handlers[actionJump] = server.handleJump
	server.handlers[actionOrder] = server.handleOrder

	return server
}

// Start - starts WebSocket server and stops it when ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", that)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// ServeHTTP - upgrades the connection and processes its messages until the client leaves.
func (that *Server) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	conn, err := websocket.Accept(writer, req, nil)
	if err != nil {
		log.Error("failed to accept websocket", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(req.Context())
	defer cancel()

	c := newClient(conn, that.logger)
	defer c.leave()

	go c.writeLoop(ctx)

	log.Info("WebSocket connection established")

	err = that.handleMessages(ctx, c)

	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		log.Info("WebSocket connection closed")
	default:
		log.Error("error handling messages", "error", err)
		_ = conn.Close(websocket.StatusInternalError, "read failed")
	}
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(ctx context.Context, c *client) error {
	log := that.logger.With("method", "handleMessages")

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			return err
		}

		var msg Message
		if err = json.Unmarshal(data, &msg); err != nil {
			log.Warn("failed to unmarshal message", "error", err)
			c.sendError("", "message is not valid JSON")
			continue
		}

		handle, ok := that.handlers[msg.Action]
		if !ok {
			log.Warn("unknown action", "action", msg.Action)
			c.sendError(msg.Action, "unknown action")
			continue
		}

		if err = handle(ctx, &msg, c); err != nil {
			log.Error("error processing message", "action", msg.Action, "error", err)
			c.sendError(msg.Action, err.Error())
		}
	}
}
