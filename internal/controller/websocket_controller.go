package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/benbeisheim/predictchess-backend/internal/logger"
	"github.com/benbeisheim/predictchess-backend/internal/middleware"
	"github.com/benbeisheim/predictchess-backend/internal/model"
	"github.com/benbeisheim/predictchess-backend/internal/service"
	"github.com/benbeisheim/predictchess-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	playerID, _ := c.Locals(middleware.PlayerIDKey).(string)
	log := logger.With(zap.String("game", gameID), zap.String("player", playerID))

	conn := &lockedConn{conn: c}
	if err := wsc.gameService.RegisterConnection(gameID, playerID, conn); err != nil {
		log.Warn("failed to register connection", zap.Error(err))
		wsc.sendError(conn, err)
		conn.Close()
		return
	}

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debug("read loop ended", zap.Error(err))
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Debug("parse error", zap.Error(err))
			wsc.sendError(conn, fmt.Errorf("invalid message: %w", err))
			continue
		}

		if err := wsc.handleMessage(gameID, playerID, msg); err != nil {
			if !model.IsUserError(err) {
				log.Error("handle error", zap.String("type", string(msg.Type)), zap.Error(err))
			}
			wsc.sendError(conn, err)
		}
	}

	wsc.gameService.UnregisterConnection(gameID, playerID, conn)
}

func (wsc *WebSocketController) handleMessage(gameID, playerID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeCommit, ws.MessageTypeMove, ws.MessageTypePrediction:
		var commit model.WSCommit
		if err := json.Unmarshal(msg.Payload, &commit); err != nil {
			return err
		}
		switch msg.Type {
		case ws.MessageTypeMove:
			return wsc.gameService.SetMove(gameID, playerID, commit)
		case ws.MessageTypePrediction:
			return wsc.gameService.SetPrediction(gameID, playerID, commit)
		default:
			return wsc.gameService.Commit(gameID, playerID, commit)
		}

	case ws.MessageTypeReady:
		var req model.WSReady
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return err
		}
		check, _, err := wsc.gameService.SetReady(context.Background(), gameID, playerID, req.Ready)
		if errors.Is(err, model.ErrIllegalCommitment) {
			return &readyRefusal{check: check, err: err}
		}
		return err

	case ws.MessageTypeReset:
		return wsc.gameService.ResetTurn(gameID, playerID)

	case ws.MessageTypeResign:
		return wsc.gameService.Resign(gameID, playerID)

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

// HandleMatchmaking queues the player and holds the socket open until a match is found
// or the client goes away.
func (wsc *WebSocketController) HandleMatchmaking(c *websocket.Conn) {
	playerID, _ := c.Locals(middleware.PlayerIDKey).(string)
	log := logger.With(zap.String("player", playerID))

	matches := make(chan service.MatchFoundEvent, 1)
	wsc.gameService.RegisterMatchmakingChannel(playerID, matches)
	if err := wsc.gameService.JoinMatchmaking(playerID); err != nil && !errors.Is(err, model.ErrAlreadyQueued) {
		wsc.gameService.UnregisterMatchmakingChannel(playerID, matches)
		wsc.sendError(c, err)
		return
	}

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case event, ok := <-matches:
		if !ok {
			log.Info("matchmaking channel replaced")
			return
		}
		if err := c.WriteJSON(event); err != nil {
			log.Warn("failed to send match", zap.Error(err))
		}
	case <-closed:
		wsc.gameService.UnregisterMatchmakingChannel(playerID, matches)
		_ = wsc.gameService.LeaveMatchmaking(playerID)
		log.Info("left matchmaking")
	}
}

func (wsc *WebSocketController) sendError(c model.Conn, err error) {
	var payload interface{} = ws.ErrorPayload{Error: err.Error()}
	var refusal *readyRefusal
	if errors.As(err, &refusal) {
		payload = readyRefusedPayload{Error: err.Error(), TurnCheck: refusal.check}
	}
	msg, mErr := ws.NewMessage(ws.MessageTypeError, payload)
	if mErr != nil {
		return
	}
	_ = c.WriteJSON(msg)
}

// readyRefusal carries the legality report of a refused ready back to the socket.
type readyRefusal struct {
	check model.TurnCheck
	err   error
}

func (r *readyRefusal) Error() string { return r.err.Error() }
func (r *readyRefusal) Unwrap() error { return r.err }

// readyRefusedPayload matches the REST answer to a refused ready.
type readyRefusedPayload struct {
	Error     string          `json:"error"`
	TurnCheck model.TurnCheck `json:"turnCheck"`
}

// lockedConn serialises writes; the game broadcasts on the same socket the read loop
// answers errors on.
type lockedConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (l *lockedConn) WriteJSON(v interface{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn.WriteJSON(v)
}

func (l *lockedConn) WriteMessage(messageType int, data []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn.WriteMessage(messageType, data)
}

func (l *lockedConn) Close() error {
	return l.conn.Close()
}
