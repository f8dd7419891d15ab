package model

import (
	"fmt"
	"sync"

	"github.com/benbeisheim/predictchess-backend/internal/logger"
	"github.com/benbeisheim/predictchess-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// Conn is the part of a websocket connection a game writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// GameConnections holds the sockets watching one game, keyed by player id.
type GameConnections struct {
	connections map[string]Conn
	mu          sync.Mutex
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]Conn),
	}
}

// outbound is a message addressed to one connection.
type outbound struct {
	playerID string
	msg      ws.Message
}

func (gc *GameConnections) add(playerID string, conn Conn) bool {
	gc.mu.Lock()
	defer gc.mu.Unlock()

	if _, exists := gc.connections[playerID]; exists {
		return false
	}
	gc.connections[playerID] = conn
	return true
}

// remove drops playerID's connection, but only if it is still conn.
func (gc *GameConnections) remove(playerID string, conn Conn) {
	gc.mu.Lock()
	defer gc.mu.Unlock()

	current, exists := gc.connections[playerID]
	if !exists {
		return
	}
	if conn != nil && current != conn {
		logger.Debug("ignoring unregister for stale connection", zap.String("player", playerID))
		return
	}
	delete(gc.connections, playerID)
}

func (gc *GameConnections) playerIDs() []string {
	gc.mu.Lock()
	defer gc.mu.Unlock()

	ids := make([]string, 0, len(gc.connections))
	for id := range gc.connections {
		ids = append(ids, id)
	}
	return ids
}

// deliver writes every message in order. The lock is held for the whole batch so
// batches from concurrent updates do not interleave; a failed write drops the socket.
func (gc *GameConnections) deliver(messages []outbound) {
	gc.mu.Lock()
	defer gc.mu.Unlock()

	for _, out := range messages {
		conn, ok := gc.connections[out.playerID]
		if !ok {
			continue
		}
		if err := conn.WriteJSON(out.msg); err != nil {
			logger.Warn("failed to send message, dropping connection",
				zap.String("player", out.playerID),
				zap.String("type", string(out.msg.Type)),
				zap.Error(err))
			delete(gc.connections, out.playerID)
		}
	}
}

func rejectDuplicate(conn Conn) {
	_ = conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "Connection already exists"),
	)
	_ = conn.Close()
}

func connID(conn Conn) string {
	return fmt.Sprintf("%p", conn)
}
