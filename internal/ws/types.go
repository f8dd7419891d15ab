package ws

import (
	"encoding/json"
)

// MessageType represents the different kinds of messages our system can handle
type MessageType string

const (
	// client -> server
	MessageTypeMove       MessageType = "move"
	MessageTypePrediction MessageType = "prediction"
	MessageTypeCommit     MessageType = "commit"
	MessageTypeReady      MessageType = "ready"
	MessageTypeReset      MessageType = "reset"
	MessageTypeResign     MessageType = "resign"

	// server -> client
	MessageTypeGameState  MessageType = "gameState"
	MessageTypeResolution MessageType = "resolution"
	MessageTypeError      MessageType = "error"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

// NewMessage marshals payload into a message of the given type.
func NewMessage(t MessageType, payload interface{}) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: raw}, nil
}
