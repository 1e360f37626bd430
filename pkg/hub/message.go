// Package hub provides a thread-safe websocket broadcast hub
// using the channel-based fan-out pattern.
package hub

import "encoding/json"

// MessageType indicates the websocket frame type.
type MessageType int

const (
	// TextMessage is a JSON-encoded text frame
	TextMessage MessageType = iota
	// BinaryMessage is an opaque binary frame
	BinaryMessage
)

// Message is a frame queued for clients.
type Message struct {
	Type MessageType
	Data []byte
}

// Event is the JSON envelope every text frame uses.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEvent encodes data inside an Event envelope.
func NewEvent(typ string, data any) (Message, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Message{}, err
	}
	b, err := json.Marshal(Event{Type: typ, Data: raw})
	if err != nil {
		return Message{}, err
	}
	return Message{Type: TextMessage, Data: b}, nil
}
