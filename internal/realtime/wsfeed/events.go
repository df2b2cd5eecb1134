package wsfeed

import (
	"encoding/json"
)

// Event types - Client → Server
const (
	EventTypeSubscribe   = "subscribe"
	EventTypeUnsubscribe = "unsubscribe"
)

// Event types - Server → Client
const (
	EventTypeInsert = "insert"
	EventTypeError  = "error"
)

// Event is the base envelope for all feed messages.
type Event struct {
	Type    string          `json:"type"`
	Table   string          `json:"table,omitempty"`
	Filter  string          `json:"filter,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
