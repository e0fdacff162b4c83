package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"tictactoe/internal/domain"
)

// Message is an inbound client message as delivered by the runtime.
type Message struct {
	Sender domain.Connection
	OpCode int64
	Data   []byte
}

// MoveCommand is a decoded move request. Coordinates are validated lazily so
// the validation order of the move handler is preserved.
type MoveCommand struct {
	x, y json.RawMessage
}

// NewMoveCommand builds a command from already-typed coordinates.
func NewMoveCommand(x, y int) MoveCommand {
	return MoveCommand{x: json.RawMessage(fmt.Sprint(x)), y: json.RawMessage(fmt.Sprint(y))}
}

// DecodeMove decodes a {x, y} payload. Only a payload that is not a JSON
// object (including null) is malformed. An object with missing or bad
// coordinates, {} included, surfaces later as ErrOutOfRange.
func DecodeMove(data []byte) (MoveCommand, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '{' {
		return MoveCommand{}, fmt.Errorf("%w: move: payload is not a JSON object", ErrMalformedMessage)
	}
	var raw struct {
		X json.RawMessage `json:"x"`
		Y json.RawMessage `json:"y"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return MoveCommand{}, fmt.Errorf("%w: move: %v", ErrMalformedMessage, err)
	}
	return MoveCommand{x: raw.X, y: raw.Y}, nil
}

// Coordinates returns the target cell, or ErrOutOfRange when either value is
// missing, non-integral or off the board.
func (c MoveCommand) Coordinates() (int, int, error) {
	x, ok := integral(c.x)
	if !ok {
		return 0, 0, ErrOutOfRange
	}
	y, ok := integral(c.y)
	if !ok {
		return 0, 0, ErrOutOfRange
	}
	if !domain.InBounds(x, y) {
		return 0, 0, ErrOutOfRange
	}
	return x, y, nil
}

func integral(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// ChatCommand is a decoded chat line.
type ChatCommand struct {
	Message string
}

// DecodeChat decodes a {message} payload. A missing, empty or non-string
// message is malformed and the line is dropped without reply.
func DecodeChat(data []byte) (ChatCommand, error) {
	var raw struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return ChatCommand{}, fmt.Errorf("%w: chat: %v", ErrMalformedMessage, err)
	}
	var msg string
	if len(raw.Message) == 0 || json.Unmarshal(raw.Message, &msg) != nil || msg == "" {
		return ChatCommand{}, fmt.Errorf("%w: chat: message must be a non-empty string", ErrMalformedMessage)
	}
	return ChatCommand{Message: msg}, nil
}
