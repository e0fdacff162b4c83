package app

import "tictactoe/internal/domain"

// EffectKind identifies an outbound effect for the hosting runtime to execute.
type EffectKind string

const (
	EffectUnicast   EffectKind = "unicast"
	EffectBroadcast EffectKind = "broadcast"
	EffectLabel     EffectKind = "label"
	EffectKick      EffectKind = "kick"
)

// Effect is an outbound action produced by the controller. The runtime
// adapter encodes Payload and delivers it to Recipients.
type Effect struct {
	Kind       EffectKind
	OpCode     int64
	Payload    any
	Recipients []domain.Connection
	Label      Label
}

func unicast(opCode int64, payload any, to domain.Connection) Effect {
	return Effect{Kind: EffectUnicast, OpCode: opCode, Payload: payload, Recipients: []domain.Connection{to}}
}

func broadcast(opCode int64, payload any, to []domain.Connection) Effect {
	return Effect{Kind: EffectBroadcast, OpCode: opCode, Payload: payload, Recipients: to}
}

func kick(conn domain.Connection) Effect {
	return Effect{Kind: EffectKick, Recipients: []domain.Connection{conn}}
}

// Label is the discovery label advertised for match listing.
type Label struct {
	Game    string `json:"game"`
	Open    bool   `json:"open"`
	Players int    `json:"players"`
	Status  string `json:"status"`
}

// PlayerView is the public roster entry sent to clients.
type PlayerView struct {
	PlayerID    string      `json:"player_id"`
	DisplayName string      `json:"display_name"`
	Seat        int         `json:"seat"`
	Mark        domain.Mark `json:"mark"`
	Connected   bool        `json:"connected"`
}

// ReconnectPayload is the private snapshot sent to a returning player.
type ReconnectPayload struct {
	Type     string         `json:"type"`
	Board    domain.Grid    `json:"board"`
	Turn     int            `json:"turn"`
	Status   domain.Status  `json:"status"`
	Result   *domain.Result `json:"result,omitempty"`
	Players  []PlayerView   `json:"players"`
	YourSeat int            `json:"your_seat"`
	YourMark domain.Mark    `json:"your_mark"`
}

// StateUpdatePayload is the public snapshot broadcast after joins.
type StateUpdatePayload struct {
	Type    string        `json:"type"`
	Board   domain.Grid   `json:"board"`
	Turn    int           `json:"turn"`
	Status  domain.Status `json:"status"`
	Players []PlayerView  `json:"players"`
}

// MovePayload announces an accepted move that did not end the match.
type MovePayload struct {
	Type         string      `json:"type"`
	Board        domain.Grid `json:"board"`
	Move         domain.Move `json:"move"`
	Turn         int         `json:"turn"`
	NextPlayerID string      `json:"next_player_id"`
}

// GameOverPayload announces the terminal result. Move is absent for forfeits.
type GameOverPayload struct {
	Type   string        `json:"type"`
	Board  domain.Grid   `json:"board"`
	Move   *domain.Move  `json:"move,omitempty"`
	Result domain.Result `json:"result"`
}

// ChatPayload is a relayed chat line.
type ChatPayload struct {
	Type       string `json:"type"`
	SenderID   string `json:"sender_id"`
	SenderName string `json:"sender_name"`
	Message    string `json:"message"`
	Timestamp  int64  `json:"timestamp"`
}

// ErrorPayload is the private reply to a rejected command.
type ErrorPayload struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
