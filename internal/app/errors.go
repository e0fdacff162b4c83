package app

import "errors"

// Rejected joins.
var (
	ErrMatchFull     = errors.New("match is full")
	ErrMatchFinished = errors.New("match is finished")
)

// Invalid moves. Each is reported privately to the sender and never changes state.
var (
	ErrNotPlaying    = errors.New("match is not in progress")
	ErrUnknownPlayer = errors.New("sender is not a player in this match")
	ErrNotYourTurn   = errors.New("it's not your turn")
	ErrOutOfRange    = errors.New("coordinates must be integers between 0 and 2")
	ErrCellOccupied  = errors.New("cell is already occupied")
)

var (
	// ErrMalformedMessage marks a payload that could not be decoded into a command.
	ErrMalformedMessage = errors.New("malformed message")
	// ErrUnknownOpCode marks an inbound message with an op code this match does not handle.
	ErrUnknownOpCode = errors.New("unknown op code")
)

// RejectReason maps a join rejection to the stable reason string sent to the client.
func RejectReason(err error) string {
	switch {
	case errors.Is(err, ErrMatchFull):
		return "match_full"
	case errors.Is(err, ErrMatchFinished):
		return "match_finished"
	default:
		return "join_rejected"
	}
}

// ErrorCode maps an invalid move to a stable code clients can switch on.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrNotPlaying):
		return "not_playing"
	case errors.Is(err, ErrUnknownPlayer):
		return "unknown_player"
	case errors.Is(err, ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, ErrOutOfRange):
		return "out_of_range"
	case errors.Is(err, ErrCellOccupied):
		return "cell_occupied"
	default:
		return "invalid_move"
	}
}

// IsInvalidMove reports whether err belongs to the invalid-move family.
func IsInvalidMove(err error) bool {
	return errors.Is(err, ErrNotPlaying) ||
		errors.Is(err, ErrUnknownPlayer) ||
		errors.Is(err, ErrNotYourTurn) ||
		errors.Is(err, ErrOutOfRange) ||
		errors.Is(err, ErrCellOccupied)
}
