package nakama

const (
	// RpcFindMatch returns an open waiting match, creating one when none exists.
	RpcFindMatch = "find_match"
	// RpcListMatches lists tic-tac-toe matches known to the runtime.
	RpcListMatches = "list_matches"
	// RpcVoiceToken issues a voice channel token for a seated player.
	RpcVoiceToken = "voice_token"

	// MatchNameTicTacToe is the authoritative match handler name registered with Nakama.
	MatchNameTicTacToe = "tictactoe_match"
)

// Match signal ops.
const (
	SignalOpSeat = "seat"
)

// gRPC status codes used for RPC errors.
const (
	codeInvalidArgument    = 3
	codeNotFound           = 5
	codePermissionDenied   = 7
	codeFailedPrecondition = 9
	codeInternal           = 13
	codeUnauthenticated    = 16
)
