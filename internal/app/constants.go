package app

import "time"

// Op codes shared with clients.
const (
	// Client -> Server
	OpMove int64 = 1
	OpChat int64 = 2

	// Server -> Client
	OpStateUpdate int64 = 10
	OpError       int64 = 99
)

// Payload type discriminators carried by every outbound message.
const (
	TypeReconnect   = "reconnect"
	TypeStateUpdate = "state_update"
	TypeMove        = "move"
	TypeGameOver    = "game_over"
	TypeChat        = "chat"
	TypeError       = "error"
)

// Scores written to the leaderboard per finished match.
const (
	ScoreWin  int64 = 3
	ScoreDraw int64 = 1
	ScoreLoss int64 = 0
)

// Outcome tags attached to leaderboard metadata.
const (
	OutcomeWin       = "win"
	OutcomeLoss      = "loss"
	OutcomeDraw      = "draw"
	OutcomeAbandoned = "abandoned"
)

// pendingJoinTTL bounds how long an admitted join may hold a seat before it commits.
const pendingJoinTTL = 30 * time.Second

const (
	defaultLeaderboardID    = "tictactoe_global"
	defaultResultCollection = "match_results"
	defaultGame             = "tictactoe"
)
