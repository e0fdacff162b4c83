package domain

import (
	"sort"
	"time"
)

// Status represents the lifecycle stage of a match.
type Status string

const (
	// StatusWaiting accepts joins until both seats are filled.
	StatusWaiting Status = "waiting"
	// StatusPlaying accepts moves from the seat holding the turn.
	StatusPlaying Status = "playing"
	// StatusFinished is terminal.
	StatusFinished Status = "finished"
)

// Reason explains how a match finished.
type Reason string

const (
	ReasonWin     Reason = "win"
	ReasonDraw    Reason = "draw"
	ReasonForfeit Reason = "forfeit"
)

// MaxPlayers is the number of seats in a match.
const MaxPlayers = 2

// Player is a seated participant. The seat is fixed for the match lifetime.
type Player struct {
	ID           string `json:"player_id"`
	ConnectionID string `json:"-"`
	DisplayName  string `json:"display_name"`
	Seat         int    `json:"seat"`
}

// Mark returns the mark bound to the player's seat.
func (p Player) Mark() Mark {
	return MarkForSeat(p.Seat)
}

// Connection is an active transport binding for a player identity.
type Connection struct {
	PlayerID     string
	ConnectionID string
	Username     string
}

// Move is one accepted placement. Moves are append-only.
type Move struct {
	PlayerID  string    `json:"player_id"`
	Seat      int       `json:"seat"`
	Mark      Mark      `json:"mark"`
	X         int       `json:"x"`
	Y         int       `json:"y"`
	Timestamp time.Time `json:"timestamp"`
}

// Result is the outcome of a finished match. A zero WinningMark and empty
// WinningPlayerID mean there is no winner.
type Result struct {
	WinningMark     Mark   `json:"winning_mark"`
	WinningPlayerID string `json:"winning_player_id,omitempty"`
	Reason          Reason `json:"reason"`
}

// HasWinner reports whether the result names a winning player.
func (r Result) HasWinner() bool {
	return r.WinningPlayerID != ""
}

// PendingJoin is a seat held for a player admitted by the join gate but not
// yet committed.
type PendingJoin struct {
	ConnectionID string
	RequestedAt  time.Time
}

// MatchState is the authoritative record for one match.
type MatchState struct {
	MatchID    string
	Grid       Grid
	Players    []Player
	TurnSeat   int
	Status     Status
	Result     *Result
	Connected  map[string]Connection  // player ID -> active connection
	Pending    map[string]PendingJoin // player ID -> reserved seat
	Moves      []Move
	CreatedAt  time.Time
	FinishedAt time.Time
	Config     map[string]interface{}

	// Published is set once the result has been handed to persistence.
	Published bool
}

// NewMatchState returns an empty match in the waiting state.
func NewMatchState(matchID string, createdAt time.Time, config map[string]interface{}) MatchState {
	return MatchState{
		MatchID:   matchID,
		Status:    StatusWaiting,
		Connected: make(map[string]Connection),
		Pending:   make(map[string]PendingJoin),
		CreatedAt: createdAt,
		Config:    config,
	}
}

// Clone returns a deep copy so the receiver can be treated as an immutable snapshot.
func (s MatchState) Clone() MatchState {
	out := s
	out.Players = append([]Player(nil), s.Players...)
	out.Moves = append([]Move(nil), s.Moves...)
	out.Connected = make(map[string]Connection, len(s.Connected))
	for id, c := range s.Connected {
		out.Connected[id] = c
	}
	out.Pending = make(map[string]PendingJoin, len(s.Pending))
	for id, p := range s.Pending {
		out.Pending[id] = p
	}
	if s.Result != nil {
		r := *s.Result
		out.Result = &r
	}
	if s.Config != nil {
		out.Config = make(map[string]interface{}, len(s.Config))
		for k, v := range s.Config {
			out.Config[k] = v
		}
	}
	return out
}

// PlayerByID looks up a seated player by identity.
func (s MatchState) PlayerByID(id string) (Player, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// PlayerBySeat looks up the player holding a seat.
func (s MatchState) PlayerBySeat(seat int) (Player, bool) {
	for _, p := range s.Players {
		if p.Seat == seat {
			return p, true
		}
	}
	return Player{}, false
}

// NextFreeSeat returns the lowest unoccupied seat, or -1 when the match is full.
func (s MatchState) NextFreeSeat() int {
	for seat := 0; seat < MaxPlayers; seat++ {
		if _, taken := s.PlayerBySeat(seat); !taken {
			return seat
		}
	}
	return -1
}

// SeatsClaimed counts seated players plus pending reservations for new players.
func (s MatchState) SeatsClaimed() int {
	n := len(s.Players)
	for id := range s.Pending {
		if _, seated := s.PlayerByID(id); !seated {
			n++
		}
	}
	return n
}

// ConnectedList returns the active connections ordered by seat, then player ID.
func (s MatchState) ConnectedList() []Connection {
	out := make([]Connection, 0, len(s.Connected))
	for _, c := range s.Connected {
		out = append(out, c)
	}
	seatOf := func(id string) int {
		if p, ok := s.PlayerByID(id); ok {
			return p.Seat
		}
		return MaxPlayers
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := seatOf(out[i].PlayerID), seatOf(out[j].PlayerID)
		if si != sj {
			return si < sj
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out
}

// Finish moves the match to its terminal state. It is a no-op when already finished.
func (s *MatchState) Finish(result Result, at time.Time) {
	if s.Status == StatusFinished {
		return
	}
	s.Status = StatusFinished
	s.Result = &result
	s.FinishedAt = at
}
