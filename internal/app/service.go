package app

import (
	"time"

	"tictactoe/internal/domain"
)

// Options configures a Service. Empty fields fall back to defaults.
type Options struct {
	LeaderboardID    string
	ResultCollection string
	Game             string
}

// Service runs the match lifecycle. Every method takes a snapshot and returns
// a new snapshot plus the effects to execute; the input is never mutated.
type Service struct {
	opts Options
	now  func() time.Time
}

// NewService constructs a Service. A nil clock uses time.Now.
func NewService(opts Options, clock func() time.Time) *Service {
	if opts.LeaderboardID == "" {
		opts.LeaderboardID = defaultLeaderboardID
	}
	if opts.ResultCollection == "" {
		opts.ResultCollection = defaultResultCollection
	}
	if opts.Game == "" {
		opts.Game = defaultGame
	}
	if clock == nil {
		clock = time.Now
	}
	return &Service{opts: opts, now: clock}
}

// Create returns the initial waiting state and its discovery label.
func (s *Service) Create(matchID string, params map[string]interface{}) (domain.MatchState, Label) {
	state := domain.NewMatchState(matchID, s.now().UTC(), params)
	return state, s.Label(state)
}

// JoinRequest decides whether a connection may enter the match. Returning
// players are always admitted; a new player is rejected once seated players
// plus pending reservations fill the match, or once it has finished. An
// admitted new player holds a reservation until JoinCommit, Leave, or
// pendingJoinTTL expires it.
func (s *Service) JoinRequest(state domain.MatchState, conn domain.Connection) (domain.MatchState, error) {
	if _, known := state.PlayerByID(conn.PlayerID); known {
		return state, nil
	}
	if state.Status == domain.StatusFinished {
		return state, ErrMatchFinished
	}

	next := state.Clone()
	now := s.now().UTC()
	for id, p := range next.Pending {
		if now.Sub(p.RequestedAt) > pendingJoinTTL {
			delete(next.Pending, id)
		}
	}
	if _, held := next.Pending[conn.PlayerID]; !held && next.SeatsClaimed() >= domain.MaxPlayers {
		return state, ErrMatchFull
	}
	next.Pending[conn.PlayerID] = domain.PendingJoin{ConnectionID: conn.ConnectionID, RequestedAt: now}
	return next, nil
}

// JoinCommit admits a batch of connections.
func (s *Service) JoinCommit(state domain.MatchState, conns []domain.Connection) (domain.MatchState, []Effect) {
	next := state.Clone()
	var effects []Effect
	var rejoined []domain.Connection

	for _, conn := range conns {
		delete(next.Pending, conn.PlayerID)
		if _, known := next.PlayerByID(conn.PlayerID); known {
			rejoin(&next, conn)
			rejoined = append(rejoined, conn)
			continue
		}

		seat := next.NextFreeSeat()
		if seat < 0 || next.Status == domain.StatusFinished {
			// Admission bypassed the join gate: tell the connection and drop it.
			err := ErrMatchFull
			if next.Status == domain.StatusFinished {
				err = ErrMatchFinished
			}
			effects = append(effects, rejectReply(conn, err), kick(conn))
			continue
		}
		next.Players = append(next.Players, domain.Player{
			ID:           conn.PlayerID,
			ConnectionID: conn.ConnectionID,
			DisplayName:  displayName(conn),
			Seat:         seat,
		})
		next.Connected[conn.PlayerID] = conn

		if len(next.Players) == domain.MaxPlayers && next.Status == domain.StatusWaiting {
			next.Status = domain.StatusPlaying
			next.TurnSeat = 0
		}
	}

	// Private snapshots are built after the whole batch so they reflect the final roster.
	for _, conn := range rejoined {
		effects = append(effects, unicast(OpStateUpdate, s.reconnectPayload(next, conn.PlayerID), conn))
	}

	effects = append(effects,
		broadcast(OpStateUpdate, StateUpdatePayload{
			Type:    TypeStateUpdate,
			Board:   next.Grid,
			Turn:    next.TurnSeat,
			Status:  next.Status,
			Players: playerViews(next),
		}, next.ConnectedList()),
		s.labelEffect(next),
	)
	return next, effects
}

func rejoin(state *domain.MatchState, conn domain.Connection) {
	for i := range state.Players {
		if state.Players[i].ID == conn.PlayerID {
			state.Players[i].ConnectionID = conn.ConnectionID
		}
	}
	state.Connected[conn.PlayerID] = conn
}

// Leave removes departing connections. Roster entries are kept so seats
// survive reconnection. A seated player leaving during play forfeits.
func (s *Service) Leave(state domain.MatchState, conns []domain.Connection) (domain.MatchState, []Effect) {
	next := state.Clone()
	leftSeats := map[int]bool{}

	for _, conn := range conns {
		if p, ok := next.Pending[conn.PlayerID]; ok && p.ConnectionID == conn.ConnectionID {
			delete(next.Pending, conn.PlayerID)
		}
		current, ok := next.Connected[conn.PlayerID]
		if !ok || current.ConnectionID != conn.ConnectionID {
			// Stale leave for a binding that was already replaced.
			continue
		}
		delete(next.Connected, conn.PlayerID)
		if p, seated := next.PlayerByID(conn.PlayerID); seated {
			leftSeats[p.Seat] = true
		}
	}

	if next.Status != domain.StatusPlaying || len(leftSeats) == 0 {
		return next, nil
	}

	result := domain.Result{Reason: domain.ReasonForfeit}
	if len(leftSeats) == 1 {
		for seat := range leftSeats {
			if winner, ok := next.PlayerBySeat(1 - seat); ok {
				result.WinningPlayerID = winner.ID
				result.WinningMark = winner.Mark()
			}
		}
	}
	next.Finish(result, s.now().UTC())

	return next, []Effect{
		broadcast(OpStateUpdate, GameOverPayload{
			Type:   TypeGameOver,
			Board:  next.Grid,
			Result: *next.Result,
		}, next.ConnectedList()),
		s.labelEffect(next),
	}
}

// Tick is the periodic hook. It performs no state mutation.
func (s *Service) Tick(state domain.MatchState, _ int64) (domain.MatchState, []Effect) {
	return state, nil
}

// Receive handles inbound messages in delivery order. Errors are returned for
// the caller to log; invalid moves have already produced their private reply.
func (s *Service) Receive(state domain.MatchState, messages []Message) (domain.MatchState, []Effect, []error) {
	var effects []Effect
	var errs []error
	for _, msg := range messages {
		next, out, err := s.HandleMessage(state, msg)
		state = next
		effects = append(effects, out...)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return state, effects, errs
}

// HandleMessage dispatches a single message by op code.
func (s *Service) HandleMessage(state domain.MatchState, msg Message) (domain.MatchState, []Effect, error) {
	switch msg.OpCode {
	case OpMove:
		cmd, err := DecodeMove(msg.Data)
		if err != nil {
			return state, nil, err
		}
		return s.HandleMove(state, msg.Sender, cmd)
	case OpChat:
		cmd, err := DecodeChat(msg.Data)
		if err != nil {
			return state, nil, err
		}
		return state, s.HandleChat(state, msg.Sender, cmd), nil
	default:
		return state, nil, ErrUnknownOpCode
	}
}

// SeatOf reports the seat held by a player identity, or -1 when unseated.
func (s *Service) SeatOf(state domain.MatchState, playerID string) (int, bool) {
	p, ok := state.PlayerByID(playerID)
	if !ok {
		return -1, false
	}
	return p.Seat, true
}

// Label builds the discovery label for the state.
func (s *Service) Label(state domain.MatchState) Label {
	return Label{
		Game:    s.opts.Game,
		Open:    state.Status == domain.StatusWaiting && len(state.Players) < domain.MaxPlayers,
		Players: len(state.Players),
		Status:  string(state.Status),
	}
}

func (s *Service) labelEffect(state domain.MatchState) Effect {
	return Effect{Kind: EffectLabel, Label: s.Label(state)}
}

func (s *Service) reconnectPayload(state domain.MatchState, playerID string) ReconnectPayload {
	p, _ := state.PlayerByID(playerID)
	return ReconnectPayload{
		Type:     TypeReconnect,
		Board:    state.Grid,
		Turn:     state.TurnSeat,
		Status:   state.Status,
		Result:   state.Result,
		Players:  playerViews(state),
		YourSeat: p.Seat,
		YourMark: p.Mark(),
	}
}

func playerViews(state domain.MatchState) []PlayerView {
	views := make([]PlayerView, 0, len(state.Players))
	for _, p := range state.Players {
		_, connected := state.Connected[p.ID]
		views = append(views, PlayerView{
			PlayerID:    p.ID,
			DisplayName: p.DisplayName,
			Seat:        p.Seat,
			Mark:        p.Mark(),
			Connected:   connected,
		})
	}
	return views
}

func displayName(conn domain.Connection) string {
	if conn.Username != "" {
		return conn.Username
	}
	return conn.PlayerID
}
