package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"tictactoe/internal/app"
	"tictactoe/internal/config"
	"tictactoe/internal/domain"
	"tictactoe/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// MatchState is what Nakama carries between callbacks: the domain snapshot
// plus the runtime presences needed to address its connections.
type MatchState struct {
	Snapshot  domain.MatchState
	Presences map[string]runtime.Presence // session ID -> presence

	finishedTick  int64
	finishedKnown bool
}

type matchHandler struct {
	svc         *app.Service
	cfg         *config.Config
	leaderboard ports.LeaderboardPort
	results     ports.ResultStorePort
}

func newMatchHandler(cfg *config.Config, leaderboard ports.LeaderboardPort, results ports.ResultStorePort) *matchHandler {
	return &matchHandler{
		svc: app.NewService(app.Options{
			LeaderboardID:    cfg.LeaderboardID,
			ResultCollection: cfg.ResultCollection,
			Game:             cfg.LabelGame,
		}, nil),
		cfg:         cfg,
		leaderboard: leaderboard,
		results:     results,
	}
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)

	snapshot, label := mh.svc.Create(matchID, params)
	labelBytes, err := json.Marshal(label)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	logger.WithField("match_id", matchID).Debug("MatchInit: Match created with tick rate %d.", mh.cfg.TickRate)
	return &MatchState{
		Snapshot:  snapshot,
		Presences: make(map[string]runtime.Presence),
	}, mh.cfg.TickRate, string(labelBytes)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	next, err := mh.svc.JoinRequest(matchState.Snapshot, connectionFrom(presence))
	if err != nil {
		mh.logger(logger, matchState).Info("MatchJoinAttempt: Rejected user %s: %v", presence.GetUserId(), err)
		return matchState, false, app.RejectReason(err)
	}
	matchState.Snapshot = next
	return matchState, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}
	log := mh.logger(logger, matchState)

	conns := make([]domain.Connection, 0, len(presences))
	for _, p := range presences {
		matchState.Presences[p.GetSessionId()] = p
		conns = append(conns, connectionFrom(p))
	}

	before := matchState.Snapshot.Status
	next, effects := mh.svc.JoinCommit(matchState.Snapshot, conns)
	matchState.Snapshot = next
	if before != next.Status {
		log.Info("MatchJoin: Status %s -> %s with %d players.", before, next.Status, len(next.Players))
	}

	mh.dispatch(matchState, dispatcher, log, effects)
	return matchState
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}
	log := mh.logger(logger, matchState)

	conns := make([]domain.Connection, 0, len(presences))
	for _, p := range presences {
		delete(matchState.Presences, p.GetSessionId())
		conns = append(conns, connectionFrom(p))
	}

	next, effects := mh.svc.Leave(matchState.Snapshot, conns)
	if matchState.Snapshot.Status != next.Status && next.Result != nil {
		log.Info("MatchLeave: Match forfeited, winner %q.", next.Result.WinningPlayerID)
	}
	matchState.Snapshot = next

	mh.dispatch(matchState, dispatcher, log, effects)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}
	log := mh.logger(logger, matchState)

	if len(messages) > 0 {
		inbound := make([]app.Message, 0, len(messages))
		for _, msg := range messages {
			inbound = append(inbound, app.Message{
				Sender: connectionFrom(msg),
				OpCode: msg.GetOpCode(),
				Data:   msg.GetData(),
			})
		}

		next, effects, errs := mh.svc.Receive(matchState.Snapshot, inbound)
		matchState.Snapshot = next
		for _, err := range errs {
			switch {
			case app.IsInvalidMove(err):
				log.Debug("MatchLoop: Rejected move: %v", err)
			default:
				log.Warn("MatchLoop: Dropped message: %v", err)
			}
		}
		mh.dispatch(matchState, dispatcher, log, effects)
	}

	next, effects := mh.svc.Tick(matchState.Snapshot, tick)
	matchState.Snapshot = next
	mh.dispatch(matchState, dispatcher, log, effects)

	if tick%mh.cfg.TickReportInterval == 0 {
		log.Debug("MatchLoop: tick=%d status=%s connected=%d moves=%d", tick, next.Status, len(next.Connected), len(next.Moves))
	}

	if next.Status != domain.StatusFinished {
		return matchState
	}
	if !matchState.finishedKnown {
		matchState.finishedKnown = true
		matchState.finishedTick = tick
	}
	if len(next.Connected) > 0 && tick-matchState.finishedTick < mh.cfg.FinishedLingerTicks {
		return matchState
	}

	log.Info("MatchLoop: Finished match closing after %d ticks.", tick-matchState.finishedTick)
	mh.terminate(ctx, matchState, log)
	return nil
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}
	log := mh.logger(logger, matchState)
	log.Debug("MatchTerminate: Match terminating with %d grace seconds.", graceSeconds)

	mh.terminate(ctx, matchState, log)
	return matchState
}

type seatSignal struct {
	Op     string `json:"op"`
	UserID string `json:"user_id"`
}

type seatSignalReply struct {
	Seated bool `json:"seated"`
	Seat   int  `json:"seat"`
}

// MatchSignal answers seat queries from RPCs.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, ""
	}

	var sig seatSignal
	if err := json.Unmarshal([]byte(data), &sig); err != nil || sig.Op != SignalOpSeat {
		mh.logger(logger, matchState).Warn("MatchSignal: Unsupported signal %q", data)
		return matchState, `{"error":"unsupported signal"}`
	}

	seat, seated := mh.svc.SeatOf(matchState.Snapshot, sig.UserID)
	reply, _ := json.Marshal(seatSignalReply{Seated: seated, Seat: seat})
	return matchState, string(reply)
}

// terminate runs the result publisher and hands its tasks to the adapters.
// Failures are logged and never reach the match.
func (mh *matchHandler) terminate(ctx context.Context, state *MatchState, logger runtime.Logger) {
	next, pub := mh.svc.Terminate(state.Snapshot)
	state.Snapshot = next
	if pub == nil {
		return
	}

	for _, entry := range pub.Leaderboard {
		if err := mh.leaderboard.WriteRecord(ctx, entry); err != nil {
			logger.Error("Publish: Leaderboard write for %s failed: %v", entry.OwnerID, err)
		}
	}
	if err := mh.results.SaveMatchRecord(ctx, pub.Record); err != nil {
		logger.Error("Publish: Match record write failed: %v", err)
		return
	}
	logger.Info("Publish: Result %s recorded for %d players.", pub.Record.Value.Result.Reason, len(pub.Leaderboard))
}

// dispatch executes effects against the Nakama dispatcher.
func (mh *matchHandler) dispatch(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, effects []app.Effect) {
	for _, ef := range effects {
		switch ef.Kind {
		case app.EffectLabel:
			label, err := json.Marshal(ef.Label)
			if err != nil {
				logger.Error("UpdateLabel: Failed to marshal: %v", err)
				continue
			}
			if err := dispatcher.MatchLabelUpdate(string(label)); err != nil {
				logger.Error("UpdateLabel: Failed to update: %v", err)
			}
		case app.EffectUnicast, app.EffectBroadcast:
			recipients := state.presencesFor(ef.Recipients)
			// Intended recipients that are no longer connected must not turn into a match-wide broadcast.
			if len(recipients) == 0 {
				continue
			}
			data, err := json.Marshal(ef.Payload)
			if err != nil {
				logger.Error("Dispatch: Failed to marshal payload for op %d: %v", ef.OpCode, err)
				continue
			}
			if err := dispatcher.BroadcastMessage(ef.OpCode, data, recipients, nil, true); err != nil {
				logger.Error("Dispatch: Failed to send op %d: %v", ef.OpCode, err)
			}
		case app.EffectKick:
			recipients := state.presencesFor(ef.Recipients)
			if len(recipients) == 0 {
				continue
			}
			for _, p := range recipients {
				delete(state.Presences, p.GetSessionId())
			}
			if err := dispatcher.MatchKick(recipients); err != nil {
				logger.Error("Dispatch: Failed to kick %d presences: %v", len(recipients), err)
			}
		default:
			logger.Warn("Dispatch: Unknown effect kind: %v", ef.Kind)
		}
	}
}

func (s *MatchState) presencesFor(conns []domain.Connection) []runtime.Presence {
	out := make([]runtime.Presence, 0, len(conns))
	for _, c := range conns {
		if p, ok := s.Presences[c.ConnectionID]; ok {
			out = append(out, p)
		}
	}
	return out
}

func (mh *matchHandler) logger(logger runtime.Logger, state *MatchState) runtime.Logger {
	return logger.WithField("match_id", state.Snapshot.MatchID)
}

func connectionFrom(p runtime.Presence) domain.Connection {
	return domain.Connection{
		PlayerID:     p.GetUserId(),
		ConnectionID: p.GetSessionId(),
		Username:     p.GetUsername(),
	}
}
