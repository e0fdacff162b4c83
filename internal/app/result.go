package app

import (
	"time"

	"tictactoe/internal/domain"
	"tictactoe/internal/ports"
)

// Publication is the one-shot task list emitted when a finished match is torn
// down. The caller executes it; failures never flow back into the match.
type Publication struct {
	Leaderboard []ports.LeaderboardEntry
	Record      ports.MatchRecord
}

// Terminate runs the result publisher. It returns nil when the match has no
// result or was already published, so repeated calls are harmless.
func (s *Service) Terminate(state domain.MatchState) (domain.MatchState, *Publication) {
	if state.Result == nil || state.Published || len(state.Players) != domain.MaxPlayers {
		return state, nil
	}

	next := state.Clone()
	next.Published = true
	result := *next.Result
	finishedAt := next.FinishedAt
	if finishedAt.IsZero() {
		finishedAt = s.now().UTC()
	}

	pub := &Publication{
		Leaderboard: make([]ports.LeaderboardEntry, 0, len(next.Players)),
		Record: ports.MatchRecord{
			Collection: s.opts.ResultCollection,
			Key:        next.MatchID,
			Value: ports.MatchRecordValue{
				Result:     result,
				Moves:      next.Moves,
				Players:    next.Players,
				CreatedAt:  next.CreatedAt,
				FinishedAt: finishedAt,
			},
			PermissionRead:  ports.PermissionPublicRead,
			PermissionWrite: ports.PermissionNoWrite,
		},
	}

	for _, p := range next.Players {
		score, outcome := Score(result, p.ID)
		pub.Leaderboard = append(pub.Leaderboard, ports.LeaderboardEntry{
			LeaderboardID: s.opts.LeaderboardID,
			OwnerID:       p.ID,
			Username:      p.DisplayName,
			Score:         score,
			Subscore:      int64(len(next.Moves)),
			Metadata: map[string]interface{}{
				"outcome":     outcome,
				"match_id":    next.MatchID,
				"finished_at": finishedAt.Format(time.RFC3339),
			},
		})
	}
	return next, pub
}

// Score returns the leaderboard score and outcome tag for a player.
func Score(result domain.Result, playerID string) (int64, string) {
	switch {
	case result.Reason == domain.ReasonDraw:
		return ScoreDraw, OutcomeDraw
	case !result.HasWinner():
		return ScoreLoss, OutcomeAbandoned
	case result.WinningPlayerID == playerID:
		return ScoreWin, OutcomeWin
	default:
		return ScoreLoss, OutcomeLoss
	}
}
