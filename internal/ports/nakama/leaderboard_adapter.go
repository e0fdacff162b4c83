package nakama

import (
	"context"
	"fmt"

	"tictactoe/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// NakamaLeaderboardAdapter implements ports.LeaderboardPort on the Nakama leaderboard API.
type NakamaLeaderboardAdapter struct {
	nk runtime.NakamaModule
}

func NewNakamaLeaderboardAdapter(nk runtime.NakamaModule) *NakamaLeaderboardAdapter {
	return &NakamaLeaderboardAdapter{nk: nk}
}

// EnsureLeaderboard creates the authoritative, descending, incrementing
// leaderboard if it does not already exist.
func (a *NakamaLeaderboardAdapter) EnsureLeaderboard(ctx context.Context, id, game string) error {
	metadata := map[string]interface{}{"game": game}
	if err := a.nk.LeaderboardCreate(ctx, id, true, "desc", "incr", "", metadata, true); err != nil {
		return fmt.Errorf("failed to create leaderboard %s: %w", id, err)
	}
	return nil
}

func (a *NakamaLeaderboardAdapter) WriteRecord(ctx context.Context, entry ports.LeaderboardEntry) error {
	_, err := a.nk.LeaderboardRecordWrite(ctx, entry.LeaderboardID, entry.OwnerID, entry.Username, entry.Score, entry.Subscore, entry.Metadata, nil)
	if err != nil {
		return fmt.Errorf("failed to write leaderboard record for %s: %w", entry.OwnerID, err)
	}
	return nil
}
