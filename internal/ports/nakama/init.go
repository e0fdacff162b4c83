package nakama

import (
	"context"
	"database/sql"

	"tictactoe/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires the leaderboard, RPCs and match handler for the Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		logger.Warn("InitModule: %v, using defaults", err)
		cfg = config.Default()
	}
	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		cfg = cfg.WithRuntimeEnv(env)
	}

	leaderboard := NewNakamaLeaderboardAdapter(nk)
	if err := leaderboard.EnsureLeaderboard(ctx, cfg.LeaderboardID, cfg.LabelGame); err != nil {
		return err
	}
	results := NewNakamaResultStoreAdapter(nk)

	if err := RegisterRPCs(initializer, cfg); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameTicTacToe, func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return newMatchHandler(cfg, leaderboard, results), nil
	}); err != nil {
		return err
	}

	logger.Info("TicTacToe Go module loaded (tick rate %d).", cfg.TickRate)
	return nil
}
