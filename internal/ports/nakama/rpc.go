package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"tictactoe/internal/app"
	"tictactoe/internal/config"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/encoding/protojson"
)

// FindMatchResponse is returned to clients looking for a game.
type FindMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

type rpcFunc func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error)

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer, cfg *config.Config) error {
	voice := app.NewVoiceService(cfg.Voice.Secret, cfg.Voice.Issuer, cfg.Voice.Domain, cfg.Voice.TokenTTL)

	rpcs := map[string]rpcFunc{
		RpcFindMatch:   newRpcFindMatch(cfg.LabelGame),
		RpcListMatches: newRpcListMatches(cfg.LabelGame),
		RpcVoiceToken:  newRpcVoiceToken(voice),
	}
	for id, fn := range rpcs {
		if err := initializer.RegisterRpc(id, fn); err != nil {
			return err
		}
	}
	return nil
}

func newRpcFindMatch(game string) rpcFunc {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		query := "+label.open:T +label.game:" + game

		minSize := 0
		maxSize := 1
		matches, err := nk.MatchList(ctx, 10, true, "", &minSize, &maxSize, query)
		if err != nil {
			logger.Error("rpcFindMatch: MatchList error: %v", err)
			return "", runtime.NewError("failed to list matches", codeInternal)
		}

		resp := FindMatchResponse{}
		if len(matches) > 0 {
			resp.MatchID = matches[0].MatchId
		} else {
			// Seats are assigned in MatchJoin.
			resp.MatchID, err = nk.MatchCreate(ctx, MatchNameTicTacToe, map[string]interface{}{})
			if err != nil {
				logger.Error("rpcFindMatch: MatchCreate error: %v", err)
				return "", runtime.NewError("failed to create match", codeInternal)
			}
			resp.IsNew = true
		}

		b, _ := json.Marshal(resp)
		return string(b), nil
	}
}

func newRpcListMatches(game string) rpcFunc {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		matches, err := nk.MatchList(ctx, 20, true, "", nil, nil, "+label.game:"+game)
		if err != nil {
			logger.Error("rpcListMatches: MatchList error: %v", err)
			return "", runtime.NewError("failed to list matches", codeInternal)
		}

		b, err := protojson.Marshal(&api.MatchList{Matches: matches})
		if err != nil {
			logger.Error("rpcListMatches: marshal error: %v", err)
			return "", runtime.NewError("failed to encode matches", codeInternal)
		}
		return string(b), nil
	}
}
