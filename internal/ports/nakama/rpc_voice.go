package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"tictactoe/internal/app"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
)

type voiceTokenRequest struct {
	Action  string `json:"action"`
	MatchID string `json:"match_id"`
}

type voiceTokenResponse struct {
	Token   string `json:"token"`
	Channel string `json:"channel,omitempty"`
}

var errNotSeated = errors.New("caller is not seated in the match")

// newRpcVoiceToken issues voice tokens. A login token needs only an
// authenticated user; a join token (the default action) is issued only to
// players holding a seat in the match.
func newRpcVoiceToken(voice *app.VoiceService) rpcFunc {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
		if userID == "" {
			return "", runtime.NewError("authentication required", codeUnauthenticated)
		}

		var req voiceTokenRequest
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError("invalid payload", codeInvalidArgument)
		}

		switch req.Action {
		case app.VoiceActionLogin:
			return signVoiceToken(logger, voice, userID, req)
		case "", app.VoiceActionJoin:
			req.Action = app.VoiceActionJoin
		default:
			return "", runtime.NewError("unsupported action", codeInvalidArgument)
		}

		if err := validateMatchID(req.MatchID); err != nil {
			return "", runtime.NewError(err.Error(), codeInvalidArgument)
		}

		if err := checkSeated(ctx, nk, req.MatchID, userID); err != nil {
			logger.Info("rpcVoiceToken: user %s refused for match %s: %v", userID, req.MatchID, err)
			if errors.Is(err, errNotSeated) {
				return "", runtime.NewError(err.Error(), codePermissionDenied)
			}
			return "", runtime.NewError("match not found", codeNotFound)
		}

		return signVoiceToken(logger, voice, userID, req)
	}
}

func signVoiceToken(logger runtime.Logger, voice *app.VoiceService, userID string, req voiceTokenRequest) (string, error) {
	matchID := ""
	if req.Action == app.VoiceActionJoin {
		matchID = req.MatchID
	}
	token, err := voice.Token(userID, req.Action, matchID)
	if errors.Is(err, app.ErrVoiceNotConfigured) {
		logger.Warn("rpcVoiceToken: voice credentials are not configured")
		return "", runtime.NewError(err.Error(), codeFailedPrecondition)
	}
	if err != nil {
		logger.Error("rpcVoiceToken: failed to sign %s token: %v", req.Action, err)
		return "", runtime.NewError("internal error", codeInternal)
	}

	resp := voiceTokenResponse{Token: token}
	if matchID != "" {
		resp.Channel = app.ChannelName(matchID)
	}
	b, _ := json.Marshal(resp)
	return string(b), nil
}

// validateMatchID checks the "<uuid>.<node>" shape of authoritative match ids.
func validateMatchID(matchID string) error {
	id, node, found := strings.Cut(matchID, ".")
	if !found || node == "" {
		return fmt.Errorf("invalid match id %q", matchID)
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid match id %q: %w", matchID, err)
	}
	return nil
}

func checkSeated(ctx context.Context, nk runtime.NakamaModule, matchID, userID string) error {
	sig, _ := json.Marshal(seatSignal{Op: SignalOpSeat, UserID: userID})
	resp, err := nk.MatchSignal(ctx, matchID, string(sig))
	if err != nil {
		return fmt.Errorf("signal failed: %w", err)
	}

	var reply seatSignalReply
	if err := json.Unmarshal([]byte(resp), &reply); err != nil {
		return fmt.Errorf("bad signal reply: %w", err)
	}
	if !reply.Seated {
		return errNotSeated
	}
	return nil
}
