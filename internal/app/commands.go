package app

import (
	"fmt"

	"tictactoe/internal/domain"
)

// HandleMove validates and applies a move. The first failing check wins and
// produces a private error reply with the state left untouched.
func (s *Service) HandleMove(state domain.MatchState, sender domain.Connection, cmd MoveCommand) (domain.MatchState, []Effect, error) {
	player, err := validateMove(state, sender)
	if err != nil {
		return state, []Effect{errorReply(sender, err)}, err
	}
	x, y, err := cmd.Coordinates()
	if err != nil {
		return state, []Effect{errorReply(sender, err)}, err
	}
	if state.Grid[y][x] != domain.MarkEmpty {
		err = fmt.Errorf("%w: (%d, %d)", ErrCellOccupied, x, y)
		return state, []Effect{errorReply(sender, err)}, err
	}

	next := state.Clone()
	now := s.now().UTC()
	move := domain.Move{
		PlayerID:  player.ID,
		Seat:      player.Seat,
		Mark:      player.Mark(),
		X:         x,
		Y:         y,
		Timestamp: now,
	}
	next.Grid[y][x] = move.Mark
	next.Moves = append(next.Moves, move)

	if mark, won := domain.EvaluateWinner(next.Grid); won {
		next.Finish(domain.Result{WinningMark: mark, WinningPlayerID: player.ID, Reason: domain.ReasonWin}, now)
		return next, s.gameOver(next, move), nil
	}
	if domain.IsFull(next.Grid) {
		next.Finish(domain.Result{Reason: domain.ReasonDraw}, now)
		return next, s.gameOver(next, move), nil
	}

	next.TurnSeat = 1 - next.TurnSeat
	nextPlayer, _ := next.PlayerBySeat(next.TurnSeat)
	return next, []Effect{
		broadcast(OpStateUpdate, MovePayload{
			Type:         TypeMove,
			Board:        next.Grid,
			Move:         move,
			Turn:         next.TurnSeat,
			NextPlayerID: nextPlayer.ID,
		}, next.ConnectedList()),
	}, nil
}

func validateMove(state domain.MatchState, sender domain.Connection) (domain.Player, error) {
	if state.Status != domain.StatusPlaying {
		return domain.Player{}, ErrNotPlaying
	}
	player, ok := state.PlayerByID(sender.PlayerID)
	if !ok {
		return domain.Player{}, ErrUnknownPlayer
	}
	if player.Seat != state.TurnSeat {
		return domain.Player{}, ErrNotYourTurn
	}
	return player, nil
}

func (s *Service) gameOver(state domain.MatchState, move domain.Move) []Effect {
	return []Effect{
		broadcast(OpStateUpdate, GameOverPayload{
			Type:   TypeGameOver,
			Board:  state.Grid,
			Move:   &move,
			Result: *state.Result,
		}, state.ConnectedList()),
		s.labelEffect(state),
	}
}

// HandleChat relays a chat line verbatim to every connected player.
func (s *Service) HandleChat(state domain.MatchState, sender domain.Connection, cmd ChatCommand) []Effect {
	name := displayName(sender)
	if p, ok := state.PlayerByID(sender.PlayerID); ok {
		name = p.DisplayName
	}
	return []Effect{
		broadcast(OpChat, ChatPayload{
			Type:       TypeChat,
			SenderID:   sender.PlayerID,
			SenderName: name,
			Message:    cmd.Message,
			Timestamp:  s.now().UnixMilli(),
		}, state.ConnectedList()),
	}
}

func errorReply(to domain.Connection, err error) Effect {
	return unicast(OpError, ErrorPayload{
		Type:    TypeError,
		Code:    ErrorCode(err),
		Message: err.Error(),
	}, to)
}

func rejectReply(to domain.Connection, err error) Effect {
	return unicast(OpError, ErrorPayload{
		Type:    TypeError,
		Code:    RejectReason(err),
		Message: err.Error(),
	}, to)
}
