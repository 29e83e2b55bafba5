package tictactoe

import (
	"fmt"

	"github.com/xosgame/xos-backend/internal/apperror"
	"github.com/xosgame/xos-backend/internal/entity"
)

// DefaultWinsPerStreak - a streak ends (and the X/O tallies reset) once
// either player collects this many wins.
const DefaultWinsPerStreak = 3

// ApplyMove - validates and applies one move. Checks run in a fixed order,
// the first failure wins: participant, playable cell, round still open,
// player's turn. On success the cell is written with the player's mark and
// decoration, and the round is settled.
func ApplyMove(session *entity.Session, playerID string, cell int, imageID string) error {
	player := session.PlayerByID(playerID)
	if player == nil {
		return fmt.Errorf("%w: %s", apperror.ErrPlayerNotFound, playerID)
	}

	if cell < 0 || cell >= entity.BoardSize || !session.Board[cell].IsEmpty() {
		return fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	if session.IsTerminal() {
		return apperror.ErrGameOver
	}

	if session.Turn != player.Mark {
		return apperror.ErrNotYourTurn
	}

	session.Board[cell] = entity.Cell{Symbol: player.Mark, ImageID: imageID}
	settleRound(session)

	return nil
}

// settleRound - updates winner, tally and turn after an accepted move.
func settleRound(session *entity.Session) {
	switch result := session.DetermineResult(); result {
	case entity.MarkX:
		session.Winner = entity.MarkX
		session.Results.X++
		session.Turn = ""
	case entity.MarkO:
		session.Winner = entity.MarkO
		session.Results.O++
		session.Turn = ""
	case entity.ResultDraw:
		session.Winner = entity.ResultDraw
		session.Results.Draws++
		session.Turn = ""
	default:
		session.Turn = entity.OtherMark(session.Turn)
	}
}

// StartNewRound - resets a finished session for the next round. Starters
// alternate strictly: whoever NextStarter names opens, then it flips. The
// X/O tallies reset once either side reached winsPerStreak; draws are kept.
// Calling this on a round still in progress is a no-op.
func StartNewRound(session *entity.Session, winsPerStreak int) {
	if !session.IsTerminal() {
		return
	}

	if session.Results.X >= winsPerStreak || session.Results.O >= winsPerStreak {
		session.Results.X = 0
		session.Results.O = 0
	}

	session.Board = [entity.BoardSize]entity.Cell{}
	session.Winner = ""
	session.Turn = session.NextStarter
	session.NextStarter = entity.OtherMark(session.NextStarter)
}
