package tictactoe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xosgame/xos-backend/internal/apperror"
	"github.com/xosgame/xos-backend/internal/entity"
)

func newTwoPlayerSession() *entity.Session {
	session := entity.NewSession("abc123", "player-x")
	session.Players = append(session.Players, &entity.Player{ID: "player-o", Mark: entity.MarkO})
	return session
}

func TestApplyMove_ValidationOrder(t *testing.T) {
	t.Run("non-participant is rejected before anything else", func(t *testing.T) {
		// Given: a finished session with an occupied cell
		session := newTwoPlayerSession()
		session.Board[0] = entity.Cell{Symbol: entity.MarkX}
		session.Winner = entity.MarkX
		session.Turn = ""

		// When: a stranger targets the occupied cell
		err := ApplyMove(session, "stranger", 0, "")

		// Then: the participant check wins
		assert.ErrorIs(t, err, apperror.ErrPlayerNotFound)
	})

	t.Run("occupied cell", func(t *testing.T) {
		session := newTwoPlayerSession()
		require.NoError(t, ApplyMove(session, "player-x", 4, ""))

		err := ApplyMove(session, "player-o", 4, "")

		assert.ErrorIs(t, err, apperror.ErrCellOccupied)
	})

	t.Run("out of range cell reads as unplayable", func(t *testing.T) {
		session := newTwoPlayerSession()

		assert.ErrorIs(t, ApplyMove(session, "player-x", -1, ""), apperror.ErrCellOccupied)
		assert.ErrorIs(t, ApplyMove(session, "player-x", 9, ""), apperror.ErrCellOccupied)
	})

	t.Run("move after the round ended", func(t *testing.T) {
		session := newTwoPlayerSession()
		session.Winner = entity.MarkO
		session.Turn = ""

		err := ApplyMove(session, "player-x", 5, "")

		assert.ErrorIs(t, err, apperror.ErrGameOver)
	})

	t.Run("move out of turn", func(t *testing.T) {
		session := newTwoPlayerSession()

		err := ApplyMove(session, "player-o", 4, "")

		assert.ErrorIs(t, err, apperror.ErrNotYourTurn)
	})

	t.Run("rejected move leaves the session untouched", func(t *testing.T) {
		session := newTwoPlayerSession()
		require.NoError(t, ApplyMove(session, "player-x", 4, ""))

		before := *session
		require.Error(t, ApplyMove(session, "player-x", 5, ""))

		assert.Equal(t, before.Board, session.Board)
		assert.Equal(t, before.Turn, session.Turn)
		assert.Equal(t, before.Results, session.Results)
	})
}

func TestApplyMove_TurnAlternation(t *testing.T) {
	// Given: an open two-player session
	session := newTwoPlayerSession()

	// When/Then: the turn strictly alternates after each accepted move
	require.NoError(t, ApplyMove(session, "player-x", 0, ""))
	assert.Equal(t, entity.MarkO, session.Turn)

	require.NoError(t, ApplyMove(session, "player-o", 4, ""))
	assert.Equal(t, entity.MarkX, session.Turn)

	require.NoError(t, ApplyMove(session, "player-x", 8, ""))
	assert.Equal(t, entity.MarkO, session.Turn)
}

func TestApplyMove_CarriesDecoration(t *testing.T) {
	session := newTwoPlayerSession()

	require.NoError(t, ApplyMove(session, "player-x", 4, "media/xos/red-x"))

	assert.Equal(t, entity.MarkX, session.Board[4].Symbol)
	assert.Equal(t, "media/xos/red-x", session.Board[4].ImageID)
}

func TestApplyMove_WinEndsRound(t *testing.T) {
	// Given: X one move away from the top row
	session := newTwoPlayerSession()
	require.NoError(t, ApplyMove(session, "player-x", 0, ""))
	require.NoError(t, ApplyMove(session, "player-o", 4, ""))
	require.NoError(t, ApplyMove(session, "player-x", 1, ""))
	require.NoError(t, ApplyMove(session, "player-o", 5, ""))

	// When: X completes the row
	require.NoError(t, ApplyMove(session, "player-x", 2, ""))

	// Then: the round is terminal, the tally moved and no turn is open
	assert.Equal(t, entity.MarkX, session.Winner)
	assert.Equal(t, 1, session.Results.X)
	assert.Empty(t, session.Turn)
}

func TestApplyMove_DrawEndsRound(t *testing.T) {
	session := newTwoPlayerSession()

	// X O X / X O O / O X X, played in a legal order without a line
	moves := []struct {
		player string
		cell   int
	}{
		{"player-x", 0}, {"player-o", 1}, {"player-x", 2},
		{"player-o", 4}, {"player-x", 3}, {"player-o", 5},
		{"player-x", 7}, {"player-o", 6}, {"player-x", 8},
	}
	for _, move := range moves {
		require.NoError(t, ApplyMove(session, move.player, move.cell, ""))
	}

	assert.Equal(t, entity.ResultDraw, session.Winner)
	assert.Equal(t, 1, session.Results.Draws)
	assert.Empty(t, session.Turn)
}

func TestStartNewRound(t *testing.T) {
	t.Run("no-op while the round is open", func(t *testing.T) {
		session := newTwoPlayerSession()
		require.NoError(t, ApplyMove(session, "player-x", 4, ""))

		StartNewRound(session, DefaultWinsPerStreak)

		assert.Equal(t, entity.MarkX, session.Board[4].Symbol)
		assert.Equal(t, entity.MarkO, session.Turn)
	})

	t.Run("clears the board and alternates the starter", func(t *testing.T) {
		// Given: a finished first round
		session := newTwoPlayerSession()
		session.Winner = entity.MarkX
		session.Turn = ""
		session.Results.X = 1

		// When: round two starts
		StartNewRound(session, DefaultWinsPerStreak)

		// Then: O opens, the board is clear, the tally survives
		assert.Equal(t, entity.MarkO, session.Turn)
		assert.Equal(t, entity.MarkX, session.NextStarter)
		assert.Empty(t, session.Winner)
		assert.Equal(t, 1, session.Results.X)
		for _, cell := range session.Board {
			assert.True(t, cell.IsEmpty())
		}

		// And: round three goes back to X
		session.Winner = entity.MarkO
		StartNewRound(session, DefaultWinsPerStreak)
		assert.Equal(t, entity.MarkX, session.Turn)
		assert.Equal(t, entity.MarkO, session.NextStarter)
	})

	t.Run("resets the streak once the threshold is hit", func(t *testing.T) {
		// Given: X just took their third win of the streak
		session := newTwoPlayerSession()
		session.Winner = entity.MarkX
		session.Turn = ""
		session.Results = entity.Results{X: 3, O: 1, Draws: 2}

		StartNewRound(session, DefaultWinsPerStreak)

		// Then: wins reset, draws are preserved
		assert.Equal(t, entity.Results{X: 0, O: 0, Draws: 2}, session.Results)
	})

	t.Run("keeps the tally below the threshold", func(t *testing.T) {
		session := newTwoPlayerSession()
		session.Winner = entity.MarkO
		session.Turn = ""
		session.Results = entity.Results{X: 2, O: 2, Draws: 1}

		StartNewRound(session, DefaultWinsPerStreak)

		assert.Equal(t, entity.Results{X: 2, O: 2, Draws: 1}, session.Results)
	})
}
