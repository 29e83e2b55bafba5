package apperror

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionFull     = errors.New("session already has two players")
	ErrPlayerNotFound  = errors.New("player is not a participant of this session")
	ErrNotYourTurn     = errors.New("it's not your turn")
	ErrCellOccupied    = errors.New("cell is already occupied")
	ErrGameOver        = errors.New("game is already finished")
	ErrUnauthorized    = errors.New("player is not authorized for this action")
	ErrBadRequest      = errors.New("bad request")
)

// Stable error kinds sent over the wire. Clients branch on these, never on
// the message text.
const (
	KindSessionNotFound = "session_not_found"
	KindSessionFull     = "session_full"
	KindPlayerNotFound  = "player_not_found"
	KindNotYourTurn     = "not_your_turn"
	KindCellOccupied    = "cell_occupied"
	KindGameOver        = "game_over"
	KindUnauthorized    = "unauthorized"
	KindBadRequest      = "bad_request"
)

// KindOf - maps any error to its wire kind. Anything unrecognized degrades
// to a generic bad request so internals never leak to clients.
func KindOf(err error) string {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return KindSessionNotFound
	case errors.Is(err, ErrSessionFull):
		return KindSessionFull
	case errors.Is(err, ErrPlayerNotFound):
		return KindPlayerNotFound
	case errors.Is(err, ErrNotYourTurn):
		return KindNotYourTurn
	case errors.Is(err, ErrCellOccupied):
		return KindCellOccupied
	case errors.Is(err, ErrGameOver):
		return KindGameOver
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	default:
		return KindBadRequest
	}
}
