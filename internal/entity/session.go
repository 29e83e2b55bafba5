package entity

import "time"

const (
	MarkX = "X"
	MarkO = "O"

	ResultDraw = "draw"

	EmptyCell = ""

	MaxPlayers = 2
	BoardSize  = 9
)

// WinCombos - the 8 winning lines: rows, then columns, then diagonals.
// The first matching line decides the winner.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Cell holds one square of the board. ImageID is a cosmetic tag the client
// picked for this move; the server carries it through untouched.
type Cell struct {
	Symbol  string `json:"symbol,omitempty"`
	ImageID string `json:"imageId,omitempty"`
}

func (that Cell) IsEmpty() bool {
	return that.Symbol == EmptyCell
}

// Results is the running win/draw tally across rounds of one session.
type Results struct {
	X     int `json:"X"`
	O     int `json:"O"`
	Draws int `json:"draws"`
}

// Session is one two-player game: its board, whose move is next, the
// winner of the current round and the tally across rounds.
type Session struct {
	ID           string          `json:"id"`
	Players      []*Player       `json:"players"`
	Board        [BoardSize]Cell `json:"board"`
	Turn         string          `json:"currentPlayer"`
	Winner       string          `json:"winner,omitempty"`
	NextStarter  string          `json:"-"`
	Results      Results         `json:"results"`
	LastActivity time.Time       `json:"-"`
}

// NewSession - creates a session with the creator seated as X and an empty
// board. The second round will start with O.
func NewSession(id, creatorID string) *Session {
	return &Session{
		ID:           id,
		Players:      []*Player{{ID: creatorID, Mark: MarkX}},
		Turn:         MarkX,
		NextStarter:  MarkO,
		LastActivity: time.Now(),
	}
}

func (that *Session) PlayerByID(id string) *Player {
	for _, player := range that.Players {
		if player.ID == id {
			return player
		}
	}
	return nil
}

func (that *Session) HasPlayer(id string) bool {
	return that.PlayerByID(id) != nil
}

func (that *Session) IsFull() bool {
	return len(that.Players) >= MaxPlayers
}

// IsTerminal - reports whether the current round ended; no moves are
// accepted in this state until the next round starts.
func (that *Session) IsTerminal() bool {
	return that.Winner != ""
}

// DetermineResult - scans the fixed winning lines in order and returns the
// winning mark, ResultDraw on a full board without a line, or "" while the
// round is still open.
func (that *Session) DetermineResult() string {
	for _, combo := range WinCombos {
		a, b, c := that.Board[combo[0]], that.Board[combo[1]], that.Board[combo[2]]
		if !a.IsEmpty() && a.Symbol == b.Symbol && b.Symbol == c.Symbol {
			return a.Symbol
		}
	}

	for _, cell := range that.Board {
		if cell.IsEmpty() {
			return ""
		}
	}

	return ResultDraw
}

func (that *Session) Touch() {
	that.LastActivity = time.Now()
}

// OtherMark - returns the opposing mark.
func OtherMark(mark string) string {
	if mark == MarkX {
		return MarkO
	}
	return MarkX
}
