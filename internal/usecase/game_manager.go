package usecase

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xosgame/xos-backend/internal/apperror"
	"github.com/xosgame/xos-backend/internal/entity"
	"github.com/xosgame/xos-backend/internal/tictactoe"
)

type sessionRepo interface {
	Create(creatorID string) *entity.Session
	GetByID(id string) (*entity.Session, error)
	IDs() []string
	DeleteByID(id string) error
}

// JoinResult - the outcome of a join: the session, the mark the player
// holds, and whether they were already seated (reconnect).
type JoinResult struct {
	Session  *entity.Session
	Mark     string
	Rejoined bool
}

// SessionSummary is one row of a player's active-session list.
type SessionSummary struct {
	SessionID     string `json:"sessionId"`
	IsPlayersTurn bool   `json:"isMyTurn"`
}

// GameManager serializes all work touching one session behind that
// session's own mutex: lookup, validation, mutation and the snapshot the
// caller broadcasts happen as one unit. Distinct sessions run in parallel.
type GameManager struct {
	logger        *slog.Logger
	sessions      sessionRepo
	winsPerStreak int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewGameManager(logger *slog.Logger, sessions sessionRepo, winsPerStreak int) *GameManager {
	if winsPerStreak <= 0 {
		winsPerStreak = tictactoe.DefaultWinsPerStreak
	}

	return &GameManager{
		logger:        logger,
		sessions:      sessions,
		winsPerStreak: winsPerStreak,
		locks:         make(map[string]*sync.Mutex),
	}
}

func (that *GameManager) CreateSession(playerID string) (*entity.Session, error) {
	if playerID == "" {
		return nil, fmt.Errorf("%w: missing player id", apperror.ErrBadRequest)
	}

	session := that.sessions.Create(playerID)

	// The id is already visible to list and reap scans, so even the first
	// read of the session goes through its lock.
	lock := that.lockFor(session.ID)
	lock.Lock()
	snapped := snapshot(session)
	lock.Unlock()

	that.logger.Info("session created", "sessionID", session.ID, "playerID", playerID)

	return snapped, nil
}

func (that *GameManager) JoinSession(sessionID, playerID string) (*JoinResult, error) {
	if playerID == "" {
		return nil, fmt.Errorf("%w: missing player id", apperror.ErrBadRequest)
	}

	lock := that.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := that.sessions.GetByID(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	// Joining is idempotent for a seated player: every reconnect lands here.
	if player := session.PlayerByID(playerID); player != nil {
		return &JoinResult{Session: snapshot(session), Mark: player.Mark, Rejoined: true}, nil
	}

	if session.IsFull() {
		return nil, fmt.Errorf("%w: session id %s", apperror.ErrSessionFull, sessionID)
	}

	session.Players = append(session.Players, &entity.Player{ID: playerID, Mark: entity.MarkO})
	session.Touch()

	that.logger.Info("player joined", "sessionID", sessionID, "playerID", playerID)

	return &JoinResult{Session: snapshot(session), Mark: entity.MarkO}, nil
}

func (that *GameManager) MakeTurn(sessionID, playerID string, cell int, imageID string) (*entity.Session, error) {
	lock := that.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := that.sessions.GetByID(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if err = tictactoe.ApplyMove(session, playerID, cell, imageID); err != nil {
		return nil, fmt.Errorf("failed to make turn: %w", err)
	}

	session.Touch()

	return snapshot(session), nil
}

func (that *GameManager) StartNewRound(sessionID string) (*entity.Session, error) {
	lock := that.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := that.sessions.GetByID(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	tictactoe.StartNewRound(session, that.winsPerStreak)
	session.Touch()

	return snapshot(session), nil
}

func (that *GameManager) DeleteSession(sessionID, playerID string) (*entity.Session, error) {
	lock := that.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := that.sessions.GetByID(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if !session.HasPlayer(playerID) {
		return nil, fmt.Errorf("%w: player %s", apperror.ErrUnauthorized, playerID)
	}

	if err = that.sessions.DeleteByID(sessionID); err != nil {
		return nil, fmt.Errorf("failed to delete session: %w", err)
	}

	that.dropLock(sessionID)

	that.logger.Info("session deleted", "sessionID", sessionID, "playerID", playerID)

	return snapshot(session), nil
}

// ListSessions - the player's started sessions with a whose-turn flag,
// ordered as the store returns them. The scan walks every live session;
// membership and turn are read under each session's lock so a concurrent
// join or move never races the listing.
func (that *GameManager) ListSessions(playerID string) []SessionSummary {
	summaries := make([]SessionSummary, 0)
	for _, id := range that.sessions.IDs() {
		lock := that.lockFor(id)
		lock.Lock()

		session, err := that.sessions.GetByID(id)
		if err != nil {
			lock.Unlock()
			continue
		}

		player := session.PlayerByID(playerID)
		if player == nil || !session.IsFull() {
			lock.Unlock()
			continue
		}

		summaries = append(summaries, SessionSummary{
			SessionID:     session.ID,
			IsPlayersTurn: session.Turn == player.Mark,
		})

		lock.Unlock()
	}

	return summaries
}

// ReapIdleSessions - drops sessions idle longer than maxIdle. Each session
// is inspected under its own lock so the idle check never races a Touch
// from an in-flight move.
func (that *GameManager) ReapIdleSessions(maxIdle time.Duration) {
	if maxIdle <= 0 {
		return
	}

	cutoff := time.Now().Add(-maxIdle)

	var reaped int
	for _, id := range that.sessions.IDs() {
		lock := that.lockFor(id)
		lock.Lock()

		deleted := false
		if session, err := that.sessions.GetByID(id); err == nil && session.LastActivity.Before(cutoff) {
			deleted = that.sessions.DeleteByID(id) == nil
		}

		lock.Unlock()

		if deleted {
			that.dropLock(id)
			reaped++
		}
	}

	if reaped > 0 {
		that.logger.Info("reaped idle sessions", "count", reaped, "maxIdle", maxIdle)
	}
}

func (that *GameManager) lockFor(sessionID string) *sync.Mutex {
	that.mu.Lock()
	defer that.mu.Unlock()

	lock, ok := that.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		that.locks[sessionID] = lock
	}

	return lock
}

func (that *GameManager) dropLock(sessionID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.locks, sessionID)
}

// snapshot - copies the session so callers can serialize it outside the
// session lock. Player entries are immutable once seated, a shallow copy
// of the slice is enough.
func snapshot(session *entity.Session) *entity.Session {
	copied := *session
	copied.Players = append([]*entity.Player(nil), session.Players...)

	return &copied
}
