package repository

import (
	"sync"

	"github.com/xosgame/xos-backend/internal/apperror"
	"github.com/xosgame/xos-backend/internal/entity"
	"github.com/xosgame/xos-backend/internal/pkg"
)

type SessionRepository interface {
	Create(creatorID string) *entity.Session
	GetByID(id string) (*entity.Session, error)
	IDs() []string
	DeleteByID(id string) error
}

// inMemorySessions owns the session map. All game state lives here for the
// lifetime of the process; nothing is persisted.
//
// The mutex guards the map itself, not the sessions: readers of session
// fields must hold that session's lock in the game manager. That is why
// the interface hands out ids and pointers, never field values.
type inMemorySessions struct {
	mu       sync.RWMutex
	sessions map[string]*entity.Session

	genID func() string
}

func NewSessionRepository() SessionRepository {
	return &inMemorySessions{
		sessions: make(map[string]*entity.Session),
		genID:    pkg.GenerateSessionID,
	}
}

// Create - allocates a session with a fresh id and the creator seated as X.
// An id colliding with a live session is regenerated, never surfaced.
func (that *inMemorySessions) Create(creatorID string) *entity.Session {
	that.mu.Lock()
	defer that.mu.Unlock()

	id := that.genID()
	for {
		if _, taken := that.sessions[id]; !taken {
			break
		}
		id = that.genID()
	}

	session := entity.NewSession(id, creatorID)
	that.sessions[id] = session

	return session
}

func (that *inMemorySessions) GetByID(id string) (*entity.Session, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	session, ok := that.sessions[id]
	if !ok {
		return nil, apperror.ErrSessionNotFound
	}

	return session, nil
}

// IDs - the ids of every live session. Ids are immutable, so callers may
// inspect the sessions behind them under their own locks.
func (that *inMemorySessions) IDs() []string {
	that.mu.RLock()
	defer that.mu.RUnlock()

	ids := make([]string, 0, len(that.sessions))
	for id := range that.sessions {
		ids = append(ids, id)
	}

	return ids
}

func (that *inMemorySessions) DeleteByID(id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.sessions[id]; !ok {
		return apperror.ErrSessionNotFound
	}

	delete(that.sessions, id)

	return nil
}
