package identity

import "sync"

// Connection is the live transport handle for one client. Send reports
// whether the payload was accepted; a dead or saturated handle returns
// false and the caller moves on.
type Connection interface {
	Send(payload []byte) bool
}

// Registry maps durable player ids to their currently connected handle.
// One active connection per player: a reconnect replaces the old handle.
// State is process-lifetime only.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]Connection
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]Connection),
	}
}

// Register - associates the player with a live handle, replacing any
// previous association for that id.
func (that *Registry) Register(playerID string, conn Connection) {
	if playerID == "" || conn == nil {
		return
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	that.conns[playerID] = conn
}

// Resolve - returns the player's current handle, if any.
func (that *Registry) Resolve(playerID string) (Connection, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	conn, ok := that.conns[playerID]

	return conn, ok
}

// Unregister - drops every mapping still pointing at this exact handle.
// A player who reconnected before the stale disconnect arrived keeps their
// new handle.
func (that *Registry) Unregister(conn Connection) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for playerID, current := range that.conns {
		if current == conn {
			delete(that.conns, playerID)
		}
	}
}
