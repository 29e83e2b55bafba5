package entity

// Player is one seat in a session. ID is the durable identifier the client
// supplies; Mark is assigned at join time and never changes.
type Player struct {
	ID   string `json:"id"`
	Mark string `json:"mark"`
}
