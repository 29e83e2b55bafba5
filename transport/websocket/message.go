package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/xosgame/xos-backend/internal/entity"
	"github.com/xosgame/xos-backend/internal/usecase"
)

// Inbound actions.
const (
	ActionRegisterIdentity = "registerIdentity"
	ActionCreateSession    = "createSession"
	ActionListMySessions   = "listMySessions"
	ActionJoinSession      = "joinSession"
	ActionMove             = "move"
	ActionStartNewRound    = "startNewRound"
	ActionDeleteSession    = "deleteSession"
)

// Outbound events.
const (
	EventIdentity       = "identity"
	EventSessionCreated = "sessionCreated"
	EventMySessionsList = "mySessionsList"
	EventSessionStarted = "sessionStarted"
	EventRejoined       = "rejoined"
	EventStateUpdate    = "stateUpdate"
	EventRoundStarted   = "roundStarted"
	EventSessionDeleted = "sessionDeleted"
	EventError          = "error"
)

// Message is the envelope for everything crossing the wire, in both
// directions: a named action and its payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RegisterIdentityPayload struct {
	PlayerID string `json:"playerId"`
}

type CreateSessionPayload struct {
	PlayerID string `json:"playerId"`
}

type ListMySessionsPayload struct {
	PlayerID string `json:"playerId"`
}

type JoinSessionPayload struct {
	SessionID string `json:"sessionId"`
	PlayerID  string `json:"playerId"`
}

type MovePayload struct {
	SessionID  string `json:"sessionId"`
	PlayerID   string `json:"playerId"`
	CellIndex  int    `json:"cellIndex"`
	Decoration string `json:"decoration,omitempty"`
}

type StartNewRoundPayload struct {
	SessionID string `json:"sessionId"`
}

type DeleteSessionPayload struct {
	SessionID string `json:"sessionId"`
	PlayerID  string `json:"playerId"`
}

type IdentityPayload struct {
	PlayerID string `json:"playerId"`
}

type SessionCreatedPayload struct {
	SessionID string `json:"sessionId"`
	JoinLink  string `json:"joinLink"`
}

type MySessionsListPayload struct {
	Sessions []usecase.SessionSummary `json:"sessions"`
}

type SessionStartedPayload struct {
	SessionID string   `json:"sessionId"`
	Players   []string `json:"players"`
}

type RejoinedPayload struct {
	SessionID  string `json:"sessionId"`
	Symbol     string `json:"symbol"`
	OpponentID string `json:"opponentId,omitempty"`
}

// StateUpdatePayload is the full public view of a session, broadcast to
// the room after every accepted mutation.
type StateUpdatePayload struct {
	SessionID     string                        `json:"sessionId"`
	Board         [entity.BoardSize]entity.Cell `json:"board"`
	CurrentPlayer string                        `json:"currentPlayer"`
	Winner        string                        `json:"winner,omitempty"`
	Results       entity.Results                `json:"results"`
}

type SessionDeletedPayload struct {
	SessionID string `json:"sessionId"`
}

type ErrorPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// encodeMessage - wraps a payload into the wire envelope.
func encodeMessage(action string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	data, err := json.Marshal(Message{Action: action, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return data, nil
}

// stateUpdateOf - the public view of a session snapshot.
func stateUpdateOf(session *entity.Session) StateUpdatePayload {
	return StateUpdatePayload{
		SessionID:     session.ID,
		Board:         session.Board,
		CurrentPlayer: session.Turn,
		Winner:        session.Winner,
		Results:       session.Results,
	}
}
