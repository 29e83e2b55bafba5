package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/xosgame/xos-backend/internal/apperror"
	"github.com/xosgame/xos-backend/internal/entity"
	"github.com/xosgame/xos-backend/internal/pkg"
)

// handleRegisterIdentity - binds the durable player id to this connection.
// A client without an id gets one minted and echoed back.
func (that *Server) handleRegisterIdentity(client *Client, msg *Message) error {
	var payload RegisterIdentityPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("%w: malformed payload", apperror.ErrBadRequest)
	}

	minted := payload.PlayerID == ""
	if minted {
		payload.PlayerID = pkg.GeneratePlayerID()
	}

	that.registry.Register(payload.PlayerID, client)
	that.logger.Info("identity registered", "playerID", payload.PlayerID, "minted", minted)

	if minted {
		return that.sendTo(client, EventIdentity, IdentityPayload{PlayerID: payload.PlayerID})
	}

	return nil
}

func (that *Server) handleCreateSession(client *Client, msg *Message) error {
	var payload CreateSessionPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("%w: malformed payload", apperror.ErrBadRequest)
	}

	that.registry.Register(payload.PlayerID, client)

	session, err := that.game.CreateSession(payload.PlayerID)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return that.sendTo(client, EventSessionCreated, SessionCreatedPayload{
		SessionID: session.ID,
		JoinLink:  fmt.Sprintf("%s?sessionId=%s", that.publicURL, session.ID),
	})
}

func (that *Server) handleListMySessions(client *Client, msg *Message) error {
	var payload ListMySessionsPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("%w: malformed payload", apperror.ErrBadRequest)
	}

	that.registry.Register(payload.PlayerID, client)

	return that.sendTo(client, EventMySessionsList, MySessionsListPayload{
		Sessions: that.game.ListSessions(payload.PlayerID),
	})
}

// handleJoinSession - seats a new opponent or recovers a reconnecting
// participant. A fresh join starts the session for both players; a rejoin
// answers only the sender with their seat and the current state.
func (that *Server) handleJoinSession(client *Client, msg *Message) error {
	var payload JoinSessionPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("%w: malformed payload", apperror.ErrBadRequest)
	}

	that.registry.Register(payload.PlayerID, client)

	result, err := that.game.JoinSession(payload.SessionID, payload.PlayerID)
	if err != nil {
		return fmt.Errorf("failed to join session: %w", err)
	}

	session := result.Session

	if result.Rejoined {
		var opponentID string
		for _, player := range session.Players {
			if player.ID != payload.PlayerID {
				opponentID = player.ID
			}
		}

		if err = that.sendTo(client, EventRejoined, RejoinedPayload{
			SessionID:  session.ID,
			Symbol:     result.Mark,
			OpponentID: opponentID,
		}); err != nil {
			return err
		}

		return that.sendTo(client, EventStateUpdate, stateUpdateOf(session))
	}

	players := make([]string, 0, len(session.Players))
	for _, player := range session.Players {
		players = append(players, player.ID)
	}

	that.broadcastToSession(session, EventSessionStarted, SessionStartedPayload{
		SessionID: session.ID,
		Players:   players,
	})
	that.broadcastState(session)
	that.notifySessionsListChanged(session)

	return nil
}

func (that *Server) handleMove(client *Client, msg *Message) error {
	var payload MovePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("%w: malformed payload", apperror.ErrBadRequest)
	}

	that.registry.Register(payload.PlayerID, client)

	session, err := that.game.MakeTurn(payload.SessionID, payload.PlayerID, payload.CellIndex, payload.Decoration)
	if err != nil {
		return fmt.Errorf("failed to make turn: %w", err)
	}

	that.broadcastState(session)

	return nil
}

func (that *Server) handleStartNewRound(client *Client, msg *Message) error {
	var payload StartNewRoundPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("%w: malformed payload", apperror.ErrBadRequest)
	}

	session, err := that.game.StartNewRound(payload.SessionID)
	if err != nil {
		return fmt.Errorf("failed to start new round: %w", err)
	}

	that.broadcastToSession(session, EventRoundStarted, stateUpdateOf(session))

	return nil
}

func (that *Server) handleDeleteSession(client *Client, msg *Message) error {
	var payload DeleteSessionPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("%w: malformed payload", apperror.ErrBadRequest)
	}

	that.registry.Register(payload.PlayerID, client)

	session, err := that.game.DeleteSession(payload.SessionID, payload.PlayerID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	that.broadcastToSession(session, EventSessionDeleted, SessionDeletedPayload{SessionID: session.ID})
	that.notifySessionsListChanged(session)

	return nil
}

// broadcastState - pushes the session's public view to every participant
// the registry can resolve. Disconnected participants are skipped; they
// recover state on their next join.
func (that *Server) broadcastState(session *entity.Session) {
	that.broadcastToSession(session, EventStateUpdate, stateUpdateOf(session))
}

func (that *Server) broadcastToSession(session *entity.Session, event string, payload any) {
	log := that.logger.With("method", "broadcastToSession", "sessionID", session.ID, "event", event)

	data, err := encodeMessage(event, payload)
	if err != nil {
		log.Error("failed to encode broadcast", "error", err)
		return
	}

	for _, player := range session.Players {
		conn, ok := that.registry.Resolve(player.ID)
		if !ok {
			continue
		}

		if !conn.Send(data) {
			log.Debug("dropped broadcast for unreachable player", "playerID", player.ID)
		}
	}
}

// notifySessionsListChanged - recomputes and pushes each participant's
// active-session list after their membership changed.
func (that *Server) notifySessionsListChanged(session *entity.Session) {
	for _, player := range session.Players {
		conn, ok := that.registry.Resolve(player.ID)
		if !ok {
			continue
		}

		data, err := encodeMessage(EventMySessionsList, MySessionsListPayload{
			Sessions: that.game.ListSessions(player.ID),
		})
		if err != nil {
			that.logger.Error("failed to encode sessions list", "error", err)
			continue
		}

		conn.Send(data)
	}
}

func (that *Server) sendTo(client *Client, event string, payload any) error {
	data, err := encodeMessage(event, payload)
	if err != nil {
		return err
	}

	if !client.Send(data) {
		return fmt.Errorf("%w: connection is not writable", apperror.ErrBadRequest)
	}

	return nil
}

// sendError - answers the offending connection, and only it, with the
// stable error kind.
func (that *Server) sendError(client *Client, err error) {
	data, encodeErr := encodeMessage(EventError, ErrorPayload{
		Kind:    apperror.KindOf(err),
		Message: err.Error(),
	})
	if encodeErr != nil {
		that.logger.Error("failed to encode error response", "error", encodeErr)
		return
	}

	client.Send(data)
}

func (that *Server) sendBadRequest(client *Client, message string) {
	that.sendError(client, fmt.Errorf("%w: %s", apperror.ErrBadRequest, message))
}
