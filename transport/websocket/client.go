package websocket

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	sendBufferSize = 32
)

// Client is one live websocket connection. It satisfies
// identity.Connection, so the registry can hand it to the broadcaster.
type Client struct {
	server *Server
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
}

func newClient(server *Server, conn *websocket.Conn) *Client {
	return &Client{
		server: server,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
}

// Send - queues a payload for delivery. Reports false when the client is
// gone or its buffer is full; the caller treats that as a skipped handle.
func (that *Client) Send(payload []byte) bool {
	select {
	case <-that.done:
		return false
	default:
	}

	select {
	case that.send <- payload:
		return true
	default:
		return false
	}
}

// readPump - reads inbound messages and hands them to the server's
// dispatcher until the connection dies. Disconnect cleanup happens here.
func (that *Client) readPump() {
	log := that.server.logger.With("method", "readPump")

	defer func() {
		that.server.registry.Unregister(that)
		close(that.done)
		if err := that.conn.Close(); err != nil {
			log.Debug("failed to close connection", "error", err)
		}
	}()

	that.conn.SetReadLimit(maxMessageSize)
	_ = that.conn.SetReadDeadline(time.Now().Add(pongWait))
	that.conn.SetPongHandler(func(string) error {
		return that.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := that.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("connection closed unexpectedly", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(raw, &message); err != nil {
			log.Debug("failed to unmarshal message", "error", err)
			that.server.sendBadRequest(that, "malformed message")
			continue
		}

		that.server.dispatch(that, &message)
	}
}

// writePump - drains the send queue into the connection and keeps the
// peer alive with pings.
func (that *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = that.conn.Close()
	}()

	for {
		select {
		case <-that.done:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = that.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case payload := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
