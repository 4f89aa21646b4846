package realtime

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Incoming frames are only ever control traffic, keep them small.
	maxMessageSize = 512

	sendBufferSize = 64
)

// Client is one live websocket connection bound to an authenticated
// user. Writes go through a buffered channel so a stalled peer never
// blocks a broadcast; when the buffer fills the connection is dropped.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
	orgID  string
}

// Serve registers the connection with the hub and runs the read and
// write pumps until the peer disconnects.
func (h *Hub) Serve(conn *websocket.Conn, userID, orgID string) {
	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		userID: userID,
		orgID:  orgID,
	}

	h.register(client)

	go client.writePump()
	go client.readPump()
}

// enqueue runs under the hub's read lock, so it must not touch the
// registration maps. A full buffer closes the underlying connection and
// the read pump does the cleanup.
func (c *Client) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		c.conn.Close()
	}
}

// readPump discards client frames but keeps the connection healthy
// through the pong deadline. Exiting here unregisters the client.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("websocket read error", "user_id", c.userID, "error", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
