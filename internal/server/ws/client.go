package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	sendBufferSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from the configured CORS origins; the cookie
	// session is what authenticates them, so cross-origin upgrades are fine.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one WebSocket session. It tracks no identity of its own; room
// membership is driven entirely by joinGroup/leaveGroup messages.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan Envelope
}

type roomMessage struct {
	GroupID string `json:"groupId"`
}

// Serve upgrades the request and runs the client's read and write pumps.
// It returns once the connection closes.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &Client{id: uuid.NewString(), hub: h, conn: conn, send: make(chan Envelope, sendBufferSize)}

	go c.writePump()
	c.readPump()

	return nil
}

func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		close(c.send)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			continue
		}

		var room roomMessage
		if data, err := json.Marshal(env.Data); err == nil {
			_ = json.Unmarshal(data, &room)
		}
		if room.GroupID == "" {
			continue
		}

		switch env.Event {
		case "joinGroup":
			c.hub.join(room.GroupID, c)
			c.hub.logger.Debug(context.Background(), "client joined group",
				"client_id", c.id, "group_id", room.GroupID)
		case "leaveGroup":
			c.hub.leave(room.GroupID, c)
			c.hub.logger.Debug(context.Background(), "client left group",
				"client_id", c.id, "group_id", room.GroupID)
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
		case env, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(env); err != nil {
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
