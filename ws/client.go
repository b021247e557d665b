package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"portal_backend/internal/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBufferSize = 64
)

type Client struct {
	ID     string
	UserID string
	OrgID  string
	Conn   *websocket.Conn
	Send   chan []byte

	Manager *WebSocketManager
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		select {
		case c.Manager.unregister <- c:
		case <-c.Manager.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msgBytes, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.CtxWarn(ctx, "Websocket read error", "client_id", c.ID, "error", err)
			}
			return
		}

		var msg Envelope
		if err := json.Unmarshal(msgBytes, &msg); err != nil {
			c.reply(EventError, "invalid message")
			continue
		}
		c.handleMessage(ctx, msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(ctx context.Context, msg Envelope) {
	switch msg.Event {
	case EventPing:
		c.reply(EventPong, msg.Data)

	case EventUpdateHewan, EventUpdateProduct, EventMessage:
		if c.OrgID == "" {
			c.reply(EventError, "no organization")
			return
		}
		var data interface{} = msg.Data
		if msg.Event == EventUpdateHewan {
			data = nil
		}
		c.Manager.Publish(ctx, c.OrgID, msg.Event, data)

	default:
		c.reply(EventError, "unknown event: "+msg.Event)
	}
}

func (c *Client) reply(event string, data interface{}) {
	if raw, ok := data.(json.RawMessage); ok && len(raw) == 0 {
		data = nil
	}
	payload, err := encode(event, data)
	if err != nil {
		return
	}
	c.Manager.sendTo(c, payload)
}
