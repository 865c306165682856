package playback

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/coder/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 4 * 1024
)

type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	session    *Session
	UserID     string
	DocumentID string
	ClientID   string
}

func NewClient(hub *Hub, conn *websocket.Conn, session *Session, userID, documentID, clientID string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, 64),
		session:    session,
		UserID:     userID,
		DocumentID: documentID,
		ClientID:   clientID,
	}
}

func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return
			}
			slog.Debug("read error", "error", err, "client", c.ClientID)
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("invalid message", "error", err, "client", c.ClientID)
			c.Send(c.session.fail("invalid message"))
			continue
		}

		for _, reply := range c.session.Handle(ctx, &msg) {
			c.Send(reply)
		}
	}
}

// WritePump delivers queued messages and, while the session plays, one
// frame per tick.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	frames := time.NewTicker(c.session.Interval())
	defer func() {
		ticker.Stop()
		frames.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			if !c.write(ctx, message) {
				return
			}

		case <-frames.C:
			msg := c.session.Tick(ctx)
			if msg == nil {
				continue
			}
			data, err := json.Marshal(msg)
			if err != nil {
				slog.Error("marshal frame", "error", err)
				continue
			}
			if !c.write(ctx, data) {
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) write(ctx context.Context, data []byte) bool {
	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	if err := c.conn.Write(writeCtx, websocket.MessageText, data); err != nil {
		slog.Debug("write error", "error", err, "client", c.ClientID)
		return false
	}
	return true
}

func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err)
		return
	}

	select {
	case c.send <- data:
	default:
		slog.Warn("client send buffer full, dropping message", "client", c.ClientID)
	}
}
