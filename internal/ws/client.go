package ws

import (
	"encoding/json"
	"time"

	"github.com/gofiber/websocket/v2"
	"golang.org/x/time/rate"
)

const (
	readLimit      = 64 * 1024
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	writeWait      = 10 * time.Second
	sendBufferSize = 256
)

// Client owns one websocket connection: a buffered send channel drained by
// the write pump, and a read pump that dispatches joinGroup/leaveGroup.
type Client struct {
	connID  string
	userID  string
	ws      *websocket.Conn
	send    chan Envelope
	hub     *Hub
	limiter *rate.Limiter
}

func NewClient(conn *websocket.Conn, connID, userID string, hub *Hub, rps int) *Client {
	return &Client{
		connID:  connID,
		userID:  userID,
		ws:      conn,
		send:    make(chan Envelope, sendBufferSize),
		hub:     hub,
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
	}
}

func (c *Client) ConnID() string { return c.connID }
func (c *Client) UserID() string { return c.userID }

// Send enqueues an envelope for the write pump. Drops the frame if the buffer
// is full; a slow client must re-fetch history to recover.
func (c *Client) Send(env Envelope) {
	select {
	case c.send <- env:
	default:
	}
}

// ReadPump reads client frames until the connection drops. onClose runs
// exactly once on the way out, after the connection is torn down.
func (c *Client) ReadPump(onClose func()) {
	defer func() {
		_ = c.ws.Close()
		onClose()
	}()

	c.ws.SetReadLimit(readLimit)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		if !c.limiter.Allow() {
			continue
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}
		switch env.Type {
		case EventJoinGroup:
			if env.GroupID != "" {
				c.hub.JoinRoom(env.GroupID, c.connID)
			}
		case EventLeaveGroup:
			if env.GroupID != "" {
				c.hub.LeaveRoom(env.GroupID, c.connID)
			}
		default:
			// unknown client events are ignored
		}
	}
}

// WritePump drains the send channel onto the socket and keeps the connection
// alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()
	for {
		select {
		case env := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(env); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(time.Second)); err != nil {
				return
			}
		}
	}
}
