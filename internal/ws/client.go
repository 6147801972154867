package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mpoksari/catering-api/internal/auth"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10 // must be less than pongWait
	maxMessageSize = 512
	sendBuffer     = 256
)

// TypeSnapshot is the first event a tracking page receives: the member's
// orders as they stand when the page connects.
const TypeSnapshot = "orders.snapshot"

// SnapshotFunc loads the payload of the TypeSnapshot event.
type SnapshotFunc func(ctx context.Context, memberID uuid.UUID) (any, error)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin is not checked; the session token in the query authenticates.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one open order tracking page.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	memberID uuid.UUID
	send     chan []byte
}

// ReadPump only watches for the page going away; tracking pages never send.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn().Err(err).Str("member_id", c.memberID.String()).Msg("tracking page closed unexpectedly")
			}
			return
		}
	}
}

// WritePump forwards order events to the page and keeps it alive with pings.
// Events queued while a frame is being written go out in the same frame,
// newline separated.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.writeFrame(message); err != nil {
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

func (c *Client) writeFrame(first []byte) error {
	w, err := c.conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}
	w.Write(first)
	for n := len(c.send); n > 0; n-- {
		w.Write([]byte{'\n'})
		w.Write(<-c.send)
	}
	return w.Close()
}

// ServeWS opens an order tracking page.
// Endpoint: WS /ws/members/{mid}/orders?token=JWT
//
// Members may watch only their own orders; staff may watch anyone. When
// snapshot is set, the page first receives a TypeSnapshot event.
func ServeWS(hub *Hub, jwtSecret string, snapshot SnapshotFunc, w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	claims, err := auth.ValidateSession(jwtSecret, tokenStr)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	memberID, err := uuid.Parse(chi.URLParam(r, "mid"))
	if err != nil {
		http.Error(w, "invalid member id", http.StatusBadRequest)
		return
	}
	if !claims.CanAccess(memberID) {
		http.Error(w, "member access denied", http.StatusForbidden)
		return
	}

	// Loaded before the upgrade so an unknown member is a plain HTTP error.
	var first []byte
	if snapshot != nil {
		payload, err := snapshot(r.Context(), memberID)
		if err != nil {
			hub.log.Warn().Err(err).Str("member_id", memberID.String()).Msg("load order snapshot")
			http.Error(w, "member not available", http.StatusNotFound)
			return
		}
		ev, err := NewEvent(TypeSnapshot, payload)
		if err == nil {
			first, err = json.Marshal(ev)
		}
		if err != nil {
			hub.log.Error().Err(err).Msg("marshal order snapshot")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.log.Error().Err(err).Msg("websocket upgrade")
		return
	}

	client := &Client{
		hub:      hub,
		conn:     conn,
		memberID: memberID,
		send:     make(chan []byte, sendBuffer),
	}
	// Queued before the client is visible to the hub, so it is always the
	// first message on the page.
	if first != nil {
		client.send <- first
	}
	if !hub.join(client) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
