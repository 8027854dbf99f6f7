package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"byte_battle/internal/battle"
	"byte_battle/internal/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second

	// code submissions travel over the socket
	maxMessageSize = 64 << 10
	sendBuffer     = 256
)

// Client is one websocket connection. It is the battle.Handle the engine
// holds for a player until the player reconnects on another Client.
type Client struct {
	ID     string
	UserID int64
	Name   string
	Conn   *websocket.Conn

	hub     *Hub
	battles Battles
	send    chan []byte
	done    chan struct{}
	once    sync.Once
	log     *slog.Logger
}

func NewClient(userID int64, name string, conn *websocket.Conn, hub *Hub) *Client {
	id := uuid.NewString()
	return &Client{
		ID:      id,
		UserID:  userID,
		Name:    name,
		Conn:    conn,
		hub:     hub,
		battles: hub.battles,
		send:    make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
		log:     logger.Component("ws").With("user", userID, "conn", id),
	}
}

func (c *Client) ConnID() string { return c.ID }

// Send queues msg without blocking. A full buffer drops the message.
func (c *Client) Send(msg battle.Message) bool {
	b, err := json.Marshal(msg)
	if err != nil {
		c.log.Error("marshal outbound message", "type", msg.Type, "error", err)
		return false
	}
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- b:
		return true
	default:
		droppedMessages.Inc()
		c.log.Warn("send buffer full, dropping message", "type", msg.Type)
		return false
	}
}

// Run serves the connection until it closes.
func (c *Client) Run() {
	c.hub.register(c)
	go c.writePump()
	c.Send(battle.Message{Type: MsgReady, Payload: ReadyPayload{UserID: c.UserID, Name: c.Name}})
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.battles.Disconnect(c.UserID, c.ID)
		c.hub.unregister(c)
		c.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("read error", "error", err)
			}
			return
		}
		c.handle(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Debug("write error", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// Close stops the write pump; the read pump follows when the socket closes.
func (c *Client) Close() {
	c.once.Do(func() { close(c.done) })
}
