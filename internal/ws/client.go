package ws

import (
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/aaronzipp/officially-sus-arena/internal/models"
)

var debug bool

func init() {
	debug = os.Getenv("DEBUG") != ""
}

const (
	// SendBufferSize is the buffer size for outbound message channels
	SendBufferSize = 32

	// SendTimeout bounds how long a broadcast waits on one slow client
	SendTimeout = time.Second

	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is one WebSocket connection
type Client struct {
	id   string
	conn *websocket.Conn
	send chan models.Envelope

	closeOnce sync.Once
	done      chan struct{}
}

// NewClient wraps an upgraded connection
func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan models.Envelope, SendBufferSize),
		done: make(chan struct{}),
	}
}

// ID implements models.Conn
func (c *Client) ID() string {
	return c.id
}

// Send implements models.Conn. It waits at most SendTimeout for buffer space.
func (c *Client) Send(msg models.Envelope) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	case <-c.done:
		return false
	case <-time.After(SendTimeout):
		if debug {
			log.Printf("ws: timeout sending %s to client %s", msg.Type, c.id)
		}
		return false
	}
}

// Close stops the write pump and closes the socket
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// ReadPump decodes requests and hands them to handle until the socket fails.
// It must run on a single goroutine per client.
func (c *Client) ReadPump(handle func(models.Request)) {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws: client %s read error: %v", c.id, err)
			}
			return
		}
		var req models.Request
		if err := json.Unmarshal(message, &req); err != nil {
			c.Send(models.Envelope{Type: EventError, Data: "malformed message"})
			continue
		}
		handle(req)
	}
}

// WritePump delivers queued envelopes and keeps the connection alive with pings
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				log.Printf("ws: error writing message to %s: %v", c.id, err)
				c.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}
