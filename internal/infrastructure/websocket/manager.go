package websocket

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"civicalert/internal/domain/entity"
	"civicalert/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 << 20
	sendBufferSize = 64
)

var (
	ErrClientClosed   = errors.New("websocket client closed")
	ErrSendBufferFull = errors.New("websocket send buffer full")
)

// Client is one connected browser tab.
type Client struct {
	ID     string
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte

	mu     sync.Mutex
	closed bool
}

func NewClient(userID string, conn *websocket.Conn) *Client {
	return &Client{
		ID:     uuid.New().String(),
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, sendBufferSize),
	}
}

// Enqueue queues a message without blocking. A slow reader loses the
// connection rather than stalling the sender.
func (c *Client) Enqueue(msgType string, data interface{}) error {
	b, err := NewMessage(msgType, data)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	select {
	case c.Send <- b:
		return nil
	default:
		logger.Warn("WebSocket: send buffer full for client %s, dropping connection", c.ID)
		c.closeLocked()
		return ErrSendBufferFull
	}
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Client) closeLocked() {
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// Manager tracks all active WebSocket connections.
type Manager struct {
	clients    map[string]*Client
	Register   chan *Client
	Unregister chan *Client
	mutex      sync.RWMutex
	done       chan struct{}
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Start runs the manager's main loop in a goroutine.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				m.clients[client.ID] = client
				m.mutex.Unlock()
				logger.Info("WebSocket: client %s registered for user %s", client.ID, client.UserID)

			case client := <-m.Unregister:
				m.mutex.Lock()
				delete(m.clients, client.ID)
				m.mutex.Unlock()
				client.Close()
				logger.Info("WebSocket: client %s unregistered", client.ID)

			case <-ctx.Done():
				close(m.done)
				m.mutex.Lock()
				for id, client := range m.clients {
					client.Close()
					delete(m.clients, id)
				}
				m.mutex.Unlock()
				return
			}
		}
	}()
}

// Add registers client. It returns false once the manager has stopped.
func (m *Manager) Add(client *Client) bool {
	select {
	case m.Register <- client:
		return true
	case <-m.done:
		return false
	}
}

// Remove unregisters client, or just closes it when the manager has stopped.
func (m *Manager) Remove(client *Client) {
	select {
	case m.Unregister <- client:
	case <-m.done:
		client.Close()
	}
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients)
}

// SendToUser delivers a message to every connection of userID.
func (m *Manager) SendToUser(userID, msgType string, data interface{}) {
	m.mutex.RLock()
	var targets []*Client
	for _, c := range m.clients {
		if c.UserID == userID {
			targets = append(targets, c)
		}
	}
	m.mutex.RUnlock()

	for _, c := range targets {
		if err := c.Enqueue(msgType, data); err != nil {
			logger.Debug("WebSocket: failed to send %s to client %s: %v", msgType, c.ID, err)
		}
	}
}

// NotifyRoleChanged tells every open session of userID to refresh its ID
// token so the new role claim takes effect.
func (m *Manager) NotifyRoleChanged(userID string, role entity.Role) {
	m.SendToUser(userID, MessageTypeRoleChanged, RoleChangedData{Role: role, RefreshToken: true})
}

// ReadPump reads frames until the connection fails and hands each one to
// handle. It unregisters the client on exit.
func (c *Client) ReadPump(m *Manager, handle func([]byte)) {
	defer func() {
		m.Remove(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("WebSocket: read error for client %s: %v", c.ID, err)
			}
			return
		}
		handle(message)
	}
}

// WritePump drains Send to the connection and keeps it alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("WebSocket: write error for client %s: %v", c.ID, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
