package websocket

import (
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Message defines WebSocket message structure. Inbound Data stays raw until the
// MessageHandler decodes it for the given Type.
type Message struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp,omitempty"`
}

// Envelope is an outbound JSON message
type Envelope struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// MessageHandler handles decoded inbound messages other than ping
type MessageHandler interface {
	HandleMessage(c *Connection, msg *Message) error
}

// MessageHandlerFunc adapts a function to MessageHandler
type MessageHandlerFunc func(c *Connection, msg *Message) error

func (f MessageHandlerFunc) HandleMessage(c *Connection, msg *Message) error {
	return f(c, msg)
}

var (
	ErrClosed     = errors.New(ErrConnectionClosed)
	ErrBufferFull = errors.New(ErrSendBufferFull)
	ErrLimit      = errors.New(ErrConnectionLimitExceeded)
)

type outbound struct {
	kind int
	data []byte
}

// Connection represents a WebSocket connection bound to one editor session
type Connection struct {
	ID      string
	Group   string
	Conn    *websocket.Conn
	Hub     *Hub
	handler MessageHandler
	send    chan outbound

	mu       sync.RWMutex
	LastPing time.Time
	Status   string
	Metadata map[string]interface{}

	closeOnce sync.Once
	done      chan struct{}
}

// Hub tracks live connections grouped by editor session id
type Hub struct {
	config *Config
	mu     sync.RWMutex
	// Registered connections
	connections map[string]*Connection
	// Group to connection ID mapping
	groups map[string]map[string]bool
	// Connection count
	connectionCount int64
	closed          atomic.Bool
}

// NewHub creates a new Hub instance
func NewHub(config *Config) *Hub {
	if config == nil {
		config = DefaultConfig()
	}
	return &Hub{
		config:      config,
		connections: make(map[string]*Connection),
		groups:      make(map[string]map[string]bool),
	}
}

func (h *Hub) Config() *Config {
	return h.config
}

func (h *Hub) register(c *Connection) error {
	if h.closed.Load() {
		return ErrClosed
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if int64(len(h.connections)) >= h.config.MaxConnections {
		return ErrLimit
	}
	h.connections[c.ID] = c
	if h.groups[c.Group] == nil {
		h.groups[c.Group] = make(map[string]bool)
	}
	h.groups[c.Group][c.ID] = true
	atomic.AddInt64(&h.connectionCount, 1)
	logrus.Debugf("websocket connection registered: %s, group: %s", c.ID, c.Group)
	return nil
}

func (h *Hub) unregister(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[c.ID]; !ok {
		return
	}
	delete(h.connections, c.ID)
	if g := h.groups[c.Group]; g != nil {
		delete(g, c.ID)
		if len(g) == 0 {
			delete(h.groups, c.Group)
		}
	}
	atomic.AddInt64(&h.connectionCount, -1)
	logrus.Debugf("websocket connection unregistered: %s, group: %s", c.ID, c.Group)
}

// GetConnectionCount gets total connection count
func (h *Hub) GetConnectionCount() int64 {
	return atomic.LoadInt64(&h.connectionCount)
}

// GetGroupConnections gets the connection count of one group
func (h *Hub) GetGroupConnections(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}

func (h *Hub) members(group string, except string) []*Connection {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Connection, 0, len(h.groups[group]))
	for id := range h.groups[group] {
		if id == except {
			continue
		}
		if c, ok := h.connections[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// BroadcastGroup sends a JSON envelope to every connection of group except the
// connection with id except. Slow connections drop the message.
func (h *Hub) BroadcastGroup(group, except, msgType string, data interface{}) int {
	payload, err := encode(msgType, data)
	if err != nil {
		logrus.Errorf("websocket broadcast encode failed: %v", err)
		return 0
	}
	sent := 0
	for _, c := range h.members(group, except) {
		if c.enqueue(outbound{kind: websocket.TextMessage, data: payload}) == nil {
			sent++
		}
	}
	return sent
}

// BroadcastGroupBinary sends a binary frame to connections of group that match keep
func (h *Hub) BroadcastGroupBinary(group, except string, data []byte, keep func(*Connection) bool) int {
	sent := 0
	for _, c := range h.members(group, except) {
		if keep != nil && !keep(c) {
			continue
		}
		if c.enqueue(outbound{kind: websocket.BinaryMessage, data: data}) == nil {
			sent++
		}
	}
	return sent
}

// CloseGroup closes every connection of group, e.g. when its editor session is gone
func (h *Hub) CloseGroup(group string) {
	for _, c := range h.members(group, "") {
		c.Close()
	}
}

// Close closes all connections and rejects new ones
func (h *Hub) Close() {
	h.closed.Store(true)
	h.mu.RLock()
	conns := make([]*Connection, 0, len(h.connections))
	for _, c := range h.connections {
		conns = append(conns, c)
	}
	h.mu.RUnlock()
	for _, c := range conns {
		c.Close()
	}
}

func encode(msgType string, data interface{}) ([]byte, error) {
	return json.Marshal(Envelope{Type: msgType, Data: data, Timestamp: time.Now().Unix()})
}

// SendJSON queues a JSON envelope
func (c *Connection) SendJSON(msgType string, data interface{}) error {
	payload, err := encode(msgType, data)
	if err != nil {
		return err
	}
	return c.enqueue(outbound{kind: websocket.TextMessage, data: payload})
}

// SendBinary queues a binary frame
func (c *Connection) SendBinary(data []byte) error {
	return c.enqueue(outbound{kind: websocket.BinaryMessage, data: data})
}

// SendError queues an error envelope
func (c *Connection) SendError(msg string) error {
	return c.SendJSON(MessageTypeError, msg)
}

func (c *Connection) enqueue(m outbound) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.send <- m:
		return nil
	case <-c.done:
		return ErrClosed
	default:
		logrus.Warnf("connection %s send buffer full", c.ID)
		return ErrBufferFull
	}
}

// Set stores per-connection metadata
func (c *Connection) Set(key string, v interface{}) {
	c.mu.Lock()
	c.Metadata[key] = v
	c.mu.Unlock()
}

// Get reads per-connection metadata
func (c *Connection) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.Metadata[key]
	return v, ok
}

// Flag reads a boolean metadata value
func (c *Connection) Flag(key string) bool {
	v, ok := c.Get(key)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Close stops both pumps; safe to call more than once
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.Status = ConnectionStatusDisconnected
		c.mu.Unlock()
		close(c.done)
		c.Hub.unregister(c)
	})
}

// Done is closed once the connection is closed
func (c *Connection) Done() <-chan struct{} {
	return c.done
}
