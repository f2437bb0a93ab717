package websocket

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const writeWait = 10 * time.Second

// newUpgrader creates a WebSocket upgrader based on configuration
func newUpgrader(cfg *Config) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			// 跨域由 CORS 中间件控制
			return true
		},
		EnableCompression: cfg.EnableCompression,
	}
}

// Serve upgrades the request and attaches the connection to group. The pumps run
// until either side closes. onOpen runs after registration and before any inbound
// message is read.
func Serve(hub *Hub, w http.ResponseWriter, r *http.Request, group string, handler MessageHandler, onOpen func(*Connection)) (*Connection, error) {
	if hub.GetConnectionCount() >= hub.config.MaxConnections {
		http.Error(w, ErrConnectionLimitExceeded, http.StatusServiceUnavailable)
		return nil, ErrLimit
	}

	upgrader := newUpgrader(hub.config)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.Errorf("WebSocket upgrade failed: %v", err)
		return nil, err
	}

	if hub.config.EnableCompression {
		conn.EnableWriteCompression(true)
		if hub.config.CompressionLevel != 0 {
			_ = conn.SetCompressionLevel(hub.config.CompressionLevel)
		}
	}

	c := &Connection{
		ID:       generateConnectionID(),
		Group:    group,
		Conn:     conn,
		Hub:      hub,
		handler:  handler,
		send:     make(chan outbound, hub.config.MessageBufferSize),
		LastPing: time.Now(),
		Status:   ConnectionStatusConnected,
		Metadata: make(map[string]interface{}),
		done:     make(chan struct{}),
	}
	if err := hub.register(c); err != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()),
			time.Now().Add(time.Second))
		conn.Close()
		return nil, err
	}

	_ = c.SendJSON(MessageTypeReady, map[string]string{"id": c.ID, "group": group, "message": MsgConnectionEstablished})
	if onOpen != nil {
		onOpen(c)
	}

	go c.writePump()
	go c.readPump()
	return c, nil
}

// generateConnectionID generates a unique connection ID
func generateConnectionID() string {
	return "conn_" + uuid.NewString()
}

// readPump reads messages from the connection
func (c *Connection) readPump() {
	defer c.Close()

	c.Conn.SetReadLimit(int64(c.Hub.config.MaxMessageSize))
	c.Conn.SetReadDeadline(time.Now().Add(c.Hub.config.ConnectionTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.mu.Lock()
		c.LastPing = time.Now()
		c.mu.Unlock()
		c.Conn.SetReadDeadline(time.Now().Add(c.Hub.config.ConnectionTimeout))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logrus.Debugf("WebSocket connection closed normally: %s, group: %s", c.ID, c.Group)
			} else if strings.Contains(err.Error(), "close 1005") {
				// 浏览器直接关闭标签页
				logrus.Debugf("WebSocket connection closed by client: %s, group: %s", c.ID, c.Group)
			} else if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.Errorf("WebSocket read error: %v, connection ID: %s, group: %s", err, c.ID, c.Group)
			} else {
				logrus.Warnf("WebSocket connection error: %v, connection ID: %s, group: %s", err, c.ID, c.Group)
			}
			return
		}

		c.Conn.SetReadDeadline(time.Now().Add(c.Hub.config.ConnectionTimeout))
		c.handleMessage(message)
	}
}

// writePump sends queued messages and heartbeats. It is the only writer of c.Conn
// besides the close handshake.
func (c *Connection) writePump() {
	interval := c.Hub.config.HeartbeatInterval
	if interval <= 0 {
		interval = DefaultHeartbeatInterval * time.Second
	}
	ticker := time.NewTicker(time.Duration(float64(interval) * 0.9))
	defer func() {
		ticker.Stop()
		c.Conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.Conn.Close()
		c.Close()
	}()

	for {
		select {
		case m := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(m.kind, m.data); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					logrus.Warnf("WebSocket write error: %v, connection ID: %s", err, c.ID)
				}
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logrus.Debugf("WebSocket ping failed: %v, connection ID: %s", err, c.ID)
				return
			}
		case <-c.done:
			// flush what is already queued
			for {
				select {
				case m := <-c.send:
					c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
					if c.Conn.WriteMessage(m.kind, m.data) != nil {
						return
					}
				default:
					return
				}
			}
		}
	}
}

// handleMessage handles received messages
func (c *Connection) handleMessage(message []byte) {
	var msg Message
	if err := json.Unmarshal(message, &msg); err != nil || msg.Type == "" {
		logrus.Debugf("message parse failed: %v", err)
		_ = c.SendError(ErrInvalidMessageData)
		return
	}

	if msg.Type == MessageTypePing {
		c.mu.Lock()
		c.LastPing = time.Now()
		c.mu.Unlock()
		_ = c.SendJSON(MessageTypePong, nil)
		return
	}

	if c.handler == nil {
		_ = c.SendError(ErrInvalidMessageType)
		return
	}
	if err := c.handler.HandleMessage(c, &msg); err != nil {
		logrus.Debugf("websocket message %s rejected: %v", msg.Type, err)
		_ = c.SendError(err.Error())
	}
}

func (c *Connection) String() string {
	return fmt.Sprintf("%s@%s", c.ID, c.Group)
}
