package websocket

// WebSocket message type constants
const (
	// System message types
	MessageTypePing  = "ping"
	MessageTypePong  = "pong"
	MessageTypeError = "error"
	MessageTypeReady = "ready"

	// Editing message types
	MessageTypeInput   = "input"
	MessageTypeLayer   = "layer"
	MessageTypeFrames  = "frames"
	MessageTypeOutcome = "outcome"
	MessageTypeState   = "state"

	// Connection status constants
	ConnectionStatusConnected    = "connected"
	ConnectionStatusDisconnected = "disconnected"

	// Default configuration values
	DefaultMaxConnections    = 10000
	DefaultHeartbeatInterval = 30
	DefaultConnectionTimeout = 60
	DefaultMessageBufferSize = 64
	DefaultReadBufferSize    = 1024
	DefaultWriteBufferSize   = 4096
	DefaultMaxMessageSize    = 8192

	// Environment variable configuration keys
	EnvWebSocketMaxConnections    = "WEBSOCKET_MAX_CONNECTIONS"
	EnvWebSocketHeartbeatInterval = "WEBSOCKET_HEARTBEAT_INTERVAL"
	EnvWebSocketConnectionTimeout = "WEBSOCKET_CONNECTION_TIMEOUT"
	EnvWebSocketMessageBufferSize = "WEBSOCKET_MESSAGE_BUFFER_SIZE"
	EnvWebSocketEnableCompression = "WEBSOCKET_ENABLE_COMPRESSION"
	EnvWebSocketCompressionLevel  = "WEBSOCKET_COMPRESSION_LEVEL"
	EnvWebSocketReadBufferSize    = "WEBSOCKET_READ_BUFFER_SIZE"
	EnvWebSocketWriteBufferSize   = "WEBSOCKET_WRITE_BUFFER_SIZE"
	EnvWebSocketMaxMessageSize    = "WEBSOCKET_MAX_MESSAGE_SIZE"

	// Error messages
	ErrConnectionLimitExceeded = "connection limit exceeded"
	ErrInvalidMessageType      = "invalid message type"
	ErrInvalidMessageData      = "invalid message data"
	ErrConnectionClosed        = "connection closed"
	ErrSendBufferFull          = "send buffer full"

	MsgConnectionEstablished = "connection established"
)
