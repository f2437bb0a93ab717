package websocket

import (
	"fmt"
	"time"

	"github.com/code-100-precent/LingMeme/pkg/utils"
)

// Config is WebSocket configuration
type Config struct {
	// Maximum connections across all editor sessions
	MaxConnections int64
	// Heartbeat interval
	HeartbeatInterval time.Duration
	// Connection timeout
	ConnectionTimeout time.Duration
	// Outbound queue length per connection
	MessageBufferSize int
	ReadBufferSize    int
	WriteBufferSize   int
	// Maximum inbound message size
	MaxMessageSize int
	// Whether to enable compression
	EnableCompression bool
	// Compression level (-2..9)
	CompressionLevel int
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		MaxConnections:    DefaultMaxConnections,
		HeartbeatInterval: DefaultHeartbeatInterval * time.Second,
		ConnectionTimeout: DefaultConnectionTimeout * time.Second,
		MessageBufferSize: DefaultMessageBufferSize,
		ReadBufferSize:    DefaultReadBufferSize,
		WriteBufferSize:   DefaultWriteBufferSize,
		MaxMessageSize:    DefaultMaxMessageSize,
		EnableCompression: false,
		CompressionLevel:  -2,
	}
}

// LoadConfigFromEnv loads WebSocket configuration from environment variables
func LoadConfigFromEnv() *Config {
	config := DefaultConfig()

	if maxConnections := utils.GetIntEnv(EnvWebSocketMaxConnections); maxConnections > 0 {
		config.MaxConnections = maxConnections
	}

	if heartbeatInterval := utils.GetIntEnv(EnvWebSocketHeartbeatInterval); heartbeatInterval > 0 {
		config.HeartbeatInterval = time.Duration(heartbeatInterval) * time.Second
	}

	if connectionTimeout := utils.GetIntEnv(EnvWebSocketConnectionTimeout); connectionTimeout > 0 {
		config.ConnectionTimeout = time.Duration(connectionTimeout) * time.Second
	}

	if messageBufferSize := utils.GetIntEnv(EnvWebSocketMessageBufferSize); messageBufferSize > 0 {
		config.MessageBufferSize = int(messageBufferSize)
	}

	if enableCompression := utils.GetEnv(EnvWebSocketEnableCompression); enableCompression != "" {
		config.EnableCompression = enableCompression == "true" || enableCompression == "1"
	}

	if compressionLevel := utils.GetIntEnv(EnvWebSocketCompressionLevel); compressionLevel != 0 {
		config.CompressionLevel = int(compressionLevel)
	}

	if readBuf := utils.GetIntEnv(EnvWebSocketReadBufferSize); readBuf > 0 {
		config.ReadBufferSize = int(readBuf)
	}

	if writeBuf := utils.GetIntEnv(EnvWebSocketWriteBufferSize); writeBuf > 0 {
		config.WriteBufferSize = int(writeBuf)
	}

	if maxMsg := utils.GetIntEnv(EnvWebSocketMaxMessageSize); maxMsg > 0 {
		config.MaxMessageSize = int(maxMsg)
	}

	return config
}

// ValidateConfig validates WebSocket configuration
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if config.MaxConnections <= 0 {
		return fmt.Errorf("max connections must be greater than 0")
	}

	if config.HeartbeatInterval <= 0 {
		return fmt.Errorf("heartbeat interval must be greater than 0")
	}

	if config.ConnectionTimeout <= 0 {
		return fmt.Errorf("connection timeout must be greater than 0")
	}

	if config.MessageBufferSize <= 0 {
		return fmt.Errorf("message buffer size must be greater than 0")
	}

	if config.CompressionLevel < -2 || config.CompressionLevel > 9 {
		return fmt.Errorf("compression level must be between -2 and 9")
	}

	if config.ReadBufferSize <= 0 || config.WriteBufferSize <= 0 {
		return fmt.Errorf("read/write buffer size must be greater than 0")
	}

	if config.MaxMessageSize <= 0 {
		return fmt.Errorf("max message size must be greater than 0")
	}

	// Heartbeat interval should be less than connection timeout
	if config.HeartbeatInterval >= config.ConnectionTimeout {
		return fmt.Errorf("heartbeat interval must be less than connection timeout")
	}

	return nil
}

// GetConfigSummary gets configuration summary
func GetConfigSummary(config *Config) map[string]interface{} {
	return map[string]interface{}{
		"max_connections":     config.MaxConnections,
		"heartbeat_interval":  config.HeartbeatInterval.String(),
		"connection_timeout":  config.ConnectionTimeout.String(),
		"message_buffer_size": config.MessageBufferSize,
		"read_buffer_size":    config.ReadBufferSize,
		"write_buffer_size":   config.WriteBufferSize,
		"max_message_size":    config.MaxMessageSize,
		"enable_compression":  config.EnableCompression,
		"compression_level":   config.CompressionLevel,
	}
}
