package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, ValidateConfig(DefaultConfig()))
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"max connections", func(c *Config) { c.MaxConnections = 0 }},
		{"heartbeat", func(c *Config) { c.HeartbeatInterval = 0 }},
		{"timeout", func(c *Config) { c.ConnectionTimeout = 0 }},
		{"buffer", func(c *Config) { c.MessageBufferSize = 0 }},
		{"compression level", func(c *Config) { c.CompressionLevel = 10 }},
		{"read buffer", func(c *Config) { c.ReadBufferSize = 0 }},
		{"max message", func(c *Config) { c.MaxMessageSize = 0 }},
		{"heartbeat >= timeout", func(c *Config) { c.HeartbeatInterval = c.ConnectionTimeout }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			assert.Error(t, ValidateConfig(c))
		})
	}
	assert.Error(t, ValidateConfig(nil))
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv(EnvWebSocketMaxConnections, "42")
	t.Setenv(EnvWebSocketHeartbeatInterval, "5")
	t.Setenv(EnvWebSocketMaxMessageSize, "16384")
	t.Setenv(EnvWebSocketEnableCompression, "1")

	c := LoadConfigFromEnv()
	assert.Equal(t, int64(42), c.MaxConnections)
	assert.Equal(t, 5*time.Second, c.HeartbeatInterval)
	assert.Equal(t, 16384, c.MaxMessageSize)
	assert.True(t, c.EnableCompression)
	assert.Equal(t, DefaultMessageBufferSize, c.MessageBufferSize)
}

func TestGetConfigSummary(t *testing.T) {
	s := GetConfigSummary(DefaultConfig())
	assert.Equal(t, int64(DefaultMaxConnections), s["max_connections"])
	assert.Equal(t, "30s", s["heartbeat_interval"])
}
