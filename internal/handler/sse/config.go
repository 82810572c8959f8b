package sse

import "time"

// Config holds configuration for SSE connections
type Config struct {
	// KeepAliveInterval is how often a comment line is sent on an idle stream
	// so proxies do not time the connection out
	KeepAliveInterval time.Duration
}

// DefaultConfig returns the default SSE configuration
func DefaultConfig() Config {
	return Config{
		KeepAliveInterval: 15 * time.Second,
	}
}
