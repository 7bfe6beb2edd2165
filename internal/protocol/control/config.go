package control

import (
	"time"

	"github.com/danmuck/pcapctl/internal/protocol/frame"
)

const (
	DefaultSocketPath    = "/usr/local/var/run/suricata/suricata-command.socket"
	DefaultClientVersion = "0.1"
)

// Config defines the control session defaults.
type Config struct {
	SocketPath       string
	ClientVersion    string
	ConnectTimeout   time.Duration
	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	Limits           frame.Limits

	// Strict treats a reply whose "return" is not OK as a failure.
	Strict bool
}

func DefaultConfig() Config {
	return Config{
		SocketPath:       DefaultSocketPath,
		ClientVersion:    DefaultClientVersion,
		ConnectTimeout:   5 * time.Second,
		HandshakeTimeout: 5 * time.Second,
		ReadTimeout:      15 * time.Second,
		WriteTimeout:     15 * time.Second,
		Limits:           frame.DefaultLimits(),
	}
}

func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.SocketPath == "" {
		c.SocketPath = d.SocketPath
	}
	if c.ClientVersion == "" {
		c.ClientVersion = d.ClientVersion
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = d.ConnectTimeout
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = d.HandshakeTimeout
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	c.Limits = c.Limits.WithDefaults()
	return c
}
