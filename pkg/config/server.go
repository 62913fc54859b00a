package config

import (
	"fmt"
	"time"
)

// Server configures the echo server.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	TLS  bool   `yaml:"tls"`

	// MaxConns limits concurrent WebSocket sessions; excess upgrades get 503.
	MaxConns int `yaml:"max_conns"`
	// SlotWait is how long an upgrade waits for a free session slot.
	SlotWait time.Duration `yaml:"slot_wait"`
	// Subprotocols the server is willing to select, in order of preference.
	Subprotocols []string `yaml:"subprotocols"`
	// CAOut, if set, receives the PEM encoded CA of the ephemeral certificate.
	CAOut string `yaml:"ca_out"`

	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	Verbose           bool          `yaml:"verbose"`
}

// Validate checks the server configuration.
func (c *Server) Validate() []error {
	var errors []error

	if err := validatePort(c.Port); err != nil {
		errors = append(errors, fmt.Errorf("port: %w", err))
	}

	if c.MaxConns < 0 {
		errors = append(errors, fmt.Errorf("max_conns must not be negative"))
	}

	if c.SlotWait < 0 {
		errors = append(errors, fmt.Errorf("slot_wait must not be negative"))
	}

	if c.CAOut != "" && !c.TLS {
		errors = append(errors, fmt.Errorf("ca_out requires a wss:// listener"))
	}

	return errors
}

// GetMaxConns returns MaxConns or the default of 100.
func (c *Server) GetMaxConns() int {
	if c.MaxConns == 0 {
		return 100
	}
	return c.MaxConns
}

// GetReadHeaderTimeout returns ReadHeaderTimeout or the default of 10s.
func (c *Server) GetReadHeaderTimeout() time.Duration {
	if c.ReadHeaderTimeout == 0 {
		return 10 * time.Second
	}
	return c.ReadHeaderTimeout
}
