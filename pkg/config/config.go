// Package config holds the settings for outbound connections and the echo
// server, their validation, and YAML file loading.
package config

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"strings"
	"time"

	"dominicbreuker/wsconnect/pkg/handshake"
	"dominicbreuker/wsconnect/pkg/log"
	"dominicbreuker/wsconnect/pkg/transport"
)

// Client configures an outbound WebSocket connection.
type Client struct {
	// URL is the target, ws:// or wss://. Only used by the CLI; library
	// callers pass the target to connect.Connect directly.
	URL string `yaml:"url"`

	Header       map[string]string `yaml:"header"`
	Subprotocols []string          `yaml:"subprotocols"`

	// Handshaker selects the WebSocket library, see handshake.Names.
	Handshaker string `yaml:"handshaker"`
	// Proxy is an optional socks5:// URL the raw socket is opened through.
	Proxy string `yaml:"proxy"`

	// Insecure accepts any server certificate and sends no SNI.
	Insecure bool `yaml:"insecure"`
	// CAFile is a PEM bundle used instead of the system roots.
	CAFile string `yaml:"ca_file"`
	// ServerName overrides the name used for SNI and verification.
	ServerName string `yaml:"server_name"`
	// DisableTLS makes wss:// targets fail as if TLS were compiled out.
	DisableTLS bool `yaml:"disable_tls"`

	// Timeout bounds the whole connection attempt. Zero means no limit.
	// It is applied by callers as a context deadline.
	Timeout time.Duration `yaml:"timeout"`

	// LogFile, if set, records all bytes on the stream (after TLS).
	LogFile string `yaml:"log_file"`
	Verbose bool   `yaml:"verbose"`

	Logger *log.Logger   `yaml:"-"`
	Deps   *Dependencies `yaml:"-"`
}

// Validate checks the parts of the configuration that can be checked
// without network access.
func (c *Client) Validate() []error {
	var errors []error

	if c.URL != "" {
		if err := validateURL(c.URL); err != nil {
			errors = append(errors, err)
		}
	}

	for name := range c.Header {
		if name == "" || strings.ContainsAny(name, " \t\r\n:") {
			errors = append(errors, fmt.Errorf("header name %q is not a valid token", name))
		}
	}

	if _, err := handshake.New(c.Handshaker); err != nil {
		errors = append(errors, err)
	}

	if c.Proxy != "" {
		u, err := url.Parse(c.Proxy)
		if err != nil {
			errors = append(errors, fmt.Errorf("proxy: %w", err))
		} else if u.Scheme != "socks5" && u.Scheme != "socks5h" {
			errors = append(errors, fmt.Errorf("proxy scheme %q not supported, use socks5:// or socks5h://", u.Scheme))
		}
	}

	if c.Insecure && c.CAFile != "" {
		errors = append(errors, fmt.Errorf("'insecure' and 'ca_file' are mutually exclusive"))
	}

	if c.Timeout < 0 {
		errors = append(errors, fmt.Errorf("timeout must not be negative"))
	}

	return errors
}

// HTTPHeader converts Header into canonical form.
func (c *Client) HTTPHeader() http.Header {
	h := http.Header{}
	for k, v := range c.Header {
		h.Set(textproto.CanonicalMIMEHeaderKey(k), v)
	}
	return h
}

// TLSPolicy derives the TLS settings for transport.Upgrade.
func (c *Client) TLSPolicy() (transport.TLSPolicy, error) {
	policy := transport.TLSPolicy{
		Insecure: c.Insecure,
		Disabled: c.DisableTLS,
	}

	if c.CAFile == "" && c.ServerName == "" {
		return policy, nil
	}

	cfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
		ServerName: c.ServerName,
	}

	if c.CAFile != "" {
		pem, err := os.ReadFile(c.CAFile)
		if err != nil {
			return policy, fmt.Errorf("os.ReadFile(%s): %w", c.CAFile, err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return policy, fmt.Errorf("%s: no PEM certificates found", c.CAFile)
		}
		cfg.RootCAs = pool
	}

	policy.Config = cfg
	return policy, nil
}

// GetLogger returns Logger, or a new stderr logger honoring Verbose if unset.
// It never modifies c, so one Client can serve concurrent connections.
func (c *Client) GetLogger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.NewLogger(c.Verbose)
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("url: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "ws", "wss":
	default:
		return fmt.Errorf("url %q: scheme must be ws or wss", raw)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("url %q: no host", raw)
	}
	return nil
}
