//go:build !notls

package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
)

// TLSAvailable reports whether TLS support is compiled in.
func TLSAvailable() bool { return true }

func upgradeTLS(ctx context.Context, conn net.Conn, host string, policy TLSPolicy) (*Stream, error) {
	tlsConn := tls.Client(conn, buildTLSConfig(host, policy))

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return nil, fmt.Errorf("tls.Conn.HandshakeContext(%s): %w", host, err)
	}

	return newEncryptedStream(tlsConn), nil
}

// buildTLSConfig derives the client configuration for one handshake.
func buildTLSConfig(host string, policy TLSPolicy) *tls.Config {
	var cfg *tls.Config
	if policy.Config != nil {
		cfg = policy.Config.Clone()
	} else {
		cfg = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	if policy.Insecure {
		// empty ServerName means no SNI extension is sent
		cfg.InsecureSkipVerify = true
		cfg.ServerName = ""
		return cfg
	}

	if cfg.ServerName == "" {
		cfg.ServerName = host
	}
	return cfg
}
