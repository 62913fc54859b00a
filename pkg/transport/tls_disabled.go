//go:build notls

package transport

import (
	"context"
	"net"
)

// TLSAvailable reports whether TLS support is compiled in.
func TLSAvailable() bool { return false }

func upgradeTLS(_ context.Context, _ net.Conn, _ string, _ TLSPolicy) (*Stream, error) {
	return nil, ErrTLSUnavailable
}
