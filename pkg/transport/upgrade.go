package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
)

// ErrTLSUnavailable is returned when a TLS stream is requested but TLS support
// is compiled out or disabled by policy.
var ErrTLSUnavailable = errors.New("TLS support not compiled in")

// TLSPolicy controls how Upgrade builds the TLS client context.
//
// The zero value verifies the server certificate against the system roots
// and sends host as SNI.
type TLSPolicy struct {
	// Config is the base client configuration. It is cloned, never mutated.
	Config *tls.Config

	// Insecure accepts any server certificate and sends no SNI. The host
	// passed to Upgrade is then ignored.
	Insecure bool

	// Disabled rejects ModeTLS at runtime, as if TLS were compiled out.
	Disabled bool
}

// Available reports whether the policy allows TLS streams in this build.
func (p TLSPolicy) Available() bool {
	return TLSAvailable() && !p.Disabled
}

// Upgrade wraps conn into a Stream according to mode. It takes ownership of
// conn: on failure conn is closed and no Stream is returned.
//
// For ModeTLS the client handshake runs under ctx; cancelling ctx aborts it.
func Upgrade(ctx context.Context, conn net.Conn, host string, mode Mode, policy TLSPolicy) (*Stream, error) {
	switch mode {
	case ModePlain:
		return NewPlainStream(conn), nil

	case ModeTLS:
		if !policy.Available() {
			_ = conn.Close()
			return nil, ErrTLSUnavailable
		}

		stream, err := upgradeTLS(ctx, conn, host, policy)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		return stream, nil

	default:
		_ = conn.Close()
		return nil, fmt.Errorf("unknown mode %d", mode)
	}
}
