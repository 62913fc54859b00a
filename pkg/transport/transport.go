// Package transport provides the byte stream a WebSocket handshake runs on.
//
// A Stream wraps either a plain socket or a TLS session established on top
// of one. Both variants expose the same net.Conn behavior, so the handshake
// code never needs to know which one it was given.
//
// Upgrade turns a connected socket into a Stream:
//   - ModePlain: the socket is wrapped as is
//   - ModeTLS: a TLS client handshake runs first, governed by a TLSPolicy
//
// TLS support can be compiled out with the notls build tag. Upgrade then
// rejects ModeTLS with ErrTLSUnavailable before touching the socket.
//
// Example usage:
//
//	d, err := tcp.NewDialer("")
//	conn, err := d.Dial(ctx, "example.com:443")
//	stream, err := transport.Upgrade(ctx, conn, "example.com", transport.ModeTLS, transport.TLSPolicy{})
package transport

// Mode is the encryption requirement derived from a URL scheme.
type Mode int

const (
	// ModePlain sends WebSocket traffic over the raw socket (ws://).
	ModePlain Mode = iota
	// ModeTLS wraps the socket in a TLS session first (wss://).
	ModeTLS
)

func (m Mode) String() string {
	switch m {
	case ModePlain:
		return "plain"
	case ModeTLS:
		return "tls"
	default:
		return "unknown"
	}
}
