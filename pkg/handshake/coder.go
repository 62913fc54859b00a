package handshake

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/coder/websocket"
)

// Coder runs the handshake with github.com/coder/websocket.
type Coder struct {
	// ReadLimit caps the size of a single message. Zero keeps the
	// library default, -1 disables the limit.
	ReadLimit int64
	// EnableCompression negotiates permessage-deflate with context takeover.
	EnableCompression bool
}

// Handshake implements Handshaker.
func (h *Coder) Handshake(ctx context.Context, conn net.Conn, req *Request) (Conn, *http.Response, error) {
	dial := handOff(conn)
	client := &http.Client{
		Transport: &http.Transport{
			DialContext: dial,
			// the stream is already encrypted for wss, so net/http must not run TLS again
			DialTLSContext: dial,
			// non-upgrade responses must not park the stream in an idle pool
			DisableKeepAlives: true,
		},
	}

	opts := &websocket.DialOptions{
		HTTPClient:      client,
		HTTPHeader:      req.Header.Clone(),
		Subprotocols:    req.Subprotocols,
		CompressionMode: websocket.CompressionDisabled,
	}
	if h.EnableCompression {
		opts.CompressionMode = websocket.CompressionContextTakeover
	}

	c, resp, err := websocket.Dial(ctx, req.URL.String(), opts)
	if err != nil {
		_ = conn.Close()
		return nil, resp, fmt.Errorf("websocket.Dial(%s): %w", req.URL.Redacted(), err)
	}

	if h.ReadLimit != 0 {
		c.SetReadLimit(h.ReadLimit)
	}
	return &coderConn{conn: c}, resp, nil
}

type coderConn struct {
	conn *websocket.Conn
}

func (c *coderConn) ReadMessage(ctx context.Context) (MessageType, []byte, error) {
	typ, data, err := c.conn.Read(ctx)
	if err != nil {
		return 0, nil, err
	}

	switch typ {
	case websocket.MessageText:
		return MessageText, data, nil
	case websocket.MessageBinary:
		return MessageBinary, data, nil
	default:
		return 0, nil, fmt.Errorf("unexpected message type %d", typ)
	}
}

func (c *coderConn) WriteMessage(ctx context.Context, typ MessageType, data []byte) error {
	switch typ {
	case MessageText:
		return c.conn.Write(ctx, websocket.MessageText, data)
	case MessageBinary:
		return c.conn.Write(ctx, websocket.MessageBinary, data)
	default:
		return fmt.Errorf("unsupported message type %s", typ)
	}
}

func (c *coderConn) Subprotocol() string {
	return c.conn.Subprotocol()
}

func (c *coderConn) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}
