package handshake

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Gorilla runs the handshake with github.com/gorilla/websocket.
type Gorilla struct {
	ReadBufferSize    int
	WriteBufferSize   int
	EnableCompression bool
}

// Handshake implements Handshaker.
func (g *Gorilla) Handshake(ctx context.Context, conn net.Conn, req *Request) (Conn, *http.Response, error) {
	dial := handOff(conn)
	d := &websocket.Dialer{
		NetDialContext: dial,
		// the stream is already encrypted for wss, so gorilla must not run TLS again
		NetDialTLSContext: dial,
		ReadBufferSize:    g.ReadBufferSize,
		WriteBufferSize:   g.WriteBufferSize,
		EnableCompression: g.EnableCompression,
		Subprotocols:      req.Subprotocols,
	}

	stop := bindContext(ctx, conn.SetDeadline)
	c, resp, err := d.DialContext(ctx, req.URL.String(), req.Header)
	if cerr := stop(); cerr != nil && err == nil {
		_ = c.Close()
		err = cerr
	}
	if err != nil {
		_ = conn.Close()
		return nil, resp, fmt.Errorf("websocket.Dialer.DialContext(%s): %w", req.URL.Redacted(), err)
	}

	_ = conn.SetDeadline(time.Time{})
	return &gorillaConn{conn: c}, resp, nil
}

type gorillaConn struct {
	conn *websocket.Conn
}

func (c *gorillaConn) ReadMessage(ctx context.Context) (MessageType, []byte, error) {
	if dl, ok := ctx.Deadline(); ok {
		_ = c.conn.SetReadDeadline(dl)
		defer func() { _ = c.conn.SetReadDeadline(time.Time{}) }()
	}

	stop := bindContext(ctx, c.conn.SetReadDeadline)
	typ, data, err := c.conn.ReadMessage()
	if err := settle(err, stop, c.conn.SetReadDeadline); err != nil {
		return 0, nil, err
	}

	switch typ {
	case websocket.TextMessage:
		return MessageText, data, nil
	case websocket.BinaryMessage:
		return MessageBinary, data, nil
	default:
		return 0, nil, fmt.Errorf("unexpected message type %d", typ)
	}
}

func (c *gorillaConn) WriteMessage(ctx context.Context, typ MessageType, data []byte) error {
	var wsType int
	switch typ {
	case MessageText:
		wsType = websocket.TextMessage
	case MessageBinary:
		wsType = websocket.BinaryMessage
	default:
		return fmt.Errorf("unsupported message type %s", typ)
	}

	if dl, ok := ctx.Deadline(); ok {
		_ = c.conn.SetWriteDeadline(dl)
		defer func() { _ = c.conn.SetWriteDeadline(time.Time{}) }()
	}

	stop := bindContext(ctx, c.conn.SetWriteDeadline)
	err := c.conn.WriteMessage(wsType, data)
	return settle(err, stop, c.conn.SetWriteDeadline)
}

func (c *gorillaConn) Subprotocol() string {
	return c.conn.Subprotocol()
}

func (c *gorillaConn) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return c.conn.Close()
}
