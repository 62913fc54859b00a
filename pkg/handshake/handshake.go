// Package handshake performs the WebSocket opening handshake over a stream
// that has already been connected and, for wss, encrypted.
//
// The protocol itself (HTTP upgrade, framing, masking, control frames) is
// delegated to an existing WebSocket library. Two are supported:
//   - gorilla: github.com/gorilla/websocket (default)
//   - coder: github.com/coder/websocket
//
// Both are driven the same way: the library is given a dial hook that hands
// out the prepared stream exactly once, so it never opens a socket or runs
// TLS on its own.
package handshake

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"sync/atomic"
	"time"
)

// MessageType identifies the payload type of a data message.
type MessageType int

const (
	MessageText   MessageType = 1
	MessageBinary MessageType = 2
)

func (t MessageType) String() string {
	switch t {
	case MessageText:
		return "text"
	case MessageBinary:
		return "binary"
	default:
		return fmt.Sprintf("MessageType(%d)", int(t))
	}
}

// Conn is an established WebSocket connection.
type Conn interface {
	// ReadMessage blocks until a data message arrives or ctx is done.
	ReadMessage(ctx context.Context) (MessageType, []byte, error)
	// WriteMessage sends one data message.
	WriteMessage(ctx context.Context, typ MessageType, data []byte) error
	// Subprotocol is the subprotocol selected by the server, if any.
	Subprotocol() string
	// Close sends a normal closure and releases the underlying stream.
	Close() error
}

// Handshaker runs the opening handshake for req over conn. On success the
// returned Conn owns conn. On failure conn is closed.
type Handshaker interface {
	Handshake(ctx context.Context, conn net.Conn, req *Request) (Conn, *http.Response, error)
}

const (
	NameGorilla = "gorilla"
	NameCoder   = "coder"
)

var registry = map[string]func() Handshaker{
	NameGorilla: func() Handshaker { return &Gorilla{} },
	NameCoder:   func() Handshaker { return &Coder{} },
}

// Names lists the supported handshaker names.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// New returns the handshaker registered under name. Empty selects gorilla.
func New(name string) (Handshaker, error) {
	if name == "" {
		name = NameGorilla
	}
	mk, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown handshaker %q (supported: %v)", name, Names())
	}
	return mk(), nil
}

var errStreamUsed = errors.New("handshake: prepared stream already handed out")

// handOff returns a dial function yielding conn on the first call only.
// The network and address arguments are ignored: the socket is already
// connected to the target.
func handOff(conn net.Conn) func(context.Context, string, string) (net.Conn, error) {
	var used atomic.Bool
	return func(context.Context, string, string) (net.Conn, error) {
		if used.Swap(true) {
			return nil, errStreamUsed
		}
		return conn, nil
	}
}

var aLongTimeAgo = time.Unix(1, 0)

// bindContext makes blocking I/O governed by setDeadline return once ctx is
// done. The returned stop function must be called when the I/O finished;
// it reports ctx.Err() if the context interrupted it.
func bindContext(ctx context.Context, setDeadline func(time.Time) error) (stop func() error) {
	if ctx.Done() == nil {
		return func() error { return nil }
	}

	done := make(chan struct{})
	res := make(chan error, 1)
	go func() {
		select {
		case <-ctx.Done():
			_ = setDeadline(aLongTimeAgo)
			res <- ctx.Err()
		case <-done:
			res <- nil
		}
	}()

	return func() error {
		close(done)
		return <-res
	}
}

// settle calls stop and picks the error to report for I/O bound by
// bindContext. I/O that completed is never reported as cancelled; the
// deadline set by a context that ended afterwards is cleared instead.
func settle(err error, stop func() error, setDeadline func(time.Time) error) error {
	cerr := stop()
	if err == nil {
		if cerr != nil {
			_ = setDeadline(time.Time{})
		}
		return nil
	}
	if cerr != nil {
		return cerr
	}
	return err
}
