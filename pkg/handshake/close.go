package handshake

import (
	"errors"
	"io"
	"net"

	coderws "github.com/coder/websocket"
	gorillaws "github.com/gorilla/websocket"
)

// IsNormalClose reports whether err from ReadMessage means the session
// ended in an orderly way: a normal or going-away close frame from the peer,
// or our own Close.
func IsNormalClose(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	if gorillaws.IsCloseError(err, gorillaws.CloseNormalClosure, gorillaws.CloseGoingAway) {
		return true
	}
	switch coderws.CloseStatus(err) {
	case coderws.StatusNormalClosure, coderws.StatusGoingAway:
		return true
	}
	return false
}
