package connect

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies the stage of a connection attempt that failed.
type Kind int

const (
	KindInvalidRequest Kind = iota + 1
	KindInvalidURL
	KindUnsupportedScheme
	KindConnection
	KindTLS
	KindHandshake
)

func (k Kind) String() string {
	switch k {
	case KindInvalidRequest:
		return "invalid request"
	case KindInvalidURL:
		return "invalid url"
	case KindUnsupportedScheme:
		return "unsupported scheme"
	case KindConnection:
		return "connection error"
	case KindTLS:
		return "tls error"
	case KindHandshake:
		return "handshake error"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the single error a failed connection attempt returns.
type Error struct {
	Kind Kind
	Msg  string
	Err  error

	// Response is the server's reply when the handshake was rejected, if any.
	// Its body has already been consumed.
	Response *http.Response
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s", e.Kind, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind, so the sentinels
// below can be matched with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Msg == "" && t.Err == nil && t.Response == nil
}

// Sentinels for errors.Is.
var (
	ErrInvalidRequest    = &Error{Kind: KindInvalidRequest}
	ErrInvalidURL        = &Error{Kind: KindInvalidURL}
	ErrUnsupportedScheme = &Error{Kind: KindUnsupportedScheme}
	ErrConnection        = &Error{Kind: KindConnection}
	ErrTLS               = &Error{Kind: KindTLS}
	ErrHandshake         = &Error{Kind: KindHandshake}
)

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func newError(kind Kind, err error, format string, a ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, a...), Err: err}
}
