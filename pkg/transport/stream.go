package transport

import (
	"crypto/tls"
	"errors"
	"net"
	"time"
)

type variant int

const (
	variantPlain variant = iota + 1
	variantEncrypted
)

// errNoStream is returned by a zero Stream.
var errNoStream = errors.New("transport: stream not initialized")

// Stream is a duplex byte stream over either a plain socket or a TLS session.
// It owns the wrapped connection and closes it on Close. The variant is fixed
// at construction and cannot be inspected.
type Stream struct {
	kind  variant
	plain net.Conn
	enc   *tls.Conn
}

// NewPlainStream wraps conn without encryption.
func NewPlainStream(conn net.Conn) *Stream {
	return &Stream{kind: variantPlain, plain: conn}
}

func newEncryptedStream(conn *tls.Conn) *Stream {
	return &Stream{kind: variantEncrypted, enc: conn}
}

func (s *Stream) conn() (net.Conn, error) {
	switch s.kind {
	case variantPlain:
		return s.plain, nil
	case variantEncrypted:
		return s.enc, nil
	default:
		return nil, errNoStream
	}
}

// Read reads up to len(b) bytes from the active variant.
func (s *Stream) Read(b []byte) (int, error) {
	c, err := s.conn()
	if err != nil {
		return 0, err
	}
	return c.Read(b)
}

// Write writes b to the active variant.
func (s *Stream) Write(b []byte) (int, error) {
	c, err := s.conn()
	if err != nil {
		return 0, err
	}
	return c.Write(b)
}

// Flush is a no-op for both variants: neither buffers writes.
func (s *Stream) Flush() error {
	_, err := s.conn()
	return err
}

// CloseWrite shuts down the sending side. For TLS this sends close_notify
// first. Connections without half-close support return an error.
func (s *Stream) CloseWrite() error {
	switch s.kind {
	case variantPlain:
		if cw, ok := s.plain.(interface{ CloseWrite() error }); ok {
			return cw.CloseWrite()
		}
		return errors.New("transport: connection does not support CloseWrite")
	case variantEncrypted:
		return s.enc.CloseWrite()
	default:
		return errNoStream
	}
}

// Close closes the wrapped connection.
func (s *Stream) Close() error {
	c, err := s.conn()
	if err != nil {
		return err
	}
	return c.Close()
}

func (s *Stream) LocalAddr() net.Addr {
	c, err := s.conn()
	if err != nil {
		return nil
	}
	return c.LocalAddr()
}

func (s *Stream) RemoteAddr() net.Addr {
	c, err := s.conn()
	if err != nil {
		return nil
	}
	return c.RemoteAddr()
}

func (s *Stream) SetDeadline(t time.Time) error {
	c, err := s.conn()
	if err != nil {
		return err
	}
	return c.SetDeadline(t)
}

func (s *Stream) SetReadDeadline(t time.Time) error {
	c, err := s.conn()
	if err != nil {
		return err
	}
	return c.SetReadDeadline(t)
}

func (s *Stream) SetWriteDeadline(t time.Time) error {
	c, err := s.conn()
	if err != nil {
		return err
	}
	return c.SetWriteDeadline(t)
}
