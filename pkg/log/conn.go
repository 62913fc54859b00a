package log

import (
	"fmt"
	"io"
	"net"
	"os"
	"sync"
)

// loggedConn wraps a net.Conn and records every chunk read from or written
// to it. Each chunk is preceded by a header line naming the direction and size.
type loggedConn struct {
	net.Conn

	mu  sync.Mutex
	out io.WriteCloser
}

func (lc *loggedConn) Read(b []byte) (int, error) {
	n, err := lc.Conn.Read(b)
	if n > 0 {
		if lerr := lc.record("<-", b[:n]); lerr != nil {
			return n, fmt.Errorf("reading: %w", lerr)
		}
	}
	return n, err
}

func (lc *loggedConn) Write(b []byte) (int, error) {
	n, err := lc.Conn.Write(b)
	if n > 0 {
		if lerr := lc.record("->", b[:n]); lerr != nil {
			return n, fmt.Errorf("writing: %w", lerr)
		}
	}
	return n, err
}

// Close closes the connection and the log file.
func (lc *loggedConn) Close() error {
	err := lc.Conn.Close()

	lc.mu.Lock()
	defer lc.mu.Unlock()
	if cerr := lc.out.Close(); err == nil {
		err = cerr
	}
	return err
}

func (lc *loggedConn) record(dir string, b []byte) error {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if _, err := fmt.Fprintf(lc.out, "%s %d\n", dir, len(b)); err != nil {
		return err
	}
	if _, err := lc.out.Write(b); err != nil {
		return err
	}
	_, err := lc.out.Write([]byte("\n"))
	return err
}

// NewLoggedConn wraps a network connection to log all data read from and written to it.
// The log file is created or appended to at the specified path and closed with the connection.
func NewLoggedConn(conn net.Conn, logFilePath string) (net.Conn, error) {
	logFile, err := os.OpenFile(logFilePath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("os.OpenFile(%s): %w", logFilePath, err)
	}

	return &loggedConn{Conn: conn, out: logFile}, nil
}
