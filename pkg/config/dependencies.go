package config

import (
	"context"
	"io"
	"net"
	"os"
)

// Dependencies contains injectable dependencies for testing and customization.
// All fields are optional and will use default implementations if nil.
type Dependencies struct {
	TCPDialer TCPDialerFunc
	Stdin     StdinFunc
	Stdout    StdoutFunc
}

// TCPDialerFunc opens the raw socket to addr ("host:port").
// It returns a net.Conn to allow for mock implementations.
type TCPDialerFunc func(ctx context.Context, addr string) (net.Conn, error)

// StdinFunc is a function that returns a reader for stdin.
type StdinFunc func() io.ReadCloser

// StdoutFunc is a function that returns a writer for stdout.
type StdoutFunc func() io.Writer

// GetStdinFunc returns the stdin function from dependencies, or os.Stdin if nil.
func GetStdinFunc(deps *Dependencies) StdinFunc {
	if deps != nil && deps.Stdin != nil {
		return deps.Stdin
	}
	return func() io.ReadCloser { return os.Stdin }
}

// GetStdoutFunc returns the stdout function from dependencies, or os.Stdout if nil.
func GetStdoutFunc(deps *Dependencies) StdoutFunc {
	if deps != nil && deps.Stdout != nil {
		return deps.Stdout
	}
	return func() io.Writer { return os.Stdout }
}
