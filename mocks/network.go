// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
)

// MockNetwork simulates a TCP network without real sockets. Addresses are
// plain "host:port" strings and are never resolved, so names like
// "chat.test:80" work. Connections are in-memory pipes.
type MockNetwork struct {
	mu        sync.Mutex
	listeners map[string]*mockListener
	dials     atomic.Int64
}

// NewMockNetwork creates an empty network.
func NewMockNetwork() *MockNetwork {
	return &MockNetwork{listeners: make(map[string]*mockListener)}
}

// Listen registers a listener on addr.
func (m *MockNetwork) Listen(addr string) (net.Listener, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.listeners[addr]; exists {
		return nil, fmt.Errorf("address already in use: %s", addr)
	}

	l := &mockListener{
		addr:    mockAddr(addr),
		connCh:  make(chan net.Conn),
		closeCh: make(chan struct{}),
		network: m,
	}
	m.listeners[addr] = l
	return l, nil
}

// DialContext connects to the listener on addr. It has the signature of
// config.TCPDialerFunc.
func (m *MockNetwork) DialContext(ctx context.Context, addr string) (net.Conn, error) {
	m.dials.Add(1)

	m.mu.Lock()
	l, exists := m.listeners[addr]
	m.mu.Unlock()

	if !exists {
		return nil, fmt.Errorf("connection refused: no listener on %s", addr)
	}

	client, server := net.Pipe()
	local := mockAddr(fmt.Sprintf("client-%d", m.dials.Load()))

	select {
	case l.connCh <- &mockConn{Conn: server, local: l.addr, remote: local}:
		return &mockConn{Conn: client, local: local, remote: l.addr}, nil
	case <-l.closeCh:
		_ = client.Close()
		_ = server.Close()
		return nil, fmt.Errorf("connection refused: listener on %s closed", addr)
	case <-ctx.Done():
		_ = client.Close()
		_ = server.Close()
		return nil, ctx.Err()
	}
}

// Dials returns the number of DialContext calls so far.
func (m *MockNetwork) Dials() int {
	return int(m.dials.Load())
}

type mockAddr string

func (a mockAddr) Network() string { return "tcp" }
func (a mockAddr) String() string  { return string(a) }

type mockListener struct {
	addr    mockAddr
	connCh  chan net.Conn
	closeCh chan struct{}
	once    sync.Once
	network *MockNetwork
}

func (l *mockListener) Accept() (net.Conn, error) {
	select {
	case conn := <-l.connCh:
		return conn, nil
	case <-l.closeCh:
		return nil, net.ErrClosed
	}
}

// Close unregisters the listener so its address can be reused.
func (l *mockListener) Close() error {
	l.once.Do(func() {
		close(l.closeCh)

		l.network.mu.Lock()
		delete(l.network.listeners, string(l.addr))
		l.network.mu.Unlock()
	})
	return nil
}

func (l *mockListener) Addr() net.Addr {
	return l.addr
}

type mockConn struct {
	net.Conn
	local  net.Addr
	remote net.Addr
}

func (c *mockConn) LocalAddr() net.Addr  { return c.local }
func (c *mockConn) RemoteAddr() net.Addr { return c.remote }

var _ net.Listener = (*mockListener)(nil)
var _ net.Conn = (*mockConn)(nil)
