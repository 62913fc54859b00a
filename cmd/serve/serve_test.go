package serve

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"
)

func TestGetCommand(t *testing.T) {
	t.Parallel()

	cmd := GetCommand()
	if cmd.Name != "serve" {
		t.Errorf("Name = %q, want serve", cmd.Name)
	}
	if cmd.Action == nil {
		t.Fatal("Action is nil")
	}
}

func TestServe_Args(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{name: "none", args: []string{"serve"}},
		{name: "too many", args: []string{"serve", "ws://127.0.0.1:1", "ws://127.0.0.1:2"}},
		{name: "bad address", args: []string{"serve", "tcp://127.0.0.1:1"}},
		{name: "ca-out without tls", args: []string{"serve", "--ca-out", "ca.pem", "ws://127.0.0.1:1"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if err := GetCommand().Run(context.Background(), tt.args); err == nil {
				t.Errorf("Run(%v) error = nil", tt.args)
			}
		})
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestServe_RunsUntilCancelled(t *testing.T) {
	t.Parallel()

	port := freePort(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- GetCommand().Run(ctx, []string{"serve", "ws://127.0.0.1:" + strconv.Itoa(port)})
	}()

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	deadline := time.Now().Add(3 * time.Second)
	for {
		c, err := net.Dial("tcp", addr)
		if err == nil {
			_ = c.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never accepted on %s: %v", addr, err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}
