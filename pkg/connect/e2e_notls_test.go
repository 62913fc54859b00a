//go:build notls

package connect

import (
	"context"
	"errors"
	"testing"
	"time"

	"dominicbreuker/wsconnect/pkg/config"
	"dominicbreuker/wsconnect/pkg/transport"
)

func TestConnect_TLSCompiledOut(t *testing.T) {
	t.Parallel()

	srv := startEcho(t, &config.Server{})

	rec := &dialRecorder{}
	cfg := quietConfig()
	cfg.Deps = &config.Dependencies{TCPDialer: rec.dial}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, _, err := Connect(ctx, URL("wss://"+srv.Addr().String()+"/"), cfg)
	if KindOf(err) != KindUnsupportedScheme || !errors.Is(err, transport.ErrTLSUnavailable) {
		t.Fatalf("Connect() error = %v, want unsupported scheme", err)
	}
	if rec.calls() != 0 {
		t.Errorf("dialer called %d times, want 0", rec.calls())
	}

	// plain targets are unaffected
	c, _, err := Connect(ctx, URL(srv.URL()), quietConfig())
	if err != nil {
		t.Fatalf("Connect(ws) error = %v", err)
	}
	_ = c.Close()
}
