// Package connect establishes outbound WebSocket connections.
//
// Connect runs five stages in order, each of which can end the attempt:
//
//  1. validate: turn the Target into a Request (KindInvalidRequest)
//  2. resolve: derive Mode, host and port from the URL (KindInvalidURL, KindUnsupportedScheme)
//  3. connect: open a TCP socket to host:port (KindConnection)
//  4. upgrade: run TLS for wss targets (KindTLS, KindUnsupportedScheme)
//  5. handshake: run the WebSocket opening handshake (KindHandshake)
//
// Nothing is retried and nothing is returned alongside an error: a socket or
// TLS session opened by a failed attempt is closed before Connect returns.
// There is no internal timeout; bound the attempt with ctx.
package connect

import (
	"context"
	"errors"
	"net"
	"net/http"

	"dominicbreuker/wsconnect/pkg/config"
	"dominicbreuker/wsconnect/pkg/handshake"
	"dominicbreuker/wsconnect/pkg/log"
	"dominicbreuker/wsconnect/pkg/transport"
	"dominicbreuker/wsconnect/pkg/transport/tcp"
)

// dependencies holds injectable dependencies for testing.
type dependencies struct {
	dialTCP    config.TCPDialerFunc
	upgrade    func(context.Context, net.Conn, string, transport.Mode, transport.TLSPolicy) (*transport.Stream, error)
	handshaker handshake.Handshaker
}

func newDependencies(cfg *config.Client) *dependencies {
	deps := &dependencies{upgrade: transport.Upgrade}
	if cfg.Deps != nil && cfg.Deps.TCPDialer != nil {
		deps.dialTCP = cfg.Deps.TCPDialer
	}
	return deps
}

// Connect opens a WebSocket connection to target. cfg may be nil.
//
// On success the returned Conn owns the socket; close it when done. The
// response is the server's handshake response.
func Connect(ctx context.Context, target Target, cfg *config.Client) (handshake.Conn, *http.Response, error) {
	if cfg == nil {
		cfg = &config.Client{}
	}
	return connect(ctx, target, cfg, newDependencies(cfg))
}

// ConnectStream runs the handshake over conn, a socket the caller already
// connected to the target. Host and port of the URL are not used for
// dialing. ConnectStream takes ownership of conn and closes it on failure.
func ConnectStream(ctx context.Context, target Target, conn net.Conn, cfg *config.Client) (handshake.Conn, *http.Response, error) {
	if cfg == nil {
		cfg = &config.Client{}
	}
	return connectStream(ctx, target, conn, cfg, newDependencies(cfg))
}

func connect(ctx context.Context, target Target, cfg *config.Client, deps *dependencies) (handshake.Conn, *http.Response, error) {
	logger := cfg.GetLogger()

	// Step 1: canonical request
	req, err := toRequest(target)
	if err != nil {
		return nil, nil, err
	}

	// Step 2 and 3: mode, host and port, without any I/O
	ep, err := Resolve(req)
	if err != nil {
		return nil, nil, err
	}
	logger.VerboseMsg("Resolved %s to %s (%s)", req.URL.Redacted(), ep.Addr(), ep.Mode)

	policy, err := tlsPolicy(cfg, ep.Mode)
	if err != nil {
		return nil, nil, err
	}

	// Step 4: raw socket
	dial, err := dialer(cfg, deps)
	if err != nil {
		return nil, nil, err
	}

	logger.VerboseMsg("Dialing %s", ep.Addr())
	conn, err := dial(ctx, ep.Addr())
	if err != nil {
		logger.VerboseMsg("Connection failed: %v", err)
		return nil, nil, newError(KindConnection, err, "connecting to %s", ep.Addr())
	}
	logger.VerboseMsg("Connection established")

	return upgradeAndHandshake(ctx, req, conn, ep.Host, ep.Mode, policy, cfg, deps, logger)
}

func connectStream(ctx context.Context, target Target, conn net.Conn, cfg *config.Client, deps *dependencies) (handshake.Conn, *http.Response, error) {
	fail := func(err error) (handshake.Conn, *http.Response, error) {
		_ = conn.Close()
		return nil, nil, err
	}

	req, err := toRequest(target)
	if err != nil {
		return fail(err)
	}

	mode, err := ResolveMode(req)
	if err != nil {
		return fail(err)
	}

	policy, err := tlsPolicy(cfg, mode)
	if err != nil {
		return fail(err)
	}

	// the host only feeds TLS verification here, so it may be empty
	return upgradeAndHandshake(ctx, req, conn, req.URL.Hostname(), mode, policy, cfg, deps, cfg.GetLogger())
}

// upgradeAndHandshake runs the last two stages. It owns conn.
func upgradeAndHandshake(ctx context.Context, req *Request, conn net.Conn, host string, mode transport.Mode, policy transport.TLSPolicy, cfg *config.Client, deps *dependencies, logger *log.Logger) (handshake.Conn, *http.Response, error) {
	// Step 5: TLS
	if mode == transport.ModeTLS {
		logger.VerboseMsg("Upgrading connection to TLS")
	}
	stream, err := deps.upgrade(ctx, conn, host, mode, policy)
	if err != nil {
		logger.VerboseMsg("TLS upgrade failed: %v", err)
		if errors.Is(err, transport.ErrTLSUnavailable) {
			return nil, nil, newError(KindUnsupportedScheme, err, "wss requested")
		}
		return nil, nil, newError(KindTLS, err, "TLS handshake with %s", host)
	}

	var hsConn net.Conn = stream
	if cfg.LogFile != "" {
		logged, err := log.NewLoggedConn(stream, cfg.LogFile)
		if err != nil {
			logger.ErrorMsg("Traffic log disabled: %s\n", err)
		} else {
			hsConn = logged
		}
	}

	// Step 6: WebSocket handshake
	hs := deps.handshaker
	if hs == nil {
		hs, err = handshake.New(cfg.Handshaker)
		if err != nil {
			_ = hsConn.Close()
			return nil, nil, newError(KindHandshake, err, "selecting handshaker")
		}
	}

	logger.VerboseMsg("Starting WebSocket handshake")
	c, resp, err := hs.Handshake(ctx, hsConn, req)
	if err != nil {
		_ = hsConn.Close()
		logger.VerboseMsg("WebSocket handshake failed: %v", err)
		e := newError(KindHandshake, err, "%s", req.URL.Redacted())
		e.Response = resp
		return nil, nil, e
	}
	logger.VerboseMsg("WebSocket handshake completed (subprotocol %q)", c.Subprotocol())

	return c, resp, nil
}

func toRequest(target Target) (*Request, error) {
	if target == nil {
		return nil, newError(KindInvalidRequest, nil, "no target")
	}

	req, err := target.ClientRequest()
	if err != nil {
		return nil, newError(KindInvalidRequest, err, "converting target")
	}
	if req == nil || req.URL == nil {
		return nil, newError(KindInvalidRequest, nil, "target yielded no URL")
	}
	return req, nil
}

// tlsPolicy loads the TLS settings if the mode needs them and rejects wss
// up front when TLS is unavailable, so no socket is opened for it.
func tlsPolicy(cfg *config.Client, mode transport.Mode) (transport.TLSPolicy, error) {
	if mode != transport.ModeTLS {
		return transport.TLSPolicy{}, nil
	}

	policy, err := cfg.TLSPolicy()
	if err != nil {
		return policy, newError(KindTLS, err, "building TLS client context")
	}
	if !policy.Available() {
		return policy, newError(KindUnsupportedScheme, transport.ErrTLSUnavailable, "wss requested")
	}
	return policy, nil
}

func dialer(cfg *config.Client, deps *dependencies) (config.TCPDialerFunc, error) {
	if deps.dialTCP != nil {
		return deps.dialTCP, nil
	}

	d, err := tcp.NewDialer(cfg.Proxy)
	if err != nil {
		return nil, newError(KindConnection, err, "configuring dialer")
	}
	return d.Dial, nil
}
