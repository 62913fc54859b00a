// Package echo implements a WebSocket echo server over ws or wss. It is
// the counterpart used to exercise the client against a live endpoint.
//
// For wss the server presents an ephemeral certificate signed by a freshly
// generated CA. Clients can trust it through CAPEM or skip verification.
package echo

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"dominicbreuker/wsconnect/pkg/config"
	"dominicbreuker/wsconnect/pkg/crypto"
	"dominicbreuker/wsconnect/pkg/log"
	"dominicbreuker/wsconnect/pkg/semaphore"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// Server echoes every data message back to the sender with the same type.
type Server struct {
	cfg    *config.Server
	logger *log.Logger

	listener net.Listener
	bundle   *crypto.Bundle
	server   *http.Server
	sem      *semaphore.Limiter

	mu      sync.Mutex
	headers []http.Header

	// OnUpgrade, if set, is called with each upgrade request before it is accepted.
	OnUpgrade func(r *http.Request)
}

// New binds the listener described by cfg. Serve must be called to accept connections.
func New(cfg *config.Server, logger *log.Logger) (*Server, error) {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	nl, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("net.Listen(tcp, %s): %w", addr, err)
	}

	return NewWithListener(cfg, logger, nl)
}

// NewWithListener serves on nl instead of binding cfg.Host and cfg.Port.
// The server owns nl and closes it on failure or when Serve returns.
func NewWithListener(cfg *config.Server, logger *log.Logger, nl net.Listener) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logger,
		sem:    semaphore.New(cfg.GetMaxConns(), cfg.SlotWait),
	}

	if cfg.TLS {
		var err error
		nl, err = s.wrapWithTLS(nl)
		if err != nil {
			return nil, fmt.Errorf("wrap with TLS: %w", err)
		}
	}
	s.listener = nl

	if cfg.CAOut != "" && s.bundle != nil {
		if err := os.WriteFile(cfg.CAOut, s.bundle.CAPEM, 0644); err != nil {
			_ = nl.Close()
			return nil, fmt.Errorf("os.WriteFile(%s): %w", cfg.CAOut, err)
		}
	}

	s.server = &http.Server{
		Handler:           http.HandlerFunc(s.handle),
		ReadHeaderTimeout: cfg.GetReadHeaderTimeout(),
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// ListenAndServe runs an echo server until ctx is cancelled.
func ListenAndServe(ctx context.Context, cfg *config.Server, logger *log.Logger) error {
	s, err := New(cfg, logger)
	if err != nil {
		return err
	}
	logger.InfoMsg("Serving WebSocket echo on %s\n", s.URL())
	return s.Serve(ctx)
}

// Addr returns the bound listener address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// URL returns the ws:// or wss:// URL of the server root.
func (s *Server) URL() string {
	scheme := "ws"
	if s.cfg.TLS {
		scheme = "wss"
	}
	return scheme + "://" + s.listener.Addr().String() + "/"
}

// CAPEM returns the PEM encoded CA certificate, or nil for a plain server.
func (s *Server) CAPEM() []byte {
	if s.bundle == nil {
		return nil
	}
	return s.bundle.CAPEM
}

// FreeSlots returns how many more sessions the server accepts right now.
func (s *Server) FreeSlots() int {
	return s.sem.Free()
}

// Headers returns the request headers of all upgrade requests seen so far.
func (s *Server) Headers() []http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]http.Header(nil), s.headers...)
}

// wrapWithTLS wraps a listener with TLS using an ephemeral certificate.
func (s *Server) wrapWithTLS(nl net.Listener) (net.Listener, error) {
	hosts := []string{"localhost", "127.0.0.1", "::1"}
	if s.cfg.Host != "" {
		hosts = append(hosts, s.cfg.Host)
	}

	bundle, err := crypto.GenerateCertificates(hosts...)
	if err != nil {
		_ = nl.Close()
		return nil, fmt.Errorf("crypto.GenerateCertificates(%v): %w", hosts, err)
	}
	s.bundle = bundle

	tlsCfg := &tls.Config{
		Certificates: []tls.Certificate{bundle.Cert},
		MinVersion:   tls.VersionTLS12,
	}

	return tls.NewListener(nl, tlsCfg), nil
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if err := s.sem.Acquire(r.Context()); err != nil {
		s.logger.VerboseMsg("rejecting %s: %v (%d slots free)", r.RemoteAddr, err, s.FreeSlots())
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	defer s.sem.Release()

	s.handleUpgrade(w, r)
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.headers = append(s.headers, r.Header.Clone())
	s.mu.Unlock()

	if s.OnUpgrade != nil {
		s.OnUpgrade(r)
	}

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols: s.cfg.Subprotocols,
	})
	if err != nil {
		s.logger.ErrorMsg("websocket.Accept(): %s\n", err)
		return
	}
	c.SetReadLimit(-1)

	id := uuid.NewString()
	s.logger.InfoMsg("New WS connection %s from %s\n", id, r.RemoteAddr)
	s.logger.VerboseMsg("%d of %d session slots free", s.FreeSlots(), s.cfg.GetMaxConns())

	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorMsg("echo %s panic: %v\n", id, r)
		}
		_ = c.CloseNow()
	}()

	err = echoLoop(r.Context(), c)
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		s.logger.VerboseMsg("connection %s closed by peer", id)
	default:
		if !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
			s.logger.ErrorMsg("echo %s: %s\n", id, err)
		}
	}
}

func echoLoop(ctx context.Context, c *websocket.Conn) error {
	for {
		typ, r, err := c.Reader(ctx)
		if err != nil {
			return err
		}

		w, err := c.Writer(ctx, typ)
		if err != nil {
			return err
		}

		if _, err := io.Copy(w, r); err != nil {
			return fmt.Errorf("echo: %w", err)
		}

		if err := w.Close(); err != nil {
			return err
		}
	}
}

// Serve accepts connections until ctx is cancelled or the listener fails.
func (s *Server) Serve(ctx context.Context) error {
	// sessions are hijacked, so they only end through their request context
	s.server.BaseContext = func(net.Listener) context.Context { return ctx }

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		_ = s.server.Close()
		err := <-errCh
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving after cancellation: %w", err)

	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http.Server.Serve(): %w", err)
	}
}
