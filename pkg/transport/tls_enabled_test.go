//go:build !notls

package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"testing"

	"dominicbreuker/wsconnect/pkg/crypto"
)

// tlsPeer runs a TLS server on one end of a pipe. It echoes what it reads
// and reports the SNI it saw.
type tlsPeer struct {
	sni chan string
	err chan error
}

func startTLSPeer(t *testing.T, conn net.Conn, cert tls.Certificate) *tlsPeer {
	t.Helper()

	p := &tlsPeer{sni: make(chan string, 1), err: make(chan error, 1)}
	cfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		GetConfigForClient: func(hello *tls.ClientHelloInfo) (*tls.Config, error) {
			p.sni <- hello.ServerName
			return nil, nil
		},
	}

	go func() {
		srv := tls.Server(conn, cfg)
		defer srv.Close()
		if err := srv.Handshake(); err != nil {
			p.err <- err
			return
		}
		p.err <- nil
		_, _ = io.Copy(srv, srv)
	}()

	return p
}

// tcpPair returns both ends of a loopback TCP connection.
func tcpPair(t *testing.T) (net.Conn, net.Conn) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen() error = %v", err)
	}
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, _ := ln.Accept()
		accepted <- c
	}()

	client, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("net.Dial() error = %v", err)
	}
	server := <-accepted
	if server == nil {
		t.Fatal("Accept() failed")
	}
	t.Cleanup(func() {
		_ = client.Close()
		_ = server.Close()
	})
	return client, server
}

func newBundle(t *testing.T) *crypto.Bundle {
	t.Helper()
	b, err := crypto.GenerateCertificates("localhost")
	if err != nil {
		t.Fatalf("crypto.GenerateCertificates() error = %v", err)
	}
	return b
}

func TestUpgrade_TLSVerified(t *testing.T) {
	t.Parallel()

	bundle := newBundle(t)
	client, server := tcpPair(t)
	peer := startTLSPeer(t, server, bundle.Cert)

	policy := TLSPolicy{Config: &tls.Config{RootCAs: bundle.Pool}}
	s, err := Upgrade(deadlineCtx(t), client, "localhost", ModeTLS, policy)
	if err != nil {
		t.Fatalf("Upgrade(tls) error = %v, want nil", err)
	}
	defer s.Close()

	if err := <-peer.err; err != nil {
		t.Fatalf("server handshake error = %v", err)
	}
	if sni := <-peer.sni; sni != "localhost" {
		t.Errorf("server saw SNI %q, want %q", sni, "localhost")
	}

	got := exchange(t, s, s, [][]byte{[]byte("ping")})
	if !bytes.Equal(got, []byte("ping")) {
		t.Errorf("echo through TLS stream = %q, want %q", got, "ping")
	}
	if policy.Config.ServerName != "" {
		t.Error("Upgrade mutated the caller's tls.Config")
	}
}

func TestUpgrade_TLSInsecureSendsNoSNI(t *testing.T) {
	t.Parallel()

	bundle := newBundle(t)
	client, server := tcpPair(t)
	peer := startTLSPeer(t, server, bundle.Cert)

	// host does not match the certificate and the CA is untrusted
	s, err := Upgrade(deadlineCtx(t), client, "wrong.example", ModeTLS, TLSPolicy{Insecure: true})
	if err != nil {
		t.Fatalf("Upgrade(tls, insecure) error = %v, want nil", err)
	}
	defer s.Close()

	if err := <-peer.err; err != nil {
		t.Fatalf("server handshake error = %v", err)
	}
	if sni := <-peer.sni; sni != "" {
		t.Errorf("server saw SNI %q, want none", sni)
	}
}

func TestUpgrade_TLSUntrusted(t *testing.T) {
	t.Parallel()

	bundle := newBundle(t)
	client, server := tcpPair(t)
	startTLSPeer(t, server, bundle.Cert)
	conn := &countingConn{Conn: client}

	s, err := Upgrade(deadlineCtx(t), conn, "localhost", ModeTLS, TLSPolicy{Config: &tls.Config{RootCAs: x509.NewCertPool()}})
	if err == nil {
		s.Close()
		t.Fatal("Upgrade(tls, untrusted) error = nil, want verification error")
	}

	var unknownAuthority x509.UnknownAuthorityError
	var verifyErr *tls.CertificateVerificationError
	if !errors.As(err, &verifyErr) && !errors.As(err, &unknownAuthority) {
		t.Errorf("Upgrade(tls, untrusted) error = %v, want certificate verification error", err)
	}
	if !conn.closed.Load() {
		t.Error("failed upgrade did not release the socket")
	}
}

func TestUpgrade_TLSCancelled(t *testing.T) {
	t.Parallel()

	// the peer never answers, so only cancellation can end the handshake
	client, server := net.Pipe()
	defer server.Close()
	go func() { _, _ = io.Copy(io.Discard, server) }()
	conn := &countingConn{Conn: client}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Upgrade(ctx, conn, "localhost", ModeTLS, TLSPolicy{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Upgrade(tls, cancelled) error = %v, want context.Canceled", err)
	}
	if !conn.closed.Load() {
		t.Error("cancelled upgrade did not release the socket")
	}
}

func TestBuildTLSConfig(t *testing.T) {
	t.Parallel()

	base := &tls.Config{ServerName: "pinned.example", MinVersion: tls.VersionTLS13}

	tests := []struct {
		name         string
		host         string
		policy       TLSPolicy
		wantName     string
		wantInsecure bool
		wantMin      uint16
	}{
		{"default uses host", "example.com", TLSPolicy{}, "example.com", false, tls.VersionTLS12},
		{"base keeps server name", "example.com", TLSPolicy{Config: base}, "pinned.example", false, tls.VersionTLS13},
		{"insecure drops sni", "example.com", TLSPolicy{Insecure: true}, "", true, tls.VersionTLS12},
		{"insecure overrides base", "example.com", TLSPolicy{Config: base, Insecure: true}, "", true, tls.VersionTLS13},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := buildTLSConfig(tc.host, tc.policy)
			if cfg.ServerName != tc.wantName {
				t.Errorf("ServerName = %q, want %q", cfg.ServerName, tc.wantName)
			}
			if cfg.InsecureSkipVerify != tc.wantInsecure {
				t.Errorf("InsecureSkipVerify = %v, want %v", cfg.InsecureSkipVerify, tc.wantInsecure)
			}
			if cfg.MinVersion != tc.wantMin {
				t.Errorf("MinVersion = %x, want %x", cfg.MinVersion, tc.wantMin)
			}
		})
	}

	if base.InsecureSkipVerify {
		t.Error("buildTLSConfig mutated the base config")
	}
}
