package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dominicbreuker/wsconnect/pkg/crypto"
	"dominicbreuker/wsconnect/pkg/log"
)

func TestClient_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Client
		wantErr string
	}{
		{"empty is fine", Client{}, ""},
		{"ws url", Client{URL: "ws://example.com/chat"}, ""},
		{"wss url upper case", Client{URL: "WSS://example.com"}, ""},
		{"bad scheme", Client{URL: "http://example.com"}, "scheme must be ws or wss"},
		{"no host", Client{URL: "ws:///path"}, "no host"},
		{"unparseable", Client{URL: "ws://[::1"}, "url:"},
		{"bad header", Client{Header: map[string]string{"X Bad": "1"}}, "not a valid token"},
		{"unknown handshaker", Client{Handshaker: "nope"}, "unknown handshaker"},
		{"coder handshaker", Client{Handshaker: "coder"}, ""},
		{"socks proxy", Client{Proxy: "socks5://127.0.0.1:1080"}, ""},
		{"http proxy", Client{Proxy: "http://127.0.0.1:3128"}, "not supported"},
		{"insecure with ca", Client{Insecure: true, CAFile: "ca.pem"}, "mutually exclusive"},
		{"negative timeout", Client{Timeout: -time.Second}, "timeout"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			errs := tc.cfg.Validate()
			if tc.wantErr == "" {
				if len(errs) != 0 {
					t.Errorf("Validate() = %v, want no errors", errs)
				}
				return
			}
			if len(errs) != 1 {
				t.Fatalf("Validate() = %v, want exactly one error", errs)
			}
			if !strings.Contains(errs[0].Error(), tc.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", errs[0], tc.wantErr)
			}
		})
	}
}

func TestClient_HTTPHeader(t *testing.T) {
	t.Parallel()

	c := Client{Header: map[string]string{"x-token": "abc", "Origin": "https://example.com"}}
	h := c.HTTPHeader()

	if got := h.Get("X-Token"); got != "abc" {
		t.Errorf("X-Token = %q, want %q", got, "abc")
	}
	if _, ok := h["X-Token"]; !ok {
		t.Error("header key not canonicalized")
	}
	if got := h.Get("Origin"); got != "https://example.com" {
		t.Errorf("Origin = %q", got)
	}
}

func TestClient_TLSPolicy(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		p, err := (&Client{}).TLSPolicy()
		if err != nil {
			t.Fatalf("TLSPolicy() error = %v", err)
		}
		if p.Insecure || p.Disabled || p.Config != nil {
			t.Errorf("TLSPolicy() = %+v, want zero policy", p)
		}
	})

	t.Run("insecure and disabled", func(t *testing.T) {
		t.Parallel()
		p, err := (&Client{Insecure: true, DisableTLS: true}).TLSPolicy()
		if err != nil {
			t.Fatalf("TLSPolicy() error = %v", err)
		}
		if !p.Insecure || !p.Disabled {
			t.Errorf("TLSPolicy() = %+v, want insecure and disabled", p)
		}
	})

	t.Run("ca file", func(t *testing.T) {
		t.Parallel()
		bundle, err := crypto.GenerateCertificates("localhost")
		if err != nil {
			t.Fatalf("crypto.GenerateCertificates() error = %v", err)
		}
		path := filepath.Join(t.TempDir(), "ca.pem")
		if err := os.WriteFile(path, bundle.CAPEM, 0600); err != nil {
			t.Fatalf("os.WriteFile() error = %v", err)
		}

		p, err := (&Client{CAFile: path, ServerName: "pinned"}).TLSPolicy()
		if err != nil {
			t.Fatalf("TLSPolicy() error = %v", err)
		}
		if p.Config == nil || p.Config.RootCAs == nil {
			t.Fatal("TLSPolicy() did not set RootCAs")
		}
		if p.Config.ServerName != "pinned" {
			t.Errorf("ServerName = %q, want %q", p.Config.ServerName, "pinned")
		}
	})

	t.Run("missing ca file", func(t *testing.T) {
		t.Parallel()
		if _, err := (&Client{CAFile: filepath.Join(t.TempDir(), "nope.pem")}).TLSPolicy(); err == nil {
			t.Error("TLSPolicy() error = nil, want error for missing file")
		}
	})

	t.Run("ca file without certificates", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "empty.pem")
		if err := os.WriteFile(path, []byte("not pem"), 0600); err != nil {
			t.Fatalf("os.WriteFile() error = %v", err)
		}
		if _, err := (&Client{CAFile: path}).TLSPolicy(); err == nil {
			t.Error("TLSPolicy() error = nil, want error for empty bundle")
		}
	})
}

func TestClient_GetLogger(t *testing.T) {
	t.Parallel()

	c := &Client{Verbose: true}
	if c.GetLogger() == nil {
		t.Fatal("GetLogger() returned nil")
	}
	if c.Logger != nil {
		t.Error("GetLogger() stored a logger in the config")
	}

	own := log.NewLoggerTo(io.Discard, false)
	c.Logger = own
	if c.GetLogger() != own {
		t.Error("GetLogger() did not return the configured logger")
	}
}

func TestServer_Defaults(t *testing.T) {
	t.Parallel()

	s := &Server{}
	if got := s.GetMaxConns(); got != 100 {
		t.Errorf("GetMaxConns() = %d, want 100", got)
	}
	if got := s.GetReadHeaderTimeout(); got != 10*time.Second {
		t.Errorf("GetReadHeaderTimeout() = %v, want 10s", got)
	}

	s = &Server{MaxConns: 3, ReadHeaderTimeout: time.Second}
	if got := s.GetMaxConns(); got != 3 {
		t.Errorf("GetMaxConns() = %d, want 3", got)
	}
	if got := s.GetReadHeaderTimeout(); got != time.Second {
		t.Errorf("GetReadHeaderTimeout() = %v, want 1s", got)
	}
}

func TestServer_Validate(t *testing.T) {
	t.Parallel()

	if errs := (&Server{Port: 8080, TLS: true, CAOut: "ca.pem"}).Validate(); len(errs) != 0 {
		t.Errorf("Validate() = %v, want no errors", errs)
	}
	if errs := (&Server{Port: 8080, CAOut: "ca.pem"}).Validate(); len(errs) != 1 {
		t.Errorf("Validate() = %v, want one error for ca_out without tls", errs)
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "client.yaml")
	doc := `
url: wss://example.com/socket
header:
  Authorization: Bearer abc
subprotocols: [chat, superchat]
handshaker: coder
insecure: true
timeout: 5s
`
	if err := os.WriteFile(path, []byte(doc), 0600); err != nil {
		t.Fatalf("os.WriteFile() error = %v", err)
	}

	cfg := &Client{Verbose: true, Handshaker: "gorilla"}
	if err := LoadFile(path, cfg); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.URL != "wss://example.com/socket" {
		t.Errorf("URL = %q", cfg.URL)
	}
	if cfg.Header["Authorization"] != "Bearer abc" {
		t.Errorf("Header = %v", cfg.Header)
	}
	if len(cfg.Subprotocols) != 2 || cfg.Subprotocols[1] != "superchat" {
		t.Errorf("Subprotocols = %v", cfg.Subprotocols)
	}
	if cfg.Handshaker != "coder" {
		t.Errorf("Handshaker = %q, want file value to win", cfg.Handshaker)
	}
	if !cfg.Insecure {
		t.Error("Insecure = false, want true")
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if !cfg.Verbose {
		t.Error("Verbose reset by a file that does not mention it")
	}
}

func TestLoadFile_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	if err := LoadFile(filepath.Join(dir, "missing.yaml"), &Client{}); err == nil {
		t.Error("LoadFile(missing) error = nil, want error")
	}

	unknown := filepath.Join(dir, "unknown.yaml")
	if err := os.WriteFile(unknown, []byte("no_such_key: 1\n"), 0600); err != nil {
		t.Fatalf("os.WriteFile() error = %v", err)
	}
	if err := LoadFile(unknown, &Client{}); err == nil {
		t.Error("LoadFile(unknown key) error = nil, want error")
	}

	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, nil, 0600); err != nil {
		t.Fatalf("os.WriteFile() error = %v", err)
	}
	if err := LoadFile(empty, &Client{}); err != nil {
		t.Errorf("LoadFile(empty) error = %v, want nil", err)
	}
}
