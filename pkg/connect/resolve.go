package connect

import (
	"net"
	"strconv"
	"strings"

	"dominicbreuker/wsconnect/pkg/transport"
)

// Endpoint is where a Request points: host, port and whether TLS is required.
type Endpoint struct {
	Host string
	Port int
	Mode transport.Mode
}

// Addr returns "host:port", bracketing IPv6 hosts.
func (e Endpoint) Addr() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// ResolveMode derives the Mode from the URL scheme: ws is plain, wss is TLS.
func ResolveMode(req *Request) (transport.Mode, error) {
	if req == nil || req.URL == nil {
		return 0, newError(KindInvalidURL, nil, "no URL")
	}

	switch strings.ToLower(req.URL.Scheme) {
	case "ws":
		return transport.ModePlain, nil
	case "wss":
		return transport.ModeTLS, nil
	case "":
		return 0, newError(KindInvalidURL, nil, "no scheme in URL %q", req.URL.Redacted())
	default:
		return 0, newError(KindUnsupportedScheme, nil, "scheme %q not supported, use ws or wss", req.URL.Scheme)
	}
}

// ResolveHost returns the host name of the URL without brackets or port.
func ResolveHost(req *Request) (string, error) {
	if req == nil || req.URL == nil {
		return "", newError(KindInvalidURL, nil, "no URL")
	}

	host := req.URL.Hostname()
	if host == "" {
		return "", newError(KindInvalidURL, nil, "no host name in URL %q", req.URL.Redacted())
	}
	return host, nil
}

// ResolvePort returns the explicit port of the URL, or 80 for ws and 443 for wss.
func ResolvePort(req *Request) (int, error) {
	if req == nil || req.URL == nil {
		return 0, newError(KindInvalidURL, nil, "no URL")
	}

	if p := req.URL.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil || port < 1 || port > 65535 {
			return 0, newError(KindInvalidURL, err, "port %q not in [1, 65535]", p)
		}
		return port, nil
	}

	switch strings.ToLower(req.URL.Scheme) {
	case "ws":
		return 80, nil
	case "wss":
		return 443, nil
	default:
		return 0, newError(KindUnsupportedScheme, nil, "no default port for scheme %q", req.URL.Scheme)
	}
}

// Resolve runs ResolveMode, ResolveHost and ResolvePort in that order and
// returns the first error. It has no side effects.
func Resolve(req *Request) (Endpoint, error) {
	mode, err := ResolveMode(req)
	if err != nil {
		return Endpoint{}, err
	}

	host, err := ResolveHost(req)
	if err != nil {
		return Endpoint{}, err
	}

	port, err := ResolvePort(req)
	if err != nil {
		return Endpoint{}, err
	}

	return Endpoint{Host: host, Port: port, Mode: mode}, nil
}
