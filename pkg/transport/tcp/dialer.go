// Package tcp opens the raw TCP sockets WebSocket connections run on,
// either directly or through a SOCKS5 proxy.
package tcp

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"golang.org/x/net/proxy"
)

const keepAlive = 30 * time.Second

// Dialer opens TCP connections with keep-alive enabled.
type Dialer struct {
	direct *net.Dialer
	proxy  proxy.ContextDialer
	via    string
}

// NewDialer creates a dialer. If proxyURL is non-empty it must be a
// socks5:// or socks5h:// URL and all connections are made through it.
func NewDialer(proxyURL string) (*Dialer, error) {
	d := &Dialer{
		direct: &net.Dialer{KeepAlive: keepAlive},
	}
	if proxyURL == "" {
		return d, nil
	}

	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("url.Parse(%s): %w", proxyURL, err)
	}

	pd, err := proxy.FromURL(u, d.direct)
	if err != nil {
		return nil, fmt.Errorf("proxy.FromURL(%s): %w", u.Redacted(), err)
	}

	cd, ok := pd.(proxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("proxy %s does not support cancellation", u.Redacted())
	}

	d.proxy = cd
	d.via = u.Redacted()
	return d, nil
}

// Dial connects to addr ("host:port"). The context bounds the whole
// connection attempt, including the proxy negotiation.
func (d *Dialer) Dial(ctx context.Context, addr string) (net.Conn, error) {
	if d.proxy != nil {
		conn, err := d.proxy.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("proxy(%s).DialContext(tcp, %s): %w", d.via, addr, err)
		}
		return conn, nil
	}

	conn, err := d.direct.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("net.Dialer.DialContext(tcp, %s): %w", addr, err)
	}
	return conn, nil
}
