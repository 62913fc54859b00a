package handshake

import (
	"errors"
	"net/http"
	"net/url"
)

// Request is the canonical description of a connection target: the
// WebSocket URL plus what the opening handshake should send.
type Request struct {
	URL          *url.URL
	Header       http.Header
	Subprotocols []string
}

// ClientRequest returns a deep copy of r, so *Request can be used wherever
// a connection target is expected.
func (r *Request) ClientRequest() (*Request, error) {
	if r == nil || r.URL == nil {
		return nil, errors.New("request has no URL")
	}
	return r.Clone(), nil
}

// Clone returns a deep copy of r.
func (r *Request) Clone() *Request {
	u := *r.URL

	out := &Request{
		URL:    &u,
		Header: r.Header.Clone(),
	}
	if r.Subprotocols != nil {
		out.Subprotocols = append([]string(nil), r.Subprotocols...)
	}
	if out.Header == nil {
		out.Header = http.Header{}
	}
	return out
}
