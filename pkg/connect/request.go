package connect

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"dominicbreuker/wsconnect/pkg/handshake"
)

// Request is the canonical connection target.
type Request = handshake.Request

// Target is anything that can be turned into a Request. The conversion may
// fail; Connect reports that as KindInvalidRequest.
//
// Implemented by *Request, URL and HTTPRequest.
type Target interface {
	ClientRequest() (*Request, error)
}

// URL is a target given as a raw URL string.
type URL string

// ClientRequest parses u.
func (u URL) ClientRequest() (*Request, error) {
	if u == "" {
		return nil, errors.New("empty URL")
	}
	parsed, err := url.Parse(string(u))
	if err != nil {
		return nil, fmt.Errorf("url.Parse(%s): %w", string(u), err)
	}
	return &Request{URL: parsed, Header: http.Header{}}, nil
}

// HTTPRequest adapts an *http.Request: its URL and headers are used for the
// handshake. Sec-WebSocket-Protocol values become Subprotocols.
type HTTPRequest struct {
	*http.Request
}

// ClientRequest copies the URL and headers out of r.
func (r HTTPRequest) ClientRequest() (*Request, error) {
	if r.Request == nil || r.URL == nil {
		return nil, errors.New("http request has no URL")
	}

	req := &Request{
		URL:    r.URL,
		Header: r.Header.Clone(),
	}
	if req.Header == nil {
		req.Header = http.Header{}
	}
	if protos := req.Header.Values("Sec-WebSocket-Protocol"); len(protos) > 0 {
		for _, v := range protos {
			for _, p := range strings.Split(v, ",") {
				if p = strings.TrimSpace(p); p != "" {
					req.Subprotocols = append(req.Subprotocols, p)
				}
			}
		}
		req.Header.Del("Sec-WebSocket-Protocol")
	}
	return req.Clone(), nil
}

// NewRequest builds a Request for rawURL with optional headers and subprotocols.
func NewRequest(rawURL string, header http.Header, subprotocols ...string) (*Request, error) {
	req, err := URL(rawURL).ClientRequest()
	if err != nil {
		return nil, err
	}
	if header != nil {
		req.Header = header.Clone()
	}
	req.Subprotocols = subprotocols
	return req, nil
}
