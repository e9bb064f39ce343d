package session

import (
	"context"
	"net/http"
	"net/url"
)

// Request describes one outbound call. The session only adds credential material to
// Header, Query and Cookies; it never inspects Body.
type Request struct {
	Method  string
	URL     string
	Header  http.Header
	Query   url.Values
	Cookies []*http.Cookie
	Body    []byte
}

// Clone returns a deep copy of r with non-nil Header and Query.
func (r *Request) Clone() *Request {
	if r == nil {
		return &Request{Header: http.Header{}, Query: url.Values{}}
	}
	out := &Request{
		Method: r.Method,
		URL:    r.URL,
		Header: r.Header.Clone(),
		Query:  url.Values{},
	}
	if out.Header == nil {
		out.Header = http.Header{}
	}
	for k, v := range r.Query {
		out.Query[k] = append([]string(nil), v...)
	}
	if len(r.Cookies) > 0 {
		out.Cookies = append([]*http.Cookie(nil), r.Cookies...)
	}
	if r.Body != nil {
		out.Body = append([]byte(nil), r.Body...)
	}
	return out
}

// Response is whatever the transport produced. The session returns it untouched.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport is a connection and cookie-jar handle owned by a Session.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
	Close() error
}

// TransportFactory allocates a fresh handle without any credential material attached.
type TransportFactory func() (Transport, error)
