package http

import (
	"net"
	"net/http"
	"time"
)

// ClientConfig tunes the pooled transport behind a Connector.
// Zero durations take the package defaults.
type ClientConfig struct {
	RequestTimeout        time.Duration
	DialTimeout           time.Duration
	KeepAlive             time.Duration
	IdleConnTimeout       time.Duration
	ResponseHeaderTimeout time.Duration
}

// Middleware wraps the round tripper of every outgoing request
type Middleware func(http.RoundTripper) http.RoundTripper

const (
	defaultTimeout       = 30 * time.Second
	defaultKeepAlive     = 90 * time.Second
	defaultHeaderTimeout = 10 * time.Second
	defaultTLSHandshake  = 10 * time.Second
	maxIdleConnsPerHost  = 10
	maxIdleConnsAllHosts = 100
)

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// newClient builds a client whose transport is wrapped by middlewares,
// the last one outermost
func newClient(cfg ClientConfig, middlewares []Middleware) *http.Client {
	dialer := &net.Dialer{
		Timeout:   orDefault(cfg.DialTimeout, defaultTimeout),
		KeepAlive: orDefault(cfg.KeepAlive, defaultKeepAlive),
	}

	var rt http.RoundTripper = &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          maxIdleConnsAllHosts,
		MaxIdleConnsPerHost:   maxIdleConnsPerHost,
		TLSHandshakeTimeout:   defaultTLSHandshake,
		ResponseHeaderTimeout: orDefault(cfg.ResponseHeaderTimeout, defaultHeaderTimeout),
		IdleConnTimeout:       orDefault(cfg.IdleConnTimeout, defaultKeepAlive),
	}

	for _, m := range middlewares {
		rt = m(rt)
	}

	return &http.Client{
		Timeout:   orDefault(cfg.RequestTimeout, defaultTimeout),
		Transport: rt,
	}
}

// headerTransport sets a fixed header on every request it forwards
type headerTransport struct {
	key, value string
	next       http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set(t.key, t.value)
	return t.next.RoundTrip(r)
}

// BearerAuth authenticates requests with a static token.
// An empty token leaves requests untouched.
func BearerAuth(token string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		if token == "" {
			return next
		}
		return &headerTransport{key: "Authorization", value: "Bearer " + token, next: next}
	}
}
