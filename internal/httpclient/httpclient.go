// Package httpclient builds the HTTP client shared by the metadata fetchers and the image loader.
package httpclient

import (
	"net"
	"net/http"
	"time"
)

// New returns a client that gives up on establishing a connection after connectTimeout, and on a whole call
// (including reading the body) after callTimeout.
func New(connectTimeout, callTimeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: 30 * time.Second,
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext
	transport.TLSHandshakeTimeout = connectTimeout
	return &http.Client{
		Transport: transport,
		Timeout:   callTimeout,
	}
}
