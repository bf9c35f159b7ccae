package chat

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/proxy"
)

// newTransport builds the round tripper used when Config.HTTPClient is nil.
// proxyURL may be empty, http(s)://host:port, or socks5://[user:pass@]host:port.
func newTransport(proxyURL string) (*http.Transport, error) {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	if proxyURL == "" {
		transport.Proxy = http.ProxyFromEnvironment
		return transport, nil
	}

	parsed, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy URL: %w", err)
	}

	switch parsed.Scheme {
	case "http", "https":
		transport.Proxy = http.ProxyURL(parsed)
	case "socks5", "socks5h":
		dialer, err := proxy.FromURL(parsed, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("creating SOCKS5 dialer: %w", err)
		}
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			transport.DialContext = cd.DialContext
		} else {
			transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}
	default:
		return nil, fmt.Errorf("unsupported proxy scheme %q", parsed.Scheme)
	}

	return transport, nil
}

// newHTTPClients returns the client used for buffered calls and the one used
// for streams. A stream can outlive any fixed timeout, so only the buffered
// client carries cfg.Timeout; streams are bounded by their context.
func newHTTPClients(cfg Config) (buffered, streaming *http.Client, err error) {
	if cfg.HTTPClient != nil {
		return cfg.HTTPClient, cfg.HTTPClient, nil
	}

	transport, err := newTransport(cfg.Proxy)
	if err != nil {
		return nil, nil, err
	}

	buffered = &http.Client{Transport: transport, Timeout: cfg.Timeout}
	streaming = &http.Client{Transport: transport}
	return buffered, streaming, nil
}
