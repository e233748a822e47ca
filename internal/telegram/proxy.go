package telegram

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

const requestTimeout = 90 * time.Second

// newHTTPClient builds the client used for Bot API calls and file downloads.
// rawProxy may be empty, an http(s):// proxy URL or a socks5:// URL.
func newHTTPClient(rawProxy string, pollTimeout int) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	timeout := requestTimeout
	if pollTimeout > 0 {
		timeout = time.Duration(pollTimeout)*time.Second + 30*time.Second
	}
	client := &http.Client{Transport: transport, Timeout: timeout}

	rawProxy = strings.TrimSpace(rawProxy)
	if rawProxy == "" {
		return client, nil
	}
	u, err := url.Parse(rawProxy)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy URL %q: %w", rawProxy, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		transport.Proxy = http.ProxyURL(u)
	case "socks5", "socks5h":
		dialer, err := proxy.FromURL(u, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		transport.Proxy = nil
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			transport.DialContext = cd.DialContext
		} else {
			transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}
	default:
		return nil, fmt.Errorf("unsupported proxy scheme %q", u.Scheme)
	}
	return client, nil
}
