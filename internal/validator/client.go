package validator

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/proxy"

	"proxypool/internal/store"
)

// newProxyClient builds an *http.Client that routes every request through p,
// dialing SOCKS proxies via golang.org/x/net/proxy and HTTP/HTTPS proxies
// via the transport's CONNECT support. Both socks4 and socks5 proxies are
// dialed with the SOCKS5 handshake; there is no SOCKS4 handshake. TLS verification is disabled
// deliberately: the goal is reachability and anonymity, not certificate
// trust, and most free proxies terminate TLS with throwaway certificates.
func newProxyClient(p store.Proxy, timeout time.Duration) (*http.Client, error) {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
	}

	addr := net.JoinHostPort(p.IP, fmt.Sprintf("%d", p.Port))

	switch p.Protocol {
	case "http", "https":
		proxyURL := &url.URL{Scheme: "http", Host: addr}
		transport.Proxy = http.ProxyURL(proxyURL)
	case "socks4", "socks5":
		dialer, err := proxy.SOCKS5("tcp", addr, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("socks dialer for %s: %w", addr, err)
		}
		contextDialer, ok := dialer.(proxy.ContextDialer)
		if !ok {
			return nil, fmt.Errorf("socks dialer for %s does not support contexts", addr)
		}
		transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			return contextDialer.DialContext(ctx, network, addr)
		}
	default:
		return nil, fmt.Errorf("unsupported protocol %q", p.Protocol)
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return nil // follow redirects, matching allow_redirects=true
		},
	}, nil
}
