// Package httpclient provides the outbound HTTP client used for record
// fetches. It refuses to talk to loopback, private and link-local targets
// unless told otherwise, including after redirects and DNS resolution.
package httpclient

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/teranos/corrfill/errors"
)

// SaferClient wraps http.Client with SSRF protection
type SaferClient struct {
	*http.Client
	allowedSchemes []string
	blockPrivateIP bool
	maxRedirects   int
}

// Option customizes a SaferClient.
type Option func(*SaferClient)

// WithPrivateHosts allows loopback and private targets. Needed for a CDS
// stub on localhost or a service on an internal network.
func WithPrivateHosts(allow bool) Option {
	return func(c *SaferClient) { c.blockPrivateIP = !allow }
}

// WithMaxRedirects caps the redirect chain (default 10).
func WithMaxRedirects(n int) Option {
	return func(c *SaferClient) { c.maxRedirects = n }
}

// WithAllowedSchemes replaces the default ["http", "https"].
func WithAllowedSchemes(schemes ...string) Option {
	return func(c *SaferClient) { c.allowedSchemes = schemes }
}

// New creates an HTTP client with SSRF protection
func New(timeout time.Duration, opts ...Option) *SaferClient {
	client := &SaferClient{
		Client:         &http.Client{Timeout: timeout},
		allowedSchemes: []string{"http", "https"},
		blockPrivateIP: true,
		maxRedirects:   10,
	}
	for _, opt := range opts {
		opt(client)
	}

	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= client.maxRedirects {
			return errors.Newf("stopped after %d redirects", client.maxRedirects)
		}
		if err := client.validateURL(req.URL); err != nil {
			return errors.Wrap(err, "redirect blocked")
		}
		return nil
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	if client.blockPrivateIP {
		// Resolved addresses are checked too, so a public name pointing at a
		// private address (DNS rebinding) is refused
		transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			host, port, err := net.SplitHostPort(addr)
			if err != nil {
				return nil, errors.Wrap(err, "invalid address")
			}

			ips, err := net.DefaultResolver.LookupIP(ctx, "ip", host)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to resolve host %q", host)
			}
			for _, ip := range ips {
				if isPrivateIP(ip) {
					return nil, errors.Newf("private IP address blocked: %s", ip)
				}
			}

			// Dial the address we checked, not a fresh lookup
			return dialer.DialContext(ctx, network, net.JoinHostPort(ips[0].String(), port))
		}
	} else {
		transport.DialContext = dialer.DialContext
	}
	client.Transport = transport

	return client
}

// validateURL validates URL for SSRF protection before making request
func (c *SaferClient) validateURL(u *url.URL) error {
	scheme := strings.ToLower(u.Scheme)
	if !slices.Contains(c.allowedSchemes, scheme) {
		return errors.Newf("scheme %q not allowed (allowed: %v)", scheme, c.allowedSchemes)
	}

	// http://records.example.com@127.0.0.1/ style confusion
	if u.User != nil {
		return errors.New("URL contains userinfo (potential SSRF attempt)")
	}

	hostname := u.Hostname()
	if hostname == "" {
		return errors.New("URL missing hostname")
	}

	if c.blockPrivateIP {
		if isLocalhost(hostname) {
			return errors.WithHint(
				errors.New("localhost access blocked"),
				"set cds.allow_private_hosts = true to reach a local service",
			)
		}
		if ip := net.ParseIP(hostname); ip != nil && isPrivateIP(ip) {
			return errors.WithHint(
				errors.Newf("private IP address blocked: %s", hostname),
				"set cds.allow_private_hosts = true to reach a private address",
			)
		}
	}

	return nil
}

// ValidateURL validates a URL string before creating a request
func (c *SaferClient) ValidateURL(urlStr string) (*url.URL, error) {
	u, err := url.Parse(urlStr)
	if err != nil {
		return nil, errors.Wrap(err, "invalid URL")
	}
	if err := c.validateURL(u); err != nil {
		return nil, err
	}
	return u, nil
}

var privateBlocks = []*net.IPNet{
	mustCIDR("10.0.0.0/8"),     // RFC 1918
	mustCIDR("172.16.0.0/12"),  // RFC 1918
	mustCIDR("192.168.0.0/16"), // RFC 1918
	mustCIDR("127.0.0.0/8"),    // loopback
	mustCIDR("169.254.0.0/16"), // link-local
	mustCIDR("0.0.0.0/8"),
	mustCIDR("100.64.0.0/10"), // carrier-grade NAT
	mustCIDR("224.0.0.0/4"),   // multicast
	mustCIDR("240.0.0.0/4"),   // reserved
	mustCIDR("fc00::/7"),      // unique local
	mustCIDR("fec0::/10"),     // site-local (deprecated)
	mustCIDR("2001:db8::/32"), // documentation
}

func mustCIDR(s string) *net.IPNet {
	_, block, err := net.ParseCIDR(s)
	if err != nil {
		panic(err)
	}
	return block
}

// isPrivateIP checks if an IP is in private/special use ranges
func isPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsMulticast() || ip.IsUnspecified() {
		return true
	}
	// IPv4-mapped IPv6 addresses are checked as IPv4
	if ip4 := ip.To4(); ip4 != nil {
		ip = ip4
	}
	for _, block := range privateBlocks {
		if block.Contains(ip) {
			return true
		}
	}
	return false
}

// isLocalhost checks for localhost variants
func isLocalhost(hostname string) bool {
	hostname = strings.ToLower(strings.TrimSuffix(hostname, "."))
	return hostname == "localhost" ||
		hostname == "localhost.localdomain" ||
		strings.HasSuffix(hostname, ".localhost")
}

// Do executes an HTTP request with SSRF protection
func (c *SaferClient) Do(req *http.Request) (*http.Response, error) {
	if err := c.validateURL(req.URL); err != nil {
		return nil, errors.Wrap(err, "request blocked by SSRF protection")
	}
	return c.Client.Do(req)
}

// Get is a context-aware GET with SSRF protection
func (c *SaferClient) Get(ctx context.Context, urlStr string) (*http.Response, error) {
	u, err := c.ValidateURL(urlStr)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Accept", "application/json")
	return c.Client.Do(req)
}

// WrapClient wraps an existing http.Client in a SaferClient without SSRF
// protection. For tests that talk to httptest servers on localhost.
func WrapClient(client *http.Client) *SaferClient {
	return &SaferClient{
		Client:         client,
		allowedSchemes: []string{"http", "https"},
		blockPrivateIP: false,
		maxRedirects:   10,
	}
}
