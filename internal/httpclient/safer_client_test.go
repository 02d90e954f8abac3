package httpclient

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/teranos/corrfill/errors"
)

func TestNew(t *testing.T) {
	client := New(30 * time.Second)

	if client.Timeout != 30*time.Second {
		t.Errorf("Expected timeout 30s, got %v", client.Timeout)
	}
	if client.maxRedirects != 10 {
		t.Errorf("Expected maxRedirects 10, got %d", client.maxRedirects)
	}
	if !client.blockPrivateIP {
		t.Error("Expected private IPs to be blocked by default")
	}
}

func TestOptions(t *testing.T) {
	client := New(time.Second,
		WithPrivateHosts(true),
		WithMaxRedirects(2),
		WithAllowedSchemes("https"),
	)

	if client.blockPrivateIP {
		t.Error("WithPrivateHosts(true) should disable blocking")
	}
	if client.maxRedirects != 2 {
		t.Errorf("maxRedirects = %d", client.maxRedirects)
	}
	if _, err := client.ValidateURL("http://example.com"); err == nil {
		t.Error("http should be rejected when only https is allowed")
	}
	if _, err := client.ValidateURL("http://127.0.0.1:8080/Policy"); err == nil {
		t.Error("scheme check still applies with private hosts allowed")
	}
	if _, err := client.ValidateURL("https://127.0.0.1:8080/Policy"); err != nil {
		t.Errorf("private host should be allowed: %v", err)
	}
}

func TestValidateURL(t *testing.T) {
	client := New(30 * time.Second)

	tests := []struct {
		name        string
		url         string
		errContains string
	}{
		{"HTTPS", "https://qa-cds.zinnia.com/correspondence/api/sample/Policy?contractnumber=A1", ""},
		{"HTTP", "http://example.com", ""},
		{"file scheme", "file:///etc/passwd", "scheme"},
		{"ftp scheme", "ftp://example.com", "scheme"},
		{"localhost", "http://localhost/admin", "localhost"},
		{"localhost trailing dot", "http://localhost./admin", "localhost"},
		{"subdomain of localhost", "http://api.localhost", "localhost"},
		{"loopback", "http://127.0.0.1:8080", "private IP"},
		{"RFC 1918", "http://10.1.2.3", "private IP"},
		{"link-local metadata", "http://169.254.169.254/latest/meta-data", "private IP"},
		{"IPv6 loopback", "http://[::1]/", "private IP"},
		{"userinfo confusion", "http://records.example.com@127.0.0.1/", "userinfo"},
		{"missing host", "http:///path", "hostname"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.ValidateURL(tt.url)
			if tt.errContains == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.errContains)
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("error %q does not contain %q", err, tt.errContains)
			}
		})
	}
}

func TestValidateURL_HintsAtConfig(t *testing.T) {
	_, err := New(time.Second).ValidateURL("http://localhost:9000/Policy")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(errors.HintText(err), "cds.allow_private_hosts") {
		t.Errorf("hint missing: %q", errors.HintText(err))
	}
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip      string
		private bool
	}{
		{"10.0.0.1", true},
		{"172.16.5.4", true},
		{"172.32.0.1", false},
		{"192.168.1.1", true},
		{"127.0.0.1", true},
		{"169.254.169.254", true},
		{"100.64.0.1", true},
		{"0.0.0.0", true},
		{"8.8.8.8", false},
		{"::1", true},
		{"fe80::1", true},
		{"fd00::1", true},
		{"::ffff:10.0.0.1", true},
		{"::ffff:8.8.8.8", false},
		{"2001:db8::1", true},
		{"2606:4700:4700::1111", false},
	}

	for _, tt := range tests {
		ip := net.ParseIP(tt.ip)
		if got := isPrivateIP(ip); got != tt.private {
			t.Errorf("isPrivateIP(%s) = %v, want %v", tt.ip, got, tt.private)
		}
	}
}

func TestRedirectProtection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "http://169.254.169.254/latest/meta-data", http.StatusFound)
	}))
	defer server.Close()

	// Allow the first hop to the test server, then check the redirect guard
	client := New(5*time.Second, WithPrivateHosts(true))
	client.blockPrivateIP = true

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	_, err := client.Client.Do(req)
	if err == nil {
		t.Fatal("expected redirect to a private address to be blocked")
	}
	if !strings.Contains(err.Error(), "redirect blocked") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMaxRedirects(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL+"/again", http.StatusFound)
	}))
	defer server.Close()

	client := New(5*time.Second, WithPrivateHosts(true), WithMaxRedirects(3))

	_, err := client.Get(context.Background(), server.URL)
	if err == nil || !strings.Contains(err.Error(), "stopped after 3 redirects") {
		t.Errorf("expected redirect cap error, got %v", err)
	}
}

func TestGet_SendsAcceptHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			w.WriteHeader(http.StatusNotAcceptable)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	resp, err := WrapClient(server.Client()).Get(context.Background(), server.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestDo_BlocksPrivateTarget(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	_, err := New(time.Second).Do(req)
	if err == nil || !strings.Contains(err.Error(), "SSRF") {
		t.Errorf("expected SSRF block for %s, got %v", server.URL, err)
	}
}

func TestIsLocalhost(t *testing.T) {
	for host, want := range map[string]bool{
		"localhost":             true,
		"LOCALHOST":             true,
		"localhost.localdomain": true,
		"app.localhost":         true,
		"localhost.example.com": false,
		"example.com":           false,
	} {
		if got := isLocalhost(host); got != want {
			t.Errorf("isLocalhost(%q) = %v, want %v", host, got, want)
		}
	}
}
