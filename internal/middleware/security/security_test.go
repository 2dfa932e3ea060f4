package security

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"bilancio/internal/log"
)

func quietLogger() *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Output = io.Discard
	return log.New(cfg)
}

func TestDetectSuspiciousRequest(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		target     string
		userAgent  string
		suspicious bool
	}{
		{name: "plain api call", method: http.MethodGet, target: "/api/summary/monthly?year=2025&month=6"},
		{name: "curl is a normal client", method: http.MethodGet, target: "/api/categories", userAgent: "curl/8.5.0"},
		{name: "path traversal", method: http.MethodGet, target: "/api/../etc/passwd", suspicious: true},
		{name: "dotenv probe", method: http.MethodGet, target: "/.env", suspicious: true},
		{name: "sql injection in query", method: http.MethodGet, target: "/api/transactions?year=1%20UNION%20SELECT", suspicious: true},
		{name: "scanner agent", method: http.MethodGet, target: "/", userAgent: "sqlmap/1.7", suspicious: true},
		{name: "trace method", method: "TRACE", target: "/", suspicious: true},
	}

	d := NewDetector(quietLogger(), DefaultHeadersConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.userAgent != "" {
				r.Header.Set("User-Agent", tt.userAgent)
			}
			got := d.DetectSuspiciousRequest(r) != ""
			if got != tt.suspicious {
				t.Errorf("DetectSuspiciousRequest() = %v, want %v", got, tt.suspicious)
			}
		})
	}

	if got := d.GetMetrics().SuspiciousRequests; got != 5 {
		t.Errorf("SuspiciousRequests = %d, want 5", got)
	}
}

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		realIP     string
		want       string
	}{
		{name: "direct client", remoteAddr: "203.0.113.7:5000", want: "203.0.113.7"},
		{name: "untrusted peer ignores XFF", remoteAddr: "203.0.113.7:5000", xff: "198.51.100.1", want: "203.0.113.7"},
		{name: "trusted proxy uses first XFF", remoteAddr: "10.0.0.2:443", xff: "198.51.100.1, 10.0.0.3", want: "198.51.100.1"},
		{name: "trusted proxy uses X-Real-IP", remoteAddr: "127.0.0.1:80", realIP: "198.51.100.9", want: "198.51.100.9"},
		{name: "invalid XFF falls back", remoteAddr: "192.168.1.1:80", xff: "not-an-ip", want: "192.168.1.1"},
	}

	d := NewDetector(quietLogger(), DefaultHeadersConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := d.ExtractClientIP(r); got != tt.want {
				t.Errorf("ExtractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMiddlewareSetsHeadersAndPassesThrough(t *testing.T) {
	d := NewDetector(quietLogger(), DefaultHeadersConfig())
	called := false
	h := d.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/.git/config", nil))

	if !called {
		t.Fatal("suspicious requests must still reach the handler")
	}
	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Cache-Control":          "no-store",
	} {
		if got := rec.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be sent over plain HTTP")
	}
}
