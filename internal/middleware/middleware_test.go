package middleware

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/crucial707/fpadmin/internal/metrics"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoginRateLimiter_BlocksAfterBurst(t *testing.T) {
	lim := LoginRateLimiter(4) // burst 2
	h := lim.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("POST", "/login", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("first two requests should pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("third request: got %d, want 429", codes[2])
	}

	// A different client has its own bucket.
	req := httptest.NewRequest("POST", "/login", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("other client: got %d, want 200", rr.Code)
	}
}

func TestLoginRateLimiter_IgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	lim := LoginRateLimiter(2) // burst 1
	h := lim.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	passed := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest("POST", "/login", nil)
		req.RemoteAddr = "203.0.113.7:40000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		req.Header.Set("X-Real-IP", fmt.Sprintf("192.0.2.%d", i))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code == http.StatusOK {
			passed++
		}
	}
	if passed != 1 {
		t.Errorf("passed: got %d, want 1", passed)
	}
	if got := lim.Len(); got != 1 {
		t.Errorf("tracked IPs: got %d, want 1", got)
	}
}

func TestClientIP(t *testing.T) {
	proxy := netip.MustParsePrefix("10.0.0.0/8")
	tests := []struct {
		name    string
		trusted []netip.Prefix
		remote  string
		xff     string
		xri     string
		want    string
	}{
		{"socket peer", nil, "192.168.1.9:4000", "", "", "192.168.1.9"},
		{"untrusted peer ignores xff", nil, "192.168.1.9:4000", "1.2.3.4, 5.6.7.8", "", "192.168.1.9"},
		{"untrusted peer ignores x-real-ip", nil, "192.168.1.9:4000", "", "1.2.3.4", "192.168.1.9"},
		{"trusted proxy takes last hop", []netip.Prefix{proxy}, "10.0.0.5:4000", "1.2.3.4, 5.6.7.8", "", "5.6.7.8"},
		{"trusted chain skipped", []netip.Prefix{proxy}, "10.0.0.5:4000", "5.6.7.8, 10.1.1.1", "", "5.6.7.8"},
		{"trusted proxy x-real-ip", []netip.Prefix{proxy}, "10.0.0.5:4000", "", "1.2.3.4", "1.2.3.4"},
		{"trusted proxy no headers", []netip.Prefix{proxy}, "10.0.0.5:4000", "", "", "10.0.0.5"},
		{"garbage hop", []netip.Prefix{proxy}, "10.0.0.5:4000", "nonsense", "", "10.0.0.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lim := NewIPRateLimiter(1, 1).TrustProxies(tt.trusted...)
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			if got := lim.clientIP(req); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIPRateLimiter_Sweep(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	lim := LoginRateLimiter(10)
	lim.now = func() time.Time { return now }

	pass := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	hit := func(addr string) {
		req := httptest.NewRequest("POST", "/login", nil)
		req.RemoteAddr = addr
		lim.Middleware(pass).ServeHTTP(httptest.NewRecorder(), req)
	}
	hit("10.0.0.1:1")
	now = now.Add(30 * time.Minute)
	hit("10.0.0.2:1")

	if n := lim.Sweep(10 * time.Minute); n != 1 {
		t.Errorf("swept: got %d, want 1", n)
	}
	if got := lim.Len(); got != 1 {
		t.Errorf("remaining: got %d, want 1", got)
	}
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if got := rr.Header().Get("Content-Security-Policy"); got != DashboardCSP {
		t.Errorf("CSP: got %q", got)
	}
	if rr.Header().Get("Strict-Transport-Security") == "" {
		t.Error("expected HSTS header")
	}
	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("expected X-Frame-Options DENY")
	}
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", rr.Code)
	}
	if !strings.HasPrefix(rr.Header().Get("Content-Type"), "text/plain") {
		t.Errorf("html client should get plain text, got %q", rr.Header().Get("Content-Type"))
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/logs", nil))
	if !strings.Contains(rr.Body.String(), `"error":"internal server error"`) {
		t.Errorf("api client should get JSON, got %q", rr.Body.String())
	}
}

func TestRequestLog(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	h := RequestLog(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("hi"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", nil))

	out := buf.String()
	for _, want := range []string{"path=/health", "status=418", "size=2"} {
		if !strings.Contains(out, want) {
			t.Errorf("log line missing %q: %s", want, out)
		}
	}
}

func TestMaxBytes(t *testing.T) {
	h := MaxBytes(4)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			http.Error(w, "too large", http.StatusRequestEntityTooLarge)
			return
		}
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("POST", "/map", strings.NewReader("0123456789")))
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status: got %d, want 413", rr.Code)
	}
}

func TestPrometheus_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Prometheus)
	r.Get("/logs/{id}/delete", func(w http.ResponseWriter, r *http.Request) {})

	counter := metrics.RequestTotal.WithLabelValues("GET", "/logs/{id}/delete", "200")
	before := testutil.ToFloat64(counter)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/logs/65a1f0c2e4b0a1b2c3d4e5f6/delete", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/logs/r2/delete", nil))

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("counter delta: got %v, want 2", got)
	}
}

func TestMaxBytes_IgnoresGet(t *testing.T) {
	h := MaxBytes(4)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			http.Error(w, "too large", http.StatusRequestEntityTooLarge)
			return
		}
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", strings.NewReader("0123456789")))
	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rr.Code)
	}
}
