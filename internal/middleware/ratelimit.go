package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type ipBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// IPRateLimiter limits requests per client IP using a token bucket per IP.
// The client IP is the socket peer unless that peer is a trusted proxy.
type IPRateLimiter struct {
	ips     map[string]*ipBucket
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	trusted []netip.Prefix
	now     func() time.Time
}

// NewIPRateLimiter creates a per-IP rate limiter. limit is events per second (e.g. rate.Every(time.Minute) for 1/min);
// for N per minute use rate.Limit(float64(N)/60.0). burst is max tokens per bucket.
func NewIPRateLimiter(limit rate.Limit, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		ips:   make(map[string]*ipBucket),
		limit: limit,
		burst: burst,
		now:   time.Now,
	}
}

// TrustProxies makes the limiter read X-Forwarded-For and X-Real-IP when the
// socket peer falls inside one of prefixes. Call before serving.
func (l *IPRateLimiter) TrustProxies(prefixes ...netip.Prefix) *IPRateLimiter {
	l.trusted = append(l.trusted, prefixes...)
	return l
}

func (l *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.ips[ip]
	if !ok {
		b = &ipBucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.ips[ip] = b
	}
	b.seen = l.now()
	return b.lim
}

// Sweep drops buckets untouched for longer than idle and reports how many went.
func (l *IPRateLimiter) Sweep(idle time.Duration) int {
	cutoff := l.now().Add(-idle)
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for ip, b := range l.ips {
		if b.seen.Before(cutoff) {
			delete(l.ips, ip)
			n++
		}
	}
	return n
}

// Len reports the number of tracked client IPs.
func (l *IPRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.ips)
}

func (l *IPRateLimiter) isTrusted(addr netip.Addr) bool {
	for _, p := range l.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// clientIP returns the socket peer. Behind a trusted proxy it walks
// X-Forwarded-For from the right and returns the first untrusted hop,
// falling back to X-Real-IP.
func (l *IPRateLimiter) clientIP(r *http.Request) string {
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		host = h
	}
	peer, err := netip.ParseAddr(host)
	if err != nil || !l.isTrusted(peer.Unmap()) {
		return host
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				break
			}
			if !l.isTrusted(hop.Unmap()) {
				return hop.Unmap().String()
			}
		}
	}
	if xri, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return xri.Unmap().String()
	}
	return host
}

// Middleware returns a chi-compatible middleware that returns 429 when the client IP exceeds the rate.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lim := l.getLimiter(l.clientIP(r))
		if !lim.Allow() {
			w.Header().Set("Retry-After", "60")
			http.Error(w, "too many login attempts, try again in a minute", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LoginRateLimiter returns a limiter for the dashboard login form: perMinute attempts per IP,
// with a burst of half that (at least 1).
func LoginRateLimiter(perMinute int) *IPRateLimiter {
	burst := perMinute / 2
	if burst < 1 {
		burst = 1
	}
	return NewIPRateLimiter(rate.Limit(float64(perMinute)/60.0), burst)
}
