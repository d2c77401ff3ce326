// Package web serves the admin dashboard as server-rendered HTML. Each
// logged-in admin gets a dashboard.Controller keyed by the token in their
// session cookie; handlers forward form posts to it and render its View.
package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crucial707/fpadmin/internal/config"
	"github.com/crucial707/fpadmin/internal/dashboard"
	"github.com/crucial707/fpadmin/internal/middleware"
	"github.com/crucial707/fpadmin/internal/session"
)

// maxFormBytes caps dashboard form posts.
const maxFormBytes = 64 << 10

// limiterIdle is how long a login bucket may sit untouched before it is swept.
const limiterIdle = 10 * time.Minute

type Server struct {
	api           dashboard.API
	log           *slog.Logger
	secureCookies bool
	sessions      *registry
	loginLimiter  *middleware.IPRateLimiter
}

func NewServer(cfg config.Config, api dashboard.API, log *slog.Logger) *Server {
	s := &Server{
		api:           api,
		log:           log,
		secureCookies: cfg.SecureCookies,
		loginLimiter:  middleware.LoginRateLimiter(cfg.LoginRatePerMinute),
	}
	proxies, err := cfg.TrustedProxyPrefixes()
	if err != nil {
		log.Warn("ignoring trusted proxies", "err", err)
	} else if len(proxies) > 0 {
		s.loginLimiter.TrustProxies(proxies...)
	}
	s.sessions = newRegistry(func(store session.Store, n dashboard.Notifier) *dashboard.Controller {
		// The confirmation page is the consent step, so the controller never asks again.
		return dashboard.New(api, store,
			dashboard.WithNotifier(n),
			dashboard.WithConfirmer(dashboard.Always),
			dashboard.WithLogger(log),
		)
	})
	return s
}

// NewRouter returns the dashboard's HTTP handler.
func NewRouter(cfg config.Config, api dashboard.API, log *slog.Logger) http.Handler {
	return NewServer(cfg, api, log).Routes(cfg)
}

func (s *Server) Routes(cfg config.Config) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer(s.log))
	r.Use(middleware.RequestLog(s.log))
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSCertFile != ""))
	r.Use(middleware.MaxBytes(maxFormBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", s.index)
	r.Get("/login", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusFound)
	})
	r.With(s.loginLimiter.Middleware).Post("/login", s.login)
	r.Get("/logout", s.logout)
	r.Post("/logout", s.logout)
	r.Post("/map", s.saveMapping)
	r.Get("/logs/{id}/delete", s.deleteConfirm)
	r.Post("/logs/{id}/delete", s.deleteLog)
	return r
}

// SweepSessions forgets dashboards idle for longer than the cookie lifetime.
func (s *Server) SweepSessions() {
	if n := s.sessions.sweep(time.Now().Add(-cookieMaxAge * time.Second)); n > 0 {
		s.log.Info("swept idle dashboard sessions", "count", n)
	}
}

// SweepLoginLimiter drops login rate buckets for clients that have gone quiet.
func (s *Server) SweepLoginLimiter() {
	if n := s.loginLimiter.Sweep(limiterIdle); n > 0 {
		s.log.Debug("swept login rate buckets", "count", n)
	}
}
