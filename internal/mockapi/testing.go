package mockapi

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
)

// Test credentials accepted by NewTestServer backends.
const (
	TestUser     = "admin"
	TestPassword = "x"
)

// NewTestServer starts a backend on an httptest server closed at test cleanup.
// Zero-valued credentials in opts default to TestUser/TestPassword.
func NewTestServer(t testing.TB, opts Options) (*Backend, *httptest.Server) {
	t.Helper()
	if opts.AdminUser == "" {
		opts.AdminUser = TestUser
	}
	if opts.AdminPassword == "" {
		opts.AdminPassword = TestPassword
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	b, err := New(opts)
	if err != nil {
		t.Fatalf("mockapi.New: %v", err)
	}
	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)
	return b, srv
}
