package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/crucial707/fpadmin/internal/mockapi"
	"github.com/crucial707/fpadmin/internal/models"
)

func seededBackend(t *testing.T) (*mockapi.Backend, *Client) {
	t.Helper()
	backend, srv := mockapi.NewTestServer(t, mockapi.Options{
		Logs: []models.LogEntry{
			{UserID: 7, Name: "Unknown", Date: "2025-01-06", Time: "08:00:00", Direction: models.DirectionIn, Lab: "Lab 1", RecordID: "r1"},
			{UserID: 8, Name: "Unknown", Date: "2025-01-06", Time: "09:00:00", Direction: models.DirectionOut, Lab: "Lab 2", RecordID: "r2"},
		},
	})
	return backend, New(srv.URL, WithTimeout(5*time.Second))
}

func TestClient_Login(t *testing.T) {
	_, c := seededBackend(t)

	token, err := c.Login(context.Background(), mockapi.TestUser, mockapi.TestPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Fatal("expected token")
	}
}

func TestClient_Login_WrongPassword(t *testing.T) {
	_, c := seededBackend(t)

	_, err := c.Login(context.Background(), mockapi.TestUser, "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("got %v, want ErrInvalidCredentials", err)
	}
}

func TestClient_Login_NoTokenField(t *testing.T) {
	backend, c := seededBackend(t)
	backend.SetLoginBody(`{}`)

	_, err := c.Login(context.Background(), "admin", "x")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("got %v, want ErrInvalidCredentials", err)
	}
}

func TestClient_Login_TokenReturnedIsUsedVerbatim(t *testing.T) {
	backend, c := seededBackend(t)
	backend.SetLoginBody(`{"token":"abc"}`)

	token, err := c.Login(context.Background(), "admin", "x")
	if err != nil || token != "abc" {
		t.Fatalf("got %q %v, want abc", token, err)
	}
	reqs := backend.Requests()
	if len(reqs) != 1 {
		t.Fatalf("requests: got %d, want 1", len(reqs))
	}
	var body models.Credentials
	if err := json.Unmarshal(reqs[0].Body, &body); err != nil {
		t.Fatalf("decode login body: %v", err)
	}
	if body.Username != "admin" || body.Password != "x" {
		t.Errorf("login body: %+v", body)
	}
}

func TestClient_Login_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).Login(context.Background(), "admin", "x")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("got %v, want ErrInvalidCredentials", err)
	}
}

func TestClient_ListLogs(t *testing.T) {
	backend, c := seededBackend(t)
	token, err := backend.IssueToken()
	if err != nil {
		t.Fatal(err)
	}

	rows, err := c.ListLogs(context.Background(), token)
	if err != nil {
		t.Fatalf("ListLogs: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows: got %d, want 2", len(rows))
	}
	if rows[0].RecordID != "r1" || rows[0].Index != 1 || rows[1].Direction != models.DirectionOut {
		t.Errorf("unexpected rows: %+v", rows)
	}
}

func TestClient_ListLogs_Unauthorized(t *testing.T) {
	_, c := seededBackend(t)

	_, err := c.ListLogs(context.Background(), "not-a-jwt")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("got %v, want ErrUnauthorized", err)
	}
}

func TestClient_ListLogs_ServerError(t *testing.T) {
	backend, c := seededBackend(t)
	token, _ := backend.IssueToken()
	backend.FailNext(mockapi.OpListLogs, http.StatusBadGateway)

	_, err := c.ListLogs(context.Background(), token)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("got %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusBadGateway || apiErr.Body != "injected failure" {
		t.Errorf("unexpected APIError: %+v", apiErr)
	}
}

func TestClient_CreateMapping(t *testing.T) {
	backend, c := seededBackend(t)
	token, _ := backend.IssueToken()

	if err := c.CreateMapping(context.Background(), token, models.Mapping{UserID: 7, Name: "Alice"}); err != nil {
		t.Fatalf("CreateMapping: %v", err)
	}
	reqs := backend.Requests()
	if got := string(reqs[len(reqs)-1].Body); got != `{"userId":7,"name":"Alice"}` {
		t.Errorf("body: got %s", got)
	}
	if backend.Mappings()[7] != "Alice" {
		t.Errorf("mapping not stored: %v", backend.Mappings())
	}
	if rows := backend.Logs(); rows[0].Name != "Alice" {
		t.Errorf("mapped name not applied: %+v", rows[0])
	}
}

func TestClient_DeleteLog(t *testing.T) {
	backend, c := seededBackend(t)
	token, _ := backend.IssueToken()

	if err := c.DeleteLog(context.Background(), token, "r1"); err != nil {
		t.Fatalf("DeleteLog: %v", err)
	}
	if rows := backend.Logs(); len(rows) != 1 || rows[0].RecordID != "r2" {
		t.Errorf("unexpected rows after delete: %+v", rows)
	}

	err := c.DeleteLog(context.Background(), token, "missing")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Errorf("got %v, want 404 APIError", err)
	}
}

func TestClient_DeleteLog_EscapesID(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("missing bearer header: %q", r.Header.Get("Authorization"))
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	if err := New(srv.URL+"/").DeleteLog(context.Background(), "tok", "a/b c"); err != nil {
		t.Fatalf("DeleteLog: %v", err)
	}
	if gotPath != "/api/logs/a%2Fb%20c" {
		t.Errorf("path: got %q", gotPath)
	}
}

func TestAPIError_Truncates(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write(long)
	}))
	defer srv.Close()

	err := New(srv.URL).CreateMapping(context.Background(), "tok", models.Mapping{UserID: 1})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("got %v", err)
	}
	if len(apiErr.Body) != maxErrorBody+3 {
		t.Errorf("body length: got %d, want %d", len(apiErr.Body), maxErrorBody+3)
	}
}
