// Package clitest runs CLI commands against an in-memory attendance API.
package clitest

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/crucial707/fpadmin/cmd/cli/root"
	"github.com/crucial707/fpadmin/internal/mockapi"
	"github.com/crucial707/fpadmin/internal/models"
)

// Env is a backend plus the token file the CLI will use.
type Env struct {
	Backend   *mockapi.Backend
	TokenFile string
}

// Setup starts a seeded backend and points the CLI at it through the environment.
func Setup(t *testing.T) *Env {
	t.Helper()
	backend, srv := mockapi.NewTestServer(t, mockapi.Options{
		Logs: []models.LogEntry{
			{UserID: 7, Name: "Unknown", Date: "2025-01-06", Time: "08:00:00", Direction: models.DirectionIn, Lab: "Lab 1", RecordID: "r1"},
			{UserID: 8, Name: "Bob", Date: "2025-01-06", Time: "17:00:00", Direction: models.DirectionOut, Lab: "Lab 2", RecordID: "r2"},
		},
	})
	tokenFile := filepath.Join(t.TempDir(), "token")
	t.Setenv("FPADMIN_API_URL", srv.URL)
	t.Setenv("FPADMIN_TOKEN_FILE", tokenFile)
	t.Setenv("FPADMIN_HTTP_TIMEOUT", "5s")
	return &Env{Backend: backend, TokenFile: tokenFile}
}

// LoggedIn writes a valid token to the token file.
func (e *Env) LoggedIn(t *testing.T) {
	t.Helper()
	tok, err := e.Backend.IssueToken()
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if err := os.WriteFile(e.TokenFile, []byte(tok), 0o600); err != nil {
		t.Fatalf("write token: %v", err)
	}
}

// Result is the captured outcome of one CLI run.
type Result struct {
	Stdout string
	Stderr string
	Err    error
}

// Run builds a fresh root with register attached and executes args with stdin.
func Run(t *testing.T, register func(*cobra.Command), stdin string, args ...string) Result {
	t.Helper()
	rootCmd := root.New()
	register(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return Result{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
}
