package auth

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/crucial707/fpadmin/cmd/cli/app"
	"github.com/crucial707/fpadmin/cmd/cli/clitest"
	"github.com/crucial707/fpadmin/cmd/cli/output"
	"github.com/crucial707/fpadmin/internal/apiclient"
	"github.com/crucial707/fpadmin/internal/dashboard"
	"github.com/crucial707/fpadmin/internal/mockapi"
)

func TestLogin_FlagsStoreTokenAndShowLogs(t *testing.T) {
	env := clitest.Setup(t)

	res := clitest.Run(t, InitAuth, "", "login", "--username", mockapi.TestUser, "--password", mockapi.TestPassword)
	if res.Err != nil {
		t.Fatalf("login: %v (stderr: %s)", res.Err, res.Stderr)
	}
	if !strings.Contains(res.Stdout, "Login successful") || !strings.Contains(res.Stdout, "Bob") {
		t.Errorf("unexpected output: %s", res.Stdout)
	}
	data, err := os.ReadFile(env.TokenFile)
	if err != nil || len(data) == 0 {
		t.Fatalf("token file not written: %v", err)
	}
	if n := env.Backend.Calls(mockapi.OpListLogs); n != 1 {
		t.Errorf("list calls: got %d, want 1", n)
	}
}

func TestLogin_Prompts(t *testing.T) {
	env := clitest.Setup(t)

	res := clitest.Run(t, InitAuth, mockapi.TestUser+"\n"+mockapi.TestPassword+"\n", "login")
	if res.Err != nil {
		t.Fatalf("login: %v (stderr: %s)", res.Err, res.Stderr)
	}
	if !strings.Contains(res.Stdout, "Username: ") || !strings.Contains(res.Stdout, "Password: ") {
		t.Errorf("expected prompts, got: %s", res.Stdout)
	}
	if _, err := os.Stat(env.TokenFile); err != nil {
		t.Errorf("token file: %v", err)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := clitest.Setup(t)

	res := clitest.Run(t, InitAuth, "", "login", "--username", "admin", "--password", "wrong")
	if res.Err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(res.Err, apiclient.ErrInvalidCredentials) {
		t.Errorf("got %v, want ErrInvalidCredentials", res.Err)
	}
	if !app.IsReported(res.Err) {
		t.Error("invalid credentials notice is already on stderr; main must not repeat it")
	}
	if n := strings.Count(res.Stderr, dashboard.MsgInvalidCredentials); n != 1 {
		t.Errorf("notice count: got %d, want 1 (stderr: %s)", n, res.Stderr)
	}
	if _, err := os.Stat(env.TokenFile); !os.IsNotExist(err) {
		t.Errorf("token file should not exist, stat err: %v", err)
	}
	if n := env.Backend.Calls(mockapi.OpListLogs); n != 0 {
		t.Errorf("list calls: got %d, want 0", n)
	}
}

func TestLogin_ListFailureIsAnError(t *testing.T) {
	env := clitest.Setup(t)
	env.Backend.FailNext(mockapi.OpListLogs, http.StatusInternalServerError)

	res := clitest.Run(t, InitAuth, "", "login", "--username", mockapi.TestUser, "--password", mockapi.TestPassword)
	if res.Err == nil || !strings.Contains(res.Err.Error(), "Could not load logs") {
		t.Fatalf("got %v, want load failure", res.Err)
	}
	if app.IsReported(res.Err) {
		t.Error("load failure has no notice and must be printed")
	}
	if strings.Contains(res.Stdout, output.NoRecords) {
		t.Errorf("stdout: %s", res.Stdout)
	}
	if _, err := os.Stat(env.TokenFile); err != nil {
		t.Errorf("token should be stored: %v", err)
	}
}

func TestLogout_RemovesToken(t *testing.T) {
	env := clitest.Setup(t)
	env.LoggedIn(t)

	res := clitest.Run(t, InitAuth, "", "logout")
	if res.Err != nil {
		t.Fatalf("logout: %v", res.Err)
	}
	if _, err := os.Stat(env.TokenFile); !os.IsNotExist(err) {
		t.Errorf("token file should be removed, stat err: %v", err)
	}
	if n := len(env.Backend.Requests()); n != 0 {
		t.Errorf("logout should not call the API, got %d requests", n)
	}
}
