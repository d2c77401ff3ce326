// Package app wires the CLI commands to the dashboard controller: config from
// the environment, the attendance API client and the token file.
package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crucial707/fpadmin/cmd/cli/output"
	"github.com/crucial707/fpadmin/internal/apiclient"
	"github.com/crucial707/fpadmin/internal/config"
	"github.com/crucial707/fpadmin/internal/dashboard"
	"github.com/crucial707/fpadmin/internal/logging"
	"github.com/crucial707/fpadmin/internal/session"
)

// ErrSessionEnded is returned when the API rejected the stored token.
var ErrSessionEnded = errors.New("session ended, run `fpadmin login`")

// reportedError is a failure whose notice has already been printed.
type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

// Reported marks err as already shown to the user, so main exits non-zero
// without printing it a second time.
func Reported(err error) error {
	if err == nil {
		return nil
	}
	return reportedError{err: err}
}

// IsReported reports whether err was marked by Reported.
func IsReported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}

type App struct {
	Config config.Config
	Store  *session.FileStore
	API    *apiclient.Client
	Ctrl   *dashboard.Controller
}

// New loads the configuration and builds a controller whose notices go to
// the command's stderr and whose delete confirmation is asked on its stdin.
// When assumeYes is set deletes are not confirmed interactively.
func New(cmd *cobra.Command, assumeYes bool) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := "warn"
	if f := cmd.Flag("verbose"); f != nil && f.Value.String() == "true" {
		level = "debug"
	}
	log := logging.New(cmd.ErrOrStderr(), cfg.LogFormat, level)

	api := apiclient.New(cfg.APIURL,
		apiclient.WithTimeout(cfg.HTTPTimeout),
		apiclient.WithLogger(log),
	)
	store := session.NewFileStore(cfg.TokenPath())

	var confirm dashboard.Confirmer = dashboard.Always
	if !assumeYes {
		confirm = Prompter(cmd.InOrStdin(), cmd.OutOrStdout())
	}

	ctrl := dashboard.New(api, store,
		dashboard.WithNotifier(Printer(cmd.ErrOrStderr())),
		dashboard.WithConfirmer(confirm),
		dashboard.WithLogger(log),
	)
	return &App{Config: cfg, Store: store, API: api, Ctrl: ctrl}, nil
}

// Printer writes notices one per line, errors prefixed.
func Printer(w io.Writer) dashboard.Notifier {
	return dashboard.NotifierFunc(func(n dashboard.Notice) {
		if n.Kind == dashboard.Error {
			fmt.Fprintln(w, "Error:", n.Message)
			return
		}
		fmt.Fprintln(w, n.Message)
	})
}

// Prompter asks a y/N question on out and reads the answer from in.
func Prompter(in io.Reader, out io.Writer) dashboard.Confirmer {
	reader := bufio.NewReader(in)
	return dashboard.ConfirmFunc(func(prompt string) bool {
		fmt.Fprintf(out, "%s [y/N]: ", prompt)
		answer, _ := reader.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	})
}

// Show prints the current rows as a table (or JSON). It returns
// ErrSessionEnded when the view is logged out, and the banner as an error
// without printing any rows when the last load failed.
func (a *App) Show(cmd *cobra.Command, asJSON bool) error {
	v := a.Ctrl.View()
	if !v.LoggedIn() {
		return ErrSessionEnded
	}
	if v.Banner != "" {
		return errors.New(v.Banner)
	}
	if asJSON {
		return output.RenderJSON(cmd.OutOrStdout(), v.Rows)
	}
	output.RenderLogs(cmd.OutOrStdout(), v.Rows)
	return nil
}

// RequireSession restores the stored token. Without one it prints the
// login hint and reports false.
func (a *App) RequireSession(cmd *cobra.Command) bool {
	if a.Ctrl.Resume() {
		return true
	}
	fmt.Fprintln(cmd.OutOrStdout(), dashboard.MsgNotLoggedIn)
	return false
}
