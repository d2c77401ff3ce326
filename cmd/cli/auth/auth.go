package auth

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crucial707/fpadmin/cmd/cli/app"
	"github.com/crucial707/fpadmin/internal/apiclient"
	"github.com/crucial707/fpadmin/internal/models"
)

// InitAuth registers login and logout on the root command.
func InitAuth(rootCmd *cobra.Command) {
	rootCmd.AddCommand(loginCmd(), logoutCmd())
}

// loginCmd logs the admin in, stores the token and shows the logs.
func loginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the attendance API",
		Long:  "Authenticate as the admin, store the session token locally and print the attendance logs.",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			if username == "" {
				username = prompt(in, cmd.OutOrStdout(), "Username: ")
			}
			if password == "" {
				password = prompt(in, cmd.OutOrStdout(), "Password: ")
			}

			a, err := app.New(cmd, true)
			if err != nil {
				return err
			}
			creds := models.Credentials{Username: strings.TrimSpace(username), Password: password}
			if err := a.Ctrl.Login(cmd.Context(), creds); err != nil && !a.Ctrl.View().LoggedIn() {
				if errors.Is(err, apiclient.ErrInvalidCredentials) {
					return app.Reported(err)
				}
				return fmt.Errorf("login failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Login successful. Token stored locally.")
			return a.Show(cmd, false)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "admin username (prompted when omitted)")
	cmd.Flags().StringVar(&password, "password", "", "admin password (prompted when omitted)")

	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out",
		Long:  "Remove the locally saved session token.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cmd, true)
			if err != nil {
				return err
			}
			if err := a.Ctrl.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func prompt(in *bufio.Reader, out io.Writer, label string) string {
	fmt.Fprint(out, label)
	line, _ := in.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}
