package logs

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crucial707/fpadmin/cmd/cli/app"
	"github.com/crucial707/fpadmin/internal/dashboard"
)

// ==========================
// Init Logs
// ==========================
func InitLogs(rootCmd *cobra.Command) {

	logsCmd := &cobra.Command{
		Use:   "logs",
		Short: "View and delete attendance logs",
	}

	logsCmd.AddCommand(
		listLogsCmd(),
		deleteLogCmd(),
	)

	rootCmd.AddCommand(logsCmd)
}

// ==========================
// LIST
// ==========================
func listLogsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List attendance logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cmd, true)
			if err != nil {
				return err
			}
			if !a.RequireSession(cmd) {
				return nil
			}
			err = a.Ctrl.Reload(cmd.Context())
			switch {
			case err != nil && !a.Ctrl.View().LoggedIn():
				return app.ErrSessionEnded
			case err != nil && !errors.Is(err, dashboard.ErrStale):
				return fmt.Errorf("list logs: %w", err)
			}
			return a.Show(cmd, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the rows as JSON")

	return cmd
}

// ==========================
// DELETE
// ==========================
func deleteLogCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete [record-id]",
		Short: "Delete one log entry",
		Long:  "Delete a log entry by its record id (the Record column of `logs list`). Asks for confirmation unless --yes is given.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cmd, yes)
			if err != nil {
				return err
			}
			if !a.RequireSession(cmd) {
				return nil
			}

			err = a.Ctrl.Delete(cmd.Context(), args[0])
			switch {
			case errors.Is(err, dashboard.ErrNotConfirmed):
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			case err != nil && !a.Ctrl.View().LoggedIn():
				return app.ErrSessionEnded
			case errors.Is(err, dashboard.ErrReloadFailed):
				return fmt.Errorf("deleted %s, but %w", args[0], err)
			case err != nil && !errors.Is(err, dashboard.ErrStale):
				return fmt.Errorf("delete %s: %w", args[0], err)
			}
			return a.Show(cmd, false)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking")

	return cmd
}
