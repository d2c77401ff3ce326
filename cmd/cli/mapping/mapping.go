package mapping

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crucial707/fpadmin/cmd/cli/app"
	"github.com/crucial707/fpadmin/internal/dashboard"
	"github.com/crucial707/fpadmin/internal/models"
)

// InitMapping registers the map command on the root command.
func InitMapping(rootCmd *cobra.Command) {
	rootCmd.AddCommand(mapCmd())
}

// mapCmd assigns a display name to a fingerprint user id and shows the
// refreshed logs.
func mapCmd() *cobra.Command {
	var id, name string

	cmd := &cobra.Command{
		Use:     "map",
		Short:   "Map a fingerprint user id to a name",
		Example: "  fpadmin map --id 7 --name Alice",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cmd, true)
			if err != nil {
				return err
			}
			if !a.RequireSession(cmd) {
				return nil
			}

			err = a.Ctrl.SaveMapping(cmd.Context(), models.MappingInput{UserID: id, Name: name})
			switch {
			case err != nil && !a.Ctrl.View().LoggedIn():
				return app.ErrSessionEnded
			case errors.Is(err, dashboard.ErrValidation):
				return app.Reported(err)
			case errors.Is(err, dashboard.ErrReloadFailed):
				return fmt.Errorf("mapping saved, but %w", err)
			case err != nil && !errors.Is(err, dashboard.ErrStale):
				return fmt.Errorf("save mapping: %w", err)
			}
			return a.Show(cmd, false)
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "fingerprint user id (integer)")
	cmd.Flags().StringVar(&name, "name", "", "display name")

	return cmd
}
