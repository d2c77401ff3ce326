package root

import (
	"github.com/spf13/cobra"
)

// Exported RootCmd
var RootCmd = New()

// New builds an empty root command. Subcommand packages attach themselves
// with their Init functions.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fpadmin",
		Short: "Fingerprint attendance admin CLI",
		Long: `Command line dashboard for the biometric attendance API.
Log in once; the session token is kept in ~/.fpadmin_token (or FPADMIN_TOKEN_FILE).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolP("verbose", "v", false, "log API calls to stderr")
	return cmd
}

// Optional helper to return the RootCmd
func GetRoot() *cobra.Command {
	return RootCmd
}
