package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
}

// NewRootCommand creates the root command of the reservation server.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "bellavista",
		Short: "Bella Vista table reservations",
		Long:  "Table reservation engine of Trattoria Bella Vista: web and voice agent booking API, admin tools and reports.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.Verbose {
				enableDebugLogging()
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewAvailabilityCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}
