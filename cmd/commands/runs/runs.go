package runs

import "github.com/spf13/cobra"

// NewCommand returns the "runs" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "View and manage collection run history",
		Long: "View the local history of collection runs and prune old entries.\n\n" +
			"Run history is stored locally in ~/.config/flowmetrics/flowmetrics.db.",
		SilenceUsage: true,
	}

	cmd.AddCommand(ListCommand())
	cmd.AddCommand(PruneCommand())

	return cmd
}
