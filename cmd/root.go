package cmd

import (
	"os"

	"oikenops/flowmetrics/cmd/commands/aggregate"
	"oikenops/flowmetrics/cmd/commands/auth"
	"oikenops/flowmetrics/cmd/commands/collect"
	cfgcmd "oikenops/flowmetrics/cmd/commands/config"
	"oikenops/flowmetrics/cmd/commands/dashboard"
	"oikenops/flowmetrics/cmd/commands/runs"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
func rootCmd() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "flowmetrics",
		Short: "Collect and explore integration flow metrics",
		Long: `flowmetrics collects hourly integration flow metrics from the
insights API and stores them as local CSV datasets, with a daily rollup
computed after every collection.

Quick start:
  flowmetrics auth login           # Store your API token
  flowmetrics collect              # Collect the last two days
  flowmetrics dashboard            # Browse the collected data
  flowmetrics runs list            # Review past collection runs`,
	}

	cmd.AddCommand(auth.NewCommand())
	cmd.AddCommand(cfgcmd.NewCommand())
	cmd.AddCommand(collect.NewCommand())
	cmd.AddCommand(aggregate.NewCommand())
	cmd.AddCommand(dashboard.NewCommand())
	cmd.AddCommand(runs.NewCommand())

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	var root = rootCmd()
	err := root.Execute()
	if err != nil {
		os.Exit(1)
	}
}
