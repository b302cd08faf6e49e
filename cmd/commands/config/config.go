package config

import (
	"oikenops/flowmetrics/internal/config"

	"github.com/spf13/cobra"
)

// NewCommand returns the "config" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage flowmetrics configuration",
		Long: "View and modify persistent flowmetrics settings.\n\n" +
			"Configuration is stored at ~/.config/flowmetrics/config.json.\n\n" +
			config.KeysHelp(),
	}

	cmd.AddCommand(SetCommand())
	cmd.AddCommand(GetCommand())

	return cmd
}
