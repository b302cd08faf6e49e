package auth

import (
	"errors"
	"fmt"

	"oikenops/flowmetrics/internal/services/auth"

	"github.com/spf13/cobra"
)

func LogoutCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored token",
		Long: `Remove the insights API token from the local keychain.

Example:
  flowmetrics auth logout`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := auth.DefaultStore()

			err := store.DeleteCredential(auth.DefaultKey)
			switch {
			case errors.Is(err, auth.ErrCredentialNotFound):
				fmt.Fprintln(cmd.OutOrStdout(), "No token was stored.")
				return nil
			case err != nil:
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Token removed.")
			return nil
		},
		SilenceUsage: true,
	}

	return cmd
}
