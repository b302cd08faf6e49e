package auth

import (
	"errors"
	"fmt"
	"time"

	"oikenops/flowmetrics/internal/services/auth"
	"oikenops/flowmetrics/internal/util"

	"github.com/spf13/cobra"
)

func StatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether a usable token is stored",
		Long: `Show whether an insights API token is stored and how long it
remains valid.

Example:
  flowmetrics auth status`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := auth.DefaultStore()

			cred, err := store.GetCredential(auth.DefaultKey)
			switch {
			case errors.Is(err, auth.ErrCredentialNotFound):
				fmt.Fprintln(cmd.OutOrStdout(), "not logged in")
				return nil
			case err != nil:
				return err
			}

			now := time.Now()
			if err := cred.Validate(now); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "logged in, but token is unusable: %v\n", err)
				return nil
			}

			if cred.ExpiresAt.IsZero() {
				fmt.Fprintln(cmd.OutOrStdout(), "logged in (expiry unknown)")
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "logged in, token valid for %s (until %s)\n",
				util.FormatDuration(cred.TimeLeft(now)),
				cred.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
			return nil
		},
		SilenceUsage: true,
	}

	return cmd
}
