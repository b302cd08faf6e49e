package auth

import (
	"fmt"
	"os"
	"strings"
	"time"

	"oikenops/flowmetrics/internal/services/auth"

	"golang.org/x/term"

	"github.com/spf13/cobra"
)

func LoginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the insights API token",
		Long: `Store the insights API token in the local keychain.

The token is copied from the provider console. Pass its expiry so the
collector can refuse to start with a stale token instead of failing
mid-run.

Examples:
  flowmetrics auth login
  flowmetrics auth login --token eyJhb... --expires 2025-06-01T12:00:00Z`,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := cmd.Flags().GetString("token")
			if err != nil {
				return err
			}

			token = strings.TrimSpace(token)
			if token == "" {
				fmt.Fprint(os.Stdout, "Enter API token: ")
				bytes, err := term.ReadPassword(int(os.Stdin.Fd()))
				fmt.Fprintln(os.Stdout)
				if err != nil {
					return err
				}
				token = strings.TrimSpace(string(bytes))
			}

			if token == "" {
				return fmt.Errorf("token cannot be empty")
			}

			expiresRaw, _ := cmd.Flags().GetString("expires")
			expiresRaw = strings.TrimSpace(expiresRaw)

			var expiresAt time.Time
			if expiresRaw != "" {
				expiresAt, err = parseExpiry(expiresRaw)
				if err != nil {
					return err
				}
			}

			store := auth.DefaultStore()
			cred := auth.Credential{Token: token, ExpiresAt: expiresAt}
			if err := store.SetCredential(auth.DefaultKey, cred); err != nil {
				return err
			}

			if expiresAt.IsZero() {
				fmt.Fprintln(cmd.OutOrStdout(), "Saved token (no expiry recorded).")
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Saved token, valid until %s.\n",
					expiresAt.Local().Format("2006-01-02 15:04:05"))
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.Flags().String("token", "", "API token (optional, overrides prompt)")
	cmd.Flags().String("expires", "", "Token expiry as RFC 3339 timestamp or YYYY-MM-DD")

	return cmd
}

// parseExpiry accepts an RFC 3339 timestamp or a bare date (interpreted
// as local midnight at the end of that day).
func parseExpiry(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if d, err := time.ParseInLocation("2006-01-02", raw, time.Local); err == nil {
		return d.AddDate(0, 0, 1), nil
	}
	return time.Time{}, fmt.Errorf("invalid expiry %q: use RFC 3339 or YYYY-MM-DD", raw)
}
