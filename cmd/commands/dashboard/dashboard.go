package dashboard

import (
	"fmt"
	"os"
	"strings"

	"oikenops/flowmetrics/internal/config"
	"oikenops/flowmetrics/internal/dataset"
	"oikenops/flowmetrics/internal/tui"
	"oikenops/flowmetrics/internal/util"

	"golang.org/x/term"

	"github.com/spf13/cobra"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Browse collected metrics interactively",
		Long: `Open an interactive dashboard over the collected datasets.

The dashboard shows headline totals and per-flow charts from the hourly
and daily CSV files. It reads local data only; run a collection first.

Examples:
  flowmetrics dashboard
  flowmetrics dashboard --date 2025-03-10`,
		RunE:         runDashboard,
		SilenceUsage: true,
	}

	cmd.Flags().String("date", "", "Run date of the dataset to open (defaults to the latest)")

	return cmd
}

func runDashboard(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("dashboard requires an interactive terminal")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	runDate, _ := cmd.Flags().GetString("date")
	runDate = strings.TrimSpace(runDate)
	if runDate != "" {
		if _, err := util.ParseDate(runDate); err != nil {
			return err
		}
	}

	store := dataset.NewStore(cfg.EffectiveDataDir())
	return tui.RunDashboard(store, runDate)
}
