package aggregate

import (
	"errors"
	"fmt"
	"strings"

	"oikenops/flowmetrics/internal/aggregate"
	"oikenops/flowmetrics/internal/config"
	"oikenops/flowmetrics/internal/dataset"
	"oikenops/flowmetrics/internal/domain"
	"oikenops/flowmetrics/internal/util"

	"github.com/spf13/cobra"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Recompute the daily rollup from an hourly dataset",
		Long: `Recompute the daily rollup CSV from an existing hourly dataset.

Collection runs do this automatically; use this command to rebuild a
daily file after the fact, for example after editing the hourly data.

Examples:
  flowmetrics aggregate                 # latest dataset
  flowmetrics aggregate --date 2025-03-10`,
		RunE:         runAggregate,
		SilenceUsage: true,
	}

	cmd.Flags().String("date", "", "Run date of the dataset to aggregate (YYYY-MM-DD)")

	return cmd
}

func runAggregate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	store := dataset.NewStore(cfg.EffectiveDataDir())

	runDate, _ := cmd.Flags().GetString("date")
	runDate = strings.TrimSpace(runDate)
	if runDate == "" {
		runDate, err = store.LatestRunDate()
		if err != nil {
			return err
		}
	} else if _, err := util.ParseDate(runDate); err != nil {
		return err
	}

	rows, err := aggregate.New(store).Run(runDate)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyDataset) {
			return fmt.Errorf("hourly dataset for %s has no rows", runDate)
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d daily row(s) to %s\n",
		len(rows), store.DailyPath(runDate))
	return nil
}
