package runs

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"oikenops/flowmetrics/internal/runlog"
	"oikenops/flowmetrics/internal/util"

	"github.com/spf13/cobra"
)

func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent collection runs",
		Long: `List recent collection runs stored locally.

Examples:
  flowmetrics runs list
  flowmetrics runs list --limit 50
  flowmetrics runs list -o json`,
		RunE:         runList,
		SilenceUsage: true,
	}

	cmd.Flags().Int("limit", 25, "Number of runs to display")
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		return fmt.Errorf("limit must be greater than 0")
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = "table"
	}

	repo, err := runlog.Open()
	if err != nil {
		return err
	}
	defer repo.Close()

	records, err := repo.ListRecent(limit)
	if err != nil {
		return err
	}

	if output == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(records)
	}
	if output != "table" {
		return fmt.Errorf("unsupported output format %q", output)
	}

	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No collection runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tRANGE\tWINDOWS\tRECORDS\tOUTCOME\tDURATION")
	fmt.Fprintln(w, "-------\t-----\t-------\t-------\t-------\t--------")
	for _, r := range records {
		started := r.StartedAt.Local().Format("2006-01-02 15:04:05")
		dateRange := r.StartDate
		if r.EndDate != r.StartDate {
			dateRange += ".." + r.EndDate
		}
		windows := fmt.Sprintf("%d/%d", r.WindowsSucceeded, r.WindowsTotal)

		outcome := r.Outcome
		if r.Outcome == runlog.OutcomeError && r.Detail != "" {
			outcome = fmt.Sprintf("%s (%s)", r.Outcome, r.Detail)
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			started,
			dateRange,
			windows,
			r.RecordsWritten,
			outcome,
			util.FormatDuration(r.FinishedAt.Sub(r.StartedAt)),
		)
	}
	w.Flush()
	return nil
}
