package collect

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"oikenops/flowmetrics/internal/config"
	"oikenops/flowmetrics/internal/dataset"
	"oikenops/flowmetrics/internal/domain"
	"oikenops/flowmetrics/internal/pipeline"
	"oikenops/flowmetrics/internal/runlog"
	"oikenops/flowmetrics/internal/services/auth"
	"oikenops/flowmetrics/internal/util"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"golang.org/x/term"

	"github.com/spf13/cobra"
)

// tokenEnvVar lets scripted runs inject the token without touching the
// keychain.
const tokenEnvVar = "FLOWMETRICS_TOKEN"

const defaultDaysBack = 2

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Collect hourly flow metrics and roll them up",
		Long: `Collect hourly flow metrics over a date range and write the
hourly and daily dataset CSV files.

Without date flags the range defaults to the last ` + fmt.Sprint(defaultDaysBack) + ` days up to
today; in a terminal an interactive prompt lets you adjust it first.

Examples:
  flowmetrics collect
  flowmetrics collect --days-back 7
  flowmetrics collect --start 2025-03-01 --end 2025-03-05
  FLOWMETRICS_TOKEN=eyJ... flowmetrics collect --no-input`,
		RunE:         runCollect,
		SilenceUsage: true,
	}

	cmd.Flags().String("start", "", "First date to collect (YYYY-MM-DD)")
	cmd.Flags().String("end", "", "Last date to collect (YYYY-MM-DD, inclusive)")
	cmd.Flags().Int("days-back", defaultDaysBack, "Collect this many days back from today")
	cmd.Flags().Bool("no-input", false, "Never prompt; use flags and defaults as-is")

	return cmd
}

func runCollect(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	start, end, err := resolveRange(cmd)
	if err != nil {
		return err
	}

	noInput, _ := cmd.Flags().GetBool("no-input")
	interactive := !noInput && term.IsTerminal(int(os.Stdin.Fd())) &&
		!cmd.Flags().Changed("start") && !cmd.Flags().Changed("end")

	if interactive {
		start, end, err = promptRange(start, end)
		if err != nil {
			return err
		}
	}

	cred, err := resolveCredential()
	if err != nil {
		return err
	}

	opts := pipeline.Options{
		Endpoint:            cfg.Endpoint,
		TimezoneOffsetHours: cfg.EffectiveOffsetHours(),
		RequestDelay:        cfg.EffectiveRequestDelay(),
		Retry:               cfg.EffectiveRetry(),
	}
	store := dataset.NewStore(cfg.EffectiveDataDir())

	// Progress lines go to stderr except under the spinner, which owns
	// the terminal while the run is in flight.
	var log io.Writer = cmd.ErrOrStderr()
	if interactive {
		log = io.Discard
	}
	p := pipeline.New(opts, cred, store, log)

	startedAt := time.Now()
	var summary *domain.RunSummary
	var runErr error

	run := func() {
		summary, runErr = p.Run(cmd.Context(), cred, start, end)
	}

	if interactive {
		accessible := os.Getenv("ACCESSIBLE") != ""
		spinErr := spinner.New().
			Title(fmt.Sprintf("Collecting %s to %s...", start.Format(util.DateLayout), end.Format(util.DateLayout))).
			Accessible(accessible).
			Output(cmd.ErrOrStderr()).
			Action(run).
			Run()
		if spinErr != nil {
			return spinErr
		}
	} else {
		run()
	}

	recordRun(cmd.ErrOrStderr(), startedAt, start, end, summary, runErr)

	if runErr != nil {
		return runErr
	}

	printSummary(cmd.OutOrStdout(), summary, time.Since(startedAt))
	return nil
}

// resolveRange determines the collection date range from flags. Explicit
// --start/--end win over --days-back; a lone --start collects through
// today, a lone --end collects the usual span ending there.
func resolveRange(cmd *cobra.Command) (start, end time.Time, err error) {
	daysBack, _ := cmd.Flags().GetInt("days-back")
	if daysBack < 0 {
		return start, end, fmt.Errorf("--days-back must not be negative")
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start = today.AddDate(0, 0, -daysBack)
	end = today

	if raw, _ := cmd.Flags().GetString("end"); raw != "" {
		end, err = util.ParseDate(raw)
		if err != nil {
			return start, end, err
		}
		start = end.AddDate(0, 0, -daysBack)
	}
	if raw, _ := cmd.Flags().GetString("start"); raw != "" {
		start, err = util.ParseDate(raw)
		if err != nil {
			return start, end, err
		}
	}

	return start, end, nil
}

// promptRange shows the interactive date form, prefilled with the
// computed defaults.
func promptRange(start, end time.Time) (time.Time, time.Time, error) {
	startStr := start.Format(util.DateLayout)
	endStr := end.Format(util.DateLayout)

	validateDate := func(s string) error {
		_, err := util.ParseDate(strings.TrimSpace(s))
		return err
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("First date").
				Description("Collection starts at this calendar date (YYYY-MM-DD).").
				Value(&startStr).
				Validate(validateDate),
			huh.NewInput().
				Title("Last date").
				Description("Collection ends at this date, inclusive.").
				Value(&endStr).
				Validate(validateDate),
		),
	)

	if err := form.Run(); err != nil {
		return start, end, err
	}

	var err error
	if start, err = util.ParseDate(strings.TrimSpace(startStr)); err != nil {
		return start, end, err
	}
	if end, err = util.ParseDate(strings.TrimSpace(endStr)); err != nil {
		return start, end, err
	}
	return start, end, nil
}

// resolveCredential loads the token from the keychain, falling back to
// the FLOWMETRICS_TOKEN environment variable.
func resolveCredential() (auth.Credential, error) {
	cred, err := auth.DefaultStore().GetCredential(auth.DefaultKey)
	switch {
	case err == nil:
		return cred, nil
	case errors.Is(err, auth.ErrCredentialNotFound):
		if env := strings.TrimSpace(os.Getenv(tokenEnvVar)); env != "" {
			return auth.Credential{Token: env}, nil
		}
		return auth.Credential{}, fmt.Errorf("no token stored: run `flowmetrics auth login` or set %s", tokenEnvVar)
	default:
		return auth.Credential{}, err
	}
}

// recordRun persists the run into the local history database. History is
// best-effort; a failure here must not mask the run's own outcome.
func recordRun(errOut io.Writer, startedAt time.Time, start, end time.Time, summary *domain.RunSummary, runErr error) {
	repo, err := runlog.Open()
	if err != nil {
		fmt.Fprintf(errOut, "Warning: run history unavailable: %v\n", err)
		return
	}
	defer repo.Close()

	record := runlog.RunRecord{
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		StartDate:  start.Format(util.DateLayout),
		EndDate:    end.Format(util.DateLayout),
		Outcome:    runlog.OutcomeError,
	}

	if summary != nil {
		record.WindowsTotal = summary.WindowsTotal
		record.WindowsSucceeded = summary.WindowsSucceeded
		record.RecordsWritten = summary.RecordsWritten
		record.HourlyPath = summary.HourlyPath
		record.DailyPath = summary.DailyPath
	}

	switch {
	case runErr != nil:
		record.Detail = runErr.Error()
	case summary != nil && summary.WindowsSucceeded < summary.WindowsTotal:
		record.Outcome = runlog.OutcomePartial
	default:
		record.Outcome = runlog.OutcomeSuccess
	}

	if err := repo.Save(&record); err != nil {
		fmt.Fprintf(errOut, "Warning: failed to record run: %v\n", err)
	}
}

func printSummary(out io.Writer, summary *domain.RunSummary, elapsed time.Duration) {
	fmt.Fprintf(out, "Collected %d/%d windows, %d record(s) in %s.\n",
		summary.WindowsSucceeded, summary.WindowsTotal, summary.RecordsWritten,
		util.FormatDuration(elapsed))
	fmt.Fprintf(out, "Hourly dataset: %s\n", summary.HourlyPath)
	if summary.DailyPath != "" {
		fmt.Fprintf(out, "Daily dataset:  %s\n", summary.DailyPath)
	}
	if summary.WindowsSucceeded < summary.WindowsTotal {
		fmt.Fprintf(out, "Warning: %d window(s) failed; rerun to fill the gaps.\n",
			summary.WindowsTotal-summary.WindowsSucceeded)
	}
}
