package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/use-agent/badgecount/batch"
	"github.com/use-agent/badgecount/config"
	"github.com/use-agent/badgecount/counter"
	"github.com/use-agent/badgecount/logging"
	"github.com/use-agent/badgecount/models"
	"github.com/use-agent/badgecount/sheet"
	"github.com/use-agent/badgecount/webhook"
)

type sessionFactory func(ctx context.Context) (counter.Session, error)

type syncOptions struct {
	SheetPath  string
	SheetName  string
	Output     string
	DryRun     bool
	NoProgress bool
	LogLevel   string
}

// syncReport is printed at the end of a run and sent as the webhook payload.
type syncReport struct {
	RunID    string            `json:"run_id"`
	Sheet    string            `json:"sheet"`
	Output   string            `json:"output,omitempty"`
	DryRun   bool              `json:"dry_run"`
	Summary  models.BatchStats `json:"summary"`
	Duration int64             `json:"duration_ms"`
}

func newRootCmd(cfg *config.Config, open sessionFactory, stdout, stderr io.Writer) *cobra.Command {
	opts := syncOptions{
		SheetPath: cfg.Sheet.Path,
		SheetName: cfg.Sheet.Name,
	}
	var logger *logging.Logger

	cmd := &cobra.Command{
		Use:   "badgesync",
		Short: "Count profile badges for every row of a tracker workbook",
		Long: `badgesync reads profile URLs from an xlsx workbook, counts the badges on
each public profile with one headless browser session, and writes the counts
into the "Badge Count" column.

Rows without an http:// or https:// URL are skipped and left blank.

  badgesync --sheet tracker.xlsx
  badgesync --sheet tracker.xlsx --sheet-name "Jam 2024" --output counted.xlsx
  badgesync --sheet tracker.xlsx --dry-run`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logCfg := cfg.Log
			if opts.LogLevel != "" {
				logCfg.Level = opts.LogLevel
			}
			logger = logging.Setup(logCfg, stderr)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := runSync(cmd.Context(), cfg, open, opts, stdout, stderr)
			if err != nil {
				slog.Error("sync failed", "error", err)
			}
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Close()
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.SheetPath, "sheet", "s", opts.SheetPath, "xlsx workbook to read and update (env BADGE_SHEET_PATH)")
	f.StringVarP(&opts.SheetName, "sheet-name", "n", opts.SheetName, "worksheet name, default the first sheet (env BADGE_SHEET_NAME)")
	f.StringVarP(&opts.Output, "output", "o", "", "write the updated workbook here instead of in place")
	f.BoolVar(&opts.DryRun, "dry-run", false, "print counts without saving the workbook")
	f.BoolVar(&opts.NoProgress, "no-progress", false, "disable the progress bar")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "override BADGE_LOG_LEVEL")

	return cmd
}

// runSync reads the workbook, counts every row over one session and writes
// the results back. A browser that cannot start or an interrupted run fails
// before anything is written; individual rows never do.
func runSync(ctx context.Context, cfg *config.Config, open sessionFactory, opts syncOptions, stdout, stderr io.Writer) (*syncReport, error) {
	start := time.Now()
	if opts.SheetPath == "" {
		return nil, errors.New("no workbook given: use --sheet or BADGE_SHEET_PATH")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	wb, err := sheet.Open(opts.SheetPath, opts.SheetName, sheet.Columns{
		URL:   cfg.Sheet.URLColumn,
		Name:  cfg.Sheet.NameColumn,
		Count: cfg.Sheet.CountColumn,
	})
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	report := &syncReport{
		RunID:  uuid.NewString(),
		Sheet:  opts.SheetPath,
		DryRun: opts.DryRun,
	}
	slog.Info("sync started",
		"run_id", report.RunID,
		"sheet", opts.SheetPath,
		"worksheet", wb.Sheet(),
		"rows", wb.Len(),
	)

	rows := wb.Rows()
	results, err := countRows(ctx, cfg, open, rows, opts.NoProgress, stderr)
	if err != nil {
		return nil, err
	}
	// Rows counted after an interrupt read as zero; never save them.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("sync interrupted, workbook left unchanged: %w", err)
	}
	report.Summary = models.Tally(results)

	if opts.DryRun {
		printRows(stdout, results)
	} else {
		if err := wb.WriteCounts(results); err != nil {
			return nil, err
		}
		if opts.Output != "" {
			report.Output = opts.Output
			err = wb.SaveAs(opts.Output)
		} else {
			report.Output = opts.SheetPath
			err = wb.Save()
		}
		if err != nil {
			return nil, err
		}
	}

	report.Duration = time.Since(start).Milliseconds()
	fmt.Fprintf(stdout, "%d rows: %d counted, %d degraded, %d skipped\n",
		report.Summary.Total, report.Summary.OK, report.Summary.Degraded, report.Summary.Skipped)

	if cfg.Webhook.URL != "" && !opts.DryRun {
		notify(ctx, cfg.Webhook, report)
	}
	return report, nil
}

// countRows runs the batch over one browser session. An empty sheet never
// launches a browser.
func countRows(ctx context.Context, cfg *config.Config, open sessionFactory, rows []models.BatchRow, quiet bool, stderr io.Writer) ([]models.BatchRow, error) {
	if len(rows) == 0 {
		return rows, nil
	}

	session, err := open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open browser session: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			slog.Warn("browser session close failed", "error", err)
		}
	}()

	bar := newProgressBar(len(rows), quiet, stderr)
	runner := batch.NewRunner(counter.New(cfg.Counter.Selector, cfg.Counter.Timeout), func(int, models.BatchRow) {
		_ = bar.Add(1)
	})
	out := runner.Run(ctx, session, rows)
	_ = bar.Finish()
	return out, nil
}

func newProgressBar(n int, quiet bool, w io.Writer) *progressbar.ProgressBar {
	if quiet {
		return progressbar.DefaultSilent(int64(n))
	}
	return progressbar.NewOptions(n,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("counting badges"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
	)
}

func printRows(w io.Writer, rows []models.BatchRow) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSTATUS\tBADGES\tPROFILE URL")
	for _, r := range rows {
		name := r.Name
		if name == "" {
			name = "Unknown"
		}
		count := fmt.Sprint(r.Count)
		if r.Skipped() {
			count = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name, r.Status, count, r.URL)
	}
	_ = tw.Flush()
}

// notify sends the sync.completed webhook. Delivery failures are logged and
// never fail the run.
func notify(ctx context.Context, cfg config.WebhookConfig, report *syncReport) {
	event := &webhook.Event{
		Type:      webhook.EventSyncCompleted,
		RunID:     report.RunID,
		Timestamp: time.Now().Unix(),
		Data:      report,
	}
	if err := webhook.DeliverWithRetry(ctx, cfg.URL, cfg.Secret, event, webhook.DefaultDelays); err != nil {
		slog.Warn("sync webhook not delivered", "run_id", report.RunID, "error", err)
	}
}
