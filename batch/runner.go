// Package batch runs the badge counter over an ordered list of rows
// against one shared browser session.
package batch

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/use-agent/badgecount/counter"
	"github.com/use-agent/badgecount/metrics"
	"github.com/use-agent/badgecount/models"
)

// ProgressFunc is called after each row is processed with the row's index
// and its populated copy.
type ProgressFunc func(index int, row models.BatchRow)

// Runner processes rows strictly sequentially.
//
// Every row is visited through the same page, so rows must never be fanned
// out across goroutines: the page holds one navigation at a time and the
// counter would serialize them anyway. Parallel runs need one session per
// worker and one Runner per session.
type Runner struct {
	counter *counter.Counter
	onRow   ProgressFunc
}

// NewRunner creates a Runner that counts with c. onRow may be nil.
func NewRunner(c *counter.Counter, onRow ProgressFunc) *Runner {
	return &Runner{counter: c, onRow: onRow}
}

// Run counts badges for every row in order and returns a new slice of the
// same length and order with Status, Count and Cause populated.
//
// A row with an empty URL or a URL without an http:// or https:// prefix
// is marked skipped and never reaches the page. A degraded row never stops
// the run; a done ctx does. Rows not reached are copied through with an
// empty Status, and callers must check ctx.Err() before using the results.
func (r *Runner) Run(ctx context.Context, page counter.Page, rows []models.BatchRow) []models.BatchRow {
	start := time.Now()
	out := make([]models.BatchRow, len(rows))
	copy(out, rows)

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			slog.Warn("batch run interrupted",
				"processed", i,
				"total", len(rows),
				"error", err,
			)
			return out
		}
		out[i] = r.runRow(ctx, page, i, len(rows), row)
		metrics.BatchRow(out[i].Status)
		if r.onRow != nil {
			r.onRow(i, out[i])
		}
	}

	stats := models.Tally(out)
	slog.Info("batch run finished",
		"total", stats.Total,
		"ok", stats.OK,
		"degraded", stats.Degraded,
		"skipped", stats.Skipped,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return out
}

func (r *Runner) runRow(ctx context.Context, page counter.Page, i, total int, row models.BatchRow) models.BatchRow {
	row.URL = strings.TrimSpace(row.URL)
	row.Count = 0
	row.Cause = ""

	if !HasWebScheme(row.URL) {
		row.Status = models.RowSkipped
		slog.Debug("skipping row without a usable URL", "row", i+1, "name", row.Name, "url", row.URL)
		return row
	}

	name := row.Name
	if name == "" {
		name = "Unknown"
	}
	slog.Info("processing profile", "row", i+1, "of", total, "name", name)

	res := r.counter.Count(ctx, page, row.URL)
	row.Count = res.Count
	if res.Degraded() {
		row.Status = models.RowDegraded
		row.Cause = res.Cause.Error()
	} else {
		row.Status = models.RowOK
	}
	return row
}

// HasWebScheme reports whether url starts with http:// or https://,
// ignoring case.
func HasWebScheme(url string) bool {
	lower := strings.ToLower(url)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
