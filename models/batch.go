package models

// Row statuses produced by the batch runner.
const (
	RowOK       = "ok"
	RowDegraded = "degraded"
	RowSkipped  = "skipped"
)

// BatchRow pairs an external identifier with a profile URL and, once
// processed, its outcome.
type BatchRow struct {
	Name string `json:"name,omitempty"`
	URL  string `json:"profile_url"`

	// Status is empty before processing, then one of RowOK, RowDegraded
	// or RowSkipped.
	Status string `json:"status,omitempty"`

	// Count is meaningful for RowOK and RowDegraded (always 0 for the latter).
	Count int `json:"badge_count"`

	// Cause records why a row degraded; never sent to sheet sinks.
	Cause string `json:"cause,omitempty"`
}

// Skipped reports whether the row was rejected without network access.
func (r BatchRow) Skipped() bool { return r.Status == RowSkipped }

// BatchStats tallies row outcomes for one run.
type BatchStats struct {
	Total    int `json:"total"`
	OK       int `json:"ok"`
	Degraded int `json:"degraded"`
	Skipped  int `json:"skipped"`
}

// Tally counts the statuses of rows.
func Tally(rows []BatchRow) BatchStats {
	s := BatchStats{Total: len(rows)}
	for _, r := range rows {
		switch r.Status {
		case RowOK:
			s.OK++
		case RowDegraded:
			s.Degraded++
		case RowSkipped:
			s.Skipped++
		}
	}
	return s
}
