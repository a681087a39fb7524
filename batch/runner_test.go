package batch_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/badgecount/batch"
	"github.com/use-agent/badgecount/counter"
	"github.com/use-agent/badgecount/counter/countertest"
	"github.com/use-agent/badgecount/models"
)

const (
	alice = "https://www.cloudskillsboost.google/public_profiles/alice"
	carol = "https://www.cloudskillsboost.google/public_profiles/carol"
	dave  = "https://www.cloudskillsboost.google/public_profiles/dave"
)

func newRunner(onRow batch.ProgressFunc) *batch.Runner {
	return batch.NewRunner(counter.New("", 30*time.Millisecond), onRow)
}

func TestRun_SkipsEmptyMiddleRow(t *testing.T) {
	page := &countertest.Page{HTML: map[string]string{
		alice: countertest.WithBadges(5),
		carol: countertest.WithBadges(2),
	}}
	rows := []models.BatchRow{
		{Name: "Alice", URL: alice},
		{Name: "Bob", URL: ""},
		{Name: "Carol", URL: carol},
	}

	out := newRunner(nil).Run(context.Background(), page, rows)

	require.Len(t, out, 3)
	assert.Equal(t, models.BatchRow{Name: "Alice", URL: alice, Status: models.RowOK, Count: 5}, out[0])
	assert.True(t, out[1].Skipped())
	assert.Equal(t, "Bob", out[1].Name)
	assert.Equal(t, models.BatchRow{Name: "Carol", URL: carol, Status: models.RowOK, Count: 2}, out[2])
	assert.Equal(t, []string{alice, carol}, page.Navigations())
}

func TestRun_MalformedRowsNeverNavigate(t *testing.T) {
	page := &countertest.Page{}
	rows := []models.BatchRow{
		{Name: "empty", URL: ""},
		{Name: "blank", URL: "   "},
		{Name: "ftp", URL: "ftp://example.com"},
		{Name: "bare", URL: "www.cloudskillsboost.google/public_profiles/x"},
		{Name: "mailto", URL: "mailto:someone@example.com"},
	}

	out := newRunner(nil).Run(context.Background(), page, rows)

	require.Len(t, out, len(rows))
	for i, row := range out {
		assert.Equal(t, models.RowSkipped, row.Status, "row %d", i)
		assert.Equal(t, 0, row.Count)
	}
	assert.Empty(t, page.Navigations())
}

func TestRun_FailuresDoNotAbort(t *testing.T) {
	page := &countertest.Page{HTML: map[string]string{
		alice: countertest.WithBadges(1),
		// carol never renders a badge
		dave: countertest.WithBadges(9),
	}}
	rows := []models.BatchRow{
		{Name: "Alice", URL: alice},
		{Name: "Carol", URL: carol},
		{Name: "Nobody", URL: "nope"},
		{Name: "Dave", URL: dave},
	}

	out := newRunner(nil).Run(context.Background(), page, rows)

	require.Len(t, out, 4)
	assert.Equal(t, []string{"Alice", "Carol", "Nobody", "Dave"}, names(out))
	assert.Equal(t, models.RowOK, out[0].Status)
	assert.Equal(t, models.RowDegraded, out[1].Status)
	assert.Equal(t, 0, out[1].Count)
	assert.NotEmpty(t, out[1].Cause)
	assert.Equal(t, models.RowSkipped, out[2].Status)
	assert.Equal(t, 9, out[3].Count)
	assert.Equal(t, models.BatchStats{Total: 4, OK: 2, Degraded: 1, Skipped: 1}, models.Tally(out))
}

func TestRun_EveryRowDegraded(t *testing.T) {
	page := &countertest.Page{NavigateErr: errors.New("net::ERR_INTERNET_DISCONNECTED")}
	rows := []models.BatchRow{{URL: alice}, {URL: carol}, {URL: dave}}

	out := newRunner(nil).Run(context.Background(), page, rows)

	require.Len(t, out, 3)
	for i, row := range out {
		assert.Equal(t, rows[i].URL, row.URL)
		assert.Equal(t, models.RowDegraded, row.Status)
	}
	assert.Len(t, page.Navigations(), 3)
}

func TestRun_InputNotMutated(t *testing.T) {
	page := &countertest.Page{HTML: map[string]string{alice: countertest.WithBadges(2)}}
	rows := []models.BatchRow{{Name: "Alice", URL: "  " + alice + " "}}

	out := newRunner(nil).Run(context.Background(), page, rows)

	assert.Equal(t, "", rows[0].Status)
	assert.Equal(t, alice, out[0].URL)
	assert.Equal(t, 2, out[0].Count)
}

func TestRun_ProgressCallbackInOrder(t *testing.T) {
	page := &countertest.Page{HTML: map[string]string{alice: countertest.WithBadges(1)}}
	var seen []int
	var statuses []string
	r := newRunner(func(i int, row models.BatchRow) {
		seen = append(seen, i)
		statuses = append(statuses, row.Status)
	})

	r.Run(context.Background(), page, []models.BatchRow{{URL: alice}, {URL: ""}, {URL: alice}})

	assert.Equal(t, []int{0, 1, 2}, seen)
	assert.Equal(t, []string{models.RowOK, models.RowSkipped, models.RowOK}, statuses)
}

func TestRun_StopsWhenContextDone(t *testing.T) {
	page := &countertest.Page{HTML: map[string]string{
		alice: countertest.WithBadges(4),
		carol: countertest.WithBadges(6),
	}}
	rows := []models.BatchRow{{Name: "Alice", URL: alice}, {Name: "Carol", URL: carol}}

	ctx, cancel := context.WithCancel(context.Background())
	var seen []int
	r := newRunner(func(i int, _ models.BatchRow) {
		seen = append(seen, i)
		cancel()
	})

	out := r.Run(ctx, page, rows)

	require.Len(t, out, 2)
	assert.Equal(t, models.BatchRow{Name: "Alice", URL: alice, Status: models.RowOK, Count: 4}, out[0])
	assert.Equal(t, rows[1], out[1], "unreached row is passed through unprocessed")
	assert.Equal(t, []int{0}, seen)
	assert.Equal(t, []string{alice}, page.Navigations())
}

func TestRun_CanceledBeforeStart(t *testing.T) {
	page := &countertest.Page{HTML: map[string]string{alice: countertest.WithBadges(4)}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := newRunner(nil).Run(ctx, page, []models.BatchRow{{URL: alice}, {URL: ""}})

	require.Len(t, out, 2)
	assert.Equal(t, models.BatchStats{Total: 2}, models.Tally(out))
	assert.Empty(t, page.Navigations())
}

func TestRun_Empty(t *testing.T) {
	out := newRunner(nil).Run(context.Background(), &countertest.Page{}, nil)
	assert.Empty(t, out)
}

func TestHasWebScheme(t *testing.T) {
	tests := map[string]bool{
		"https://x":     true,
		"http://x":      true,
		"HTTPS://X":     true,
		"":              false,
		"ftp://x":       false,
		"httpfoo":       false,
		"http:/x":       false,
		"//example.com": false,
	}
	for in, want := range tests {
		assert.Equal(t, want, batch.HasWebScheme(in), "%q", in)
	}
}

func names(rows []models.BatchRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}
