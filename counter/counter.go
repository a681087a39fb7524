// Package counter counts badge cards on a JavaScript-rendered profile page.
//
// Scrape failures never escape this package as errors: a page that fails to
// load, never renders a matching element, or breaks mid-count yields a zero
// count whose Cause is logged. Callers iterating over many URLs therefore
// never abort on a single bad page.
package counter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/use-agent/badgecount/metrics"
	"github.com/use-agent/badgecount/models"
)

// DefaultTimeout bounds navigation, the readiness wait and the count.
const DefaultTimeout = 15 * time.Second

// DefaultSelector matches one earned badge card.
const DefaultSelector = "div.profile-badge"

// Page is the slice of a browser tab the counter drives.
//
// The embedded Locker guards the tab's navigation state: Count holds it for
// the whole navigate, wait, count sequence, so two callers sharing a page are
// serialized instead of interleaving navigations.
type Page interface {
	sync.Locker

	// Navigate points the tab at url.
	Navigate(ctx context.Context, url string) error

	// WaitElements blocks until at least one element matches selector
	// or ctx is done.
	WaitElements(ctx context.Context, selector string) error

	// CountElements returns how many elements currently match selector.
	CountElements(ctx context.Context, selector string) (int, error)
}

// Session is a Page that owns its browser and must be closed.
type Session interface {
	Page
	Close() error
}

// Counter performs the navigate, wait, count sequence.
// A Counter holds no per-page state and is safe for concurrent use; the
// pages it drives are not.
type Counter struct {
	selector string
	timeout  time.Duration
}

// New creates a Counter. Empty selector and non-positive timeout fall back
// to DefaultSelector and DefaultTimeout.
func New(selector string, timeout time.Duration) *Counter {
	if selector == "" {
		selector = DefaultSelector
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Counter{selector: selector, timeout: timeout}
}

// Selector returns the CSS selector this counter matches.
func (c *Counter) Selector() string { return c.selector }

// Timeout returns the per-page bound on navigation, readiness wait and count.
func (c *Counter) Timeout() time.Duration { return c.timeout }

// Count navigates page to url, waits up to the configured timeout for a
// badge card to appear and returns how many are present.
//
// Count never returns an error. On timeout, navigation failure or DOM error
// the result has Count 0 and a non-nil Cause.
func (c *Counter) Count(ctx context.Context, page Page, url string) models.CountResult {
	start := time.Now()
	page.Lock()
	defer page.Unlock()

	result := c.count(ctx, page, url)

	elapsed := time.Since(start)
	metrics.PageCounted(result.Degraded(), elapsed)
	if result.Degraded() {
		slog.Warn("badge count degraded to zero",
			"url", url,
			"elapsed", elapsed.Round(time.Millisecond),
			"error", result.Cause,
		)
	} else {
		slog.Debug("badges counted",
			"url", url,
			"count", result.Count,
			"elapsed", elapsed.Round(time.Millisecond),
		)
	}
	return result
}

func (c *Counter) count(ctx context.Context, page Page, url string) models.CountResult {
	waitCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// A failed navigation is left for the readiness wait to absorb: the
	// wait then runs against whatever the tab shows and times out.
	navErr := page.Navigate(waitCtx, url)
	if navErr != nil {
		slog.Debug("navigation failed, waiting anyway", "url", url, "error", navErr)
	}

	if err := page.WaitElements(waitCtx, c.selector); err != nil {
		if navErr != nil {
			err = errors.Join(fmt.Errorf("navigate: %w", navErr), err)
		}
		return models.Degraded(fmt.Errorf("wait for %q: %w", c.selector, err))
	}

	n, err := page.CountElements(waitCtx, c.selector)
	if err != nil {
		return models.Degraded(fmt.Errorf("count %q: %w", c.selector, err))
	}
	return models.Counted(n)
}
