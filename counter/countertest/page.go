// Package countertest provides an in-memory counter.Session for tests.
package countertest

import (
	"context"
	"sync"
	"time"

	"github.com/use-agent/badgecount/counter"
)

// Page serves canned HTML per URL and records how it was driven.
// The zero value is ready to use; unknown URLs render an empty document.
type Page struct {
	sync.Mutex // the session guard taken by counter.Count

	// HTML maps a URL to the document it renders.
	HTML map[string]string

	// RenderDelay delays the appearance of a URL's elements.
	RenderDelay map[string]time.Duration

	// NavigateErr, when set, fails every navigation.
	NavigateErr error

	// CountErr, when set, fails every CountElements call.
	CountErr error

	// HangCount makes CountElements block until ctx is done, like a
	// renderer that stopped answering.
	HangCount bool

	mu          sync.Mutex
	current     string
	navigations []string
	closes      int
}

var _ counter.Session = (*Page)(nil)

// WithBadges returns the HTML of a profile page showing n badge cards.
func WithBadges(n int) string {
	html := `<html><body><div class="profile-badges">`
	for i := 0; i < n; i++ {
		html += `<div class="profile-badge"><span class="badge-title">badge</span></div>`
	}
	return html + `</div></body></html>`
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.navigations = append(p.navigations, url)
	if p.NavigateErr != nil {
		return p.NavigateErr
	}
	p.current = url
	return ctx.Err()
}

func (p *Page) WaitElements(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	url := p.current
	p.mu.Unlock()

	if d := p.RenderDelay[url]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	n, err := counter.CountHTML(p.HTML[url], selector)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	<-ctx.Done()
	return ctx.Err()
}

func (p *Page) CountElements(ctx context.Context, selector string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if p.HangCount {
		<-ctx.Done()
		return 0, ctx.Err()
	}
	if p.CountErr != nil {
		return 0, p.CountErr
	}
	p.mu.Lock()
	url := p.current
	p.mu.Unlock()
	return counter.CountHTML(p.HTML[url], selector)
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closes++
	return nil
}

// Navigations returns every URL passed to Navigate, in order.
func (p *Page) Navigations() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.navigations...)
}

// Closes returns how many times Close was called.
func (p *Page) Closes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closes
}
