// Package browser owns headless Chromium sessions driven over CDP by rod.
//
// A Session is one browser process with one tab. It is created by a
// Launcher from an explicit Options record and torn down by Close, which is
// idempotent and safe on a nil *Session, so callers can always
//
//	s, err := l.Open(ctx)
//	defer s.Close()
//
// A Session is single-owner: its embedded mutex is held by counter.Count for
// each page visit, and using one Session from several goroutines only
// serializes them. Parallel counting needs one Session per worker.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/google/uuid"
	"github.com/ysmood/gson"

	"github.com/use-agent/badgecount/counter"
	"github.com/use-agent/badgecount/metrics"
	"github.com/use-agent/badgecount/models"
)

// Session is a running Chromium process and its single tab.
type Session struct {
	sync.Mutex // page guard, see package doc

	id       string
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	router   *rod.HijackRouter

	alive     atomic.Bool
	counted   bool // contributed to the active-sessions gauge
	closeOnce sync.Once
	closeErr  error
}

var _ counter.Session = (*Session)(nil)

// Launcher opens sessions with a fixed capability profile.
type Launcher struct {
	opts Options
}

// NewLauncher creates a Launcher. Zero-valued window dimensions fall back to
// DefaultOptions.
func NewLauncher(opts Options) *Launcher {
	def := DefaultOptions()
	if opts.WindowWidth <= 0 {
		opts.WindowWidth = def.WindowWidth
	}
	if opts.WindowHeight <= 0 {
		opts.WindowHeight = def.WindowHeight
	}
	return &Launcher{opts: opts}
}

// Options returns the profile sessions are launched with.
func (l *Launcher) Options() Options { return l.opts }

// Open launches Chromium, connects to it and prepares one tab.
//
// ctx bounds the launch. Any failure tears down what was already started
// and returns a *models.CountError with code ErrCodeSessionUnavailable.
// Open does not retry.
func (l *Launcher) Open(ctx context.Context) (*Session, error) {
	s := &Session{id: uuid.NewString()}

	s.launcher = newChromeLauncher(l.opts).Context(ctx)
	controlURL, err := s.launcher.Launch()
	if err != nil {
		s.launcher = nil // nothing to kill
		return nil, unavailable("failed to launch browser", err)
	}

	// Not bound to ctx, so Close can still reach the process after ctx ends.
	s.browser = rod.New().ControlURL(controlURL)
	if err := s.browser.Connect(); err != nil {
		s.browser = nil
		s.teardown()
		return nil, unavailable("failed to connect to browser", err)
	}

	if l.opts.IgnoreCertErrors {
		if err := s.browser.IgnoreCertErrors(true); err != nil {
			s.teardown()
			return nil, unavailable("failed to relax certificate checks", err)
		}
	}

	page, err := s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		s.teardown()
		return nil, unavailable("failed to create page", err)
	}
	s.page = page

	if err := s.preparePage(l.opts); err != nil {
		s.teardown()
		return nil, unavailable("failed to prepare page", err)
	}

	s.alive.Store(true)
	s.counted = true
	metrics.SessionOpened()
	slog.Debug("browser session opened", "session", s.id, "controlURL", controlURL)
	return s, nil
}

// OpenSession is Open behind the counter.Session interface.
func (l *Launcher) OpenSession(ctx context.Context) (counter.Session, error) {
	s, err := l.Open(ctx)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// preparePage applies viewport, headers, stealth and resource blocking.
// Everything here must happen before the first navigation.
func (s *Session) preparePage(opts Options) error {
	if err := s.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             opts.WindowWidth,
		Height:            opts.WindowHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		return fmt.Errorf("set viewport: %w", err)
	}

	if opts.AcceptLanguage != "" {
		if err := (proto.NetworkSetExtraHTTPHeaders{
			Headers: proto.NetworkHeaders{"Accept-Language": gson.New(opts.AcceptLanguage)},
		}).Call(s.page); err != nil {
			return fmt.Errorf("set extra headers: %w", err)
		}
	}

	if opts.Stealth {
		if _, err := s.page.EvalOnNewDocument(stealth.JS); err != nil {
			slog.Warn("stealth injection failed, proceeding without stealth",
				"session", s.id,
				"error", err,
			)
		}
	}

	s.router = blockResources(s.page, opts.BlockedResourceTypes)
	return nil
}

// ID identifies the session in logs.
func (s *Session) ID() string {
	if s == nil {
		return ""
	}
	return s.id
}

// Alive reports whether the session is open.
func (s *Session) Alive() bool {
	return s != nil && s.alive.Load()
}

// Navigate points the tab at url.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if !s.Alive() {
		return errClosed
	}
	return s.page.Context(ctx).Navigate(url)
}

// WaitElements polls the DOM until at least one element matches selector.
func (s *Session) WaitElements(ctx context.Context, selector string) error {
	if !s.Alive() {
		return errClosed
	}
	return s.page.Context(ctx).WaitElementsMoreThan(selector, 0)
}

// CountElements counts matching elements in a snapshot of the rendered DOM.
func (s *Session) CountElements(ctx context.Context, selector string) (int, error) {
	if !s.Alive() {
		return 0, errClosed
	}
	html, err := s.page.Context(ctx).HTML()
	if err != nil {
		return 0, fmt.Errorf("read rendered html: %w", err)
	}
	return counter.CountHTML(html, selector)
}

// Close terminates the browser process and removes its profile directory.
// It is safe to call more than once and on a nil *Session; later calls
// return the first call's result.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	s.closeOnce.Do(func() {
		s.alive.Store(false)
		s.closeErr = s.teardown()
		if s.counted {
			metrics.SessionClosed()
		}
		slog.Debug("browser session closed", "session", s.id, "error", s.closeErr)
	})
	return s.closeErr
}

// teardown releases whatever Open managed to create, in reverse order.
func (s *Session) teardown() error {
	var errs []error
	if s.router != nil {
		if err := s.router.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop hijack router: %w", err))
		}
	}
	if s.page != nil {
		// Closing the browser below also closes the tab; a failure here is
		// only worth a debug line.
		if err := s.page.Close(); err != nil {
			slog.Debug("page close failed", "session", s.id, "error", err)
		}
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
	}
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher.Cleanup()
	}
	return errors.Join(errs...)
}

var errClosed = errors.New("browser session is closed")

func unavailable(msg string, err error) error {
	metrics.SessionLaunchFailed()
	slog.Error("browser session unavailable", "reason", msg, "error", err)
	return models.NewCountError(models.ErrCodeSessionUnavailable, msg, err)
}
