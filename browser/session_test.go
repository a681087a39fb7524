package browser

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/badgecount/config"
	"github.com/use-agent/badgecount/counter"
	"github.com/use-agent/badgecount/models"
)

func TestNewChromeLauncher_Flags(t *testing.T) {
	l := newChromeLauncher(DefaultOptions())

	assert.True(t, l.Has(flags.Headless))
	assert.True(t, l.Has(flags.NoSandbox))
	for _, f := range []string{"disable-gpu", "disable-extensions", "disable-dev-shm-usage", "ignore-certificate-errors"} {
		assert.True(t, l.Has(flags.Flag(f)), "missing --%s", f)
	}
	assert.Equal(t, "1920,1200", l.Get(flags.Flag("window-size")))
	assert.False(t, l.Has(flags.Flag("disable-blink-features")))
}

func TestNewChromeLauncher_Optional(t *testing.T) {
	opts := DefaultOptions()
	opts.IgnoreCertErrors = false
	opts.Stealth = true
	opts.WindowWidth, opts.WindowHeight = 800, 600

	l := newChromeLauncher(opts)

	assert.False(t, l.Has(flags.Flag("ignore-certificate-errors")))
	assert.Equal(t, "AutomationControlled", l.Get(flags.Flag("disable-blink-features")))
	assert.Equal(t, "800,600", l.Get(flags.Flag("window-size")))
}

func TestNewLauncher_FillsWindowSize(t *testing.T) {
	l := NewLauncher(Options{Headless: true})
	assert.Equal(t, 1920, l.Options().WindowWidth)
	assert.Equal(t, 1200, l.Options().WindowHeight)
}

func TestOptionsFromConfig(t *testing.T) {
	opts := OptionsFromConfig(config.BrowserConfig{
		Headless:             true,
		NoSandbox:            true,
		WindowWidth:          1280,
		WindowHeight:         720,
		BrowserBin:           "/usr/bin/chromium",
		Stealth:              true,
		BlockedResourceTypes: []string{"Image"},
	})

	assert.Equal(t, "/usr/bin/chromium", opts.Bin)
	assert.Equal(t, 1280, opts.WindowWidth)
	assert.True(t, opts.Stealth)
	assert.Equal(t, []string{"Image"}, opts.BlockedResourceTypes)
}

func TestBlockedSet(t *testing.T) {
	set := blockedSet([]string{"Image", "Script", "Font", "bogus"})
	assert.Len(t, set, 2)
	_, img := set[proto.NetworkResourceTypeImage]
	_, script := set[proto.NetworkResourceTypeScript]
	assert.True(t, img)
	assert.False(t, script, "scripts render the badge list and must never be blocked")
}

func TestSessionClose_NilAndRepeated(t *testing.T) {
	var nilSession *Session
	assert.NoError(t, nilSession.Close())
	assert.False(t, nilSession.Alive())

	// A session whose Open never completed holds no resources.
	s := &Session{id: "partial"}
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
	assert.False(t, s.Alive())
}

func TestSession_ClosedRejectsWork(t *testing.T) {
	s := &Session{id: "closed"}
	require.NoError(t, s.Close())

	ctx := context.Background()
	assert.ErrorIs(t, s.Navigate(ctx, "https://example.com"), errClosed)
	assert.ErrorIs(t, s.WaitElements(ctx, counter.DefaultSelector), errClosed)
	_, err := s.CountElements(ctx, counter.DefaultSelector)
	assert.ErrorIs(t, err, errClosed)

	// The counter absorbs the failure into a zero count.
	res := counter.New("", 50*time.Millisecond).Count(ctx, s, "https://example.com")
	assert.Equal(t, 0, res.Count)
	assert.True(t, res.Degraded())
}

func TestOpen_MissingBinary(t *testing.T) {
	opts := DefaultOptions()
	opts.Bin = "/nonexistent/chromium-for-badgecount"

	s, err := NewLauncher(opts).Open(context.Background())

	require.Error(t, err)
	assert.Nil(t, s)
	var ce *models.CountError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, models.ErrCodeSessionUnavailable, ce.Code)
	assert.NoError(t, s.Close(), "Close after a failed Open must be safe")
}

// TestOpen_RealBrowser drives a real Chromium and needs one installed.
func TestOpen_RealBrowser(t *testing.T) {
	if os.Getenv("BADGE_BROWSER_TESTS") != "1" {
		t.Skip("set BADGE_BROWSER_TESTS=1 to run against a real browser")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	s, err := NewLauncher(DefaultOptions()).Open(ctx)
	require.NoError(t, err)
	defer s.Close()
	require.True(t, s.Alive())

	html := `<div class="profile-badge"></div><div class="profile-badge"></div>`
	res := counter.New("", 10*time.Second).Count(ctx, s, "data:text/html,"+html)
	assert.Equal(t, 2, res.Count)
	assert.False(t, res.Degraded())

	require.NoError(t, s.Close())
	assert.False(t, s.Alive())
	assert.NoError(t, s.Close())
}
