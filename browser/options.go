package browser

import (
	"fmt"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"

	"github.com/use-agent/badgecount/config"
)

// Options is the capability profile every session is launched with.
type Options struct {
	Headless         bool
	NoSandbox        bool
	IgnoreCertErrors bool

	WindowWidth  int
	WindowHeight int

	// Bin overrides the Chromium binary; empty lets rod find or fetch one.
	Bin string

	// Proxy routes all browser traffic through the given proxy URL.
	Proxy string

	// Stealth masks navigator.webdriver and similar automation tells.
	Stealth bool

	// AcceptLanguage is sent on every request when non-empty.
	AcceptLanguage string

	// BlockedResourceTypes names resource types the tab refuses to load:
	// "Image", "Stylesheet", "Font", "Media".
	BlockedResourceTypes []string
}

// DefaultOptions is the constrained-environment profile: headless, no GPU,
// no sandbox, fixed 1920x1200 window, certificate errors ignored.
func DefaultOptions() Options {
	return Options{
		Headless:             true,
		NoSandbox:            true,
		IgnoreCertErrors:     true,
		WindowWidth:          1920,
		WindowHeight:         1200,
		AcceptLanguage:       "en-US,en;q=0.9",
		BlockedResourceTypes: []string{"Image", "Font", "Media"},
	}
}

// OptionsFromConfig maps the environment configuration onto Options.
func OptionsFromConfig(cfg config.BrowserConfig) Options {
	return Options{
		Headless:             cfg.Headless,
		NoSandbox:            cfg.NoSandbox,
		IgnoreCertErrors:     cfg.IgnoreCertErrors,
		WindowWidth:          cfg.WindowWidth,
		WindowHeight:         cfg.WindowHeight,
		Bin:                  cfg.BrowserBin,
		Proxy:                cfg.Proxy,
		Stealth:              cfg.Stealth,
		AcceptLanguage:       cfg.AcceptLanguage,
		BlockedResourceTypes: cfg.BlockedResourceTypes,
	}
}

// newChromeLauncher translates Options into Chromium command-line flags.
func newChromeLauncher(opts Options) *launcher.Launcher {
	l := launcher.New().
		Headless(opts.Headless).
		NoSandbox(opts.NoSandbox)

	if opts.Bin != "" {
		l = l.Bin(opts.Bin)
	}
	if opts.Proxy != "" {
		l = l.Proxy(opts.Proxy)
	}

	l.Set(flags.Flag("disable-gpu"))
	l.Set(flags.Flag("window-size"), fmt.Sprintf("%d,%d", opts.WindowWidth, opts.WindowHeight))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("no-first-run"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-component-update"))

	if opts.IgnoreCertErrors {
		l.Set(flags.Flag("ignore-certificate-errors"))
	}

	// ── Stealth flags ────────────────────────────────────────────────
	if opts.Stealth {
		l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
		l.Delete(flags.Flag("enable-automation"))
	}

	return l
}
