package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Counter   CounterConfig
	Sheet     SheetConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Webhook   WebhookConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 5000
	Mode string // "debug", "release", "test"; default: "release"

	// MaxBatchRows caps the number of rows accepted by POST /api/v1/batch.
	MaxBatchRows int // default: 100

	// MaxSessions is the number of concurrently open browser sessions
	// above which the health endpoint reports "degraded".
	MaxSessions int // default: 8
}

// BrowserConfig controls how each Chromium session is launched.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in containers).
	NoSandbox bool // default: true

	// IgnoreCertErrors relaxes TLS certificate validation.
	IgnoreCertErrors bool // default: true

	// WindowWidth and WindowHeight fix the window and viewport size.
	WindowWidth  int // default: 1920
	WindowHeight int // default: 1200

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Proxy is an optional upstream proxy for all browser traffic.
	Proxy string

	// Stealth injects anti-bot-detection JS before every navigation.
	Stealth bool // default: false

	// AcceptLanguage is sent as an extra header on every request.
	AcceptLanguage string // default: "en-US,en;q=0.9"

	// BlockedResourceTypes lists resource types the tab refuses to load.
	// default: ["Image", "Font", "Media"]
	BlockedResourceTypes []string
}

// CounterConfig controls the badge counting step.
type CounterConfig struct {
	// Selector matches one earned badge card.
	Selector string // default: "div.profile-badge"

	// Timeout bounds navigation plus the readiness wait for one page.
	Timeout time.Duration // default: 15s

	// DomainToken must appear in URLs accepted by the HTTP API.
	DomainToken string // default: "cloudskillsboost.google"
}

// SheetConfig names the columns used by the batch sync.
type SheetConfig struct {
	// Path is the workbook to read and update.
	Path string

	// Name is the worksheet name; empty selects the first sheet.
	Name string

	URLColumn   string // default: "Profile URL"
	NameColumn  string // default: "Name"
	CountColumn string // default: "Badge Count"
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key or client IP.
	RequestsPerSecond float64 // default: 1

	// Burst is the maximum burst size per identity.
	Burst int // default: 3

	// IdleTTL is how long an identity's bucket survives without requests.
	IdleTTL time.Duration // default: 1h
}

// CacheConfig controls the count response cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached responses.
	MaxEntries int // default: 500
}

// WebhookConfig controls the notification sent after a sheet sync.
type WebhookConfig struct {
	URL    string
	Secret string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"

	// File, when set, receives a copy of every log line with rotation.
	File       string
	MaxSizeMB  int // default: 10
	MaxBackups int // default: 3
	MaxAgeDays int // default: 28
}

// Load reads configuration from environment variables with sane defaults.
// A .env file in the working directory is applied first when present;
// variables already set in the environment win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Host:         envOr("BADGE_HOST", "0.0.0.0"),
			Port:         envIntOr("BADGE_PORT", 5000),
			Mode:         envOr("BADGE_MODE", "release"),
			MaxBatchRows: envIntOr("BADGE_MAX_BATCH_ROWS", 100),
			MaxSessions:  envIntOr("BADGE_MAX_SESSIONS", 8),
		},
		Browser: BrowserConfig{
			Headless:         envBoolOr("BADGE_HEADLESS", true),
			NoSandbox:        envBoolOr("BADGE_NO_SANDBOX", true),
			IgnoreCertErrors: envBoolOr("BADGE_IGNORE_CERT_ERRORS", true),
			WindowWidth:      envIntOr("BADGE_WINDOW_WIDTH", 1920),
			WindowHeight:     envIntOr("BADGE_WINDOW_HEIGHT", 1200),
			BrowserBin:       os.Getenv("BADGE_BROWSER_BIN"),
			Proxy:            os.Getenv("BADGE_PROXY"),
			Stealth:          envBoolOr("BADGE_STEALTH", false),
			AcceptLanguage:   envOr("BADGE_ACCEPT_LANGUAGE", "en-US,en;q=0.9"),
			BlockedResourceTypes: envSliceOr("BADGE_BLOCKED_RESOURCES", []string{
				"Image", "Font", "Media",
			}),
		},
		Counter: CounterConfig{
			Selector:    envOr("BADGE_SELECTOR", "div.profile-badge"),
			Timeout:     envDurationOr("BADGE_TIMEOUT", 15*time.Second),
			DomainToken: envOr("BADGE_DOMAIN_TOKEN", "cloudskillsboost.google"),
		},
		Sheet: SheetConfig{
			Path:        os.Getenv("BADGE_SHEET_PATH"),
			Name:        os.Getenv("BADGE_SHEET_NAME"),
			URLColumn:   envOr("BADGE_SHEET_URL_COLUMN", "Profile URL"),
			NameColumn:  envOr("BADGE_SHEET_NAME_COLUMN", "Name"),
			CountColumn: envOr("BADGE_SHEET_COUNT_COLUMN", "Badge Count"),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("BADGE_AUTH_ENABLED", false),
			APIKeys: envSliceOr("BADGE_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("BADGE_RATE_RPS", 1.0),
			Burst:             envIntOr("BADGE_RATE_BURST", 3),
			IdleTTL:           envDurationOr("BADGE_RATE_IDLE_TTL", time.Hour),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("BADGE_CACHE_MAX_ENTRIES", 500),
		},
		Webhook: WebhookConfig{
			URL:    os.Getenv("BADGE_WEBHOOK_URL"),
			Secret: os.Getenv("BADGE_WEBHOOK_SECRET"),
		},
		Log: LogConfig{
			Level:      envOr("BADGE_LOG_LEVEL", "info"),
			Format:     envOr("BADGE_LOG_FORMAT", "json"),
			File:       os.Getenv("BADGE_LOG_FILE"),
			MaxSizeMB:  envIntOr("BADGE_LOG_MAX_SIZE_MB", 10),
			MaxBackups: envIntOr("BADGE_LOG_MAX_BACKUPS", 3),
			MaxAgeDays: envIntOr("BADGE_LOG_MAX_AGE_DAYS", 28),
		},
	}
}

// Validate rejects configurations that would fail on the first request
// rather than at startup.
func (c *Config) Validate() error {
	if _, err := cascadia.Compile(c.Counter.Selector); err != nil {
		return fmt.Errorf("config: invalid badge selector %q: %w", c.Counter.Selector, err)
	}
	if c.Counter.Timeout <= 0 {
		return fmt.Errorf("config: counter timeout must be positive, got %s", c.Counter.Timeout)
	}
	if c.Browser.WindowWidth <= 0 || c.Browser.WindowHeight <= 0 {
		return fmt.Errorf("config: invalid window size %dx%d", c.Browser.WindowWidth, c.Browser.WindowHeight)
	}
	if c.Server.MaxBatchRows < 1 {
		return fmt.Errorf("config: max batch rows must be at least 1, got %d", c.Server.MaxBatchRows)
	}
	if c.Auth.Enabled && len(c.Auth.APIKeys) == 0 {
		return fmt.Errorf("config: auth enabled but BADGE_API_KEYS is empty")
	}
	return nil
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// envDurationOr accepts Go duration strings ("15s") or a bare integer,
// which is read as milliseconds.
func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		if ms, err := strconv.Atoi(v); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
