// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/use-agent/badgecount/config"
)

// Setup installs the default slog logger described by cfg, writing to stdout
// (os.Stdout when nil). When cfg.File is set, every line is also written to a
// rotating file that the returned Logger's Close releases.
func Setup(cfg config.LogConfig, stdout io.Writer) *Logger {
	if stdout == nil {
		stdout = os.Stdout
	}
	l := &Logger{out: stdout}
	if cfg.File != "" {
		l.file = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		l.out = io.MultiWriter(stdout, l.file)
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(l.out, opts)
	} else {
		handler = slog.NewJSONHandler(l.out, opts)
	}
	l.Logger = slog.New(handler)
	slog.SetDefault(l.Logger)
	return l
}

// Logger is the installed logger and the sinks behind it.
type Logger struct {
	*slog.Logger
	out  io.Writer
	file *lumberjack.Logger
}

// Writer returns the combined output, for libraries that want an io.Writer.
func (l *Logger) Writer() io.Writer { return l.out }

// Close flushes and closes the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// ParseLevel maps "debug", "warn" and "error" to their slog levels; anything
// else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
