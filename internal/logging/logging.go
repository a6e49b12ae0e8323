// Package logging builds the daemon's slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options configure New.
type Options struct {
	// Level is debug, info, warn (or warning) or error. Unknown values mean info.
	Level string
	// File appends to a rotating log file instead of writing to Stderr.
	File      string
	MaxSizeMB int
	MaxFiles  int
	// Stderr receives output when File is empty. Defaults to os.Stderr.
	Stderr io.Writer
}

// ParseLevel converts a config level name to a slog level.
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

// New returns a text logger and a closer for any file it opened.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	var (
		w      io.Writer = opts.Stderr
		closer io.Closer = nopCloser{}
	)
	if w == nil {
		w = os.Stderr
	}
	if path := strings.TrimSpace(opts.File); path != "" {
		f, err := OpenRotatingFile(path, opts.MaxSizeMB, opts.MaxFiles)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w, closer = f, f
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(opts.Level),
	})
	return slog.New(handler), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
