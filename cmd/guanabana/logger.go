// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package main

import (
	"log/slog"
	"os"

	"github.com/mdhender/guanabana/internal/diag"
)

// logger wraps slog with the quiet/debug toggles the CLI flags expose.
// Grounded in dekarrin-tunaq/server's package-level-logger pattern, but
// built on log/slog (stdlib) rather than a third-party logging library:
// none of the example repos pull in a structured logger package (logrus,
// zap, zerolog), so there is nothing in the pack to ground a
// third-party choice on, and slog's leveled, structured output is a
// direct, idiomatic match for rendering diag.Diagnostic batches.
type logger struct {
	*slog.Logger
	quiet bool
}

func newLeveledLogger(debug, quiet bool) *logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	if quiet {
		level = slog.LevelError
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return &logger{Logger: slog.New(h), quiet: quiet}
}

// Report logs every diagnostic in diags at the level its severity
// implies, returning true if any were errors (the caller should treat
// that as a build failure).
func (l *logger) Report(diags []diag.Diagnostic) (hasErrors bool) {
	for _, d := range diags {
		attrs := []any{"kind", string(d.Kind)}
		if d.At != nil {
			attrs = append(attrs, "file", d.At.File, "line", d.At.Line, "column", d.At.Column)
		}
		switch d.Level {
		case diag.Error:
			hasErrors = true
			l.Error(d.Msg, attrs...)
		default:
			l.Warn(d.Msg, attrs...)
		}
	}
	return hasErrors
}
