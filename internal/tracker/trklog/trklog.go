// Package trklog sets up the engine's structured logger: a slog.Logger
// writing JSON lines to a lumberjack-rotated file under the tracker
// directory, with an optional stderr tee for interactive CLI use.
package trklog

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxSizeMB  = 10
	maxBackups = 3
	maxAgeDays = 28
)

// Options controls where and how verbosely the logger writes.
type Options struct {
	// Dir is the tracker data directory; logs go to Dir/tracker.log.
	Dir string
	// Verbose enables slog.LevelDebug instead of slog.LevelInfo.
	Verbose bool
	// Stderr tees log output to os.Stderr in addition to the rotated file.
	Stderr bool
}

// New builds a JSON slog.Logger backed by a lumberjack rotating file
// writer. The returned closer should be deferred by the caller, though
// lumberjack itself only needs closing to flush on some platforms.
func New(opts Options) (*slog.Logger, io.Closer) {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}

	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(opts.Dir, "tracker.log"),
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}

	var w io.Writer = rotator
	if opts.Stderr {
		w = io.MultiWriter(rotator, os.Stderr)
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler), rotator
}

// Discard returns a logger that drops everything, for tests and one-shot
// CLI invocations that don't want a log file created.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
