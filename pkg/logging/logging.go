// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
)

// Options selects where logs go.
type Options struct {
	// Debug lowers the level to debug.
	Debug bool
	// File, when set, receives the logs through a RotatingFile.
	File string
	// Console receives the logs when File is empty. Nil discards them, which
	// is what a full-screen program wants.
	Console io.Writer
	// JSON switches the handler from text to JSON.
	JSON bool
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup installs the default slog logger and returns a closer for the log
// file, if one was opened.
func Setup(opts Options) (io.Closer, error) {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}

	var (
		out    io.Writer
		closer io.Closer = nopCloser{}
	)
	switch {
	case opts.File != "":
		file, err := NewRotatingFile(opts.File)
		if err != nil {
			return nil, err
		}
		out, closer = file, file
	case opts.Console != nil:
		out = opts.Console
	default:
		slog.SetDefault(slog.New(slog.DiscardHandler))
		return closer, nil
	}

	slog.SetDefault(slog.New(newHandler(out, level, opts.JSON)))
	return closer, nil
}

func newHandler(w io.Writer, level slog.Level, json bool) slog.Handler {
	handlerOpts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.NewJSONHandler(w, handlerOpts)
	}
	return slog.NewTextHandler(w, handlerOpts)
}
